package util

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeString trims whitespace and removes control characters from s.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeEnvValue cleans an environment variable value by removing surrounding
// quotes and trimming whitespace.
func SanitizeEnvValue(s string) string {
	s = strings.TrimSpace(s)
	// Strip matching surrounding quotes (single or double).
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}

// SanitizeFilename reduces an untrusted file name to its base name with
// control characters and path separators removed, so it cannot escape the
// directory it is written into. Returns fallback if nothing usable remains.
func SanitizeFilename(name, fallback string) string {
	name = SanitizeString(name)
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return fallback
	}
	return name
}

// maxTitleRunes caps generated filenames derived from media titles.
const maxTitleRunes = 120

// SanitizeTitle turns a media title into a string safe to use in a file name.
// It keeps unicode letters, digits, spaces and -_.() runes, collapses
// whitespace runs, and caps the result at 120 runes. Returns fallback when
// nothing usable remains.
func SanitizeTitle(title, fallback string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case r == '-' || r == '_' || r == '.' || r == '(' || r == ')':
			b.WriteRune(r)
		}
	}

	cleaned := strings.Join(strings.Fields(b.String()), " ")
	runes := []rune(cleaned)
	if len(runes) > maxTitleRunes {
		cleaned = strings.TrimSpace(string(runes[:maxTitleRunes]))
	}
	if cleaned == "" {
		return fallback
	}
	return cleaned
}
