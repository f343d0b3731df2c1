package conversion

import (
	"sort"
	"strings"
)

// mimeTypes is the supported target format set and the Content-Type served
// for each converted result.
var mimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"odt":  "application/vnd.oasis.opendocument.text",
	"rtf":  "application/rtf",
	"txt":  "text/plain",
	"html": "text/html",
	"md":   "text/markdown",
	"csv":  "text/csv",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// NormalizeFormat lowercases a target format and strips a leading dot.
func NormalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

// IsSupported reports whether format is a supported conversion target.
func IsSupported(format string) bool {
	_, ok := mimeTypes[NormalizeFormat(format)]
	return ok
}

// MimeType returns the Content-Type for a target format, falling back to
// application/octet-stream for unknown formats.
func MimeType(format string) string {
	if mt, ok := mimeTypes[NormalizeFormat(format)]; ok {
		return mt
	}
	return "application/octet-stream"
}

// SupportedFormats returns the supported target formats in sorted order.
func SupportedFormats() []string {
	formats := make([]string, 0, len(mimeTypes))
	for f := range mimeTypes {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
