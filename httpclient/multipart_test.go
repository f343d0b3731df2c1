package httpclient

import (
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"
)

func parseMultipart(t *testing.T, body io.Reader, contentType string) map[string]string {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parsing content type: %v", err)
	}
	if mediaType != "multipart/form-data" {
		t.Fatalf("unexpected media type %q", mediaType)
	}

	parts := map[string]string{}
	r := multipart.NewReader(body, params["boundary"])
	for {
		part, err := r.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading part: %v", err)
		}
		data, err := io.ReadAll(part)
		if err != nil {
			t.Fatalf("reading part body: %v", err)
		}
		parts[part.FormName()] = string(data)
	}
	return parts
}

func TestMultipartEncode_FieldsAndFiles(t *testing.T) {
	m := &MultipartBody{
		Fields: map[string]string{"model": "base", "language": "en"},
		Files: []FileField{{
			FieldName: "audio",
			FileName:  "clip.mp3",
			Data:      []byte("mp3 bytes"),
		}},
	}

	body, contentType, err := m.encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parts := parseMultipart(t, body, contentType)
	if parts["model"] != "base" || parts["language"] != "en" {
		t.Errorf("unexpected fields %v", parts)
	}
	if parts["audio"] != "mp3 bytes" {
		t.Errorf("unexpected file content %q", parts["audio"])
	}
}

func TestMultipartEncode_ReaderFile(t *testing.T) {
	m := &MultipartBody{
		Files: []FileField{{
			FieldName: "file",
			FileName:  "doc.txt",
			Reader:    strings.NewReader("streamed file"),
		}},
	}

	body, contentType, err := m.encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := parseMultipart(t, body, contentType)
	if parts["file"] != "streamed file" {
		t.Errorf("unexpected file content %q", parts["file"])
	}
}

func TestMultipartEncode_ExplicitContentType(t *testing.T) {
	m := &MultipartBody{
		Files: []FileField{{
			FieldName:   "audio",
			FileName:    "clip.mp3",
			ContentType: "audio/mpeg",
			Data:        []byte("x"),
		}},
	}

	body, contentType, err := m.encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parsing content type: %v", err)
	}
	r := multipart.NewReader(body, params["boundary"])
	part, err := r.NextPart()
	if err != nil {
		t.Fatalf("reading part: %v", err)
	}
	if got := part.Header.Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("expected explicit part content type, got %q", got)
	}
	if got := part.FileName(); got != "clip.mp3" {
		t.Errorf("unexpected file name %q", got)
	}
}

func TestEscapeQuotes(t *testing.T) {
	if got := escapeQuotes(`file "name".mp4`); got != `file \"name\".mp4` {
		t.Errorf("unexpected escape %q", got)
	}
}
