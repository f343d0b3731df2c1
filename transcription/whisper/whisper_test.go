package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillsenselab/mediagate/errors"
	"github.com/skillsenselab/mediagate/transcription"
)

func writeAudioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing audio file: %v", err)
	}
	return path
}

func newTestProvider(t *testing.T, handler http.Handler) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := New(Config{URL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("creating provider: %v", err)
	}
	return p
}

func TestTranscribe_TopLevelText(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "base" {
			t.Errorf("expected default model, got %q", got)
		}
		f, _, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("missing audio field: %v", err)
		}
		f.Close()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "hello world", "language": "en"}`))
	}))

	resp, err := p.Transcribe(context.Background(), transcription.Request{
		AudioPath: writeAudioFile(t, "mp3 bytes"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hello world" {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.Language != "en" {
		t.Errorf("unexpected language %q", resp.Language)
	}
}

func TestTranscribe_NestedDataText(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"text": "nested transcript"}}`))
	}))

	resp, err := p.Transcribe(context.Background(), transcription.Request{
		AudioPath: writeAudioFile(t, "mp3 bytes"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "nested transcript" {
		t.Errorf("unexpected text %q", resp.Text)
	}
}

func TestTranscribe_UnrecognizedShape(t *testing.T) {
	for name, body := range map[string]string{
		"no text field":   `{"status": "done"}`,
		"non-string text": `{"text": 42}`,
		"not json":        `transcript as plain text`,
	} {
		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		_, err := p.Transcribe(context.Background(), transcription.Request{
			AudioPath: writeAudioFile(t, "mp3 bytes"),
		})
		appErr, ok := errors.AsAppError(err)
		if !ok || appErr.Code != errors.ErrCodeProcessing {
			t.Errorf("%s: expected processing error, got %v", name, err)
		}
	}
}

func TestTranscribe_MissingFile_NoDispatch(t *testing.T) {
	called := false
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := p.Transcribe(context.Background(), transcription.Request{
		AudioPath: "/nonexistent/audio.mp3",
	})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeProcessing {
		t.Fatalf("expected processing error, got %v", err)
	}
	if called {
		t.Error("no request should reach the provider for an unreadable file")
	}
}

func TestTranscribe_EmptyFile(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the provider for an empty file")
	}))

	_, err := p.Transcribe(context.Background(), transcription.Request{
		AudioPath: writeAudioFile(t, ""),
	})
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeProcessing {
		t.Errorf("expected processing error, got %v", err)
	}
}

func TestTranscribe_UpstreamErrorBody(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "model crashed while decoding"}`))
	}))

	_, err := p.Transcribe(context.Background(), transcription.Request{
		AudioPath: writeAudioFile(t, "mp3 bytes"),
	})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if appErr.Message != "model crashed while decoding" {
		t.Errorf("expected provider message surfaced, got %q", appErr.Message)
	}
	if appErr.Details["upstream_status"] != http.StatusInternalServerError {
		t.Errorf("expected upstream status detail, got %v", appErr.Details)
	}
}

func TestTranscribe_RequestModelOverride(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "large-v3" {
			t.Errorf("expected model override, got %q", got)
		}
		if got := r.FormValue("language"); got != "de" {
			t.Errorf("expected language field, got %q", got)
		}
		w.Write([]byte(`{"text": "ok"}`))
	}))

	_, err := p.Transcribe(context.Background(), transcription.Request{
		AudioPath: writeAudioFile(t, "mp3 bytes"),
		Model:     "large-v3",
		Language:  "de",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	if !p.IsAvailable(context.Background()) {
		t.Error("expected provider to be available")
	}

	down, err := New(Config{URL: "http://127.0.0.1:1"}, nil)
	if err != nil {
		t.Fatalf("creating provider: %v", err)
	}
	if down.IsAvailable(context.Background()) {
		t.Error("expected provider to be unavailable")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.URL != defaultURL {
		t.Errorf("expected default URL, got %q", cfg.URL)
	}
	if cfg.Model != defaultModel {
		t.Errorf("expected default model, got %q", cfg.Model)
	}
	if cfg.Timeout != defaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
}

func TestProviderName(t *testing.T) {
	p, err := New(Config{}, nil)
	if err != nil {
		t.Fatalf("creating provider: %v", err)
	}
	if p.Name() != "whisper" {
		t.Errorf("unexpected name %q", p.Name())
	}
}
