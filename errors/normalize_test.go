package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/skillsenselab/mediagate/httpclient"
)

func TestNormalize_Nil(t *testing.T) {
	if Normalize(nil) != nil {
		t.Error("expected nil for nil input")
	}
}

func TestNormalize_AppErrorPassthrough(t *testing.T) {
	orig := Validation("bad url")
	got := Normalize(fmt.Errorf("wrap: %w", orig))
	if got != orig {
		t.Error("expected the original AppError to pass through")
	}
}

func TestNormalize_HTTPErrorBodyDataPreferred(t *testing.T) {
	httpErr := &httpclient.Error{
		StatusCode: 422,
		Code:       httpclient.ErrCodeValidation,
		Message:    "HTTP 422",
		Body:       []byte(`{"data":{"message":"Encrypted file"},"error":"ignored"}`),
	}
	got := Normalize(httpErr)
	if got.Code != ErrCodeUpstream {
		t.Fatalf("expected UPSTREAM_PROVIDER_ERROR, got %s", got.Code)
	}
	detail, ok := got.Details["response"].(map[string]any)
	if !ok {
		t.Fatalf("expected data payload as detail, got %T", got.Details["response"])
	}
	if detail["message"] != "Encrypted file" {
		t.Errorf("expected task message preserved, got %v", detail["message"])
	}
	if got.Details["upstream_status"] != 422 {
		t.Errorf("expected upstream_status=422, got %v", got.Details["upstream_status"])
	}
}

func TestNormalize_HTTPErrorBodyErrorField(t *testing.T) {
	httpErr := &httpclient.Error{
		StatusCode: 500,
		Code:       httpclient.ErrCodeServer,
		Message:    "HTTP 500",
		Body:       []byte(`{"error":"quota exceeded"}`),
	}
	got := Normalize(httpErr)
	if got.Details["response"] != "quota exceeded" {
		t.Errorf("expected error field as detail, got %v", got.Details["response"])
	}
}

func TestNormalize_HTTPErrorNonJSONBody(t *testing.T) {
	httpErr := &httpclient.Error{
		StatusCode: 502,
		Code:       httpclient.ErrCodeServer,
		Message:    "HTTP 502",
		Body:       []byte("bad gateway"),
	}
	got := Normalize(httpErr)
	if got.Details["response"] != "bad gateway" {
		t.Errorf("expected raw body as detail, got %v", got.Details["response"])
	}
}

func TestNormalize_DeadlineExceeded(t *testing.T) {
	got := Normalize(fmt.Errorf("poll: %w", context.DeadlineExceeded))
	if got.Code != ErrCodeUpstream {
		t.Errorf("expected UPSTREAM_PROVIDER_ERROR for timeout, got %s", got.Code)
	}
	if !got.Retryable {
		t.Error("timeout should be retryable")
	}
}

func TestNormalize_UnknownShape(t *testing.T) {
	got := Normalize(fmt.Errorf("something odd"))
	if got.Code != ErrCodeUnknown {
		t.Errorf("expected UNKNOWN_ERROR, got %s", got.Code)
	}
	if got.Details["error"] != "something odd" {
		t.Errorf("expected raw error text as detail, got %v", got.Details["error"])
	}
}

func TestExtractDetail_EmptyBody(t *testing.T) {
	if ExtractDetail(nil) != nil {
		t.Error("expected nil for empty body")
	}
}

func TestExtractDetail_EmptyObject(t *testing.T) {
	if ExtractDetail([]byte(`{}`)) != nil {
		t.Error("expected nil for empty JSON object")
	}
}

func TestExtractDetail_WholeObjectFallback(t *testing.T) {
	detail := ExtractDetail([]byte(`{"status":"failed","reason":"unsupported"}`))
	m, ok := detail.(map[string]any)
	if !ok {
		t.Fatalf("expected map detail, got %T", detail)
	}
	if m["reason"] != "unsupported" {
		t.Errorf("expected whole object as fallback, got %v", m)
	}
}
