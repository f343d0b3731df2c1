// Package transcription defines the provider interface and common types for
// speech-to-text backends.
package transcription

import "context"

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string `json:"audio_path"`
	// Language is the expected language of the audio (e.g. "en").
	Language string `json:"language,omitempty"`
	// Model is the transcription model to use.
	Model string `json:"model,omitempty"`
}

// Response holds the result of a transcription call.
type Response struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Language is the detected or specified language, if reported.
	Language string `json:"language,omitempty"`
}

// Provider is the interface that transcription backends must implement.
// Implementations are stateless and safe for concurrent use.
type Provider interface {
	// Name identifies the backend (e.g. "whisper").
	Name() string

	// IsAvailable reports whether the backend is reachable.
	IsAvailable(ctx context.Context) bool

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}
