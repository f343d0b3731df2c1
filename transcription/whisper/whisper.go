// Package whisper implements transcription.Provider against a faster-whisper
// style HTTP sidecar.
package whisper

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/skillsenselab/mediagate/errors"
	"github.com/skillsenselab/mediagate/httpclient"
	"github.com/skillsenselab/mediagate/logger"
	"github.com/skillsenselab/mediagate/transcription"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	defaultURL     = "http://localhost:8387"
	defaultModel   = "base"
	defaultTimeout = 120 * time.Second
)

// Config is the whisper section of the service configuration.
type Config struct {
	URL      string        `yaml:"url" mapstructure:"url"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Language string        `yaml:"language" mapstructure:"language"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// APIKey is sent as a bearer token when set. Supplied via WHISPER_API_KEY.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Provider sends audio to the Whisper sidecar over HTTP.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

// New creates a Whisper provider. A nil logger falls back to the global logger.
func New(cfg Config, log *logger.Logger) (*Provider, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	clientCfg := httpclient.Config{
		BaseURL: cfg.URL,
		Timeout: cfg.Timeout,
	}
	if cfg.APIKey != "" {
		clientCfg.Auth = httpclient.BearerAuth(cfg.APIKey)
	}
	client, err := httpclient.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating whisper client: %w", err)
	}

	return &Provider{
		cfg:    cfg,
		client: client,
		log:    log.WithComponent(ProviderName),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/health",
	})
	return err == nil && resp.IsSuccess()
}

// Transcribe uploads the audio file and returns the normalized transcript.
// The file is stat-checked before anything is sent upstream.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	info, err := os.Stat(req.AudioPath)
	if err != nil {
		return nil, errors.Processing("audio file is not readable").WithCause(err)
	}
	if info.Size() == 0 {
		return nil, errors.Processing("audio file is empty")
	}

	audio, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, errors.Processing("audio file is not readable").WithCause(err)
	}
	defer audio.Close()

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	fields := map[string]string{"model": model}
	if lang := req.Language; lang != "" || p.cfg.Language != "" {
		if lang == "" {
			lang = p.cfg.Language
		}
		fields["language"] = lang
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName:   "audio",
				FileName:    filepath.Base(req.AudioPath),
				ContentType: "audio/mpeg",
				Reader:      audio,
			}},
		},
	})
	if err != nil {
		return nil, p.upstreamError(err)
	}

	return parseResponse(resp.Body)
}

// upstreamError surfaces the most specific failure message available: the
// provider response payload first, then the transport-level message.
func (p *Provider) upstreamError(err error) error {
	var httpErr *httpclient.Error
	if stderrors.As(err, &httpErr) {
		appErr := errors.Upstream(ProviderName, httpErr.Message).WithCause(err)
		if detail := errors.ExtractDetail(httpErr.Body); detail != nil {
			if s, ok := detail.(string); ok && s != "" {
				appErr.Message = s
			} else {
				appErr.WithDetail("response", detail)
			}
		}
		if httpErr.StatusCode > 0 {
			appErr.WithDetail("upstream_status", httpErr.StatusCode)
		}
		return appErr
	}
	return errors.Upstream(ProviderName, "").WithCause(err)
}

// parseResponse accepts the two payload shapes the sidecar is known to emit:
// a top-level "text" string or a "data" object wrapping one.
func parseResponse(body []byte) (*transcription.Response, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Processing("unrecognized transcription response shape").WithCause(err)
	}

	language, _ := payload["language"].(string)

	if text, ok := payload["text"].(string); ok {
		return &transcription.Response{Text: text, Language: language}, nil
	}
	if data, ok := payload["data"].(map[string]any); ok {
		if text, ok := data["text"].(string); ok {
			return &transcription.Response{Text: text, Language: language}, nil
		}
	}
	return nil, errors.Processing("unrecognized transcription response shape")
}
