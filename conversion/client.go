package conversion

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/skillsenselab/mediagate/errors"
	"github.com/skillsenselab/mediagate/httpclient"
)

const (
	providerName = "cloudconvert"

	defaultBaseURL         = "https://api.cloudconvert.com/v2"
	defaultTimeout         = 30 * time.Second
	defaultTransferTimeout = 5 * time.Minute
	defaultPollInterval    = 3 * time.Second
	defaultWaitTimeout     = 10 * time.Minute
)

// Config is the convert section of the service configuration.
type Config struct {
	// URL is the job API base URL.
	URL string `yaml:"url" mapstructure:"url"`
	// APIKey authenticates job API calls. Supplied via CONVERT_API_KEY.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Timeout bounds a single job API call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// PollInterval is the delay between job status polls.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	// WaitTimeout bounds the whole wait for a job to reach a terminal status.
	WaitTimeout time.Duration `yaml:"wait_timeout" mapstructure:"wait_timeout"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = defaultWaitTimeout
	}
}

// client wraps the two HTTP surfaces of the provider: the authenticated job
// API and the unauthenticated upload/download hosts it hands out.
type client struct {
	api      *httpclient.Client
	transfer *httpclient.Client
}

func newClient(cfg Config) (*client, error) {
	api, err := httpclient.New(httpclient.Config{
		BaseURL:        cfg.URL,
		Timeout:        cfg.Timeout,
		Auth:           httpclient.BearerAuth(cfg.APIKey),
		Retry:          httpclient.DefaultRetryConfig(),
		CircuitBreaker: httpclient.DefaultCircuitBreakerConfig(providerName),
	})
	if err != nil {
		return nil, fmt.Errorf("creating job api client: %w", err)
	}

	// Transfers hit presigned storage URLs: no auth, no retry (the upload
	// body is not replayable across attempts).
	transfer, err := httpclient.New(httpclient.Config{
		Timeout: defaultTransferTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating transfer client: %w", err)
	}

	return &client{api: api, transfer: transfer}, nil
}

// createJob creates the three-task job graph for one conversion.
func (c *client) createJob(ctx context.Context, format string) (*job, error) {
	body := map[string]any{
		"tasks": map[string]any{
			taskImport: map[string]any{
				"operation": "import/upload",
			},
			taskConvert: map[string]any{
				"operation":     "convert",
				"input":         taskImport,
				"output_format": format,
			},
			taskExport: map[string]any{
				"operation": "export/url",
				"input":     taskConvert,
			},
		},
	}

	resp, err := c.api.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/jobs",
		Body:   body,
	})
	if err != nil {
		return nil, upstreamError(err)
	}
	return decodeJob(resp.Body)
}

// getJob fetches the current state of a job.
func (c *client) getJob(ctx context.Context, id string) (*job, error) {
	resp, err := c.api.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/jobs/" + id,
	})
	if err != nil {
		return nil, upstreamError(err)
	}
	return decodeJob(resp.Body)
}

// upload posts the document bytes to the import task's presigned form,
// preserving the original filename.
func (c *client) upload(ctx context.Context, form *uploadForm, filename string, data []byte) error {
	_, err := c.transfer.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   form.URL,
		Body: &httpclient.MultipartBody{
			Fields: form.Parameters,
			Files: []httpclient.FileField{{
				FieldName: "file",
				FileName:  filename,
				Data:      data,
			}},
		},
	})
	if err != nil {
		return upstreamError(err)
	}
	return nil
}

// download fetches a result file and requires a non-empty body.
func (c *client) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.transfer.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   url,
	})
	if err != nil {
		return nil, upstreamError(err)
	}
	if len(resp.Body) == 0 {
		return nil, errors.Processing("converted file download was empty")
	}
	return resp.Body, nil
}

func decodeJob(body []byte) (*job, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Processing("unrecognized conversion job response").WithCause(err)
	}
	return &env.Data, nil
}

// upstreamError surfaces the most specific failure message available from a
// transport error: the provider response payload first, then the
// transport-level message.
func upstreamError(err error) error {
	var httpErr *httpclient.Error
	if stderrors.As(err, &httpErr) {
		appErr := errors.Upstream(providerName, httpErr.Message).WithCause(err)
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
	return errors.Upstream(providerName, "").WithCause(err)
}
