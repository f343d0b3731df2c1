// Package conversion converts documents through a CloudConvert-style job
// API: a job is created as an import/convert/export task graph, the document
// is uploaded, the job is polled to a terminal status and the exported file
// is downloaded.
package conversion

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/skillsenselab/mediagate/errors"
	"github.com/skillsenselab/mediagate/logger"
)

// Input is one document to convert.
type Input struct {
	// Data is the raw document bytes.
	Data []byte
	// Filename is the original client-supplied file name.
	Filename string
	// TargetFormat is the requested output format (e.g. "pdf").
	TargetFormat string
}

// Result is a completed conversion.
type Result struct {
	// Bytes is the converted document.
	Bytes []byte
	// Filename is the name the result should be served under.
	Filename string
	// MimeType is the Content-Type matching the target format.
	MimeType string
}

// Converter orchestrates conversions against the job API. It is stateless
// and safe for concurrent use.
type Converter struct {
	cfg    Config
	client *client
	log    *logger.Logger
}

// NewConverter creates a converter. A nil logger falls back to the global
// logger.
func NewConverter(cfg Config, log *logger.Logger) (*Converter, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Converter{
		cfg:    cfg,
		client: c,
		log:    log.WithComponent("conversion"),
	}, nil
}

// Convert runs one document through the provider and returns the converted
// bytes. The target format is checked against the supported set before any
// provider call is made.
func (c *Converter) Convert(ctx context.Context, in Input) (*Result, error) {
	format := NormalizeFormat(in.TargetFormat)
	if !IsSupported(format) {
		return nil, errors.InvalidInput("targetFormat", "unsupported target format").
			WithDetail("supported", SupportedFormats())
	}
	if len(in.Data) == 0 {
		return nil, errors.Validation("document is empty")
	}

	created, err := c.client.createJob(ctx, format)
	if err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, errors.Upstream(providerName, "job was created without an id")
	}
	log := c.log.WithFields(logger.Fields(logger.FieldJobID, created.ID))

	importTask := created.findTask(taskImport)
	if importTask == nil || importTask.ID == "" {
		return nil, errors.Upstream(providerName, "job has no import task").
			WithDetail(logger.FieldJobID, created.ID)
	}
	if importTask.Result == nil || importTask.Result.Form == nil || importTask.Result.Form.URL == "" {
		return nil, errors.Upstream(providerName, "import task has no upload form").
			WithDetail(logger.FieldJobID, created.ID)
	}

	if err := c.client.upload(ctx, importTask.Result.Form, in.Filename, in.Data); err != nil {
		return nil, withJobID(err, created.ID)
	}
	log.Debug("document uploaded", logger.Fields("filename", in.Filename))

	final, err := c.wait(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	if final.Status == statusError {
		msg := final.errorMessage()
		if msg == "" {
			return nil, errors.Upstream(providerName, "").
				WithDetail(logger.FieldJobID, created.ID)
		}
		return nil, errors.Upstream(providerName, msg).
			WithDetail(logger.FieldJobID, created.ID)
	}

	file, err := exportedFile(final)
	if err != nil {
		return nil, withJobID(err, created.ID)
	}

	data, err := c.client.download(ctx, file.URL)
	if err != nil {
		return nil, withJobID(err, created.ID)
	}

	filename := file.Filename
	if filename == "" {
		filename = stem(in.Filename) + "." + format
	}

	log.Debug("conversion finished", logger.Fields(
		"filename", filename,
		"size", len(data),
	))
	return &Result{
		Bytes:    data,
		Filename: filename,
		MimeType: MimeType(format),
	}, nil
}

// wait polls the job until it reaches a terminal status or the configured
// wait bound elapses.
func (c *Converter) wait(ctx context.Context, id string) (*job, error) {
	deadline := time.Now().Add(c.cfg.WaitTimeout)
	for {
		j, err := c.client.getJob(ctx, id)
		if err != nil {
			return nil, withJobID(err, id)
		}
		if j.Status == statusFinished || j.Status == statusError {
			return j, nil
		}

		if time.Now().After(deadline) {
			return nil, errors.Upstream(providerName, "timed out waiting for the conversion job").
				WithDetail(logger.FieldJobID, id)
		}
		select {
		case <-ctx.Done():
			return nil, withJobID(errors.Normalize(ctx.Err()), id)
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

// exportedFile requires a finished export task with at least one result file
// carrying a download URL.
func exportedFile(j *job) (*taskFile, error) {
	export := j.findTask(taskExport)
	if export == nil || export.Status != statusFinished {
		return nil, errors.Processing("conversion finished without a completed export task")
	}
	if export.Result == nil || len(export.Result.Files) == 0 {
		return nil, errors.Processing("conversion produced no result files")
	}
	file := &export.Result.Files[0]
	if file.URL == "" {
		return nil, errors.Processing("conversion result has no download url")
	}
	return file, nil
}

// withJobID attaches the job id to a typed error so callers can correlate
// failures with provider-side state.
func withJobID(err error, id string) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.WithDetail(logger.FieldJobID, id)
	}
	return err
}

// stem strips the extension from a filename, falling back to "document".
func stem(name string) string {
	base := filepath.Base(name)
	s := strings.TrimSuffix(base, filepath.Ext(base))
	if s == "" || s == "." {
		return "document"
	}
	return s
}
