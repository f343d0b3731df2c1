// Package extract produces an mp3 audio track from a local video file by
// driving an ffmpeg subprocess.
package extract

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/skillsenselab/mediagate/errors"
	"github.com/skillsenselab/mediagate/logger"
	"github.com/skillsenselab/mediagate/process"
	"github.com/skillsenselab/mediagate/workspace"
)

const (
	defaultFFmpegBinary = "ffmpeg"
	defaultTimeout      = 10 * time.Minute

	audioBitrate = "128k"
)

// Config is the extract section of the service configuration.
type Config struct {
	// FFmpegBinary is the ffmpeg executable. Resolved via PATH when not absolute.
	FFmpegBinary string `yaml:"ffmpeg_binary" mapstructure:"ffmpeg_binary"`
	// Timeout bounds a single extraction run.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.FFmpegBinary == "" {
		c.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Extractor converts video files to mp3 audio.
type Extractor struct {
	cfg    Config
	runner process.Runner
	log    *logger.Logger
}

// NewExtractor creates an extractor. A nil runner falls back to the real
// subprocess adapter; a nil logger falls back to the global logger.
func NewExtractor(cfg Config, runner process.Runner, log *logger.Logger) *Extractor {
	cfg.ApplyDefaults()
	if runner == nil {
		runner = process.NewAdapter(process.Config{Timeout: cfg.Timeout})
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Extractor{
		cfg:    cfg,
		runner: runner,
		log:    log.WithComponent("extract"),
	}
}

// Audio strips the video stream from inputPath and writes a 128kbit mp3,
// with source metadata dropped, to a fresh file in the workspace.
// Returns the output path.
func (e *Extractor) Audio(ctx context.Context, ws *workspace.Workspace, inputPath string) (string, error) {
	outputPath := ws.Path(outputName())

	res, err := e.runner.Run(ctx, process.Command{
		Binary: e.cfg.FFmpegBinary,
		Args: []string{
			"-i", inputPath,
			"-vn",
			"-c:a", "libmp3lame",
			"-b:a", audioBitrate,
			"-map_metadata", "-1",
			"-y",
			outputPath,
		},
	})
	if err != nil {
		return "", errors.Processing("failed to run audio extraction").WithCause(err)
	}
	if res.ExitCode != 0 {
		return "", errors.Processing("audio extraction failed").
			WithDetail("stderr", tail(string(res.Stderr))).
			WithDetail("exit_code", res.ExitCode)
	}

	e.log.Debug("audio extracted", logger.Fields(
		"output", outputPath,
		logger.FieldDuration, res.Duration.Milliseconds(),
	))
	return outputPath, nil
}

// outputName builds a collision-free file name. The timestamp and random
// suffix keep sibling workspaces from ever colliding on shared storage.
func outputName() string {
	return fmt.Sprintf("audio-%d-%04d.mp3", time.Now().UnixNano(), rand.Intn(10000))
}

// tail keeps the last few lines of ffmpeg's stderr, which is where the
// actionable diagnostic ends up.
func tail(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) <= 5 {
		return s
	}
	return strings.Join(lines[len(lines)-5:], "\n")
}
