package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/skillsenselab/mediagate/errors"
	"github.com/skillsenselab/mediagate/httpclient"
	"github.com/skillsenselab/mediagate/logger"
	"github.com/skillsenselab/mediagate/process"
	"github.com/skillsenselab/mediagate/util"
	"github.com/skillsenselab/mediagate/validation"
	"github.com/skillsenselab/mediagate/workspace"
)

const (
	defaultResolverBinary  = "yt-dlp"
	defaultResolveTimeout  = 60 * time.Second
	defaultDownloadTimeout = 10 * time.Minute
	defaultTitleFallback   = "media"
)

// Config is the fetch section of the service configuration.
type Config struct {
	// ResolverBinary is the yt-dlp compatible executable used to resolve
	// media metadata. Resolved via PATH when not absolute.
	ResolverBinary string `yaml:"resolver_binary" mapstructure:"resolver_binary"`
	// ResolveTimeout bounds the metadata resolver subprocess.
	ResolveTimeout time.Duration `yaml:"resolve_timeout" mapstructure:"resolve_timeout"`
	// DownloadTimeout bounds the media download stream.
	DownloadTimeout time.Duration `yaml:"download_timeout" mapstructure:"download_timeout"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.ResolverBinary == "" {
		c.ResolverBinary = defaultResolverBinary
	}
	if c.ResolveTimeout <= 0 {
		c.ResolveTimeout = defaultResolveTimeout
	}
	if c.DownloadTimeout <= 0 {
		c.DownloadTimeout = defaultDownloadTimeout
	}
}

// Media is the result of a remote acquisition.
type Media struct {
	// LocalPath is the downloaded file inside the workspace.
	LocalPath string
	// Title is the sanitized media title.
	Title string
}

// Fetcher resolves a remote video URL to a downloadable format and streams
// it into a workspace.
type Fetcher struct {
	cfg    Config
	runner process.Runner
	client *httpclient.Client
	log    *logger.Logger
}

// NewFetcher creates a fetcher. A nil runner falls back to the real
// subprocess adapter; a nil logger falls back to the global logger.
func NewFetcher(cfg Config, runner process.Runner, log *logger.Logger) (*Fetcher, error) {
	cfg.ApplyDefaults()
	if runner == nil {
		runner = process.NewAdapter(process.Config{Timeout: cfg.ResolveTimeout})
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	client, err := httpclient.New(httpclient.Config{Timeout: cfg.DownloadTimeout})
	if err != nil {
		return nil, fmt.Errorf("creating download client: %w", err)
	}

	return &Fetcher{
		cfg:    cfg,
		runner: runner,
		client: client,
		log:    log.WithComponent("acquire"),
	}, nil
}

// Fetch validates rawURL, resolves its metadata, selects the best format
// carrying audio and streams it to a workspace file.
func (f *Fetcher) Fetch(ctx context.Context, ws *workspace.Workspace, rawURL string) (*Media, error) {
	u, err := validation.ValidateURL("videoUrl", rawURL)
	if err != nil {
		return nil, err
	}

	info, err := f.resolve(ctx, u.String())
	if err != nil {
		return nil, err
	}

	format, err := selectFormat(info.Formats)
	if err != nil {
		return nil, err
	}

	title := util.SanitizeTitle(info.Title, defaultTitleFallback)
	ext := format.Ext
	if ext == "" {
		ext = "mp4"
	}
	localPath := ws.Path(title + "." + ext)

	f.log.Debug("downloading media", logger.Fields(
		"title", title,
		"format_id", format.FormatID,
	))

	if err := f.download(ctx, format.URL, localPath); err != nil {
		return nil, err
	}

	return &Media{LocalPath: localPath, Title: title}, nil
}

// mediaInfo is the subset of the resolver's --dump-json output we consume.
type mediaInfo struct {
	Title   string        `json:"title"`
	Formats []mediaFormat `json:"formats"`
}

type mediaFormat struct {
	FormatID string  `json:"format_id"`
	URL      string  `json:"url"`
	Ext      string  `json:"ext"`
	Vcodec   string  `json:"vcodec"`
	Acodec   string  `json:"acodec"`
	ABR      float64 `json:"abr"`
	TBR      float64 `json:"tbr"`
}

func (m mediaFormat) hasAudio() bool {
	return m.Acodec != "" && m.Acodec != "none"
}

func (m mediaFormat) audioOnly() bool {
	return m.hasAudio() && (m.Vcodec == "" || m.Vcodec == "none")
}

func (f *Fetcher) resolve(ctx context.Context, mediaURL string) (*mediaInfo, error) {
	res, err := f.runner.Run(ctx, process.Command{
		Binary: f.cfg.ResolverBinary,
		Args:   []string{"--dump-json", "--no-playlist", mediaURL},
	})
	if err != nil {
		return nil, errors.Processing("failed to run the media resolver").WithCause(err)
	}
	if res.ExitCode != 0 {
		return nil, errors.Processing("media resolver failed").
			WithDetail("stderr", strings.TrimSpace(string(res.Stderr)))
	}

	var info mediaInfo
	if err := json.Unmarshal(res.Stdout, &info); err != nil {
		return nil, errors.Processing("unrecognized media resolver output").WithCause(err)
	}
	return &info, nil
}

// selectFormat prefers the highest-bitrate audio-only format, then the
// highest-bitrate format that carries an audio track.
func selectFormat(formats []mediaFormat) (*mediaFormat, error) {
	var bestAudio, bestMixed *mediaFormat
	for i := range formats {
		fm := &formats[i]
		if fm.URL == "" || !fm.hasAudio() {
			continue
		}
		if fm.audioOnly() {
			if bestAudio == nil || fm.ABR > bestAudio.ABR {
				bestAudio = fm
			}
			continue
		}
		if bestMixed == nil || fm.TBR > bestMixed.TBR {
			bestMixed = fm
		}
	}

	if bestAudio != nil {
		return bestAudio, nil
	}
	if bestMixed != nil {
		return bestMixed, nil
	}
	return nil, errors.Processing("no downloadable format with an audio track")
}

func (f *Fetcher) download(ctx context.Context, srcURL, dst string) error {
	// DoStream leaves cancellation to the context, so the configured bound
	// has to become a deadline here or a stalled stream hangs the request.
	ctx, cancel := context.WithTimeout(ctx, f.cfg.DownloadTimeout)
	defer cancel()

	stream, err := f.client.DoStream(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   srcURL,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating media file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, stream.Body); err != nil {
		return fmt.Errorf("downloading media: %w", err)
	}
	return nil
}
