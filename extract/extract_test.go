package extract

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/skillsenselab/mediagate/errors"
	"github.com/skillsenselab/mediagate/process"
	"github.com/skillsenselab/mediagate/workspace"
)

func newTestWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	m := workspace.NewManager(workspace.Config{Root: t.TempDir()}, nil)
	ws, err := m.Create(context.Background())
	if err != nil {
		t.Fatalf("creating workspace: %v", err)
	}
	t.Cleanup(ws.Destroy)
	return ws
}

func TestAudio_FFmpegArgs(t *testing.T) {
	var captured process.Command
	runner := process.RunnerFunc(func(ctx context.Context, cmd process.Command) (*process.Result, error) {
		captured = cmd
		return &process.Result{}, nil
	})
	e := NewExtractor(Config{}, runner, nil)
	ws := newTestWorkspace(t)

	out, err := e.Audio(context.Background(), ws, "/tmp/in/video.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.Binary != "ffmpeg" {
		t.Errorf("expected ffmpeg binary, got %q", captured.Binary)
	}
	args := strings.Join(captured.Args, " ")
	for _, want := range []string{
		"-i /tmp/in/video.mp4",
		"-vn",
		"-c:a libmp3lame",
		"-b:a 128k",
		"-map_metadata -1",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
	if captured.Args[len(captured.Args)-1] != out {
		t.Errorf("expected output path as final arg, got %q", captured.Args[len(captured.Args)-1])
	}
}

func TestAudio_OutputNameInWorkspace(t *testing.T) {
	runner := process.RunnerFunc(func(ctx context.Context, cmd process.Command) (*process.Result, error) {
		return &process.Result{}, nil
	})
	e := NewExtractor(Config{}, runner, nil)
	ws := newTestWorkspace(t)

	out, err := e.Audio(context.Background(), ws, "in.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(out) != ws.Dir() {
		t.Errorf("output %s not inside workspace %s", out, ws.Dir())
	}

	pattern := regexp.MustCompile(`^audio-\d+-\d{4}\.mp3$`)
	if !pattern.MatchString(filepath.Base(out)) {
		t.Errorf("unexpected output name %q", filepath.Base(out))
	}
}

func TestAudio_OutputNamesUnique(t *testing.T) {
	runner := process.RunnerFunc(func(ctx context.Context, cmd process.Command) (*process.Result, error) {
		return &process.Result{}, nil
	})
	e := NewExtractor(Config{}, runner, nil)
	ws := newTestWorkspace(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		out, err := e.Audio(context.Background(), ws, "in.mp4")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[out] {
			t.Fatalf("duplicate output name %q", out)
		}
		seen[out] = true
	}
}

func TestAudio_NonZeroExit(t *testing.T) {
	runner := process.RunnerFunc(func(ctx context.Context, cmd process.Command) (*process.Result, error) {
		return &process.Result{
			ExitCode: 1,
			Stderr:   []byte("in.mp4: Invalid data found when processing input\n"),
		}, nil
	})
	e := NewExtractor(Config{}, runner, nil)

	_, err := e.Audio(context.Background(), newTestWorkspace(t), "in.mp4")
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeProcessing {
		t.Fatalf("expected processing error, got %v", err)
	}
	stderr, _ := appErr.Details["stderr"].(string)
	if !strings.Contains(stderr, "Invalid data found") {
		t.Errorf("expected ffmpeg diagnostic in details, got %v", appErr.Details)
	}
	if appErr.Details["exit_code"] != 1 {
		t.Errorf("expected exit code detail, got %v", appErr.Details["exit_code"])
	}
}

func TestAudio_RunnerError(t *testing.T) {
	runner := process.RunnerFunc(func(ctx context.Context, cmd process.Command) (*process.Result, error) {
		return nil, context.DeadlineExceeded
	})
	e := NewExtractor(Config{}, runner, nil)

	_, err := e.Audio(context.Background(), newTestWorkspace(t), "in.mp4")
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeProcessing {
		t.Errorf("expected processing error, got %v", err)
	}
}

func TestTail(t *testing.T) {
	if got := tail("one line"); got != "one line" {
		t.Errorf("unexpected tail %q", got)
	}

	long := strings.Repeat("noise\n", 10) + "the actual error"
	got := tail(long)
	if !strings.Contains(got, "the actual error") {
		t.Errorf("tail dropped the diagnostic: %q", got)
	}
	if len(strings.Split(got, "\n")) > 5 {
		t.Errorf("tail kept too many lines: %q", got)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.FFmpegBinary != "ffmpeg" {
		t.Errorf("expected ffmpeg default, got %q", cfg.FFmpegBinary)
	}
	if cfg.Timeout != defaultTimeout {
		t.Errorf("expected timeout default, got %v", cfg.Timeout)
	}
}
