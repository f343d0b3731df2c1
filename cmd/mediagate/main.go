// mediagate is a request-scoped media and document conversion gateway. It
// turns uploaded or remote videos into transcripts and documents into other
// formats through external providers, holding no state between requests.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/mediagate/acquire"
	"github.com/skillsenselab/mediagate/auth"
	"github.com/skillsenselab/mediagate/conversion"
	"github.com/skillsenselab/mediagate/extract"
	"github.com/skillsenselab/mediagate/gateway"
	"github.com/skillsenselab/mediagate/logger"
	"github.com/skillsenselab/mediagate/observability"
	"github.com/skillsenselab/mediagate/server"
	"github.com/skillsenselab/mediagate/server/endpoint"
	"github.com/skillsenselab/mediagate/transcription"
	"github.com/skillsenselab/mediagate/transcription/whisper"
	"github.com/skillsenselab/mediagate/version"
	"github.com/skillsenselab/mediagate/workspace"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := gateway.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", logger.Fields("error", err.Error()))
	}

	logger.Init(cfg.Logging)
	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	log.Info("starting service", logger.Fields(
		"version", version.GetShortVersion(),
		"environment", cfg.Environment,
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("service failed", logger.Fields("error", err.Error()))
	}
}

func run(ctx context.Context, cfg *gateway.Config, log *logger.Logger) error {
	providers, err := observability.Setup(ctx, cfg.Observability, cfg.Name, version.Version, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		providers.Shutdown(shutdownCtx)
	}()

	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		metrics, err = observability.NewMetrics(observability.Meter(cfg.Name))
		if err != nil {
			return err
		}
	}

	fetcher, err := acquire.NewFetcher(cfg.Fetch, nil, log)
	if err != nil {
		return err
	}
	transcriber, err := whisper.New(cfg.Whisper, log)
	if err != nil {
		return err
	}
	converter, err := conversion.NewConverter(cfg.Convert, log)
	if err != nil {
		return err
	}
	var authSvc *auth.Service
	if cfg.Auth.Enabled {
		if authSvc, err = auth.NewService(cfg.Auth); err != nil {
			return err
		}
	}

	srv := server.New(cfg.Server, log)
	srv.RegisterDefaultEndpoints(cfg.Name, healthChecks(transcriber))

	gateway.NewHandler(cfg, gateway.Deps{
		Workspaces:  workspace.NewManager(cfg.Workspace, log),
		Fetcher:     fetcher,
		Extractor:   extract.NewExtractor(cfg.Extract, nil, log),
		Transcriber: transcriber,
		Converter:   converter,
		Auth:        authSvc,
		Metrics:     metrics,
		Logger:      log,
	}).Register(srv)

	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info("service started", logger.Fields("addr", srv.Addr()))

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// healthChecks reports the transcription provider's reachability. The
// conversion provider has no cheap health probe, so it is not checked here.
func healthChecks(t transcription.Provider) endpoint.HealthChecker {
	return func(ctx context.Context) []endpoint.Check {
		check := endpoint.Check{Name: t.Name(), Status: "ok"}
		if !t.IsAvailable(ctx) {
			check.Status = "unhealthy"
			check.Error = "provider unreachable"
		}
		return []endpoint.Check{check}
	}
}
