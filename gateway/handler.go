// Package gateway exposes the HTTP surface of the service: the transcription
// and conversion endpoints mounted under /api, with the pipeline
// collaborators injected once at startup.
package gateway

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/mediagate/acquire"
	"github.com/skillsenselab/mediagate/auth"
	"github.com/skillsenselab/mediagate/conversion"
	"github.com/skillsenselab/mediagate/errors"
	"github.com/skillsenselab/mediagate/extract"
	"github.com/skillsenselab/mediagate/logger"
	"github.com/skillsenselab/mediagate/observability"
	"github.com/skillsenselab/mediagate/server"
	"github.com/skillsenselab/mediagate/server/middleware"
	"github.com/skillsenselab/mediagate/transcription"
	"github.com/skillsenselab/mediagate/workspace"
)

// Deps are the collaborators the handlers run the pipelines through. All of
// them are stateless and shared across requests.
type Deps struct {
	Workspaces  *workspace.Manager
	Fetcher     *acquire.Fetcher
	Extractor   *extract.Extractor
	Transcriber transcription.Provider
	Converter   *conversion.Converter
	Auth        *auth.Service
	Metrics     *observability.Metrics
	Logger      *logger.Logger
}

// Handler serves the /api endpoints.
type Handler struct {
	cfg  *Config
	deps Deps
	log  *logger.Logger
}

// NewHandler creates the gateway handler. Metrics and Auth may be nil.
func NewHandler(cfg *Config, deps Deps) *Handler {
	log := deps.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Handler{
		cfg:  cfg,
		deps: deps,
		log:  log.WithComponent("gateway"),
	}
}

// Register mounts the API routes on the server's gin engine. Bearer auth is
// applied to the group when enabled in config.
func (h *Handler) Register(s *server.Server) {
	api := s.GinEngine().Group("/api")
	if h.cfg.Auth.Enabled && h.deps.Auth != nil {
		api.Use(middleware.Auth(middleware.AuthConfig{
			TokenValidator: h.deps.Auth.ValidatorFunc(),
		}))
	}
	api.POST("/transcribe", h.Transcribe)
	api.POST("/convert", h.Convert)
}

// startOperation opens the request-level span and metric context.
func (h *Handler) startOperation(c *gin.Context, operation, spanName string) (*observability.OperationContext, context.Context, trace.Span) {
	oc := observability.NewOperationContext(h.cfg.Name, operation, c.GetHeader("X-Request-Id"), h.deps.Metrics)
	ctx, span := oc.StartSpanForOperation(c.Request.Context(), spanName)
	return oc, ctx, span
}

// fail normalizes err, records it and writes the error response.
func (h *Handler) fail(c *gin.Context, oc *observability.OperationContext, ctx context.Context, span trace.Span, err error) {
	appErr := errors.Normalize(err)
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordError(ctx, string(appErr.Code), "gateway")
	}
	oc.EndOperation(ctx, span, "error", appErr)
	server.RespondWithError(c, appErr)
}

// recordStage emits per-stage pipeline metrics.
func (h *Handler) recordStage(ctx context.Context, stage string, err error, start time.Time) {
	if h.deps.Metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.deps.Metrics.RecordPipelineStage(ctx, stage, status, time.Since(start))
}
