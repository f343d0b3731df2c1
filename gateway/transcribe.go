package gateway

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/mediagate/acquire"
	"github.com/skillsenselab/mediagate/errors"
	"github.com/skillsenselab/mediagate/logger"
	"github.com/skillsenselab/mediagate/observability"
	"github.com/skillsenselab/mediagate/server"
	"github.com/skillsenselab/mediagate/transcription"
	"github.com/skillsenselab/mediagate/validation"
	"github.com/skillsenselab/mediagate/workspace"
)

// Operation types accepted by the transcribe endpoint.
const (
	opTypeFile = "file"
	opTypeURL  = "url"
)

// TranscribeResponse is the success payload of POST /api/transcribe.
type TranscribeResponse struct {
	Transcription    string `json:"transcription"`
	VideoTitle       string `json:"videoTitle,omitempty"`
	OriginalFileName string `json:"originalFileName,omitempty"`
}

// Transcribe handles POST /api/transcribe. The multipart form carries
// operationType plus either a video upload or a videoUrl. The pipeline runs
// inside a workspace that is destroyed when the request finishes.
func (h *Handler) Transcribe(c *gin.Context) {
	oc, ctx, span := h.startOperation(c, "transcribe", observability.SpanTranscribe)

	opType := c.PostForm("operationType")
	if err := validation.New().
		Required("operationType", opType).
		OneOf("operationType", opType, []string{opTypeFile, opTypeURL}).
		Validate(); err != nil {
		h.fail(c, oc, ctx, span, err)
		return
	}

	ws, err := h.deps.Workspaces.Create(ctx)
	if err != nil {
		h.fail(c, oc, ctx, span, err)
		return
	}
	defer ws.Destroy()

	videoPath, resp, err := h.acquireVideo(ctx, c, ws, opType)
	if err != nil {
		h.fail(c, oc, ctx, span, err)
		return
	}

	extractStart := time.Now()
	audioPath, err := h.deps.Extractor.Audio(ctx, ws, videoPath)
	h.recordStage(ctx, "extract", err, extractStart)
	if err != nil {
		h.fail(c, oc, ctx, span, err)
		return
	}

	transcribeStart := time.Now()
	result, err := h.deps.Transcriber.Transcribe(ctx, transcription.Request{AudioPath: audioPath})
	h.recordStage(ctx, "transcribe", err, transcribeStart)
	if err != nil {
		h.fail(c, oc, ctx, span, err)
		return
	}

	resp.Transcription = result.Text
	h.log.Info("transcription complete", logger.Fields(
		logger.FieldOperation, opType,
		"transcript_chars", len(result.Text),
	))

	oc.EndOperation(ctx, span, "ok", nil)
	server.RespondOK(c, resp)
}

// acquireVideo brings the source video into the workspace, from the uploaded
// form file or by fetching the remote URL, and fills in the response fields
// the chosen path provides.
func (h *Handler) acquireVideo(ctx context.Context, c *gin.Context, ws *workspace.Workspace, opType string) (string, *TranscribeResponse, error) {
	start := time.Now()
	resp := &TranscribeResponse{}

	switch opType {
	case opTypeFile:
		fh, err := c.FormFile("video")
		if err != nil {
			return "", nil, errors.MissingField("video")
		}
		src, err := fh.Open()
		if err != nil {
			h.recordStage(ctx, "acquire", err, start)
			return "", nil, errors.Validation("video upload is not readable")
		}
		defer src.Close()

		path, err := acquire.SaveUpload(ws, fh.Filename, src)
		h.recordStage(ctx, "acquire", err, start)
		if err != nil {
			return "", nil, err
		}
		resp.OriginalFileName = fh.Filename
		return path, resp, nil

	default: // opTypeURL, already validated
		media, err := h.deps.Fetcher.Fetch(ctx, ws, c.PostForm("videoUrl"))
		h.recordStage(ctx, "acquire", err, start)
		if err != nil {
			return "", nil, err
		}
		resp.VideoTitle = media.Title
		return media.LocalPath, resp, nil
	}
}
