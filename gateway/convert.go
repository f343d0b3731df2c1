package gateway

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/mediagate/conversion"
	"github.com/skillsenselab/mediagate/errors"
	"github.com/skillsenselab/mediagate/logger"
	"github.com/skillsenselab/mediagate/observability"
	"github.com/skillsenselab/mediagate/server"
	"github.com/skillsenselab/mediagate/validation"
)

// Convert handles POST /api/convert. The multipart form carries the document
// upload, the targetFormat and an optional inputFileName. The converted
// bytes are served back as an attachment. Invalid input never reaches the
// conversion provider.
func (h *Handler) Convert(c *gin.Context) {
	oc, ctx, span := h.startOperation(c, "convert", observability.SpanConvert)

	targetFormat := c.PostForm("targetFormat")
	if err := validation.New().
		Required("targetFormat", targetFormat).
		Validate(); err != nil {
		h.fail(c, oc, ctx, span, err)
		return
	}
	if !conversion.IsSupported(targetFormat) {
		h.fail(c, oc, ctx, span, errors.InvalidInput("targetFormat", "unsupported target format").
			WithDetail("supported", conversion.SupportedFormats()))
		return
	}

	fh, err := c.FormFile("document")
	if err != nil {
		h.fail(c, oc, ctx, span, errors.MissingField("document"))
		return
	}
	inputFileName := c.PostForm("inputFileName")
	if inputFileName == "" {
		inputFileName = fh.Filename
	}

	src, err := fh.Open()
	if err != nil {
		h.fail(c, oc, ctx, span, errors.Validation("document upload is not readable"))
		return
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		h.fail(c, oc, ctx, span, errors.Validation("document upload is not readable"))
		return
	}

	convertStart := time.Now()
	result, err := h.deps.Converter.Convert(ctx, conversion.Input{
		Data:         data,
		Filename:     inputFileName,
		TargetFormat: targetFormat,
	})
	h.recordStage(ctx, "convert", err, convertStart)
	if err != nil {
		h.fail(c, oc, ctx, span, err)
		return
	}

	h.log.Info("conversion complete", logger.Fields(
		"target_format", targetFormat,
		"filename", result.Filename,
		"size", len(result.Bytes),
	))

	oc.EndOperation(ctx, span, "ok", nil)
	server.RespondAttachment(c, result.Filename, result.MimeType, result.Bytes)
}
