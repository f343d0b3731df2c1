package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/mediagate/errors"
)

// RespondWithError normalizes err into an AppError and sends the structured
// error envelope with the derived HTTP status.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Normalize(err)
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 response with the given body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondAttachment sends raw bytes as a file download with the given
// content type and attachment filename.
func RespondAttachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
