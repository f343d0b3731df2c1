package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/skillsenselab/mediagate/httpclient"
)

// Normalize flattens any error into the single AppError shape crossing the
// system boundary. Typed errors pass through untouched; transport errors from
// the HTTP client become upstream errors with the most specific detail the
// provider response offers; anything else becomes an UNKNOWN_ERROR carrying
// the raw error text as a detail.
func Normalize(err error) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	var httpErr *httpclient.Error
	if stderrors.As(err, &httpErr) {
		return normalizeHTTPError(httpErr)
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code: ErrCodeUpstream, Message: "The request to an upstream provider timed out",
			HTTPStatus: http.StatusInternalServerError, Retryable: true,
			Cause: err,
		}
	}

	return Unknown(err).WithDetail("error", err.Error())
}

// normalizeHTTPError maps a transport-level error to an upstream AppError,
// extracting provider detail from the response body when one is present.
func normalizeHTTPError(httpErr *httpclient.Error) *AppError {
	appErr := &AppError{
		Code: ErrCodeUpstream, Message: httpErr.Message,
		HTTPStatus: http.StatusInternalServerError, Retryable: httpErr.Retryable,
		Cause: httpErr,
	}
	if httpErr.StatusCode > 0 {
		appErr.WithDetail("upstream_status", httpErr.StatusCode)
	}
	if detail := ExtractDetail(httpErr.Body); detail != nil {
		appErr.WithDetail("response", detail)
	}
	return appErr
}

// ExtractDetail probes a provider response body for the most specific
// payload: a nested "data" object first, then a nested "error" value, then
// the decoded body itself. Returns nil for empty or non-JSON bodies that
// decode to nothing useful.
func ExtractDetail(body []byte) any {
	if len(body) == 0 {
		return nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return string(body)
	}

	if data, ok := decoded["data"]; ok && data != nil {
		return data
	}
	if errVal, ok := decoded["error"]; ok && errVal != nil {
		return errVal
	}
	if len(decoded) > 0 {
		return decoded
	}
	return nil
}
