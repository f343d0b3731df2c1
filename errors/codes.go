package errors

// ErrorCode is a machine-readable error classification.
type ErrorCode string

const (
	// ErrCodeValidation indicates malformed or missing caller input. No
	// provider call was made.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodeUpstream indicates a remote provider rejected or failed a call.
	ErrCodeUpstream ErrorCode = "UPSTREAM_PROVIDER_ERROR"
	// ErrCodeProcessing indicates a local subprocess or filesystem failure.
	ErrCodeProcessing ErrorCode = "PROCESSING_ERROR"
	// ErrCodeUnknown indicates an unrecognized failure shape.
	ErrCodeUnknown ErrorCode = "UNKNOWN_ERROR"
)

// IsRetryableCode reports whether an error code represents a failure the
// caller may reasonably retry. Validation and processing failures are
// deterministic; only upstream provider failures can be transient.
func IsRetryableCode(code ErrorCode) bool {
	return code == ErrCodeUpstream
}
