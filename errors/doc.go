// Package errors defines the gateway error taxonomy and the normalization
// boundary. Four codes cover every failure: VALIDATION_ERROR (400, no
// provider call made), UPSTREAM_PROVIDER_ERROR (a remote provider rejected
// or failed a call), PROCESSING_ERROR (local subprocess or filesystem
// failure), and UNKNOWN_ERROR (unrecognized failure shape). Normalize is the
// only place arbitrary errors are converted to the wire contract.
package errors
