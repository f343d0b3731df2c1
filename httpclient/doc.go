// Package httpclient provides the configured HTTP client used for all
// outbound provider calls: the speech-to-text backend, the document
// conversion job API, and remote media downloads. It supports multipart
// uploads, streaming downloads, bearer/API-key auth, and optional retry and
// circuit-breaker wrapping from the resilience package.
package httpclient
