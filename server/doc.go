// Package server provides the HTTP server for the gateway: a Gin engine
// mounted on a ServeMux behind the standard middleware stack (recovery,
// request-id, CORS, body-size limit, request logging) with h2c support.
package server
