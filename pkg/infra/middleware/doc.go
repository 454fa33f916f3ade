// Package middleware provides gin-native HTTP middleware: panic recovery,
// request IDs, access logging, CORS, per-client rate limiting and
// Prometheus request metrics.
//
// Error bodies use the same {"response": "..."} shape as the API handlers.
package middleware
