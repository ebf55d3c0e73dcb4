// Package middleware provides HTTP middleware for the metrics listener.
//
// It includes:
//   - Request logging in W3C Extended Log Format at debug level
//   - Log injection protection for user-controlled fields
//   - Configurable filtering for health check probes
package middleware
