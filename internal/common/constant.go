// Package common contains constants and helpers shared across the client.
package common

const (
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "
	// RequestIDHeaderName correlates client log lines with backend requests.
	RequestIDHeaderName = "X-Request-Id"
)
