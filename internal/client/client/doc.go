// Package client is the gateway to the OpenEngram backend. Every other
// component talks to the backend through it.
//
// # Overview
//
// HTTPClient attaches the stored session token as a bearer credential to
// every gated call and classifies the response:
//
//   - no token held          -> ErrUnauthenticated, nothing is sent
//   - 401 Unauthorized       -> session invalidated, navigator sent home, ErrUnauthorized
//   - any other non-2xx      -> *RequestError (matches ErrRequestFailed)
//   - transport failure      -> ErrUnavailable
//
// The 401 rule lives here and nowhere else so that no call site can forget it.
// The unauthenticated auth endpoints (register, login) never trigger it: a
// rejected password is an ordinary *RequestError.
//
// List endpoints that answer with either {"keys": [...]} or a bare array are
// normalised to []models.APIKeyRecord before they leave this package.
//
// No call is retried.
package client
