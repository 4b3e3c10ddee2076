package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means a gated call was attempted with no session.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrUnauthorized means the backend rejected the session token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRequestFailed is matched by every *RequestError.
	ErrRequestFailed = errors.New("request failed")
	// ErrUnavailable means the backend could not be reached.
	ErrUnavailable = errors.New("server unavailable")
)

// FallbackMessage is used when a failed response carries no message.
const FallbackMessage = "Request failed"

// RequestError is a non-success response other than 401.
type RequestError struct {
	Status int
	// Message is the server-supplied error or message field, if any.
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error %d", e.Status)
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// Display returns the text to show inline for err: the server message when
// there is one, FallbackMessage for a bare failed response, err.Error()
// otherwise.
func Display(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		if re.Message != "" {
			return re.Message
		}
		return FallbackMessage
	}
	return err.Error()
}
