package backoffice

import (
	"context"
	"fmt"
	"net"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrTransport marks failures where no response was received.
	ErrTransport = errors.New("backoffice transport failure")
	// ErrStatus marks non-2xx responses. The concrete error is a *StatusError.
	ErrStatus = errors.New("backoffice status failure")
	// ErrDecode marks success responses whose body could not be decoded.
	ErrDecode = errors.New("backoffice decode failure")
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int    // HTTP status code
	Body       []byte // raw response body
	Message    string // server-provided error or message field, if any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backoffice responded %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backoffice responded %d", e.StatusCode)
}

func newStatusError(code int, body []byte) error {
	return errors.Mark(&StatusError{
		StatusCode: code,
		Body:       body,
		Message:    extractMessage(body),
	}, ErrStatus)
}

// extractMessage returns the "error" field of a JSON body, falling back to "message".
func extractMessage(body []byte) string {
	var fields map[string]any
	if err := jsoniter.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"error", "message"} {
		if value, ok := fields[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

// AsStatusError returns the *StatusError carried by err, if any.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

// Message converts a client error into a short human-readable line.
func Message(err error) string {
	if err == nil {
		return ""
	}

	if statusErr, ok := AsStatusError(err); ok {
		if statusErr.Message != "" {
			return statusErr.Message
		}
		return fmt.Sprintf("Request failed with status code %d", statusErr.StatusCode)
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "Request timed out"
	case errors.Is(err, ErrDecode):
		return "Unexpected response from server"
	case errors.Is(err, ErrTransport):
		return "Network error"
	default:
		return err.Error()
	}
}
