package items

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRequestFailed matches any *RequestFailedError via errors.Is.
var ErrRequestFailed = errors.New("request failed")

const maxMessageBody = 512

// RequestFailedError is returned when the server answers with a non-2xx status.
// Body holds the raw response text; only the message is truncated.
type RequestFailedError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("%s: request failed with status %d: %s", e.Op, e.StatusCode, bodySnippet(e.Body))
}

// Is reports whether target is ErrRequestFailed.
func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

// Retryable reports whether the status is usually transient (408, 429, 5xx).
// The client never retries; this is a hint for callers that do.
func (e *RequestFailedError) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500 && e.StatusCode < 600:
		return true
	default:
		return false
	}
}

// DecodeError is returned when a successful response carries a body that is not
// the expected JSON.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError is returned by AddItem when the item cannot be encoded as JSON.
// No request is sent in that case.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("add item: encode item: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

func bodySnippet(body string) string {
	if len(body) > maxMessageBody {
		body = body[:maxMessageBody]
	}
	return strings.TrimSpace(body)
}
