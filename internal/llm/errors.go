package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies a provider failure.
type Kind string

const (
	// KindConnection covers network failures, 5xx responses, and any
	// otherwise-unclassified error. Transient.
	KindConnection Kind = "connection"

	// KindRateLimit is backend throttling (HTTP 429). Transient.
	KindRateLimit Kind = "rate_limit"

	// KindAuthentication is a bad credential (HTTP 401/403). Never retried.
	KindAuthentication Kind = "authentication"

	// KindInvalidRequest is a malformed payload (HTTP 4xx). Never retried.
	KindInvalidRequest Kind = "invalid_request"
)

// Error is the uniform failure shape returned by every provider client.
type Error struct {
	Kind     Kind
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the failure kind of err, or false when err is not a
// provider error.
func KindOf(err error) (Kind, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind, true
	}
	return "", false
}

// IsRetryable reports whether err is a transient provider failure.
// Errors that are not provider errors at all are treated as transient,
// matching the retry loop's handling of unexpected failures.
func IsRetryable(err error) bool {
	kind, ok := KindOf(err)
	if !ok {
		return true
	}
	return kind == KindConnection || kind == KindRateLimit
}

// classifyStatus maps a non-2xx HTTP response onto the error taxonomy.
func classifyStatus(provider string, status int, body []byte) *Error {
	msg := apiErrorMessage(body, status)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindAuthentication, Provider: provider, Message: "authentication failed: " + msg}
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimit, Provider: provider, Message: "rate limit exceeded: " + msg}
	case status >= 400 && status < 500:
		return &Error{Kind: KindInvalidRequest, Provider: provider, Message: "invalid request: " + msg}
	default:
		return &Error{Kind: KindConnection, Provider: provider, Message: fmt.Sprintf("upstream returned %d: %s", status, msg)}
	}
}

// apiErrorMessage extracts the human-readable message from an error body.
// Both backends nest it under error.message, with an optional error.type.
func apiErrorMessage(body []byte, status int) string {
	if m := gjson.GetBytes(body, "error.message"); m.Exists() {
		if t := gjson.GetBytes(body, "error.type"); t.Exists() && t.String() != "" {
			return t.String() + ": " + m.String()
		}
		return m.String()
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return http.StatusText(status)
	}
	if len(trimmed) > maxErrorBodyLen {
		trimmed = trimmed[:maxErrorBodyLen] + "..."
	}
	return trimmed
}

// maxErrorBodyLen limits raw error bodies in messages to prevent bloat.
const maxErrorBodyLen = 500
