// Package errs classifies failures of store operations into a small set of
// kinds shared by every caller.
package errs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

type Kind string

const (
	KindNetwork          Kind = "NETWORK_ERROR"
	KindValidation       Kind = "VALIDATION_ERROR"
	KindNotFound         Kind = "NOT_FOUND"
	KindServer           Kind = "SERVER_ERROR"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindConflict         Kind = "CONFLICT"
)

// Error is a classified failure. Status is the HTTP status when a response
// was received, 0 otherwise.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Recoverable is false only for authorization failures.
func (e *Error) Recoverable() bool { return e.Kind != KindPermissionDenied }

// Retryable reports whether the store may succeed on a later attempt.
func (e *Error) Retryable() bool {
	switch e.Status {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindNotFound})
// works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Status == 0 && t.Message == ""
}

// KindOf returns the kind of err, or "" when err is nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return Classify(err).Kind
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindPermissionDenied
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	default:
		return KindServer
	}
}

// FromStatus builds an error from an HTTP response. The message and details
// are taken from an {"error": ..., "details": ...} body when present.
func FromStatus(status int, body []byte) *Error {
	e := &Error{Kind: kindForStatus(status), Status: status}
	var env struct {
		Error   string          `json:"error"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	}
	if json.Unmarshal(body, &env) == nil {
		e.Message = env.Error
		if e.Message == "" {
			e.Message = env.Message
		}
		if len(env.Details) > 0 && string(env.Details) != "null" {
			var d any
			if json.Unmarshal(env.Details, &d) == nil {
				e.Details = d
			}
		}
	}
	if e.Message == "" {
		e.Message = strings.ToLower(http.StatusText(status))
		if e.Message == "" {
			e.Message = fmt.Sprintf("unexpected status %d", status)
		}
	}
	return e
}

// Network wraps a transport failure where no response was received.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "no response from server", Err: err}
}

// Validation reports local structural problems found before any request.
func Validation(msgs []string) *Error {
	msg := "validation failed"
	if len(msgs) > 0 {
		msg = "validation failed: " + strings.Join(msgs, "; ")
	}
	return &Error{Kind: KindValidation, Message: msg, Details: msgs}
}

// Classify converts any error into an *Error. Transport and context errors
// become NETWORK_ERROR; anything unrecognised is a SERVER_ERROR.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindNetwork, Message: err.Error(), Err: err}
	}
	var ue *url.Error
	var ne net.Error
	if errors.As(err, &ue) || errors.As(err, &ne) {
		return Network(err)
	}
	return &Error{Kind: KindServer, Message: err.Error(), Err: err}
}

// Title returns a short human heading for a kind.
func Title(k Kind) string {
	switch k {
	case KindNetwork:
		return "Connection error"
	case KindValidation:
		return "Invalid data"
	case KindNotFound:
		return "Template not found"
	case KindServer:
		return "Server error"
	case KindPermissionDenied:
		return "Access denied"
	case KindConflict:
		return "Edit conflict"
	default:
		return "Error"
	}
}
