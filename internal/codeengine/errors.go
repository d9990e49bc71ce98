package codeengine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/IBM/go-sdk-core/v5/core"
)

// ErrorKind is the closed set of failure classes surfaced by the client.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindRateLimited     ErrorKind = "rate_limited"
	KindTransport       ErrorKind = "transport"
	KindInvalidArgument ErrorKind = "invalid_argument"
)

// Error is returned by every API method on failure.
type Error struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindForStatus maps an HTTP status to an error kind.
func KindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthenticated
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusBadRequest, http.StatusConflict, http.StatusPreconditionFailed, http.StatusUnprocessableEntity:
		return KindInvalidArgument
	default:
		if status >= 400 && status < 500 {
			return KindInvalidArgument
		}
		return KindTransport
	}
}

func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

func newError(op string, status int, err error) *Error {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	kind := KindTransport
	if status > 0 {
		kind = KindForStatus(status)
	}
	if authFailed(err) {
		kind = KindUnauthenticated
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = KindTransport
	}
	return &Error{Kind: kind, Op: op, StatusCode: status, Message: msg, Err: err}
}

// authStep prefixes every failure of the token exchange that precedes an API
// request. The status attached to such failures is the token service's own.
var authStep, _, _ = strings.Cut(core.ERRORMSG_AUTHENTICATE_ERROR, "%s")

func authFailed(err error) bool {
	if err == nil {
		return false
	}
	var authErr *core.AuthenticationError
	if errors.As(err, &authErr) {
		return true
	}
	return strings.HasPrefix(err.Error(), authStep)
}

func invalidArgument(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, Message: fmt.Sprintf(format, args...)}
}
