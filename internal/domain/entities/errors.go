package entities

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorKind classifies the immediate cause of a failed operation.
type ErrorKind string

const (
	KindAuthRequired ErrorKind = "auth_required"
	KindNotFound     ErrorKind = "not_found"
	KindNetwork      ErrorKind = "network"
	KindTimeout      ErrorKind = "timeout"
	KindUnknown      ErrorKind = "unknown"
)

// ErrorClass tells the caller what it can do about a failure.
type ErrorClass string

const (
	// ClassRetriable means the caller may retry the whole operation.
	ClassRetriable ErrorClass = "retriable"
	// ClassUserActionable means user intervention is required
	// (e.g. no push-capable remote is configured).
	ClassUserActionable ErrorClass = "user_actionable"
	// ClassFatal marks a programmer or configuration error
	// (e.g. a missing repository id).
	ClassFatal ErrorClass = "fatal"
)

// OpError is the typed error carried across the data access layer. It is
// created at the point of failure with whatever operation context is known
// there, so the final message stays diagnosable after several fallbacks.
type OpError struct {
	Kind   ErrorKind
	Class  ErrorClass
	Op     string
	Remote string
	Branch string
	Path   string
	Err    error
}

func (e *OpError) Error() string {
	parts := make([]string, 0, 4)
	if e.Op != "" {
		parts = append(parts, "op="+e.Op)
	}
	if e.Remote != "" {
		parts = append(parts, "remote="+e.Remote)
	}
	if e.Branch != "" {
		parts = append(parts, "branch="+e.Branch)
	}
	if e.Path != "" {
		parts = append(parts, "path="+e.Path)
	}

	msg := string(e.Kind)
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if len(parts) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (%s)", msg, strings.Join(parts, " "))
}

func (e *OpError) Unwrap() error { return e.Err }

// NewOpError builds an OpError wrapping cause. A zero kind defaults to
// unknown and a zero class to retriable, the safest assumption for callers.
func NewOpError(kind ErrorKind, class ErrorClass, op string, cause error) *OpError {
	if kind == "" {
		kind = KindUnknown
	}
	if class == "" {
		class = ClassRetriable
	}
	return &OpError{Kind: kind, Class: class, Op: op, Err: cause}
}

// WithRemote returns the error with the remote context set.
func (e *OpError) WithRemote(remote string) *OpError {
	e.Remote = remote
	return e
}

// WithBranch returns the error with the branch context set.
func (e *OpError) WithBranch(branch string) *OpError {
	e.Branch = branch
	return e
}

// WithPath returns the error with the path context set.
func (e *OpError) WithPath(path string) *OpError {
	e.Path = path
	return e
}

// KindOf extracts the error kind from err, walking the wrap chain.
// Errors outside the taxonomy report KindUnknown.
func KindOf(err error) ErrorKind {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	return KindUnknown
}

// ClassOf extracts the propagation class from err, walking the wrap chain.
// Errors outside the taxonomy report ClassRetriable.
func ClassOf(err error) ErrorClass {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Class
	}
	return ClassRetriable
}

// MapHTTPStatus maps an HTTP response status to an error kind:
// 401/403 mean the credential was rejected, 404 is a filesystem-like
// not-found, 429 and 5xx are treated as transient network conditions.
func MapHTTPStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuthRequired
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusRequestTimeout:
		return KindTimeout
	case status == http.StatusTooManyRequests || status >= 500:
		return KindNetwork
	default:
		return KindUnknown
	}
}

// MapTransportError maps a transport-level failure (no HTTP status
// available) to an error kind. Deadline expiry is distinct from
// connection or DNS failure.
func MapTransportError(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	return KindNetwork
}
