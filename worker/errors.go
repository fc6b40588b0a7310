package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3rciful/shelfbot/core/netutil"
)

// Kind classifies a worker runtime failure by the operation that produced it.
type Kind string

const (
	KindCreate     Kind = "WORKER_CREATE"
	KindCredential Kind = "WORKER_CREDENTIAL"
	KindInvoke     Kind = "WORKER_INVOKE"
	KindDelete     Kind = "WORKER_DELETE"
)

// Error wraps a failed worker runtime call with its operation kind so
// callers can decide whether the session survives the failure.
type Error struct {
	Kind     Kind
	Template string
	WorkerID string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("worker %s %s/%s: %v", opName(e.Kind), e.Template, e.WorkerID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the stable error code used in structured logs.
func (e *Error) Code() string { return string(e.Kind) }

// Retryable reports whether the failure is transient: the worker still
// exists on the runtime side and a later delivery may succeed.
func (e *Error) Retryable() bool {
	if e.Kind == KindCreate {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	return netutil.ShouldRetry(e.Err)
}

// IsKind reports whether err is a worker Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var we *Error
	return errors.As(err, &we) && we.Kind == kind
}

func opName(k Kind) string {
	switch k {
	case KindCreate:
		return "create"
	case KindCredential:
		return "key"
	case KindInvoke:
		return "invoke"
	case KindDelete:
		return "delete"
	}
	return "call"
}
