// Package remote invokes the generative agents and deterministic functions
// the pipeline is built from. Call outcomes are carried as values: a failed
// call produces an error result with a classification tag, never a Go error,
// so callers decide what a failure means for the workflow.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
)

// Result status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Class tags a failed call with how it should be handled downstream.
type Class string

const (
	ClassThrottled  Class = "throttled"
	ClassTransient  Class = "transient_service_error"
	ClassDependency Class = "dependency_failed"
	ClassBadRequest Class = "bad_request"
	ClassAuth       Class = "auth_failed"
	ClassNotFound   Class = "not_found"
	ClassUnknown    Class = "unknown"
)

// Retryable reports whether a fresh attempt could plausibly succeed.
func (c Class) Retryable() bool {
	switch c {
	case ClassThrottled, ClassTransient, ClassDependency:
		return true
	}
	return false
}

// Invocation records a side-effecting operation a remote agent reported
// performing while streaming its response.
type Invocation struct {
	Operation string `json:"operation"`
	Target    string `json:"target,omitempty"`
}

// Result is the normalized outcome of one remote call. Generative calls fill
// Completion and Invocations; deterministic calls fill Payload. On error,
// Class says how to treat the failure and Message holds the reason.
type Result struct {
	Status      string          `json:"status"`
	Completion  string          `json:"completion,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Invocations []Invocation    `json:"invocations,omitempty"`
	Class       Class           `json:"class,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// OK reports whether the call succeeded.
func (r *Result) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

// Err converts an error result into a plain error for callers that do not
// act on classifications.
func (r *Result) Err() error {
	if r == nil {
		return fmt.Errorf("remote: no result")
	}
	if r.Status == StatusSuccess {
		return nil
	}
	return fmt.Errorf("%s (%s)", r.Message, r.Class)
}

// Errorf builds a classified error result.
func Errorf(class Class, format string, args ...any) *Result {
	return &Result{Status: StatusError, Class: class, Message: fmt.Sprintf(format, args...)}
}

// Call describes one remote invocation. Ref names the agent or function,
// Session is the correlation identifier (retries carry a suffix), Input is
// the prompt for generative calls, and Payload is the request body for
// deterministic calls.
type Call struct {
	Ref     string
	Session string
	Input   string
	Payload any
}

// Caller is the seam between the workflow engine and remote services.
// Implementations never return a nil result.
type Caller interface {
	Invoke(ctx context.Context, call Call) *Result
}
