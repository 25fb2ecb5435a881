package remote

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
)

// classifyStatus maps an HTTP status code onto an error class.
func classifyStatus(code int) Class {
	switch {
	case code == http.StatusTooManyRequests:
		return ClassThrottled
	case code == http.StatusBadGateway || code == http.StatusGatewayTimeout:
		return ClassDependency
	case code >= 500:
		return ClassTransient
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ClassAuth
	case code == http.StatusNotFound:
		return ClassNotFound
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return ClassBadRequest
	default:
		return ClassUnknown
	}
}

// classifyErr maps a transport-level error onto an error class. Timeouts and
// network failures are retryable; a canceled context is not.
func classifyErr(err error) Class {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTransient
	case errors.Is(err, context.Canceled):
		return ClassUnknown
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ClassTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassTransient
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ClassTransient
	}
	return ClassUnknown
}

var knownClasses = map[Class]bool{
	ClassThrottled:  true,
	ClassTransient:  true,
	ClassDependency: true,
	ClassBadRequest: true,
	ClassAuth:       true,
	ClassNotFound:   true,
}

// classifyCode maps an error code declared by the gateway onto a class.
func classifyCode(code string) Class {
	if c := Class(code); knownClasses[c] {
		return c
	}
	return ClassUnknown
}
