package errors

import (
	"context"
	goerrors "errors"
	"net"
	"reflect"
	"strings"
)

// statusCoder is implemented by errors that carry an upstream HTTP status.
type statusCoder interface {
	StatusCode() int
}

// Classify returns a short error class suitable for metric tags:
// timeout, canceled, http_4xx, http_5xx, network, or the innermost error type in snake case.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	}

	var sc statusCoder
	if goerrors.As(err, &sc) {
		switch code := sc.StatusCode(); {
		case code >= 500:
			return "http_5xx"
		case code >= 400:
			return "http_4xx"
		}
	}

	var netErr net.Error
	if goerrors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	return strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
}
