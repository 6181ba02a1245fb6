package restapi

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against *Error.
var (
	ErrFetch  = errors.New("fetch failed")
	ErrSubmit = errors.New("submit failed")
	ErrDelete = errors.New("delete failed")
)

// Op names the client operation that failed.
type Op string

const (
	OpFetch  Op = "fetch"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Error is returned by every ResourceClient operation.
// Network failures, non-2xx responses and undecodable bodies are not distinguished
// in Message; Status and Err keep the detail for logs.
type Error struct {
	Op       Op
	Singular string
	Plural   string
	Status   int
	Err      error
}

// Message is the generic user-facing text, e.g. "Failed to fetch users".
func (e *Error) Message() string {
	switch e.Op {
	case OpFetch:
		return "Failed to fetch " + e.Plural
	case OpCreate, OpUpdate:
		return "Failed to create/update " + e.Singular
	case OpDelete:
		return "Failed to delete " + e.Singular
	default:
		return "Request failed"
	}
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Message(), e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Message(), e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message(), e.Err)
	default:
		return e.Message()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is maps the operation onto the FetchError/SubmitError/DeleteError taxonomy.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrFetch:
		return e.Op == OpFetch
	case ErrSubmit:
		return e.Op == OpCreate || e.Op == OpUpdate
	case ErrDelete:
		return e.Op == OpDelete
	default:
		return false
	}
}

// UserMessage returns the generic message of a client error, or fallback for anything else.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return fallback
}

// StatusCode returns the upstream HTTP status, or 0 when no response was received.
func (e *Error) StatusCode() int { return e.Status }
