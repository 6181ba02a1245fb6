package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/target/residence-console/internal/errors"
)

const (
	errMsgFixBelow = "Please fix the errors below."
	errMsgGeneric  = "An error occurred. Please try again."
)

// ErrorRenderer is a function that renders a page with the given data.
type ErrorRenderer func(w http.ResponseWriter, r *http.Request, data any)

// ErrorOpts contains all options needed to render an error response.
type ErrorOpts struct {
	W http.ResponseWriter
	R *http.Request
	// Err is the error that occurred (optional when only field errors are present)
	Err error
	// FieldErrors maps field name to message
	FieldErrors map[string]string
	Renderer    ErrorRenderer
	PageMeta    PageMeta
	// Data carries additional template data such as the kept edit buffer.
	Data map[string]any
	// StatusCode defaults to 200 so htmx swaps the response.
	StatusCode int
	ShowToast  bool
}

// userMessage is implemented by REST client errors ("Failed to fetch users").
type userMessage interface {
	Message() string
}

// RenderError renders a page carrying a general error banner and field errors.
func RenderError(opts ErrorOpts) {
	if opts.Renderer == nil {
		http.Error(opts.W, "misconfigured error renderer", http.StatusInternalServerError)
		return
	}

	builder := NewTemplateData(opts.R, opts.PageMeta)
	for k, v := range opts.Data {
		builder.With(k, v)
	}

	generalError := processError(opts.Err, &opts.FieldErrors)
	builder.WithFieldErrors(opts.FieldErrors)

	switch {
	case generalError != "":
		builder.WithError(generalError)
	case len(opts.FieldErrors) > 0:
		builder.WithError(errMsgFixBelow)
	}

	if opts.ShowToast && generalError != "" {
		triggerToast(opts.W, generalError, "error")
	}

	if opts.StatusCode != 0 {
		opts.W.WriteHeader(opts.StatusCode)
	}

	opts.Renderer(opts.W, opts.R, builder.Build())
}

// processError returns the banner text for err and adds a field error when the
// error names one. Returns empty string if err is nil.
func processError(err error, fieldErrors *map[string]string) string {
	if err == nil {
		return ""
	}

	var um userMessage
	if errors.As(err, &um) {
		return um.Message()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out. Please try again."
	}
	if errors.Is(err, context.Canceled) {
		return "Request was canceled."
	}

	err = apperrors.MapDBError(err)
	if field := apperrors.GetField(err); field != "" && fieldErrors != nil {
		if *fieldErrors == nil {
			*fieldErrors = make(map[string]string)
		}
		(*fieldErrors)[field] = apperrors.UserMessage(err, "This field has an invalid value.")
		return errMsgFixBelow
	}

	return apperrors.UserMessage(err, errMsgGeneric)
}

// triggerToast sends a standardized HX-Trigger payload for toast notifications.
func triggerToast(w http.ResponseWriter, message, toastType string) {
	if w == nil || message == "" {
		return
	}
	HTMX(w).Trigger("showToast", map[string]any{
		"message": message,
		"type":    toastType,
	})
}
