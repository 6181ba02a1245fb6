package httpx

import (
	"context"
	"errors"
	"net/http"
)

// FormParser parses form data from an HTTP request and returns the parsed data
// along with any field-level validation errors.
type FormParser[T any] func(r *http.Request) (T, map[string]string)

// FormService defines the interface for services that support Create and Update operations.
// The returned value is handed to SuccessURL.
type FormService[T any] interface {
	Create(ctx context.Context, data T) (any, error)
	Update(ctx context.Context, id string, data T) (any, error)
}

// FormFailure is what a FormRenderer shows after a rejected submit.
// Exactly one of FieldErrors and Err is usually set.
type FormFailure[T any] struct {
	Mode        FormMode
	Data        T
	FieldErrors map[string]string
	Err         error
}

// FormRenderer re-renders the form screen with the typed values kept.
type FormRenderer[T any] func(w http.ResponseWriter, r *http.Request, failure FormFailure[T])

// ErrorHandler turns a service error into field errors. Returning nil leaves the
// error for the banner.
type ErrorHandler func(err error) map[string]string

// FormHandlerOpts contains all options needed to handle a form submission.
type FormHandlerOpts[T any] struct {
	W        http.ResponseWriter
	R        *http.Request
	Parser   FormParser[T]
	Service  FormService[T]
	Renderer FormRenderer[T]
	// SuccessURL builds the redirect target from the service result.
	SuccessURL func(result any) string
	// Mode forces create or edit. Empty derives it from GetID.
	Mode FormMode
	// GetID extracts the record id from the parsed data (defaults to r.PathValue("id")).
	GetID func(r *http.Request, data T) string
	// HandleError maps domain errors onto fields. Optional.
	HandleError ErrorHandler
}

// HandleForm runs parse, validate, create-or-update and the post-redirect-get.
//
//	HandleForm(FormHandlerOpts[resource.EditBuffer]{
//	    W: w, R: r,
//	    Parser:     h.resourceFormParser(def),
//	    Service:    resourceFormService{...},
//	    Renderer:   h.resourceFormRenderer(def),
//	    SuccessURL: func(res any) string { return def.Route + "?status=create" },
//	    GetID:      func(_ *http.Request, buf resource.EditBuffer) string { return buf.ID },
//	})
func HandleForm[T any](opts FormHandlerOpts[T]) {
	if !validateFormOptions(opts) {
		return
	}

	data, fieldErrors := opts.Parser(opts.R)
	id := getFormID(opts, data)
	mode := formMode(opts.Mode, id)
	if mode == FormModeEdit && id == "" {
		http.NotFound(opts.W, opts.R)
		return
	}

	if len(fieldErrors) > 0 {
		opts.Renderer(opts.W, opts.R, FormFailure[T]{Mode: mode, Data: data, FieldErrors: fieldErrors})
		return
	}

	result, err := executeFormOperation(opts, mode, id, data)
	if err != nil {
		handleFormServiceError(opts, mode, err, data)
		return
	}

	target := "/"
	if opts.SuccessURL != nil {
		target = opts.SuccessURL(result)
	}
	redirectAfterPost(opts.W, opts.R, target)
}

func validateFormOptions[T any](opts FormHandlerOpts[T]) bool {
	if opts.W == nil || opts.R == nil {
		return false
	}
	if opts.Parser == nil || opts.Service == nil || opts.Renderer == nil {
		http.Error(opts.W, "misconfigured form handler", http.StatusInternalServerError)
		return false
	}
	switch opts.Mode {
	case "", FormModeEdit, FormModeCreate:
		return true
	default:
		http.Error(opts.W, "invalid form mode", http.StatusBadRequest)
		return false
	}
}

func formMode(forced FormMode, id string) FormMode {
	if forced != "" {
		return forced
	}
	if id != "" {
		return FormModeEdit
	}
	return FormModeCreate
}

func getFormID[T any](opts FormHandlerOpts[T], data T) string {
	if opts.GetID != nil {
		return opts.GetID(opts.R, data)
	}
	return opts.R.PathValue("id")
}

func executeFormOperation[T any](opts FormHandlerOpts[T], mode FormMode, id string, data T) (any, error) {
	if mode == FormModeEdit {
		return opts.Service.Update(opts.R.Context(), id, data)
	}
	return opts.Service.Create(opts.R.Context(), data)
}

func handleFormServiceError[T any](opts FormHandlerOpts[T], mode FormMode, err error, data T) {
	// The browser went away; nobody reads the re-rendered form.
	if ctxErr := opts.R.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		http.Error(opts.W, "request canceled", http.StatusRequestTimeout)
		return
	}

	if opts.HandleError != nil {
		if fieldErrors := opts.HandleError(err); len(fieldErrors) > 0 {
			opts.Renderer(opts.W, opts.R, FormFailure[T]{Mode: mode, Data: data, FieldErrors: fieldErrors})
			return
		}
	}
	opts.Renderer(opts.W, opts.R, FormFailure[T]{Mode: mode, Data: data, Err: err})
}
