package httpx

import (
	"context"
	"net/http"
	"net/url"
)

// FilterParser is a function type for parsing URL query parameters into filter data.
// The error lets the handler show a validation message for invalid filter params.
type FilterParser[F any] func(url.Values) (F, error)

// ListPage is one page of items as returned by a PageFetcher.
type ListPage[T any] struct {
	Items   []T
	Page    int
	HasNext bool
}

// PageFetcher fetches one page of items with filters applied. Pages start at 1.
type PageFetcher[T any, F any] func(ctx context.Context, filters F, page int) (ListPage[T], error)

// DataEnricher adds screen-specific data. It runs on every render, including errors,
// so filter controls stay on screen.
type DataEnricher[F any] func(builder *TemplateDataBuilder, filters F)

// ListHandlerOpts contains all options needed for the generic list handler.
type ListHandlerOpts[T any, F any] struct {
	Handler *UIHandlers
	W       http.ResponseWriter
	R       *http.Request
	Fetcher PageFetcher[T, F]
	// FilterParser is optional; without it F stays the zero value.
	FilterParser FilterParser[F]
	EnrichData   DataEnricher[F]
	// BasePath is the base URL path for pagination links (e.g. "/activity").
	BasePath string
	PageMeta PageMeta
	// ItemsKey is the template data key for the items (e.g. "Entries").
	ItemsKey string
	// ErrorMessage replaces the processed fetch error when set.
	ErrorMessage string
	// ServiceAvailable should return true when the backing store is ready.
	// When it returns false, HandleList renders the unavailable view.
	ServiceAvailable func() bool
	// UnavailableData lets handlers mark the unavailable view.
	UnavailableData func(builder *TemplateDataBuilder)
}

// HandleList renders a paged, filtered list consistently.
//
//	HandleList(ListHandlerOpts[ports.ActivityEntry, activityQuery]{
//	    Handler:      h,
//	    W:            w,
//	    R:            r,
//	    Fetcher:      h.fetchActivity,
//	    FilterParser: h.parseActivityQuery,
//	    BasePath:     "/activity",
//	    ItemsKey:     "Entries",
//	})
func HandleList[T, F any](opts ListHandlerOpts[T, F]) {
	if !validateListHandlerDeps(opts) {
		return
	}

	var filters F
	if opts.ServiceAvailable != nil && !opts.ServiceAvailable() {
		builder := opts.newBuilder(filters)
		if opts.UnavailableData != nil {
			opts.UnavailableData(builder)
		}
		opts.render(builder)
		return
	}

	query := opts.R.URL.Query()
	if opts.FilterParser != nil {
		var err error
		if filters, err = opts.FilterParser(query); err != nil {
			opts.render(opts.newBuilder(filters).WithError("Invalid filter parameters: " + err.Error()))
			return
		}
	}

	page := parseIntQuery(opts.R, "page", 1)
	if page < 1 {
		page = 1
	}
	result, err := opts.Fetcher(opts.R.Context(), filters, page)
	if err != nil {
		opts.Handler.logger().ErrorContext(opts.R.Context(), "list fetch failed", "path", opts.BasePath, "error", err)
		msg := opts.ErrorMessage
		if msg == "" {
			msg = processError(err, nil)
		}
		opts.render(opts.newBuilder(filters).WithError(msg))
		return
	}

	if result.Page < 1 {
		result.Page = page
	}
	builder := opts.newBuilder(filters).WithPagination(result.Page, result.HasNext, opts.BasePath)
	if opts.ItemsKey != "" {
		builder.With(opts.ItemsKey, result.Items)
	}
	opts.render(builder)
}

func validateListHandlerDeps[T, F any](opts ListHandlerOpts[T, F]) bool {
	if opts.W == nil || opts.R == nil || opts.Handler == nil || opts.Fetcher == nil {
		if opts.W != nil {
			http.Error(opts.W, "Internal configuration error", http.StatusInternalServerError)
		}
		return false
	}
	return true
}

func (lh ListHandlerOpts[T, F]) newBuilder(filters F) *TemplateDataBuilder {
	builder := NewTemplateData(lh.R, lh.PageMeta)
	if lh.EnrichData != nil {
		lh.EnrichData(builder, filters)
	}
	return builder
}

func (lh ListHandlerOpts[T, F]) render(builder *TemplateDataBuilder) {
	lh.Handler.renderPage(lh.W, lh.R, builder.Build())
}
