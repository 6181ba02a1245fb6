package httpx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/ports"
)

const activityRoute = "/activity"

//nolint:gochecknoglobals // static read-only role set
var activityRoles = domainauth.Roles{domainauth.RoleAdmin}

// activityFilter is one option of the resource filter dropdown.
type activityFilter struct {
	Key      string
	Title    string
	Selected bool
}

// activityQuery is the parsed ?resource= filter.
type activityQuery struct {
	Resource string
}

// ActivityLog serves GET /activity?resource=&page=.
func (h *UIHandlers) ActivityLog(w http.ResponseWriter, r *http.Request) {
	HandleList(ListHandlerOpts[ports.ActivityEntry, activityQuery]{
		Handler: h,
		W:       w,
		R:       r,
		Fetcher: func(ctx context.Context, q activityQuery, page int) (ListPage[ports.ActivityEntry], error) {
			result, err := h.Activity.List(ctx, q.Resource, page)
			if err != nil {
				return ListPage[ports.ActivityEntry]{}, err
			}
			return ListPage[ports.ActivityEntry]{Items: result.Entries, Page: result.Page, HasNext: result.HasNext}, nil
		},
		FilterParser: h.parseActivityQuery,
		EnrichData: func(b *TemplateDataBuilder, q activityQuery) {
			b.With("Filters", h.activityFilters(q.Resource)).With("Resource", q.Resource)
		},
		BasePath: activityRoute,
		PageMeta: PageMeta{
			Title:       "Residence Console - Activity",
			PageTitle:   "Activity",
			CurrentPage: PageActivity,
		},
		ItemsKey:         "Entries",
		ServiceAvailable: func() bool { return h.Activity != nil && h.Activity.Enabled() },
		UnavailableData:  func(b *TemplateDataBuilder) { b.With("Disabled", true) },
	})
}

func (h *UIHandlers) parseActivityQuery(q url.Values) (activityQuery, error) {
	key := strings.TrimSpace(q.Get("resource"))
	if key == "" || h.Catalog == nil {
		return activityQuery{Resource: key}, nil
	}
	if _, ok := h.Catalog.Get(key); !ok {
		return activityQuery{}, fmt.Errorf("unknown screen %q", key)
	}
	return activityQuery{Resource: key}, nil
}

func (h *UIHandlers) activityFilters(selected string) []activityFilter {
	if h.Catalog == nil {
		return nil
	}
	defs := h.Catalog.All()
	out := make([]activityFilter, 0, len(defs))
	for _, def := range defs {
		out = append(out, activityFilter{Key: def.Key, Title: def.Title, Selected: def.Key == selected})
	}
	return out
}
