package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/residence-console/internal/ports"
)

type testActivityFilter struct {
	Screen string
}

func activityEntries(n int) []ports.ActivityEntry {
	out := make([]ports.ActivityEntry, 0, n)
	for i := range n {
		out = append(out, ports.ActivityEntry{
			Actor:     "actor-" + string(rune('a'+i)) + "@example.com",
			Role:      "admin",
			Resource:  "leases",
			Action:    ports.ActivityCreate,
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Minute),
		})
	}
	return out
}

func listOpts(t *testing.T, w http.ResponseWriter, r *http.Request) ListHandlerOpts[ports.ActivityEntry, testActivityFilter] {
	t.Helper()
	h := CreateUIHandlersForTest(t)
	return ListHandlerOpts[ports.ActivityEntry, testActivityFilter]{
		Handler:  h,
		W:        w,
		R:        r,
		BasePath: activityRoute,
		PageMeta: PageMeta{Title: "Activity", PageTitle: "Activity", CurrentPage: PageActivity},
		ItemsKey: "Entries",
		FilterParser: func(q url.Values) (testActivityFilter, error) {
			if s := q.Get("resource"); s == "bogus" {
				return testActivityFilter{}, errors.New("unknown screen")
			}
			return testActivityFilter{Screen: q.Get("resource")}, nil
		},
	}
}

func TestHandleList_RendersItemsAndPagination(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/activity?page=2&resource=leases", nil)

	var gotFilter testActivityFilter
	var gotPage int
	opts := listOpts(t, w, r)
	opts.Fetcher = func(_ context.Context, f testActivityFilter, page int) (ListPage[ports.ActivityEntry], error) {
		gotFilter, gotPage = f, page
		return ListPage[ports.ActivityEntry]{Items: activityEntries(2), Page: page, HasNext: true}, nil
	}

	HandleList(opts)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testActivityFilter{Screen: "leases"}, gotFilter)
	assert.Equal(t, 2, gotPage)
	body := w.Body.String()
	assert.Contains(t, body, "actor-a@example.com")
	assert.Contains(t, body, "Page 2")
	assert.Contains(t, body, "/activity?page=3&amp;resource=leases")
	assert.Contains(t, body, "/activity?page=1&amp;resource=leases")
}

func TestHandleList_InvalidFilterSkipsFetch(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/activity?resource=bogus", nil)

	called := false
	opts := listOpts(t, w, r)
	opts.Fetcher = func(context.Context, testActivityFilter, int) (ListPage[ports.ActivityEntry], error) {
		called = true
		return ListPage[ports.ActivityEntry]{}, nil
	}

	HandleList(opts)

	assert.False(t, called)
	assert.Contains(t, w.Body.String(), "Invalid filter parameters: unknown screen")
}

func TestHandleList_FetchError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/activity", nil)

	opts := listOpts(t, w, r)
	opts.ErrorMessage = "Unable to load activity."
	opts.Fetcher = func(context.Context, testActivityFilter, int) (ListPage[ports.ActivityEntry], error) {
		return ListPage[ports.ActivityEntry]{}, errors.New("db down")
	}

	HandleList(opts)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Unable to load activity.")
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestHandleList_Unavailable(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/activity", nil)

	opts := listOpts(t, w, r)
	opts.Fetcher = func(context.Context, testActivityFilter, int) (ListPage[ports.ActivityEntry], error) {
		t.Fatal("fetcher must not run when the store is unavailable")
		return ListPage[ports.ActivityEntry]{}, nil
	}
	opts.ServiceAvailable = func() bool { return false }
	opts.UnavailableData = func(b *TemplateDataBuilder) { b.With("Disabled", true) }

	HandleList(opts)

	assert.Contains(t, w.Body.String(), "Activity log disabled.")
}

func TestHandleList_MissingFetcher(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/activity", nil)

	HandleList(ListHandlerOpts[ports.ActivityEntry, struct{}]{Handler: &UIHandlers{}, W: w, R: r})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
