package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/residence-console/internal/adapters/restapi"
	apperrors "github.com/target/residence-console/internal/errors"
)

func TestProcessError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       string
		wantFields map[string]string
	}{
		{name: "nil", err: nil, want: ""},
		{
			name: "client fetch error",
			err:  &restapi.Error{Op: restapi.OpFetch, Plural: "leases", Status: http.StatusBadGateway},
			want: "Failed to fetch leases",
		},
		{
			name: "client message wins over timeout",
			err:  &restapi.Error{Op: restapi.OpCreate, Singular: "lease", Err: context.DeadlineExceeded},
			want: "Failed to create/update lease",
		},
		{
			name: "wrapped client delete error",
			err:  fmt.Errorf("delete: %w", &restapi.Error{Op: restapi.OpDelete, Singular: "unit"}),
			want: "Failed to delete unit",
		},
		{name: "timeout", err: context.DeadlineExceeded, want: "Request timed out. Please try again."},
		{name: "canceled", err: fmt.Errorf("list: %w", context.Canceled), want: "Request was canceled."},
		{
			name:       "field error",
			err:        apperrors.ValidationField("email", "Email is already registered."),
			want:       errMsgFixBelow,
			wantFields: map[string]string{"email": "Email is already registered."},
		},
		{name: "app error message", err: apperrors.NotFound("Lease 9 not found."), want: "Lease 9 not found."},
		{name: "unknown error", err: errors.New("boom"), want: errMsgGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields map[string]string
			got := processError(tt.err, &fields)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestProcessError_UniqueViolationBecomesFieldError(t *testing.T) {
	err := &pgconn.PgError{
		Code:   pgerrcode.UniqueViolation,
		Detail: "Key (email)=(a@b.c) already exists.",
	}
	var fields map[string]string

	got := processError(err, &fields)

	assert.Equal(t, errMsgFixBelow, got)
	assert.Equal(t, map[string]string{"email": "This value already exists."}, fields)
}

func TestProcessError_NilFieldMap(t *testing.T) {
	got := processError(apperrors.ValidationField("email", "bad"), nil)
	assert.Equal(t, "bad", got)
}

// captureRenderer records the data handed to the page renderer.
type captureRenderer struct {
	data map[string]any
}

func (c *captureRenderer) render(w http.ResponseWriter, _ *http.Request, data any) {
	c.data, _ = data.(map[string]any)
	w.WriteHeader(http.StatusOK)
}

func TestRenderError_FieldErrorsOnly(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/lease", nil)
	cr := &captureRenderer{}

	RenderError(ErrorOpts{
		W:           rec,
		R:           r,
		FieldErrors: map[string]string{"startDate": "Start date is required."},
		Renderer:    cr.render,
		PageMeta:    PageMeta{Title: "Leases", CurrentPage: PageResource},
		Data:        map[string]any{"Query": "ana"},
	})

	require.NotNil(t, cr.data)
	assert.Equal(t, errMsgFixBelow, cr.data["ErrorMessage"])
	assert.Equal(t, map[string]string{"startDate": "Start date is required."}, cr.data["Errors"])
	assert.Equal(t, "ana", cr.data["Query"])
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRenderError_GeneralErrorWithToast(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/lease", nil)
	cr := &captureRenderer{}

	RenderError(ErrorOpts{
		W:          rec,
		R:          r,
		Err:        &restapi.Error{Op: restapi.OpUpdate, Singular: "lease", Status: http.StatusConflict},
		Renderer:   cr.render,
		StatusCode: http.StatusBadGateway,
		ShowToast:  true,
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to create/update lease", cr.data["ErrorMessage"])

	var trigger map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &trigger))
	assert.Equal(t, "Failed to create/update lease", trigger["showToast"]["message"])
	assert.Equal(t, "error", trigger["showToast"]["type"])
}

func TestRenderError_NoRenderer(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderError(ErrorOpts{W: rec, R: httptest.NewRequest(http.MethodGet, "/", nil), Err: errors.New("x")})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTriggerToast_IgnoresEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	triggerToast(rec, "", "error")
	triggerToast(nil, "x", "error")
	assert.Empty(t, rec.Header().Get("HX-Trigger"))
}
