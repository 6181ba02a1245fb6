package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFormData is a simple struct for testing the generic form handler.
type testFormData struct {
	ID   string
	Name string
}

// mockFormService implements FormService for testing.
type mockFormService struct {
	createFunc func(ctx context.Context, req testFormData) (any, error)
	updateFunc func(ctx context.Context, id string, req testFormData) (any, error)

	created []testFormData
	updated []string
}

func (m *mockFormService) Create(ctx context.Context, req testFormData) (any, error) {
	m.created = append(m.created, req)
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return "create", nil
}

func (m *mockFormService) Update(ctx context.Context, id string, req testFormData) (any, error) {
	m.updated = append(m.updated, id)
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, req)
	}
	return "update", nil
}

func mockFormParser(data testFormData, errs map[string]string) FormParser[testFormData] {
	return func(*http.Request) (testFormData, map[string]string) {
		return data, errs
	}
}

// recordingRenderer captures the failure handed to the renderer.
type recordingRenderer struct {
	calls   int
	failure FormFailure[testFormData]
}

func (rr *recordingRenderer) render(w http.ResponseWriter, _ *http.Request, f FormFailure[testFormData]) {
	rr.calls++
	rr.failure = f
	_, _ = w.Write([]byte("form rendered"))
}

func formOpts(w http.ResponseWriter, r *http.Request, svc *mockFormService, data testFormData, rr *recordingRenderer) FormHandlerOpts[testFormData] {
	return FormHandlerOpts[testFormData]{
		W:          w,
		R:          r,
		Parser:     mockFormParser(data, nil),
		Service:    svc,
		Renderer:   rr.render,
		SuccessURL: func(res any) string { return "/lease?status=" + res.(string) },
		GetID:      func(_ *http.Request, d testFormData) string { return d.ID },
	}
}

func TestHandleForm_CreateRedirects(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/lease", nil)
	svc := &mockFormService{}
	rr := &recordingRenderer{}

	HandleForm(formOpts(w, r, svc, testFormData{Name: "a"}, rr))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/lease?status=create", w.Header().Get("Location"))
	require.Len(t, svc.created, 1)
	assert.Empty(t, svc.updated)
	assert.Zero(t, rr.calls)
}

func TestHandleForm_IDSelectsUpdate(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/lease", nil)
	r.Header.Set("Hx-Request", "true")
	svc := &mockFormService{}

	HandleForm(formOpts(w, r, svc, testFormData{ID: "7", Name: "a"}, &recordingRenderer{}))

	assert.Equal(t, []string{"7"}, svc.updated)
	assert.Empty(t, svc.created)
	assert.Equal(t, "/lease?status=update", w.Header().Get("Hx-Redirect"))
}

func TestHandleForm_ValidationErrorsSkipService(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/lease", nil)
	svc := &mockFormService{}
	rr := &recordingRenderer{}
	opts := formOpts(w, r, svc, testFormData{Name: ""}, rr)
	opts.Parser = mockFormParser(testFormData{}, map[string]string{"name": "Name is required."})

	HandleForm(opts)

	assert.Empty(t, svc.created)
	assert.Equal(t, 1, rr.calls)
	assert.Equal(t, FormModeCreate, rr.failure.Mode)
	assert.Equal(t, "Name is required.", rr.failure.FieldErrors["name"])
	assert.NoError(t, rr.failure.Err)
}

func TestHandleForm_ServiceErrorIsRendered(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/lease", nil)
	boom := errors.New("api down")
	svc := &mockFormService{updateFunc: func(context.Context, string, testFormData) (any, error) { return nil, boom }}
	rr := &recordingRenderer{}

	HandleForm(formOpts(w, r, svc, testFormData{ID: "9", Name: "kept"}, rr))

	require.Equal(t, 1, rr.calls)
	assert.ErrorIs(t, rr.failure.Err, boom)
	assert.Equal(t, FormModeEdit, rr.failure.Mode)
	assert.Equal(t, "kept", rr.failure.Data.Name)
	assert.Empty(t, w.Header().Get("Location"))
}

func TestHandleForm_HandleErrorMapsFields(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/signup", nil)
	svc := &mockFormService{createFunc: func(context.Context, testFormData) (any, error) {
		return nil, errors.New("email taken")
	}}
	rr := &recordingRenderer{}
	opts := formOpts(w, r, svc, testFormData{Name: "a"}, rr)
	opts.HandleError = func(err error) map[string]string {
		return map[string]string{"email": err.Error()}
	}

	HandleForm(opts)

	assert.Equal(t, map[string]string{"email": "email taken"}, rr.failure.FieldErrors)
	assert.NoError(t, rr.failure.Err)
}

func TestHandleForm_ForcedModeIgnoresID(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/signup", nil)
	svc := &mockFormService{}
	opts := formOpts(w, r, svc, testFormData{ID: "5"}, &recordingRenderer{})
	opts.Mode = FormModeCreate

	HandleForm(opts)

	assert.Len(t, svc.created, 1)
	assert.Empty(t, svc.updated)
}

func TestHandleForm_EditWithoutIDIsNotFound(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/lease", nil)
	svc := &mockFormService{}
	opts := formOpts(w, r, svc, testFormData{}, &recordingRenderer{})
	opts.Mode = FormModeEdit

	HandleForm(opts)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, svc.updated)
}

func TestHandleForm_Misconfigured(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/lease", nil)

	HandleForm(FormHandlerOpts[testFormData]{W: w, R: r})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	opts := formOpts(w, r, &mockFormService{}, testFormData{}, &recordingRenderer{})
	opts.Mode = FormMode("archive")
	HandleForm(opts)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleForm_CanceledRequest(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/lease", nil).WithContext(ctx)
	svc := &mockFormService{createFunc: func(ctx context.Context, _ testFormData) (any, error) {
		return nil, ctx.Err()
	}}
	rr := &recordingRenderer{}

	HandleForm(formOpts(w, r, svc, testFormData{Name: "a"}, rr))

	assert.Equal(t, http.StatusRequestTimeout, w.Code)
	assert.Zero(t, rr.calls)
}
