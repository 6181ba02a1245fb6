package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/domain/resource"
	apperrors "github.com/target/residence-console/internal/errors"
	"github.com/target/residence-console/internal/http/ui/viewmodel"
	"github.com/target/residence-console/internal/http/validation"
	"github.com/target/residence-console/internal/ports"
	"github.com/target/residence-console/internal/service"
)

const resourceTableTarget = "resource-table"

// statusMessages are the flash texts shown after the post-redirect-get back to a list.
//
//nolint:gochecknoglobals // static read-only lookup
var statusMessages = map[string]string{
	"create": "%s created.",
	"update": "%s updated.",
	"delete": "%s deleted.",
}

// resourceState is what a list screen renders besides the fetched records.
type resourceState struct {
	Query       string
	Buffer      resource.EditBuffer
	FieldErrors map[string]string
	Err         error
	Flash       string
}

func resourceMeta(def resource.Definition) PageMeta {
	return PageMeta{
		Title:       "Residence Console - " + def.Title,
		PageTitle:   def.Title,
		CurrentPage: PageResource,
	}
}

// ResourceList serves GET {route}: the table, the search box and the create/edit form.
// ?q= filters the table, ?edit={id} pre-fills the form with that record.
func (h *UIHandlers) ResourceList(def resource.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		state := resourceState{
			Query: q.Get("q"),
			Flash: flashFor(def, q.Get("status")),
		}

		res, err := h.Resources.List(r.Context(), def, state.Query)
		if err != nil {
			h.logger().WarnContext(r.Context(), "list fetch failed", "resource", def.Key, "error", err)
			h.renderLoadError(w, r, def, err)
			return
		}

		if editID := strings.TrimSpace(q.Get("edit")); editID != "" {
			if rec, ok := resource.ByID(res.All, editID); ok {
				state.Buffer = resource.BufferFromRecord(def, rec)
			} else {
				state.Err = apperrors.NotFoundf("%s %s not found.", titleWord(def.Singular), editID)
			}
		}

		if IsHTMX(r) && HXTarget(r) == resourceTableTarget {
			if err := h.T.RenderPartial(w, "resource-table", buildTable(def, res)); err != nil {
				h.logAndRenderTemplateError(w, r, err, "table partial render")
			}
			return
		}

		h.renderResource(w, r, def, res, state)
	}
}

// ResourceSubmit serves POST {route}. A non-empty hidden id updates, otherwise it creates.
// Failures keep the typed values in the form.
func (h *UIHandlers) ResourceSubmit(def resource.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		HandleForm(FormHandlerOpts[resource.EditBuffer]{
			W:      w,
			R:      r,
			Parser: resourceFormParser(def),
			Service: resourceFormService{
				svc:   h.Resources,
				def:   def,
				actor: GetSessionFromContext(r.Context()),
			},
			Renderer: h.resourceFormRenderer(def),
			SuccessURL: func(result any) string {
				action, _ := result.(ports.ActivityAction)
				return def.Route + "?status=" + url.QueryEscape(string(action))
			},
			GetID: func(_ *http.Request, buf resource.EditBuffer) string { return buf.ID },
		})
	}
}

func resourceFormParser(def resource.Definition) FormParser[resource.EditBuffer] {
	return func(r *http.Request) (resource.EditBuffer, map[string]string) {
		buf := bufferFromForm(def, r.PostForm)
		policy := validation.SecretsOptional
		if !buf.IsUpdate() {
			policy = validation.SecretsRequired
		}
		return buf, validation.EditBuffer(def, buf, policy)
	}
}

func (h *UIHandlers) resourceFormRenderer(def resource.Definition) FormRenderer[resource.EditBuffer] {
	return func(w http.ResponseWriter, r *http.Request, f FormFailure[resource.EditBuffer]) {
		if f.Err != nil {
			h.logger().WarnContext(r.Context(), "submit failed",
				"resource", def.Key,
				"mode", f.Mode,
				"error", f.Err,
			)
		}
		h.reloadResource(w, r, def, resourceState{
			Query:       r.PostForm.Get("q"),
			Buffer:      f.Data,
			FieldErrors: f.FieldErrors,
			Err:         f.Err,
		})
	}
}

// resourceFormService saves an edit buffer on behalf of the signed-in actor.
type resourceFormService struct {
	svc   ResourcesService
	def   resource.Definition
	actor *domainauth.Session
}

func (s resourceFormService) Create(ctx context.Context, buf resource.EditBuffer) (any, error) {
	buf.ID = ""
	return s.svc.Save(ctx, s.actor, s.def, buf)
}

func (s resourceFormService) Update(ctx context.Context, id string, buf resource.EditBuffer) (any, error) {
	buf.ID = id
	return s.svc.Save(ctx, s.actor, s.def, buf)
}

// ResourceDeleteConfirm serves GET {route}/{id}/delete, the confirmation page for clients
// without the htmx confirm dialog.
func (h *UIHandlers) ResourceDeleteConfirm(def resource.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		builder := h.deleteConfirmData(r, def, id)

		rec, err := h.Resources.Find(r.Context(), def, id)
		if err != nil {
			builder.WithError(processError(err, nil))
		} else {
			builder.With("Record", buildRow(def, rec))
		}
		h.renderPage(w, r, builder.Build())
	}
}

// ResourceDelete serves POST {route}/{id}/delete. Without confirm=yes nothing is sent to
// the API and the confirmation is shown again.
func (h *UIHandlers) ResourceDelete(def resource.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		confirmed := r.PostFormValue("confirm") == "yes"

		err := h.Resources.Delete(r.Context(), GetSessionFromContext(r.Context()), def, id, confirmed)
		switch {
		case errors.Is(err, service.ErrDeleteNotConfirmed):
			h.renderPage(w, r, h.deleteConfirmData(r, def, id).Build())
		case err != nil:
			h.logger().WarnContext(r.Context(), "delete failed", "resource", def.Key, "id", id, "error", err)
			h.reloadResource(w, r, def, resourceState{Err: err})
		default:
			redirectAfterPost(w, r, def.Route+"?status=delete")
		}
	}
}

func (h *UIHandlers) deleteConfirmData(r *http.Request, def resource.Definition, id string) *TemplateDataBuilder {
	return NewTemplateData(r, PageMeta{
		Title:       "Residence Console - Delete " + def.Singular,
		PageTitle:   "Delete " + def.Singular,
		CurrentPage: PageDeleteConfirm,
	}).
		With("Definition", def).
		With("RecordID", id).
		With("Columns", columnLabels(def))
}

// reloadResource re-fetches the list so a failed mutation still shows the Loaded view.
func (h *UIHandlers) reloadResource(w http.ResponseWriter, r *http.Request, def resource.Definition, state resourceState) {
	res, err := h.Resources.List(r.Context(), def, state.Query)
	if err != nil {
		h.renderLoadError(w, r, def, err)
		return
	}
	h.renderResource(w, r, def, res, state)
}

func (h *UIHandlers) renderResource(
	w http.ResponseWriter,
	r *http.Request,
	def resource.Definition,
	res *service.ListResult,
	state resourceState,
) {
	mode := FormModeCreate
	if state.Buffer.IsUpdate() {
		mode = FormModeEdit
	}
	data := map[string]any{
		"Definition": def,
		"Table":      buildTable(def, res),
		"Form":       buildFormFields(def, state.Buffer, state.FieldErrors),
		"EditID":     state.Buffer.ID,
		"Mode":       string(mode),
		"Query":      state.Query,
	}
	if state.Flash != "" {
		data["Flash"] = state.Flash
	}

	if state.Err == nil && len(state.FieldErrors) == 0 {
		builder := NewTemplateData(r, resourceMeta(def))
		for k, v := range data {
			builder.With(k, v)
		}
		h.renderPage(w, r, builder.Build())
		return
	}
	RenderError(ErrorOpts{
		W:           w,
		R:           r,
		Err:         state.Err,
		FieldErrors: state.FieldErrors,
		Renderer:    h.renderPage,
		PageMeta:    resourceMeta(def),
		Data:        data,
	})
}

// renderLoadError shows the Error view: the static fetch message and nothing else.
func (h *UIHandlers) renderLoadError(w http.ResponseWriter, r *http.Request, def resource.Definition, err error) {
	msg := processError(err, nil)
	if IsHTMX(r) && HXTarget(r) == resourceTableTarget {
		triggerToast(w, msg, "error")
		table := viewmodel.Table{Route: def.Route, LoadError: msg}
		if renderErr := h.T.RenderPartial(w, "resource-table", table); renderErr != nil {
			h.logAndRenderTemplateError(w, r, renderErr, "table partial render")
		}
		return
	}
	data := NewTemplateData(r, resourceMeta(def)).
		With("Definition", def).
		With("LoadError", msg).
		Build()
	h.renderPage(w, r, data)
}

func flashFor(def resource.Definition, status string) string {
	tmpl, ok := statusMessages[status]
	if !ok {
		return ""
	}
	return strings.Replace(tmpl, "%s", titleWord(def.Singular), 1)
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func columnLabels(def resource.Definition) []string {
	labels := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		labels = append(labels, c.Label)
	}
	return labels
}

func buildRow(def resource.Definition, rec resource.Record) viewmodel.Row {
	row := viewmodel.Row{ID: rec.ID, Cells: make([]string, 0, len(def.Columns))}
	for _, c := range def.Columns {
		row.Cells = append(row.Cells, rec.Value(c.Key))
	}
	return row
}

func buildTable(def resource.Definition, res *service.ListResult) viewmodel.Table {
	t := viewmodel.Table{
		Route:   def.Route,
		Columns: columnLabels(def),
		Total:   len(res.All),
		Query:   res.Query,
	}
	t.Rows = make([]viewmodel.Row, 0, len(res.Visible))
	for _, rec := range res.Visible {
		t.Rows = append(t.Rows, buildRow(def, rec))
	}
	return t
}

// buildFormFields renders the edit buffer. Secret values are never echoed back.
func buildFormFields(def resource.Definition, buf resource.EditBuffer, errs map[string]string) []viewmodel.FormField {
	out := make([]viewmodel.FormField, 0, len(def.Fields))
	for _, f := range def.Fields {
		ff := viewmodel.FormField{
			Name:      f.Name,
			Label:     f.Label,
			Type:      string(f.Type),
			Required:  f.Required && !(f.Secret() && buf.IsUpdate()),
			MaxLen:    f.MaxLen,
			Error:     errs[f.Name],
			Secret:    f.Secret(),
			Multiline: f.Type == resource.FieldTextArea,
		}
		if !f.Secret() {
			ff.Value = buf.Get(f.Name)
			if f.Type == resource.FieldDate {
				ff.Value = dateInputValue(ff.Value)
			}
		}
		out = append(out, ff)
	}
	return out
}

// dateInputValue trims server timestamps to the YYYY-MM-DD a date input accepts.
func dateInputValue(v string) string {
	if len(v) <= len(time.DateOnly) {
		return v
	}
	if _, err := time.Parse(time.DateOnly, v[:len(time.DateOnly)]); err == nil {
		return v[:len(time.DateOnly)]
	}
	return v
}
