package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/target/residence-console/internal/domain/resource"
	apperrors "github.com/target/residence-console/internal/errors"
	"github.com/target/residence-console/internal/http/validation"
)

const msgSignedUp = "Account created. You can sign in now."

// loginForm is the state of the login screen.
type loginForm struct {
	Email string
	Error string
	Flash string
}

// homeCard is one Home tile.
type homeCard struct {
	Title     string
	Route     string
	Count     int
	Available bool
}

// Root serves "/": Home when logged in, Login otherwise.
func (h *UIHandlers) Root(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		form := loginForm{}
		if r.URL.Query().Get("signed_up") == "1" {
			form.Flash = msgSignedUp
		}
		h.renderLogin(w, r, form)
		return
	}

	var cards []homeCard
	if h.Dashboard != nil && h.Catalog != nil {
		for _, c := range h.Dashboard.Cards(r.Context(), h.Catalog.AllowedFor(session.Role)) {
			cards = append(cards, homeCard{
				Title:     c.Definition.Title,
				Route:     c.Definition.Route,
				Count:     c.Count,
				Available: c.Available(),
			})
		}
	}

	data := NewTemplateData(r, PageMeta{
		Title:       "Residence Console - Home",
		PageTitle:   "Home",
		CurrentPage: PageHome,
	}).
		With("Cards", cards).
		With("Greeting", session.DisplayName()).
		With("Role", string(session.Role)).
		Build()
	h.renderPage(w, r, data)
}

func (h *UIHandlers) renderLogin(w http.ResponseWriter, r *http.Request, form loginForm) {
	builder := NewTemplateData(r, PageMeta{
		Title:       "Residence Console - Sign in",
		PageTitle:   "Sign in",
		CurrentPage: PageLogin,
	}).
		With("Email", form.Email).
		With("SupportsCredentials", h.Auth != nil && h.Auth.SupportsCredentials()).
		With("SupportsSSO", h.Auth != nil && h.Auth.SupportsSSO())
	if form.Error != "" {
		builder.WithError(form.Error)
	}
	if form.Flash != "" {
		builder.With("Flash", form.Flash)
	}
	h.renderPage(w, r, builder.Build())
}

func signupMeta() PageMeta {
	return PageMeta{
		Title:       "Residence Console - Sign up",
		PageTitle:   "Sign up",
		CurrentPage: PageSignup,
	}
}

// signupFields are the users fields offered on the public sign up form.
//
//nolint:gochecknoglobals // static read-only list
var signupFields = []string{"firstName", "lastName", "email", "password", "phoneNumber"}

// signupDefinition narrows the users definition to the sign up fields.
func (h *UIHandlers) signupDefinition() (resource.Definition, bool) {
	if h.Catalog == nil {
		return resource.Definition{}, false
	}
	users, ok := h.Catalog.Get(resource.Users)
	if !ok {
		return resource.Definition{}, false
	}
	fields := make([]resource.Field, 0, len(signupFields))
	for _, name := range signupFields {
		if f, found := users.Field(name); found {
			fields = append(fields, f)
		}
	}
	users.Fields = fields
	return users, true
}

// Signup serves GET /signup.
func (h *UIHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	if IsLoggedIn(r.Context()) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	def, ok := h.signupDefinition()
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := NewTemplateData(r, signupMeta()).
		With("Form", buildFormFields(def, resource.EditBuffer{}, nil)).
		Build()
	h.renderPage(w, r, data)
}

// SignupSubmit serves POST /signup: creates the account through the users resource and
// sends the visitor to the login screen.
func (h *UIHandlers) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	def, ok := h.signupDefinition()
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	HandleForm(FormHandlerOpts[resource.EditBuffer]{
		W:    w,
		R:    r,
		Mode: FormModeCreate,
		Parser: func(r *http.Request) (resource.EditBuffer, map[string]string) {
			buf := bufferFromForm(def, r.PostForm)
			buf.ID = ""
			return buf, validation.EditBuffer(def, buf, validation.SecretsRequired)
		},
		Service:    signupFormService{svc: h.Resources, def: def},
		Renderer:   h.signupFormRenderer(def),
		SuccessURL: func(any) string { return "/?signed_up=1" },
		HandleError: func(err error) map[string]string {
			if field := apperrors.GetField(err); field != "" {
				return map[string]string{field: apperrors.UserMessage(err, "This field has an invalid value.")}
			}
			return nil
		},
	})
}

func (h *UIHandlers) signupFormRenderer(def resource.Definition) FormRenderer[resource.EditBuffer] {
	return func(w http.ResponseWriter, r *http.Request, f FormFailure[resource.EditBuffer]) {
		if f.Err != nil {
			h.logger().WarnContext(r.Context(), "sign up failed", "error", f.Err)
		}
		RenderError(ErrorOpts{
			W:           w,
			R:           r,
			Err:         f.Err,
			FieldErrors: f.FieldErrors,
			Renderer:    h.renderPage,
			PageMeta:    signupMeta(),
			Data: map[string]any{
				"Form": buildFormFields(def, f.Data, f.FieldErrors),
			},
		})
	}
}

// signupFormService creates accounts; there is nothing to update from the signup screen.
type signupFormService struct {
	svc ResourcesService
	def resource.Definition
}

func (s signupFormService) Create(ctx context.Context, buf resource.EditBuffer) (any, error) {
	return nil, s.svc.SignUp(ctx, s.def, buf)
}

func (s signupFormService) Update(context.Context, string, resource.EditBuffer) (any, error) {
	return nil, errors.New("accounts cannot be edited from the sign up screen")
}
