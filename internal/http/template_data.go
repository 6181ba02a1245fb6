package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/domain/resource"
	"github.com/target/residence-console/internal/http/ui/viewmodel"
)

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
	r    *http.Request
}

// NewTemplateData creates a new TemplateDataBuilder initialized with basePageData.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{
		data: basePageData(r, meta),
		r:    r,
	}
}

// WithPagination adds page-number pagination and builds PrevURL/NextURL from basePath,
// preserving the current query.
func (b *TemplateDataBuilder) WithPagination(page int, hasNext bool, basePath string) *TemplateDataBuilder {
	p := viewmodel.Pagination{Page: page, HasPrev: page > 1, HasNext: hasNext}
	if p.HasPrev {
		p.PrevURL = buildPageURL(basePath, b.r.URL.Query(), page-1)
	}
	if p.HasNext {
		p.NextURL = buildPageURL(basePath, b.r.URL.Query(), page+1)
	}
	b.data["Pagination"] = p
	return b
}

// WithError sets a general error message.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithFieldErrors adds field-level validation errors.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}

// buildLayout constructs shared layout metadata from the request/session context.
func buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
	}

	if session := GetSessionFromContext(r.Context()); session != nil {
		layout.User = &viewmodel.User{
			Name:  session.DisplayName(),
			Email: session.Email,
			Role:  string(session.Role),
		}
		layout.IsAuthenticated = true
	}

	return layout
}

// basePageData constructs the common page data map with user context.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	layout := buildLayout(r, meta)
	data := map[string]any{
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"IsAuthenticated": layout.IsAuthenticated,
		"CSRFToken":       layout.CSRFToken,
	}

	if layout.User != nil {
		data["User"] = layout.User
	}

	return data
}

// buildNav returns the navbar links visible to role. Screens outside the role's
// allowed set are hidden even when access is not enforced.
func buildNav(catalog *resource.Catalog, role domainauth.Role, path string) []viewmodel.NavItem {
	if !role.Valid() {
		return nil
	}
	items := []viewmodel.NavItem{{Label: "Home", Href: "/", Active: path == "/"}}
	if catalog != nil {
		for _, def := range catalog.AllowedFor(role) {
			items = append(items, viewmodel.NavItem{
				Label:  def.Title,
				Href:   def.Route,
				Active: pathWithin(path, def.Route),
			})
		}
	}
	if activityRoles.Allows(role) {
		items = append(items, viewmodel.NavItem{
			Label:  "Activity",
			Href:   activityRoute,
			Active: pathWithin(path, activityRoute),
		})
	}
	return items
}

func pathWithin(path, route string) bool {
	return path == route || strings.HasPrefix(path, route+"/")
}

// buildPageURL returns basePath with page set, preserving other non-empty query params.
func buildPageURL(basePath string, q url.Values, page int) string {
	qq := make(url.Values, len(q))
	for k, v := range q {
		if strings.HasPrefix(k, "hx-") || strings.HasPrefix(k, "hx_") {
			continue
		}
		tmp := make([]string, 0, len(v))
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				tmp = append(tmp, s)
			}
		}
		if len(tmp) > 0 {
			qq[k] = tmp
		}
	}
	qq.Set("page", strconv.Itoa(page))
	return basePath + "?" + qq.Encode()
}
