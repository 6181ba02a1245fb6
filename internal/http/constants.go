package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageLogin         = "login"
	PageHome          = "home"
	PageSignup        = "signup"
	PageResource      = "resource"
	PageDeleteConfirm = "delete-confirm"
	PageActivity      = "activity"
	PageAccessDenied  = "access-denied"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// FormMode represents the mode of a form (create or edit).
type FormMode string

const (
	FormModeEdit   FormMode = "edit"
	FormModeCreate FormMode = "create"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageLogin:         "login-content",
	PageHome:          "home-content",
	PageSignup:        "signup-content",
	PageResource:      "resource-content",
	PageDeleteConfirm: "delete-confirm-content",
	PageActivity:      "activity-content",
	PageAccessDenied:  "access-denied-content",
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to home-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := ContentTemplateMap()[currentPage]; ok {
		return name
	}
	return "home-content"
}
