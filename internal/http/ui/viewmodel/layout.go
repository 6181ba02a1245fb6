package viewmodel

// User represents the authenticated user context exposed to templates.
type User struct {
	Name  string
	Email string
	Role  string
}

// NavItem is one navbar link.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	User            *User
	Nav             []NavItem
}

// LayoutProvider exposes layout metadata for renderer utilities.
type LayoutProvider interface {
	LayoutData() *Layout
}
