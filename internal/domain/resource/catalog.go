package resource

import (
	"strings"

	"github.com/target/residence-console/internal/domain/auth"
)

// Resource keys.
const (
	Users         = "users"
	Leases        = "leases"
	Maintenance   = "maintenance"
	Residences    = "residences"
	Units         = "units"
	Events        = "events"
	Transactions  = "transactions"
	Notifications = "notifications"
)

var (
	adminOnly        = auth.Roles{auth.RoleAdmin}
	adminAndManagers = auth.Roles{auth.RoleAdmin, auth.RoleManager}
)

// Catalog is the ordered, immutable set of resource definitions served by the console.
type Catalog struct {
	defs []Definition
}

// NewCatalog builds a catalog from definitions, preserving order.
func NewCatalog(defs ...Definition) *Catalog {
	return &Catalog{defs: append([]Definition(nil), defs...)}
}

// All returns every definition in navigation order.
func (c *Catalog) All() []Definition {
	return append([]Definition(nil), c.defs...)
}

// Get returns the definition for key.
func (c *Catalog) Get(key string) (Definition, bool) {
	for _, d := range c.defs {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}

// AllowedFor returns the definitions whose allowed roles include role.
func (c *Catalog) AllowedFor(role auth.Role) []Definition {
	out := make([]Definition, 0, len(c.defs))
	for _, d := range c.defs {
		if d.AllowedRoles.Allows(role) {
			out = append(out, d)
		}
	}
	return out
}

// WithPaths returns a copy of the catalog with REST paths overridden by key.
// Empty overrides are ignored.
func (c *Catalog) WithPaths(paths map[string]string) *Catalog {
	defs := c.All()
	for i := range defs {
		p := strings.TrimSpace(paths[defs[i].Key])
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		defs[i].Path = p
	}
	return &Catalog{defs: defs}
}

// DefaultCatalog returns the eight console screens and their REST collections.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		usersDefinition(),
		leasesDefinition(),
		maintenanceDefinition(),
		residencesDefinition(),
		unitsDefinition(),
		eventsDefinition(),
		transactionsDefinition(),
		notificationsDefinition(),
	)
}

func usersDefinition() Definition {
	return Definition{
		Key:          Users,
		Title:        "Accounts",
		Singular:     "user",
		Plural:       "users",
		Route:        "/account",
		Path:         "/users",
		AllowedRoles: auth.AllRoles,
		Fields: []Field{
			{Name: "firstName", Label: "First name", Type: FieldText, Required: true, MaxLen: 100},
			{Name: "lastName", Label: "Last name", Type: FieldText, Required: true, MaxLen: 100},
			{Name: "email", Label: "Email", Type: FieldEmail, Required: true, MaxLen: 255},
			{Name: "password", Label: "Password", Type: FieldPassword, Required: true, MaxLen: 128},
			{Name: "phoneNumber", Label: "Phone number", Type: FieldText, MaxLen: 32},
			{Name: "address", Label: "Address", Type: FieldText, MaxLen: 255},
			{Name: "dateOfBirth", Label: "Date of birth", Type: FieldDate, MaxLen: 32},
			{Name: "collegeName", Label: "College", Type: FieldText, MaxLen: 255},
			{Name: "studentId", Label: "Student ID", Type: FieldText, MaxLen: 64},
			{Name: "postalCode", Label: "Postal code", Type: FieldText, MaxLen: 16},
		},
		Columns: []Column{
			{Key: "name", Label: "Name", Expr: "join(' ', [firstName || '', lastName || ''])"},
			{Key: "email", Label: "Email"},
			{Key: "phoneNumber", Label: "Phone"},
			{Key: "address", Label: "Address"},
			{Key: "dateOfBirth", Label: "Date of birth"},
			{Key: "collegeName", Label: "College"},
			{Key: "studentId", Label: "Student ID"},
			{Key: "postalCode", Label: "Postal code"},
		},
		SearchKeys: []string{"id", "name", "email"},
	}
}

func leasesDefinition() Definition {
	return Definition{
		Key:          Leases,
		Title:        "Leases",
		Singular:     "lease",
		Plural:       "leases",
		Route:        "/lease",
		Path:         "/leases",
		AllowedRoles: adminAndManagers,
		Fields: []Field{
			{Name: "tenantId", Label: "Tenant ID", Type: FieldText, Required: true, MaxLen: 64},
			{Name: "unitId", Label: "Unit ID", Type: FieldText, Required: true, MaxLen: 64},
			{Name: "startDate", Label: "Start date", Type: FieldDate, Required: true, MaxLen: 32},
			{Name: "endDate", Label: "End date", Type: FieldDate, MaxLen: 32},
			{Name: "monthlyRent", Label: "Monthly rent", Type: FieldNumber, MaxLen: 16},
			{Name: "status", Label: "Status", Type: FieldText, MaxLen: 32},
		},
		Columns: []Column{
			{Key: "tenant", Label: "Tenant", Expr: "tenantName || tenantId"},
			{Key: "unit", Label: "Unit", Expr: "unitNumber || unitId"},
			{Key: "startDate", Label: "Start"},
			{Key: "endDate", Label: "End"},
			{Key: "monthlyRent", Label: "Rent"},
			{Key: "status", Label: "Status"},
		},
		SearchKeys: []string{"id", "tenant", "unit", "status"},
	}
}

func maintenanceDefinition() Definition {
	return Definition{
		Key:          Maintenance,
		Title:        "Maintenance",
		Singular:     "maintenance request",
		Plural:       "maintenance requests",
		Route:        "/maintenance",
		Path:         "/maintenance",
		AllowedRoles: auth.AllRoles,
		Fields: []Field{
			{Name: "unitId", Label: "Unit ID", Type: FieldText, Required: true, MaxLen: 64},
			{Name: "title", Label: "Title", Type: FieldText, Required: true, MaxLen: 200},
			{Name: "description", Label: "Description", Type: FieldTextArea, MaxLen: 4000},
			{Name: "priority", Label: "Priority", Type: FieldText, MaxLen: 16},
			{Name: "status", Label: "Status", Type: FieldText, MaxLen: 32},
		},
		Columns: []Column{
			{Key: "title", Label: "Title"},
			{Key: "unit", Label: "Unit", Expr: "unitNumber || unitId"},
			{Key: "priority", Label: "Priority"},
			{Key: "status", Label: "Status"},
		},
		SearchKeys: []string{"id", "title", "unit", "status"},
	}
}

func residencesDefinition() Definition {
	return Definition{
		Key:          Residences,
		Title:        "Residences",
		Singular:     "residence",
		Plural:       "residences",
		Route:        "/residence",
		Path:         "/residences",
		AllowedRoles: adminOnly,
		Fields: []Field{
			{Name: "name", Label: "Name", Type: FieldText, Required: true, MaxLen: 200},
			{Name: "address", Label: "Address", Type: FieldText, Required: true, MaxLen: 255},
			{Name: "city", Label: "City", Type: FieldText, MaxLen: 100},
			{Name: "postalCode", Label: "Postal code", Type: FieldText, MaxLen: 16},
			{Name: "totalUnits", Label: "Total units", Type: FieldNumber, MaxLen: 8},
		},
		Columns: []Column{
			{Key: "name", Label: "Name"},
			{Key: "address", Label: "Address"},
			{Key: "city", Label: "City"},
			{Key: "postalCode", Label: "Postal code"},
			{Key: "totalUnits", Label: "Units"},
		},
		SearchKeys: []string{"id", "name", "address"},
	}
}

func unitsDefinition() Definition {
	return Definition{
		Key:          Units,
		Title:        "Units",
		Singular:     "unit",
		Plural:       "units",
		Route:        "/unit",
		Path:         "/units",
		AllowedRoles: adminAndManagers,
		Fields: []Field{
			{Name: "residenceId", Label: "Residence ID", Type: FieldText, Required: true, MaxLen: 64},
			{Name: "unitNumber", Label: "Unit number", Type: FieldText, Required: true, MaxLen: 32},
			{Name: "floor", Label: "Floor", Type: FieldNumber, MaxLen: 8},
			{Name: "bedrooms", Label: "Bedrooms", Type: FieldNumber, MaxLen: 8},
			{Name: "rent", Label: "Rent", Type: FieldNumber, MaxLen: 16},
			{Name: "status", Label: "Status", Type: FieldText, MaxLen: 32},
		},
		Columns: []Column{
			{Key: "unitNumber", Label: "Unit"},
			{Key: "residence", Label: "Residence", Expr: "residenceName || residenceId"},
			{Key: "floor", Label: "Floor"},
			{Key: "bedrooms", Label: "Bedrooms"},
			{Key: "rent", Label: "Rent"},
			{Key: "status", Label: "Status"},
		},
		SearchKeys: []string{"id", "unitNumber", "residence", "status"},
	}
}

func eventsDefinition() Definition {
	return Definition{
		Key:          Events,
		Title:        "Events",
		Singular:     "event",
		Plural:       "events",
		Route:        "/events",
		Path:         "/events",
		AllowedRoles: adminAndManagers,
		Fields: []Field{
			{Name: "title", Label: "Title", Type: FieldText, Required: true, MaxLen: 200},
			{Name: "date", Label: "Date", Type: FieldDate, Required: true, MaxLen: 32},
			{Name: "location", Label: "Location", Type: FieldText, MaxLen: 255},
			{Name: "description", Label: "Description", Type: FieldTextArea, MaxLen: 4000},
		},
		Columns: []Column{
			{Key: "title", Label: "Title"},
			{Key: "date", Label: "Date"},
			{Key: "location", Label: "Location"},
		},
		SearchKeys: []string{"id", "title", "location"},
	}
}

func transactionsDefinition() Definition {
	return Definition{
		Key:          Transactions,
		Title:        "Transactions",
		Singular:     "transaction",
		Plural:       "transactions",
		Route:        "/transactions",
		Path:         "/transactions",
		AllowedRoles: adminAndManagers,
		Fields: []Field{
			{Name: "leaseId", Label: "Lease ID", Type: FieldText, Required: true, MaxLen: 64},
			{Name: "amount", Label: "Amount", Type: FieldNumber, Required: true, MaxLen: 16},
			{Name: "type", Label: "Type", Type: FieldText, Required: true, MaxLen: 32},
			{Name: "date", Label: "Date", Type: FieldDate, MaxLen: 32},
			{Name: "description", Label: "Description", Type: FieldText, MaxLen: 255},
		},
		Columns: []Column{
			{Key: "leaseId", Label: "Lease"},
			{Key: "amount", Label: "Amount"},
			{Key: "type", Label: "Type"},
			{Key: "date", Label: "Date"},
			{Key: "description", Label: "Description"},
		},
		SearchKeys: []string{"id", "leaseId", "type", "description"},
	}
}

func notificationsDefinition() Definition {
	return Definition{
		Key:          Notifications,
		Title:        "Notifications",
		Singular:     "notification",
		Plural:       "notifications",
		Route:        "/notification",
		Path:         "/notifications",
		AllowedRoles: auth.AllRoles,
		Fields: []Field{
			{Name: "title", Label: "Title", Type: FieldText, Required: true, MaxLen: 200},
			{Name: "message", Label: "Message", Type: FieldTextArea, Required: true, MaxLen: 4000},
			{Name: "recipientId", Label: "Recipient ID", Type: FieldText, MaxLen: 64},
			{Name: "date", Label: "Date", Type: FieldDate, MaxLen: 32},
		},
		Columns: []Column{
			{Key: "title", Label: "Title"},
			{Key: "message", Label: "Message"},
			{Key: "recipient", Label: "Recipient", Expr: "recipientName || recipientId"},
			{Key: "date", Label: "Date"},
		},
		SearchKeys: []string{"id", "title", "message", "recipient"},
	}
}
