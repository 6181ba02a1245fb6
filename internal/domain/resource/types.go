// Package resource contains the domain types shared by every CRUD screen: resource
// definitions, records as fetched from the REST API, the edit buffer and the search filter.
package resource

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/target/residence-console/internal/domain/auth"
)

// FieldType controls how a form value is rendered and encoded.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldPassword FieldType = "password"
	FieldDate     FieldType = "date"
	FieldNumber   FieldType = "number"
	FieldTextArea FieldType = "textarea"
)

// Field is one editable server field.
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Required bool
	MaxLen   int
}

// Secret reports whether the field value must never be echoed back into a form.
func (f Field) Secret() bool { return f.Type == FieldPassword }

// Column is one display column of the list table.
// Expr is a JMESPath expression evaluated against the raw server record;
// an empty Expr selects the field named Key.
type Column struct {
	Key   string
	Label string
	Expr  string
}

// Definition describes one resource type exposed by the REST API and the screen managing it.
type Definition struct {
	Key      string
	Title    string
	Singular string
	Plural   string
	// Route is the console path of the list screen, e.g. "/account".
	Route string
	// Path is the REST path of the collection, e.g. "/users".
	Path string
	// ListPath and CreatePath override Path for GET {ALL} and POST {CREATE}.
	ListPath   string
	CreatePath string

	AllowedRoles auth.Roles
	Fields       []Field
	Columns      []Column
	// SearchKeys are the view keys matched by the search filter.
	SearchKeys []string
}

// AllPath returns the path used to list every record.
func (d Definition) AllPath() string {
	if d.ListPath != "" {
		return d.ListPath
	}
	return d.Path
}

// CreateEndpoint returns the path used to create a record.
func (d Definition) CreateEndpoint() string {
	if d.CreatePath != "" {
		return d.CreatePath
	}
	return d.Path
}

// ItemPath returns {Path}/{id}.
func (d Definition) ItemPath(id string) string {
	return strings.TrimRight(d.Path, "/") + "/" + url.PathEscape(id)
}

// Field returns the field definition with the given name.
func (d Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Record is one server record plus its mapped view shape.
type Record struct {
	ID     string
	Fields map[string]any
	View   map[string]string
}

// Value returns the mapped display value for key.
func (r Record) Value(key string) string {
	if key == "id" {
		return r.ID
	}
	return r.View[key]
}

// EditBuffer is the record currently being created or edited on a screen.
// An empty ID means create; a populated ID means update.
type EditBuffer struct {
	ID     string
	Values map[string]string
}

// IsUpdate reports whether submitting the buffer updates an existing record.
func (b EditBuffer) IsUpdate() bool { return strings.TrimSpace(b.ID) != "" }

// Get returns the buffered value for a field.
func (b EditBuffer) Get(name string) string {
	if b.Values == nil {
		return ""
	}
	return b.Values[name]
}

// BufferFromRecord copies a record into an edit buffer. Secret fields are left blank.
func BufferFromRecord(def Definition, rec Record) EditBuffer {
	buf := EditBuffer{ID: rec.ID, Values: make(map[string]string, len(def.Fields))}
	for _, f := range def.Fields {
		if f.Secret() {
			continue
		}
		buf.Values[f.Name] = FormatValue(rec.Fields[f.Name])
	}
	return buf
}

// Payload builds the JSON request body for a create or update.
// The id is never part of the body; empty secret fields are omitted so an update
// does not overwrite them.
func (b EditBuffer) Payload(def Definition) map[string]any {
	out := make(map[string]any, len(def.Fields))
	for _, f := range def.Fields {
		v := strings.TrimSpace(b.Get(f.Name))
		if f.Secret() && v == "" {
			continue
		}
		if f.Type == FieldNumber && v != "" {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				out[f.Name] = n
				continue
			}
		}
		out[f.Name] = v
	}
	return out
}

// FormatValue renders a decoded JSON value as display text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
