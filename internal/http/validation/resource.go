package validation

import (
	"github.com/target/residence-console/internal/domain/resource"
)

// SecretPolicy says whether blank secret fields are acceptable.
type SecretPolicy int

const (
	// SecretsOptional keeps the stored secret when the field is left blank (updates).
	SecretsOptional SecretPolicy = iota
	// SecretsRequired demands a value for required secret fields (create, sign up).
	SecretsRequired
)

// EditBuffer checks a buffer against the definition's field rules and returns
// field name -> message. It never calls the API.
func EditBuffer(def resource.Definition, buf resource.EditBuffer, secrets SecretPolicy) map[string]string {
	fv := New()
	for _, f := range def.Fields {
		fv.Validate(f.Name, buf.Get(f.Name), ForField(f, secrets)...)
	}
	return fv.Errors()
}

// ForField returns the validators implied by a field definition.
func ForField(f resource.Field, secrets SecretPolicy) []Validator {
	required := f.Required
	if f.Secret() && secrets == SecretsOptional {
		required = false
	}

	var vs []Validator
	if required {
		vs = append(vs, Required(f.Label, f.MaxLen))
	} else {
		vs = append(vs, Optional(f.Label, f.MaxLen))
	}

	switch f.Type {
	case resource.FieldEmail:
		vs = append(vs, Email(f.Label))
	case resource.FieldNumber:
		vs = append(vs, Number(f.Label))
	case resource.FieldDate:
		vs = append(vs, Date(f.Label))
	}
	return vs
}
