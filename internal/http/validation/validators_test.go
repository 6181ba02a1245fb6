package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/target/residence-console/internal/domain/resource"
)

const errNameRequired = "Name is required."

func TestRequired(t *testing.T) {
	tests := []struct {
		name   string
		maxLen int
		value  string
		errMsg string
	}{
		{name: "valid input", maxLen: 10, value: "valid"},
		{name: "empty string", maxLen: 10, value: "", errMsg: errNameRequired},
		{name: "whitespace only", maxLen: 10, value: "   ", errMsg: errNameRequired},
		{name: "exceeds max length", maxLen: 5, value: "toolong", errMsg: "Name cannot exceed 5 characters."},
		{name: "exactly max length", maxLen: 5, value: "exact"},
		{name: "unicode within limit", maxLen: 5, value: "ÉÉÉÉÉ"},
		{name: "unicode exceeds limit", maxLen: 5, value: "ÉÉÉÉÉÉ", errMsg: "Name cannot exceed 5 characters."},
		{name: "no limit", maxLen: 0, value: "anything at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errMsg, Required("Name", tt.maxLen)(tt.value))
		})
	}
}

func TestOptional(t *testing.T) {
	assert.Empty(t, Optional("Phone", 5)(""))
	assert.Empty(t, Optional("Phone", 5)("12345"))
	assert.Equal(t, "Phone cannot exceed 5 characters.", Optional("Phone", 5)("123456"))
}

func TestEmail(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{value: "", ok: true},
		{value: "a@b.com", ok: true},
		{value: " a@b.com ", ok: true},
		{value: "a.b+tag@example.co.uk", ok: true},
		{value: "not-an-email", ok: false},
		{value: "A <a@b.com>", ok: false},
		{value: "a@", ok: false},
	}
	for _, tt := range tests {
		got := Email("Email")(tt.value)
		if tt.ok {
			assert.Empty(t, got, tt.value)
		} else {
			assert.Equal(t, "Enter a valid email address.", got, tt.value)
		}
	}
}

func TestNumber(t *testing.T) {
	assert.Empty(t, Number("Rent")(""))
	assert.Empty(t, Number("Rent")("1200"))
	assert.Empty(t, Number("Rent")("1200.50"))
	assert.Empty(t, Number("Rent")("-3"))
	assert.Equal(t, "Rent must be a number.", Number("Rent")("twelve"))
}

func TestDate(t *testing.T) {
	assert.Empty(t, Date("Start")(""))
	assert.Empty(t, Date("Start")("2024-09-01"))
	assert.Equal(t, "Start must be a date (YYYY-MM-DD).", Date("Start")("09/01/2024"))
	assert.Equal(t, "Start must be a date (YYYY-MM-DD).", Date("Start")("2024-13-01"))
}

func TestFieldValidator_StopsAtFirstError(t *testing.T) {
	fv := New().Validate("email", "", Required("Email", 10), Email("Email"))
	assert.Equal(t, map[string]string{"email": "Email is required."}, fv.Errors())
	assert.False(t, fv.Valid())
}

func TestFieldValidator_SecondValidatorTriggers(t *testing.T) {
	fv := New().Validate("email", "nope", Required("Email", 10), Email("Email"))
	assert.Equal(t, "Enter a valid email address.", fv.Errors()["email"])
}

func TestFieldValidator_MultipleFields(t *testing.T) {
	fv := New().
		Validate("name", "", Required("Name", 10)).
		Validate("rent", "x", Number("Rent")).
		Validate("city", "Paris", Optional("City", 10))
	errs := fv.Errors()
	assert.Len(t, errs, 2)
	assert.Equal(t, errNameRequired, errs["name"])
	assert.Equal(t, "Rent must be a number.", errs["rent"])
}

func TestFieldValidator_EmptyErrors(t *testing.T) {
	fv := New()
	assert.Empty(t, fv.Errors())
	assert.True(t, fv.Valid())
}

func TestEditBuffer(t *testing.T) {
	def := resource.Definition{
		Key: "users",
		Fields: []resource.Field{
			{Name: "firstName", Label: "First name", Type: resource.FieldText, Required: true, MaxLen: 5},
			{Name: "email", Label: "Email", Type: resource.FieldEmail, Required: true},
			{Name: "password", Label: "Password", Type: resource.FieldPassword, Required: true},
			{Name: "dateOfBirth", Label: "Date of birth", Type: resource.FieldDate},
		},
	}

	t.Run("valid update keeps blank secret", func(t *testing.T) {
		buf := resource.EditBuffer{ID: "1", Values: map[string]string{"firstName": "Ann", "email": "a@b.com"}}
		assert.Empty(t, EditBuffer(def, buf, SecretsOptional))
	})

	t.Run("create requires secret", func(t *testing.T) {
		buf := resource.EditBuffer{Values: map[string]string{"firstName": "Ann", "email": "a@b.com"}}
		errs := EditBuffer(def, buf, SecretsRequired)
		assert.Equal(t, map[string]string{"password": "Password is required."}, errs)
	})

	t.Run("reports each failing field", func(t *testing.T) {
		buf := resource.EditBuffer{Values: map[string]string{
			"firstName":   "Annabelle",
			"email":       "bad",
			"password":    "pw",
			"dateOfBirth": "yesterday",
		}}
		errs := EditBuffer(def, buf, SecretsRequired)
		assert.Equal(t, "First name cannot exceed 5 characters.", errs["firstName"])
		assert.Equal(t, "Enter a valid email address.", errs["email"])
		assert.Equal(t, "Date of birth must be a date (YYYY-MM-DD).", errs["dateOfBirth"])
		assert.NotContains(t, errs, "password")
	})
}
