package httpx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateHelpers_SectionTmpl_Mapping(t *testing.T) {
	tr := RequireTemplateRenderer(t)

	cloned, err := tr.t.Clone()
	require.NoError(t, err)
	cloned, err = cloned.Parse(`{{define "probe"}}{{ sectionTmpl . }}{{end}}`)
	require.NoError(t, err)

	cases := map[string]string{
		PageHome:          "home-content",
		PageResource:      "resource-content",
		PageActivity:      "activity-content",
		PageDeleteConfirm: "delete-confirm-content",
		"unknown":         "home-content",
	}
	for page, want := range cases {
		var buf bytes.Buffer
		require.NoError(t, cloned.ExecuteTemplate(&buf, "probe", page))
		assert.Equal(t, want, buf.String(), page)
	}
}

func TestTemplateHelpers_RenderSection(t *testing.T) {
	tr := RequireTemplateRenderer(t)

	cloned, err := tr.t.Clone()
	require.NoError(t, err)
	cloned, err = cloned.Parse(`{{define "probe"}}{{ renderSection .Page .Data }}{{end}}`)
	require.NoError(t, err)

	t.Run("access denied renders its message", func(t *testing.T) {
		var buf bytes.Buffer
		data := map[string]any{"Page": PageAccessDenied, "Data": map[string]any{}}
		require.NoError(t, cloned.ExecuteTemplate(&buf, "probe", data))
		assert.Contains(t, buf.String(), "Your role does not have access to this screen.")
	})

	t.Run("unknown page falls back to home", func(t *testing.T) {
		var buf bytes.Buffer
		data := map[string]any{"Page": "nope", "Data": map[string]any{"Greeting": "Sam", "Role": "admin"}}
		require.NoError(t, cloned.ExecuteTemplate(&buf, "probe", data))
		assert.True(t, ContainsAll(buf.String(), []string{"Welcome, Sam", "Admin"}))
	})
}

func TestTemplateHelpers_FormatNumber(t *testing.T) {
	tr := RequireTemplateRenderer(t)

	cloned, err := tr.t.Clone()
	require.NoError(t, err)
	cloned, err = cloned.Parse(`{{define "probe"}}{{ formatNumber . }}{{end}}`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, cloned.ExecuteTemplate(&buf, "probe", 1234567))
	assert.Equal(t, "1,234,567", buf.String())
}
