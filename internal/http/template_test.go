package httpx

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/residence-console/internal/http/ui/viewmodel"
)

func TestTemplateRenderer_LoadTemplates(t *testing.T) {
	tr := RequireTemplateRenderer(t)

	for _, name := range []string{"layout", "resource-table", "form-field", "navbar"} {
		assert.True(t, tr.HasTemplate(name), "template %s should be loaded", name)
	}
	for page, name := range ContentTemplateMap() {
		assert.True(t, tr.HasTemplate(name), "content template for %s should be loaded", page)
	}
	assert.False(t, tr.HasTemplate("dashboard-content"))
}

func TestTemplateRenderer_RenderTablePartial(t *testing.T) {
	tr := RequireTemplateRenderer(t)

	rec := httptest.NewRecorder()
	table := viewmodel.Table{
		Route:   "/lease",
		Columns: []string{"Tenant", "Status"},
		Rows: []viewmodel.Row{
			{ID: "7", Cells: []string{"Ana <Ruiz>", "active"}},
		},
		Total: 3,
	}
	require.NoError(t, tr.RenderPartial(rec, "resource-table", table))

	html := rec.Body.String()
	assert.Contains(t, html, "Showing 1 of 3")
	assert.Contains(t, html, "Ana &lt;Ruiz&gt;")
	assert.Contains(t, html, "/lease/7/delete")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	tr := RequireTemplateRenderer(t)

	rec := httptest.NewRecorder()
	err := tr.RenderPartial(rec, "missing-content", nil)
	require.Error(t, err)
	assert.Empty(t, rec.Body.String())
}

func TestNewTemplateRenderer_RequiresFS(t *testing.T) {
	_, err := NewTemplateRenderer(TemplateRendererConfig{})
	assert.Error(t, err)
}
