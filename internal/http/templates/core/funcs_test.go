package core

import (
	"bytes"
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSince(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{ago: -time.Hour, want: "just now"},
		{ago: 30 * time.Second, want: "just now"},
		{ago: time.Minute, want: "1 minute ago"},
		{ago: 45 * time.Minute, want: "45 minutes ago"},
		{ago: 90 * time.Minute, want: "1 hour ago"},
		{ago: 5 * time.Hour, want: "5 hours ago"},
		{ago: 3 * 24 * time.Hour, want: "3 days ago"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Since(now.Add(-c.ago), now), c.ago.String())
	}

	old := now.Add(-30 * 24 * time.Hour)
	assert.Equal(t, FormatDateTime(old), Since(old, now))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "64f0c1…", Truncate("64f0c1aa92be41", 7))
	assert.Equal(t, "…", Truncate("abc", 1))
	assert.Equal(t, "héll…", Truncate("héllo wörld", 5))
}

func TestFormatNumber(t *testing.T) {
	cases := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		-1234567: "-1,234,567",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatNumber(in))
	}
}

func TestFuncs_RenderSection(t *testing.T) {
	var tmpl *template.Template
	funcs := Funcs(Deps{
		Template: &tmpl,
		ContentTemplateFor: func(page string) string {
			if page == "home" {
				return "home-content"
			}
			return "fallback-content"
		},
	})
	var err error
	tmpl, err = template.New("root").Funcs(funcs).Parse(
		`{{define "home-content"}}hi {{.}}{{end}}` +
			`{{define "fallback-content"}}fallback{{end}}` +
			`{{define "probe"}}{{renderSection .Page .Data}}{{end}}`,
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "probe", map[string]any{"Page": "home", "Data": "<b>"}))
	assert.Equal(t, "hi &lt;b&gt;", buf.String())

	buf.Reset()
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "probe", map[string]any{"Page": "x", "Data": nil}))
	assert.Equal(t, "fallback", buf.String())
}

func TestTimeTag(t *testing.T) {
	assert.Empty(t, timeTag(nil))
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Contains(t, string(timeTag(ts)), `datetime="2026-01-02T03:04:05Z"`)
	assert.Contains(t, string(timeTag(&ts)), "<time ")
}
