package core

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"
)

// Deps holds dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// Funcs returns the helpers shared by every console template.
func Funcs(deps Deps) template.FuncMap {
	funcs := template.FuncMap{
		"sectionTmpl":  deps.ContentTemplateFor,
		"friendlyTime": friendlyTime,
		"relativeTime": relativeTime,
		"timeTag":      timeTag,
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"formatNumber": FormatNumber,
		"truncateText": Truncate,
		"titleCase":    titleCase,
		"lower":        strings.ToLower,
	}

	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - output of our own html/template execution; values were escaped there.
		return template.HTML(buf.String()), nil
	}
	return funcs
}

func asTime(ts any) time.Time {
	switch v := ts.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	}
	return time.Time{}
}

func friendlyTime(ts any) string {
	return FormatDateTime(asTime(ts))
}

func relativeTime(ts any) string {
	t0 := asTime(ts)
	if t0.IsZero() {
		return ""
	}
	return Since(t0, time.Now())
}

func timeTag(ts any) template.HTML {
	t0 := asTime(ts)
	if t0.IsZero() {
		return ""
	}
	dt := t0.UTC().Format(time.RFC3339)
	title := t0.Local().Format(time.RFC1123)
	// #nosec G203 - constructed from escaped values only
	return template.HTML(fmt.Sprintf(
		"<time datetime=\"%s\" title=\"%s\">%s</time>",
		dt,
		template.HTMLEscapeString(title),
		template.HTMLEscapeString(FormatDateTime(t0)),
	))
}

// FormatNumber formats an int with comma separators for thousands.
func FormatNumber(n int) string {
	neg := n < 0
	u := uint64(n)
	if neg {
		u = uint64(-int64(n))
	}
	s := strconv.FormatUint(u, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	prefix := len(s) % 3
	if prefix == 0 {
		prefix = 3
	}
	b.WriteString(s[:prefix])
	for i := prefix; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
