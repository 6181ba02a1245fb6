package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/target/residence-console/internal/domain/resource"
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// bufferFromForm reads the definition's fields plus the hidden id out of a parsed form.
// Values are kept as typed so a failed submit re-renders them unchanged.
func bufferFromForm(def resource.Definition, form url.Values) resource.EditBuffer {
	buf := resource.EditBuffer{
		ID:     strings.TrimSpace(form.Get("id")),
		Values: make(map[string]string, len(def.Fields)),
	}
	for _, f := range def.Fields {
		buf.Values[f.Name] = form.Get(f.Name)
	}
	return buf
}

// isAJAX reports whether the request came from script rather than page navigation.
func isAJAX(r *http.Request) bool {
	if IsHTMX(r) {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
