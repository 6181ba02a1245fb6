package resource

import "strings"

// DefaultSearchKeys are matched when a definition does not name its own.
var DefaultSearchKeys = []string{"id", "name", "email"}

// Filter returns the records whose search keys contain query, case-insensitively.
// Keys are combined with OR. The query is matched as typed, spaces included.
// An empty query returns records unchanged and in order.
func Filter(records []Record, query string, keys []string) []Record {
	if query == "" {
		return records
	}
	q := strings.ToLower(query)
	if len(keys) == 0 {
		keys = DefaultSearchKeys
	}

	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if Matches(rec, q, keys) {
			out = append(out, rec)
		}
	}
	return out
}

// Matches reports whether any of the record's keys contains the lowercased query.
func Matches(rec Record, lowerQuery string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(strings.ToLower(rec.Value(k)), lowerQuery) {
			return true
		}
	}
	return false
}

// SearchKeysFor returns the definition's search keys or the defaults.
func SearchKeysFor(def Definition) []string {
	if len(def.SearchKeys) > 0 {
		return def.SearchKeys
	}
	return DefaultSearchKeys
}

// ByID returns the record with the given id.
func ByID(records []Record, id string) (Record, bool) {
	for _, rec := range records {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}
