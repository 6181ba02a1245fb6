package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRecords() []Record {
	return []Record{
		{ID: "1", View: map[string]string{"name": "A B", "email": "a@b.com"}},
		{ID: "12", View: map[string]string{"name": "Carol Diaz", "email": "carol@example.org"}},
		{ID: "3", View: map[string]string{"name": "Eve Foster", "email": "EVE@Example.org"}},
	}
}

func ids(recs []Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestFilter_EmptyQueryReturnsAllInOrder(t *testing.T) {
	recs := sampleRecords()
	assert.Equal(t, []string{"1", "12", "3"}, ids(Filter(recs, "", nil)))
}

func TestFilter_MatchesQueryAsTyped(t *testing.T) {
	recs := sampleRecords()
	assert.Empty(t, Filter(recs, "   ", nil))
	assert.Equal(t, []string{"12"}, ids(Filter(recs, " Diaz", nil)))
	assert.Empty(t, Filter(recs, "Diaz ", nil))
}

func TestFilter_CaseInsensitiveEmailMatch(t *testing.T) {
	got := Filter(sampleRecords(), "A@B", DefaultSearchKeys)
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestFilter_ORAcrossFields(t *testing.T) {
	recs := sampleRecords()
	// "1" matches id 1 and id 12.
	assert.Equal(t, []string{"1", "12"}, ids(Filter(recs, "1", nil)))
	// "example" matches two emails regardless of case.
	assert.Equal(t, []string{"12", "3"}, ids(Filter(recs, "EXAMPLE", nil)))
	// name only.
	assert.Equal(t, []string{"3"}, ids(Filter(recs, "foster", nil)))
}

func TestFilter_Idempotent(t *testing.T) {
	recs := sampleRecords()
	for _, q := range []string{"", "a", "example", "zzz", "1"} {
		once := Filter(recs, q, nil)
		twice := Filter(once, q, nil)
		assert.Equal(t, ids(once), ids(twice), "query %q", q)
	}
}

func TestFilter_RestrictedKeys(t *testing.T) {
	recs := sampleRecords()
	assert.Empty(t, Filter(recs, "carol", []string{"id"}))
	assert.Len(t, Filter(recs, "carol", []string{"name"}), 1)
}

func TestSearchKeysFor(t *testing.T) {
	assert.Equal(t, DefaultSearchKeys, SearchKeysFor(Definition{}))
	assert.Equal(t, []string{"title"}, SearchKeysFor(Definition{SearchKeys: []string{"title"}}))
}
