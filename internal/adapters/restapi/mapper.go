package restapi

import (
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/target/residence-console/internal/domain/resource"
)

type searchFunc func(data any) (any, error)

// Mapper turns raw server records into view records using the definition's columns.
type Mapper struct {
	columns []resource.Column
	exprs   map[string]searchFunc
}

// NewMapper compiles every column expression up front so a bad catalog fails at startup.
func NewMapper(def resource.Definition) (*Mapper, error) {
	m := &Mapper{columns: def.Columns, exprs: make(map[string]searchFunc)}
	for _, col := range def.Columns {
		expr := strings.TrimSpace(col.Expr)
		if expr == "" {
			continue
		}
		compiled, err := jmespath.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%s column %q: compile %q: %w", def.Key, col.Key, expr, err)
		}
		m.exprs[col.Key] = func(data any) (any, error) { return compiled.Search(data) }
	}
	return m, nil
}

// Map maps one raw record. The id is taken verbatim from the "id" field.
func (m *Mapper) Map(raw map[string]any) (resource.Record, error) {
	rec := resource.Record{
		ID:     resource.FormatValue(raw["id"]),
		Fields: raw,
		View:   make(map[string]string, len(m.columns)+1),
	}
	rec.View["id"] = rec.ID

	for _, col := range m.columns {
		search, ok := m.exprs[col.Key]
		if !ok {
			rec.View[col.Key] = resource.FormatValue(raw[col.Key])
			continue
		}
		v, err := search(raw)
		if err != nil {
			return resource.Record{}, fmt.Errorf("map column %q: %w", col.Key, err)
		}
		rec.View[col.Key] = strings.TrimSpace(resource.FormatValue(v))
	}
	return rec, nil
}

// MapAll maps a list of raw records preserving order.
func (m *Mapper) MapAll(raws []map[string]any) ([]resource.Record, error) {
	out := make([]resource.Record, 0, len(raws))
	for i, raw := range raws {
		rec, err := m.Map(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
