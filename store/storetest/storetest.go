// Package storetest provides an in-memory store.Store fake used by the
// catalog, validator and normalizer unit tests, in place of spinning up a
// real database — the same role the teacher's testutil package played for
// the adapter packages, minus any real driver dependency.
package storetest

import (
	"context"
	"fmt"
	"sort"

	"github.com/fdengine/fdengine/model"
	"github.com/fdengine/fdengine/store"
)

type table struct {
	schema model.TableSchema
	rows   []store.Row
}

// Store is a fake store.Store backed by in-memory tables. Zero value is
// ready to use.
type Store struct {
	tables  map[string]*table
	catalog []model.FD
}

func New() *Store {
	return &Store{tables: map[string]*table{}}
}

// CreateTable is also how tests seed a table's schema.
func (s *Store) CreateTable(ctx context.Context, schema model.TableSchema) error {
	if s.tables == nil {
		s.tables = map[string]*table{}
	}
	s.tables[schema.Name] = &table{schema: schema}
	return nil
}

// Seed loads rows directly, bypassing InsertRows' column-order shuffling —
// convenient for tests that already hold rows in schema-column order.
func (s *Store) Seed(name string, rows []store.Row) {
	t, ok := s.tables[name]
	if !ok {
		return
	}
	t.rows = append(t.rows, rows...)
}

func (s *Store) Tables(ctx context.Context, includeCatalog bool) ([]string, error) {
	var names []string
	for name := range s.tables {
		if !includeCatalog && name == store.CatalogTableName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) Columns(ctx context.Context, tableName string) ([]model.Column, error) {
	if tableName == store.CatalogTableName {
		return nil, &model.CatalogTableError{Table: tableName}
	}
	t, ok := s.tables[tableName]
	if !ok {
		return nil, &model.UnknownTableError{Table: tableName}
	}
	return t.schema.Columns, nil
}

func (s *Store) DistinctProjection(ctx context.Context, tableName string, attrs []model.Attribute) ([]store.Row, error) {
	return s.SelectWhere(ctx, tableName, attrs, nil)
}

func (s *Store) SelectWhere(ctx context.Context, tableName string, attrs []model.Attribute, conditions []store.EqCondition) ([]store.Row, error) {
	t, ok := s.tables[tableName]
	if !ok {
		return nil, &model.UnknownTableError{Table: tableName}
	}

	idx := make(map[model.Attribute]int, len(t.schema.Columns))
	for i, c := range t.schema.Columns {
		idx[c.Name] = i
	}

	var out []store.Row
	seen := map[string]bool{}
	for _, r := range t.rows {
		match := true
		for _, c := range conditions {
			pos, ok := idx[c.Attribute]
			if !ok || r.Values[pos] != c.Value {
				match = false
				break
			}
		}
		if !match {
			continue
		}

		projected := make([]any, len(attrs))
		for i, a := range attrs {
			if pos, ok := idx[a]; ok {
				projected[i] = r.Values[pos]
			}
		}

		key := keyOf(projected)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, store.Row{Values: projected})
	}
	return out, nil
}

func keyOf(values []any) string {
	key := ""
	for _, v := range values {
		key += "|" + fmt.Sprint(v)
	}
	return key
}

func (s *Store) CatalogLoad(ctx context.Context) ([]model.FD, error) {
	out := make([]model.FD, len(s.catalog))
	copy(out, s.catalog)
	return out, nil
}

func (s *Store) CatalogAppend(ctx context.Context, fd model.FD) error {
	for _, existing := range s.catalog {
		if existing.Equal(fd) {
			return &model.FDAddTwiceError{FD: fd}
		}
	}
	s.catalog = append(s.catalog, fd)
	return nil
}

func (s *Store) CatalogDelete(ctx context.Context, fd model.FD) error {
	for i, existing := range s.catalog {
		if existing.Equal(fd) {
			s.catalog = append(s.catalog[:i], s.catalog[i+1:]...)
			return nil
		}
	}
	return &model.FDNotFoundError{FD: fd}
}

func (s *Store) CatalogPurge(ctx context.Context) error {
	s.catalog = nil
	return nil
}

func (s *Store) InsertRows(ctx context.Context, tableName string, columns []model.Column, rows []store.Row) error {
	t, ok := s.tables[tableName]
	if !ok {
		return &model.UnknownTableError{Table: tableName}
	}

	destIdx := make([]int, len(columns))
	for i, c := range columns {
		for j, sc := range t.schema.Columns {
			if sc.Name == c.Name {
				destIdx[i] = j
				break
			}
		}
	}

	for _, r := range rows {
		values := make([]any, len(t.schema.Columns))
		for i, v := range r.Values {
			values[destIdx[i]] = v
		}
		t.rows = append(t.rows, store.Row{Values: values})
	}
	return nil
}

func (s *Store) Close() error { return nil }
