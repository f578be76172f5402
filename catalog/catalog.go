// Package catalog manages the persisted set of user-declared functional
// dependencies (spec §4.7): adding and removing entries, validating their
// shape against the live store schema, and pruning entries that no longer
// make sense (reconcile) or add nothing beyond what the rest of the set
// already implies (clean_redundant).
package catalog

import (
	"context"

	"github.com/fdengine/fdengine/closure"
	"github.com/fdengine/fdengine/model"
	"github.com/fdengine/fdengine/store"
	"github.com/fdengine/fdengine/util"
)

// Manager is the catalog manager bound to one store connection.
type Manager struct {
	st store.Store
}

func New(st store.Store) *Manager {
	return &Manager{st: st}
}

// Add validates and persists one FD. lhs and rhs name attributes of table;
// rhs must be singular, present in table, and absent from lhs.
func (m *Manager) Add(ctx context.Context, table string, lhs []model.Attribute, rhs model.Attribute) error {
	u, cols, err := m.tableUniverse(ctx, table)
	if err != nil {
		return err
	}

	if !hasColumn(cols, rhs) {
		return &model.UnknownFieldError{Table: table, Field: rhs}
	}
	for _, a := range lhs {
		if !hasColumn(cols, a) {
			return &model.UnknownFieldError{Table: table, Field: a}
		}
	}

	lhsSet := model.NewSet(u, lhs...)
	if lhsSet.Contains(rhs) {
		return &model.FDRHSInLHSError{LHS: lhsSet.String(), RHS: rhs}
	}

	fd := model.FD{Table: table, LHS: lhsSet, RHS: rhs}
	return m.st.CatalogAppend(ctx, fd)
}

// Delete removes the one catalog row matching (table, lhs, rhs).
func (m *Manager) Delete(ctx context.Context, table string, lhs []model.Attribute, rhs model.Attribute) error {
	u, _, err := m.tableUniverse(ctx, table)
	if err != nil {
		return err
	}
	fd := model.FD{Table: table, LHS: model.NewSet(u, lhs...), RHS: rhs}
	return m.st.CatalogDelete(ctx, fd)
}

// List returns every FD in the catalog.
func (m *Manager) List(ctx context.Context) ([]model.FD, error) {
	return m.st.CatalogLoad(ctx)
}

// ListFor returns the FDs declared over table, failing with
// *model.UnknownTableError if table does not exist.
func (m *Manager) ListFor(ctx context.Context, table string) ([]model.FD, error) {
	if _, _, err := m.tableUniverse(ctx, table); err != nil {
		return nil, err
	}
	all, err := m.st.CatalogLoad(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.FD
	for _, fd := range all {
		if fd.Table == table {
			out = append(out, fd)
		}
	}
	return out, nil
}

// Purge empties the catalog.
func (m *Manager) Purge(ctx context.Context) error {
	return m.st.CatalogPurge(ctx)
}

// Reconcile drops every catalog FD whose table no longer exists, or whose
// LHS/RHS references a column the table no longer has (P10).
func (m *Manager) Reconcile(ctx context.Context) error {
	fds, err := m.st.CatalogLoad(ctx)
	if err != nil {
		return err
	}

	tables, err := m.st.Tables(ctx, false)
	if err != nil {
		return err
	}
	known := map[string]bool{}
	for _, t := range tables {
		known[t] = true
	}

	for _, fd := range fds {
		if !known[fd.Table] {
			if err := m.st.CatalogDelete(ctx, fd); err != nil {
				return err
			}
			continue
		}

		cols, err := m.st.Columns(ctx, fd.Table)
		if err != nil {
			return err
		}
		colSet := map[model.Attribute]bool{}
		for _, c := range cols {
			colSet[c.Name] = true
		}

		ok := colSet[fd.RHS]
		if ok {
			for _, a := range fd.LHS.Attributes() {
				if !colSet[a] {
					ok = false
					break
				}
			}
		}
		if !ok {
			if err := m.st.CatalogDelete(ctx, fd); err != nil {
				return err
			}
		}
	}
	return nil
}

// CleanRedundant repeatedly removes one Armstrong-redundant FD until the
// catalog reaches a fixed point (P8), per table since redundancy is only
// evaluated within a single table's FD set.
func (m *Manager) CleanRedundant(ctx context.Context) error {
	fds, err := m.st.CatalogLoad(ctx)
	if err != nil {
		return err
	}

	byTable := map[string][]model.FD{}
	for _, fd := range fds {
		byTable[fd.Table] = append(byTable[fd.Table], fd)
	}

	// Iterate tables in canonical (sorted) order so clean_redundant picks a
	// deterministic FD regardless of Go's randomized map iteration.
	for _, tableFDs := range util.CanonicalMapIter(byTable) {
		for {
			redundant, ok := firstRedundant(tableFDs)
			if !ok {
				break
			}
			if err := m.st.CatalogDelete(ctx, redundant); err != nil {
				return err
			}
			tableFDs = removeFD(tableFDs, redundant)
		}
	}
	return nil
}

func firstRedundant(fds []model.FD) (model.FD, bool) {
	for _, g := range fds {
		if closure.IsRedundant(fds, g) {
			return g, true
		}
	}
	return model.FD{}, false
}

func removeFD(fds []model.FD, target model.FD) []model.FD {
	out := make([]model.FD, 0, len(fds))
	removed := false
	for _, fd := range fds {
		if !removed && fd.Equal(target) {
			removed = true
			continue
		}
		out = append(out, fd)
	}
	return out
}

// Clean runs Reconcile followed by CleanRedundant.
func (m *Manager) Clean(ctx context.Context) error {
	if err := m.Reconcile(ctx); err != nil {
		return err
	}
	return m.CleanRedundant(ctx)
}

func (m *Manager) tableUniverse(ctx context.Context, table string) (*model.Universe, []model.Column, error) {
	cols, err := m.st.Columns(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	return model.TableSchema{Name: table, Columns: cols}.Universe(), cols, nil
}

func hasColumn(cols []model.Column, name model.Attribute) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}
