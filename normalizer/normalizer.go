// Package normalizer decomposes a table (or an entire database) by
// splitting off one table per 3NF-violating FD (spec §4.8). The
// decomposition is pragmatic: it is lossless with respect to the projected
// distinct rows, but dependency preservation is not verified, the number
// of output tables is not minimized, and the output tables are not
// re-classified, so a remnant table can still violate 3NF.
package normalizer

import (
	"context"
	"fmt"

	"github.com/fdengine/fdengine/model"
	"github.com/fdengine/fdengine/normalform"
	"github.com/fdengine/fdengine/store"
	"github.com/fdengine/fdengine/util"
)

// Table is one output of a decomposition: a schema, its distinct rows
// projected from the source table, and the FDs it inherits.
type Table struct {
	Schema model.TableSchema
	Rows   []store.Row
	FDs    []model.FD
}

// NormalizeTable decomposes table using fds (the table's declared FD set)
// into a sequence of new table descriptors: one per 3NF-violating FD,
// followed by the remnant. New tables are named "<table>_1", "<table>_2",
// ... in violation order, with the remnant taking the final index.
func NormalizeTable(ctx context.Context, st store.Store, table string, fds []model.FD) ([]Table, error) {
	cols, err := st.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	schema := model.TableSchema{Name: table, Columns: cols}
	u := schema.Universe()

	violations := normalform.TNFViolations(u, fds)
	workingFDs := append([]model.FD(nil), fds...)
	available := append([]model.Column(nil), cols...)

	var out []Table
	for i, g := range violations {
		newAttrs := g.LHS.Union(model.NewSet(u, g.RHS))
		newCols := schema.ColumnsFor(newAttrs)
		attrs := columnNames(newCols)

		rows, err := st.DistinctProjection(ctx, table, attrs)
		if err != nil {
			return nil, err
		}

		name := fmt.Sprintf("%s_%d", table, i+1)
		out = append(out, Table{
			Schema: model.TableSchema{Name: name, Columns: newCols},
			Rows:   rows,
			FDs: []model.FD{{
				Table: name,
				LHS:   remapSet(g.LHS, model.NewUniverse(columnNames(newCols))),
				RHS:   g.RHS,
			}},
		})

		available = dropColumn(available, g.RHS)
		workingFDs = removeFD(workingFDs, g)
	}

	remnantAttrs := columnNames(available)
	remnantRows, err := st.DistinctProjection(ctx, table, remnantAttrs)
	if err != nil {
		return nil, err
	}

	remnantName := fmt.Sprintf("%s_%d", table, len(violations)+1)
	remnantUniverse := model.NewUniverse(remnantAttrs)
	remnantFDs := make([]model.FD, 0, len(workingFDs))
	for _, fd := range workingFDs {
		remnantFDs = append(remnantFDs, model.FD{
			Table: remnantName,
			LHS:   remapSet(fd.LHS, remnantUniverse),
			RHS:   fd.RHS,
		})
	}

	out = append(out, Table{
		Schema: model.TableSchema{Name: remnantName, Columns: available},
		Rows:   remnantRows,
		FDs:    remnantFDs,
	})

	return out, nil
}

// Normalize decomposes every user table of src into dst, which must be a
// freshly opened, empty store (spec §6.3): dst receives one table per
// NormalizeTable sub-descriptor plus the re-keyed FuncDep rows they carry.
func Normalize(ctx context.Context, src store.Store, dst store.Store) error {
	tables, err := src.Tables(ctx, false)
	if err != nil {
		return err
	}

	allFDs, err := src.CatalogLoad(ctx)
	if err != nil {
		return err
	}

	for _, table := range tables {
		var tableFDs []model.FD
		for _, fd := range allFDs {
			if fd.Table == table {
				tableFDs = append(tableFDs, fd)
			}
		}

		descriptors, err := NormalizeTable(ctx, src, table, tableFDs)
		if err != nil {
			return err
		}

		for _, d := range descriptors {
			if err := dst.CreateTable(ctx, d.Schema); err != nil {
				return err
			}
			if err := dst.InsertRows(ctx, d.Schema.Name, d.Schema.Columns, d.Rows); err != nil {
				return err
			}
			for _, fd := range d.FDs {
				if err := dst.CatalogAppend(ctx, fd); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func columnNames(cols []model.Column) []model.Attribute {
	return util.TransformSlice(cols, func(c model.Column) model.Attribute { return c.Name })
}

// remapSet rebuilds an attribute set's bit positions under a new universe,
// since each emitted table gets its own Universe distinct from T's.
func remapSet(x model.AttributeSet, u *model.Universe) model.AttributeSet {
	return model.NewSet(u, x.Attributes()...)
}

func dropColumn(cols []model.Column, name model.Attribute) []model.Column {
	out := make([]model.Column, 0, len(cols))
	for _, c := range cols {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return out
}

func removeFD(fds []model.FD, target model.FD) []model.FD {
	out := make([]model.FD, 0, len(fds))
	for _, fd := range fds {
		if !fd.Equal(target) {
			out = append(out, fd)
		}
	}
	return out
}
