// Package validator checks whether a functional dependency actually holds
// over live table data (spec §4.6): for every two rows that agree on the
// LHS, they must agree on the RHS too. Concurrency across a batch of FDs
// is bounded with golang.org/x/sync/errgroup, grounded on the teacher's
// database.ConcurrentMapFuncWithError.
package validator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fdengine/fdengine/model"
	"github.com/fdengine/fdengine/store"
)

// Violation is one FD that does not hold, together with the rows of every
// LHS value for which two or more distinct RHS values were observed.
type Violation struct {
	FD   model.FD
	Rows []store.Row
}

// Holds reports whether fd holds over st's current data, along with the
// witnessing rows when it does not. It follows spec §4.6's algorithm
// literally: enumerate T's distinct LHS values, and for each one ask the
// store (via SelectWhere, the operation C2 names for exactly this) for
// the distinct RHS values and — only when more than one appears — the
// full-column conflicting rows for that LHS value. The per-LHS-value
// violating rows are unioned across every LHS value that conflicts (the
// §9 Open Question on this point: union, not last-write-wins).
func Holds(ctx context.Context, st store.Store, fd model.FD) (bool, []store.Row, error) {
	cols, err := st.Columns(ctx, fd.Table)
	if err != nil {
		return false, nil, err
	}
	allAttrs := make([]model.Attribute, len(cols))
	for i, c := range cols {
		allAttrs[i] = c.Name
	}

	lhsAttrs := fd.LHS.Attributes()
	lhsValues, err := st.DistinctProjection(ctx, fd.Table, lhsAttrs)
	if err != nil {
		return false, nil, err
	}

	var violating []store.Row
	for _, v := range lhsValues {
		conditions := make([]store.EqCondition, len(lhsAttrs))
		for i, a := range lhsAttrs {
			conditions[i] = store.EqCondition{Attribute: a, Value: v.Values[i]}
		}

		rhsValues, err := st.SelectWhere(ctx, fd.Table, []model.Attribute{fd.RHS}, conditions)
		if err != nil {
			return false, nil, err
		}
		if len(rhsValues) <= 1 {
			continue
		}

		conflicting, err := st.SelectWhere(ctx, fd.Table, allAttrs, conditions)
		if err != nil {
			return false, nil, err
		}
		violating = append(violating, conflicting...)
	}

	return len(violating) == 0, violating, nil
}

// ValidateAll checks every fd in fds concurrently, bounded by concurrency
// (0 disables concurrency, negative means unlimited — same convention the
// teacher's concurrent map helper uses). It returns a Violation for every
// FD that does not hold; FDs that hold are simply absent from the result.
func ValidateAll(ctx context.Context, st store.Store, fds []model.FD, concurrency int) ([]Violation, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	if concurrency == 0 {
		eg.SetLimit(1)
	} else if concurrency > 0 {
		eg.SetLimit(concurrency)
	}

	results := make([]*Violation, len(fds))
	for i := range fds {
		i := i
		fd := fds[i]
		eg.Go(func() error {
			ok, rows, err := Holds(egCtx, st, fd)
			if err != nil {
				return err
			}
			if !ok {
				results[i] = &Violation{FD: fd, Rows: rows}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []Violation
	for _, v := range results {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}
