// Package closure implements Armstrong-axiom attribute closure over a
// functional dependency set (spec §4.3), and the membership / redundancy
// tests built on top of it.
package closure

import "github.com/fdengine/fdengine/model"

// Closure computes X⁺ under F by fixed-point iteration: scan F, adding
// the RHS of every FD whose LHS is already covered and whose RHS is new,
// and repeat the pass; stop when a full pass adds nothing. Terminates
// in at most |attributes(F) ∪ X| outer rounds since each round adds at
// least one attribute or the loop stops, and the result is
// order-independent in F (P1-P3 of spec §8).
func Closure(x model.AttributeSet, f []model.FD) model.AttributeSet {
	r := x
	for {
		grew := false
		for _, fd := range f {
			if fd.LHS.SubsetOf(r) && !r.Contains(fd.RHS) {
				r = r.Union(model.NewSet(r.Universe(), fd.RHS))
				grew = true
			}
		}
		if !grew {
			return r
		}
	}
}

// Implies reports whether rhs ∈ closure(lhs, F), i.e. whether F implies
// the FD (lhs -> rhs).
func Implies(f []model.FD, lhs model.AttributeSet, rhs model.Attribute) bool {
	return Closure(lhs, f).Contains(rhs)
}

// IsRedundant reports whether g is Armstrong-derivable from the
// remainder of f (f minus g) — spec §4.3's is_redundant.
func IsRedundant(f []model.FD, g model.FD) bool {
	remainder := make([]model.FD, 0, len(f))
	removed := false
	for _, fd := range f {
		if !removed && fd.Equal(g) {
			removed = true
			continue
		}
		remainder = append(remainder, fd)
	}
	return Implies(remainder, g.LHS, g.RHS)
}
