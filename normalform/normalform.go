// Package normalform classifies a table's membership in BCNF and 3NF and
// identifies the FDs that witness any violation (spec §4.5).
package normalform

import (
	"github.com/fdengine/fdengine/keys"
	"github.com/fdengine/fdengine/model"
)

// Classification is the (bcnf_violations, tnf_violations) pair spec §4.5
// assigns to a table. A table is in BCNF iff BCNFViolations is empty, and
// in 3NF iff TNFViolations is empty (P6, P7 of spec §8).
type Classification struct {
	BCNFViolations []model.FD
	TNFViolations  []model.FD
}

func (c Classification) IsBCNF() bool { return len(c.BCNFViolations) == 0 }
func (c Classification) IsTNF() bool  { return len(c.TNFViolations) == 0 }

// Classify computes the classification of a table given its universe and
// declared FDs.
func Classify(u *model.Universe, fds []model.FD) Classification {
	bcnf := BCNFViolations(u, fds)
	return Classification{
		BCNFViolations: bcnf,
		TNFViolations:  tnfFromBCNFViolations(u, fds, bcnf),
	}
}

// BCNFViolations returns every FD whose LHS is not a superkey.
func BCNFViolations(u *model.Universe, fds []model.FD) []model.FD {
	var out []model.FD
	for _, fd := range fds {
		if !keys.IsKey(fd.LHS, fds, u) {
			out = append(out, fd)
		}
	}
	return out
}

// TNFViolations returns the subset of BCNF violations whose RHS is not
// contained in any candidate key.
func TNFViolations(u *model.Universe, fds []model.FD) []model.FD {
	return tnfFromBCNFViolations(u, fds, BCNFViolations(u, fds))
}

func tnfFromBCNFViolations(u *model.Universe, fds []model.FD, bcnfViolations []model.FD) []model.FD {
	if len(bcnfViolations) == 0 {
		return nil
	}
	ck := keys.CandidateKeys(u, fds)
	inSomeKey := func(a model.Attribute) bool {
		for _, k := range ck {
			if k.Contains(a) {
				return true
			}
		}
		return false
	}

	var out []model.FD
	for _, fd := range bcnfViolations {
		if !inSomeKey(fd.RHS) {
			out = append(out, fd)
		}
	}
	return out
}
