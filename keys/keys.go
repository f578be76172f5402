// Package keys enumerates superkeys and candidate keys of a table under a
// declared FD set (spec §4.4). Subset enumeration is exponential in the
// attribute count; per spec §9 it iterates the powerset by integer
// counting over the table's bitset universe, which also gives trivial
// set construction from a bit pattern.
package keys

import (
	"sort"

	"github.com/fdengine/fdengine/closure"
	"github.com/fdengine/fdengine/model"
)

// IsKey reports whether closure(x, fds) covers the full attribute
// universe u.
func IsKey(x model.AttributeSet, fds []model.FD, u *model.Universe) bool {
	full := model.EmptySet(u)
	for i := 0; i < u.Len(); i++ {
		full.Add(u.Name(i))
	}
	return closure.Closure(x, fds).SupersetOf(full)
}

// Superkeys returns every subset X of u's attributes with IsKey(X).
// Enumeration walks the integer range [0, 2^n) representing bit patterns
// over the universe; supersets of an already-found key are skipped since
// monotonicity of closure guarantees they are keys too, and since they
// can only be equal or larger in cardinality they can never affect
// CandidateKeys' minimum. This pruning changes nothing about the
// returned set, only how fast it is computed (spec §4.4).
func Superkeys(u *model.Universe, fds []model.FD) []model.AttributeSet {
	n := u.Len()
	total := 1 << uint(n)

	var keys []model.AttributeSet
	isSuperOfKnownKey := func(bits int) bool {
		for _, k := range keys {
			if bitsOf(k, u)&bits == bitsOf(k, u) {
				return true
			}
		}
		return false
	}

	// Enumerate by popcount ascending so smaller sets are discovered
	// before their supersets, making the monotonicity prune effective.
	order := make([]int, 0, total)
	for bits := 0; bits < total; bits++ {
		order = append(order, bits)
	}
	sort.Slice(order, func(i, j int) bool {
		return popcount(order[i]) < popcount(order[j])
	})

	for _, bits := range order {
		if isSuperOfKnownKey(bits) {
			keys = append(keys, setFromBits(u, bits))
			continue
		}
		x := setFromBits(u, bits)
		if IsKey(x, fds, u) {
			keys = append(keys, x)
		}
	}
	return keys
}

// CandidateKeys returns the minimum-cardinality superkeys of the table —
// the spec's deliberately narrowed notion of "candidate key" (§4.4,
// §9 Open Questions: this is minimum-size, not all inclusion-minimal,
// keys; the distinction is flagged there and not resolved here).
func CandidateKeys(u *model.Universe, fds []model.FD) []model.AttributeSet {
	sk := Superkeys(u, fds)
	if len(sk) == 0 {
		return nil
	}
	min := sk[0].Len()
	for _, k := range sk {
		if k.Len() < min {
			min = k.Len()
		}
	}
	var out []model.AttributeSet
	for _, k := range sk {
		if k.Len() == min {
			out = append(out, k)
		}
	}
	return out
}

func bitsOf(s model.AttributeSet, u *model.Universe) int {
	bits := 0
	for i := 0; i < u.Len(); i++ {
		if s.Contains(u.Name(i)) {
			bits |= 1 << uint(i)
		}
	}
	return bits
}

func setFromBits(u *model.Universe, bits int) model.AttributeSet {
	s := model.EmptySet(u)
	for i := 0; i < u.Len(); i++ {
		if bits&(1<<uint(i)) != 0 {
			s.Add(u.Name(i))
		}
	}
	return s
}

func popcount(n int) int {
	c := 0
	for n != 0 {
		n &= n - 1
		c++
	}
	return c
}
