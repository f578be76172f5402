package model

// FD is a functional dependency (table, lhs, rhs) per spec §3. rhs is a
// single attribute; I1/I2 (singular RHS, LHS/RHS disjoint) are enforced
// by the Catalog manager at construction time, not here — this type is a
// plain value carrier.
type FD struct {
	Table string
	LHS   AttributeSet
	RHS   Attribute
}

// Equal reports whether two FDs are equal per spec §3: same table, same
// RHS, and LHS equal as sets (not as strings) — I4's uniqueness test.
func (f FD) Equal(other FD) bool {
	return f.Table == other.Table && f.RHS == other.RHS && f.LHS.Equal(other.LHS)
}

// LHSString renders the LHS in the canonical sorted whitespace-joined
// form used for on-disk storage (spec §6.1, §9).
func (f FD) LHSString() string {
	return f.LHS.String()
}
