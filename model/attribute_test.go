package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testUniverse() *Universe {
	return NewUniverse([]Attribute{"Date", "Number_Plate", "Departure_Time", "Driver", "Destination"})
}

func TestAttributeSet_UnionDifferenceSubset(t *testing.T) {
	u := testUniverse()
	a := NewSet(u, "Date", "Number_Plate")
	b := NewSet(u, "Number_Plate", "Driver")

	union := a.Union(b)
	assert.ElementsMatch(t, []Attribute{"Date", "Number_Plate", "Driver"}, union.Attributes())

	diff := a.Difference(b)
	assert.ElementsMatch(t, []Attribute{"Date"}, diff.Attributes())

	assert.True(t, NewSet(u, "Date").SubsetOf(a))
	assert.False(t, a.SubsetOf(NewSet(u, "Date")))
}

func TestAttributeSet_Equal(t *testing.T) {
	u := testUniverse()
	a := NewSet(u, "Date", "Driver")
	b := NewSet(u, "Driver", "Date")
	assert.True(t, a.Equal(b))

	c := NewSet(u, "Driver")
	assert.False(t, a.Equal(c))
}

func TestAttributeSet_StringIsSortedCanonicalForm(t *testing.T) {
	u := testUniverse()
	s := NewSet(u, "Driver", "Date", "Departure_Time")
	assert.Equal(t, "Date Departure_Time Driver", s.String())
}

func TestParseAttributes_DiscardsEmptyTokens(t *testing.T) {
	got := ParseAttributes("Date   Driver\tDeparture_Time")
	assert.Equal(t, []Attribute{"Date", "Driver", "Departure_Time"}, got)
}

func TestAttributeSet_UnknownAttributeIgnoredOnAdd(t *testing.T) {
	u := testUniverse()
	s := NewSet(u, "NotAColumn")
	assert.True(t, s.IsEmpty())
}

// Every real call site (catalog, store backends, shell, normalizer) builds
// its own *Universe for a table rather than sharing one cached allocation,
// so two AttributeSets over the same table are almost never backed by the
// same pointer. mustSameUniverse must compare layout, not identity, or
// every one of those call sites panics the moment it compares or combines
// two such sets.
func TestAttributeSet_InteroperatesAcrossIndependentlyBuiltUniverses(t *testing.T) {
	cols := []Attribute{"Date", "Number_Plate", "Departure_Time", "Driver", "Destination"}
	u1 := NewUniverse(cols)
	u2 := NewUniverse(append([]Attribute(nil), cols...))
	assert.NotSame(t, u1, u2)

	a := NewSet(u1, "Date", "Number_Plate")
	b := NewSet(u2, "Number_Plate", "Date")
	assert.True(t, a.Equal(b))
	assert.True(t, a.SubsetOf(NewSet(u2, "Date", "Number_Plate", "Driver")))

	union := a.Union(NewSet(u2, "Driver"))
	assert.ElementsMatch(t, []Attribute{"Date", "Number_Plate", "Driver"}, union.Attributes())
}
