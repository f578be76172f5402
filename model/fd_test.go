package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFD_EqualIgnoresLHSOrdering(t *testing.T) {
	u := NewUniverse([]Attribute{"Date", "Driver", "Departure_Time", "Destination"})
	a := FD{Table: "TRIPS", LHS: NewSet(u, "Date", "Driver"), RHS: "Destination"}
	b := FD{Table: "TRIPS", LHS: NewSet(u, "Driver", "Date"), RHS: "Destination"}
	assert.True(t, a.Equal(b))

	c := FD{Table: "TRIPS", LHS: NewSet(u, "Driver"), RHS: "Destination"}
	assert.False(t, a.Equal(c))
}

func TestFD_LHSString(t *testing.T) {
	u := NewUniverse([]Attribute{"Date", "Driver", "Departure_Time"})
	f := FD{Table: "TRIPS", LHS: NewSet(u, "Departure_Time", "Date"), RHS: "Driver"}
	assert.Equal(t, "Date Departure_Time", f.LHSString())
}
