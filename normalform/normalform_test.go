package normalform

import (
	"testing"

	"github.com/fdengine/fdengine/model"
	"github.com/stretchr/testify/assert"
)

func tripsUniverse() *model.Universe {
	return model.NewUniverse([]model.Attribute{
		"Date", "Departure_Time", "Destination", "Number_Plate", "Driver",
	})
}

func fd(u *model.Universe, lhs []model.Attribute, rhs model.Attribute) model.FD {
	return model.FD{Table: "TRIPS", LHS: model.NewSet(u, lhs...), RHS: rhs}
}

// TestClassify_SpecScenario5 exercises spec §8 scenario 5 in full: the
// base FD set is both BCNF and 3NF; adding Driver -> Destination breaks
// BCNF, and because Destination is not part of any candidate key it also
// breaks 3NF.
func TestClassify_SpecScenario5(t *testing.T) {
	u := tripsUniverse()
	base := []model.FD{
		fd(u, []model.Attribute{"Date"}, "Departure_Time"),
		fd(u, []model.Attribute{"Date"}, "Destination"),
		fd(u, []model.Attribute{"Date"}, "Number_Plate"),
		fd(u, []model.Attribute{"Date"}, "Driver"),
	}

	c := Classify(u, base)
	assert.True(t, c.IsBCNF())
	assert.True(t, c.IsTNF())

	withViolation := append(append([]model.FD{}, base...), fd(u, []model.Attribute{"Driver"}, "Destination"))
	c2 := Classify(u, withViolation)
	assert.False(t, c2.IsBCNF())
	assert.False(t, c2.IsTNF())
	assert.Len(t, c2.BCNFViolations, 1)
	assert.Len(t, c2.TNFViolations, 1)
}

func TestClassify_BCNFViolationThatIsStill3NF(t *testing.T) {
	// R(A,B,C) with A -> B and B -> A: neither {A} nor {B} closes to C, so
	// both FDs violate BCNF, but each RHS lies inside a candidate key, so
	// 3NF still holds.
	u := model.NewUniverse([]model.Attribute{"A", "B", "C"})
	// Keys: {A,C} and {B,C}. FD A->B has LHS {A} which is not a superkey
	// (closure({A}) = {A,B}, missing C) so it's a BCNF violation; but B is
	// part of candidate key {B,C}, so it does not violate 3NF.
	f := []model.FD{
		{Table: "R", LHS: model.NewSet(u, "A"), RHS: "B"},
		{Table: "R", LHS: model.NewSet(u, "B"), RHS: "A"},
	}
	c := Classify(u, f)
	assert.False(t, c.IsBCNF())
	assert.True(t, c.IsTNF())
}
