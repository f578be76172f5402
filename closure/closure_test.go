package closure

import (
	"testing"

	"github.com/fdengine/fdengine/model"
	"github.com/stretchr/testify/assert"
)

// tripsUniverse builds the universe used by spec §8's worked example:
// TRIPS(Date, Number_Plate, Departure_Time, Driver, Destination).
func tripsUniverse() *model.Universe {
	return model.NewUniverse([]model.Attribute{
		"Date", "Number_Plate", "Departure_Time", "Driver", "Destination",
	})
}

func fd(u *model.Universe, table string, lhs []model.Attribute, rhs model.Attribute) model.FD {
	return model.FD{Table: table, LHS: model.NewSet(u, lhs...), RHS: rhs}
}

func TestClosure_SpecWorkedExample(t *testing.T) {
	u := tripsUniverse()
	f := []model.FD{
		fd(u, "TRIPS", []model.Attribute{"Date", "Driver", "Departure_Time"}, "Destination"),
		fd(u, "TRIPS", []model.Attribute{"Date", "Destination", "Departure_Time"}, "Driver"),
		fd(u, "TRIPS", []model.Attribute{"Date", "Number_Plate", "Departure_Time"}, "Driver"),
	}

	x := model.NewSet(u, "Date", "Number_Plate", "Departure_Time")
	got := Closure(x, f)

	assert.ElementsMatch(t,
		[]model.Attribute{"Date", "Number_Plate", "Departure_Time", "Driver", "Destination"},
		got.Attributes())
}

func TestClosure_Extensivity(t *testing.T) {
	u := tripsUniverse()
	f := []model.FD{fd(u, "TRIPS", []model.Attribute{"Date"}, "Driver")}
	x := model.NewSet(u, "Date", "Destination")
	assert.True(t, x.SubsetOf(Closure(x, f)))
}

func TestClosure_Idempotence(t *testing.T) {
	u := tripsUniverse()
	f := []model.FD{
		fd(u, "TRIPS", []model.Attribute{"Date"}, "Driver"),
		fd(u, "TRIPS", []model.Attribute{"Driver"}, "Destination"),
	}
	x := model.NewSet(u, "Date")
	once := Closure(x, f)
	twice := Closure(once, f)
	assert.True(t, once.Equal(twice))
}

func TestClosure_MonotonicInF(t *testing.T) {
	u := tripsUniverse()
	small := []model.FD{fd(u, "TRIPS", []model.Attribute{"Date"}, "Driver")}
	big := append(append([]model.FD{}, small...), fd(u, "TRIPS", []model.Attribute{"Driver"}, "Destination"))

	x := model.NewSet(u, "Date")
	assert.True(t, Closure(x, small).SubsetOf(Closure(x, big)))
}

func TestIsRedundant_SpecWorkedExample(t *testing.T) {
	u := tripsUniverse()
	f := []model.FD{
		fd(u, "TRIPS", []model.Attribute{"Date", "Driver", "Departure_Time"}, "Destination"),
		fd(u, "TRIPS", []model.Attribute{"Date", "Destination", "Departure_Time"}, "Driver"),
		fd(u, "TRIPS", []model.Attribute{"Date", "Number_Plate", "Departure_Time"}, "Driver"),
		fd(u, "TRIPS", []model.Attribute{"Date", "Number_Plate", "Departure_Time"}, "Destination"),
	}

	// The added FD (last one) is redundant: Date Number_Plate Departure_Time
	// already closes over Driver and Destination via the third FD plus the
	// first.
	added := f[3]
	assert.True(t, IsRedundant(f, added))

	// Per spec §8 example 2, the third FD also becomes redundant once the
	// fourth is present (derivable via Date Number_Plate Departure_Time ->
	// Destination, then Date Destination Departure_Time -> Driver).
	third := f[2]
	assert.True(t, IsRedundant(f, third))
}

func TestIsRedundant_NotRedundantWhenNoDerivation(t *testing.T) {
	u := tripsUniverse()
	f := []model.FD{
		fd(u, "TRIPS", []model.Attribute{"Date"}, "Driver"),
		fd(u, "TRIPS", []model.Attribute{"Driver"}, "Destination"),
	}
	assert.False(t, IsRedundant(f, f[0]))
}
