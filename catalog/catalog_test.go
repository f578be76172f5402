package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fdengine/fdengine/catalog"
	"github.com/fdengine/fdengine/model"
	"github.com/fdengine/fdengine/store/storetest"
)

func tripsSchema() model.TableSchema {
	return model.TableSchema{
		Name: "Trips",
		Columns: []model.Column{
			{Name: "Number_Plate", DeclaredType: "text"},
			{Name: "Date", DeclaredType: "text"},
			{Name: "Driver", DeclaredType: "text"},
		},
	}
}

func newManager(t *testing.T) (*catalog.Manager, *storetest.Store) {
	t.Helper()
	s := storetest.New()
	assert.NoError(t, s.CreateTable(context.Background(), tripsSchema()))
	return catalog.New(s), s
}

func TestAdd_Success(t *testing.T) {
	m, _ := newManager(t)
	err := m.Add(context.Background(), "Trips", []model.Attribute{"Number_Plate", "Date"}, "Driver")
	assert.NoError(t, err)

	fds, err := m.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, fds, 1)
}

func TestAdd_UnknownTable(t *testing.T) {
	m, _ := newManager(t)
	err := m.Add(context.Background(), "Ghost", []model.Attribute{"A"}, "B")
	assert.Error(t, err)
	var target *model.UnknownTableError
	assert.ErrorAs(t, err, &target)
}

func TestAdd_UnknownField(t *testing.T) {
	m, _ := newManager(t)
	err := m.Add(context.Background(), "Trips", []model.Attribute{"Nope"}, "Driver")
	assert.Error(t, err)
	var target *model.UnknownFieldError
	assert.ErrorAs(t, err, &target)
}

func TestAdd_RHSInLHS(t *testing.T) {
	m, _ := newManager(t)
	err := m.Add(context.Background(), "Trips", []model.Attribute{"Number_Plate", "Driver"}, "Driver")
	assert.Error(t, err)
	var target *model.FDRHSInLHSError
	assert.ErrorAs(t, err, &target)
}

func TestAdd_Twice(t *testing.T) {
	m, _ := newManager(t)
	assert.NoError(t, m.Add(context.Background(), "Trips", []model.Attribute{"Number_Plate"}, "Driver"))
	err := m.Add(context.Background(), "Trips", []model.Attribute{"Number_Plate"}, "Driver")
	assert.Error(t, err)
	var target *model.FDAddTwiceError
	assert.ErrorAs(t, err, &target)
}

func TestDelete_NotFound(t *testing.T) {
	m, _ := newManager(t)
	err := m.Delete(context.Background(), "Trips", []model.Attribute{"Number_Plate"}, "Driver")
	assert.Error(t, err)
	var target *model.FDNotFoundError
	assert.ErrorAs(t, err, &target)
}

func TestListFor_UnknownTable(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.ListFor(context.Background(), "Ghost")
	assert.Error(t, err)
	var target *model.UnknownTableError
	assert.ErrorAs(t, err, &target)
}

func TestPurge(t *testing.T) {
	m, _ := newManager(t)
	assert.NoError(t, m.Add(context.Background(), "Trips", []model.Attribute{"Number_Plate"}, "Driver"))
	assert.NoError(t, m.Purge(context.Background()))

	fds, err := m.List(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, fds)
}

func TestReconcile_DropsFDsForMissingTableAndColumn(t *testing.T) {
	m, s := newManager(t)
	assert.NoError(t, m.Add(context.Background(), "Trips", []model.Attribute{"Number_Plate"}, "Driver"))
	assert.NoError(t, m.Add(context.Background(), "Trips", []model.Attribute{"Date"}, "Driver"))
	ghost := model.NewUniverse([]model.Attribute{"A", "B"})
	assert.NoError(t, s.CatalogAppend(context.Background(), model.FD{Table: "Ghost", LHS: model.NewSet(ghost, "A"), RHS: "B"}))

	assert.NoError(t, s.CreateTable(context.Background(), model.TableSchema{
		Name: "Trips",
		Columns: []model.Column{
			{Name: "Number_Plate", DeclaredType: "text"},
			{Name: "Driver", DeclaredType: "text"},
		},
	}))

	assert.NoError(t, m.Reconcile(context.Background()))

	fds, err := m.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, fds, 1)
	assert.Equal(t, model.Attribute("Number_Plate"), fds[0].LHS.Attributes()[0])
}

func TestCleanRedundant_RemovesDerivableFD(t *testing.T) {
	m, _ := newManager(t)
	assert.NoError(t, m.Add(context.Background(), "Trips", []model.Attribute{"Number_Plate"}, "Date"))
	assert.NoError(t, m.Add(context.Background(), "Trips", []model.Attribute{"Number_Plate"}, "Driver"))
	assert.NoError(t, m.Add(context.Background(), "Trips", []model.Attribute{"Date"}, "Driver"))

	assert.NoError(t, m.CleanRedundant(context.Background()))

	fds, err := m.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, fds, 2)
}
