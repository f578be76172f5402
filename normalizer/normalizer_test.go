package normalizer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fdengine/fdengine/model"
	"github.com/fdengine/fdengine/normalizer"
	"github.com/fdengine/fdengine/store"
	"github.com/fdengine/fdengine/store/storetest"
)

// tripsSchema mirrors the spec's worked example: Number_Plate, Date,
// Departure_Time, Driver, Destination, with Number_Plate+Date as the only
// candidate key and Number_Plate -> Driver a BCNF/3NF-violating FD.
func tripsSchema() model.TableSchema {
	return model.TableSchema{
		Name: "Trips",
		Columns: []model.Column{
			{Name: "Number_Plate", DeclaredType: "text"},
			{Name: "Date", DeclaredType: "text"},
			{Name: "Departure_Time", DeclaredType: "text"},
			{Name: "Driver", DeclaredType: "text"},
			{Name: "Destination", DeclaredType: "text"},
		},
	}
}

func fd(table string, u *model.Universe, lhs []model.Attribute, rhs model.Attribute) model.FD {
	return model.FD{Table: table, LHS: model.NewSet(u, lhs...), RHS: rhs}
}

func seed(t *testing.T, s *storetest.Store) model.TableSchema {
	t.Helper()
	schema := tripsSchema()
	assert.NoError(t, s.CreateTable(context.Background(), schema))
	assert.NoError(t, s.InsertRows(context.Background(), schema.Name, schema.Columns, []store.Row{
		{Values: []any{"AB-123", "2020-01-01", "08:00", "Alice", "Oslo"}},
		{Values: []any{"AB-123", "2020-01-02", "09:00", "Alice", "Bergen"}},
		{Values: []any{"CD-456", "2020-01-01", "10:00", "Bob", "Oslo"}},
	}))
	return schema
}

func TestNormalizeTable_SplitsOffViolatingFD(t *testing.T) {
	s := storetest.New()
	schema := seed(t, s)
	u := schema.Universe()

	fds := []model.FD{
		fd(schema.Name, u, []model.Attribute{"Number_Plate", "Date"}, "Departure_Time"),
		fd(schema.Name, u, []model.Attribute{"Number_Plate", "Date"}, "Driver"),
		fd(schema.Name, u, []model.Attribute{"Number_Plate", "Date"}, "Destination"),
		fd(schema.Name, u, []model.Attribute{"Number_Plate"}, "Driver"),
	}

	tables, err := normalizer.NormalizeTable(context.Background(), s, schema.Name, fds)
	assert.NoError(t, err)
	assert.Len(t, tables, 2)

	split := tables[0]
	assert.ElementsMatch(t, []model.Attribute{"Number_Plate", "Driver"}, columnNames(split.Schema))
	assert.Len(t, split.FDs, 1)
	assert.Equal(t, split.Schema.Name, split.FDs[0].Table)

	remnant := tables[1]
	assert.NotContains(t, columnNames(remnant.Schema), model.Attribute("Driver"))
	assert.Contains(t, columnNames(remnant.Schema), model.Attribute("Number_Plate"))
	assert.Contains(t, columnNames(remnant.Schema), model.Attribute("Date"))
}

func TestNormalizeTable_NoViolationsYieldsSingleRemnant(t *testing.T) {
	s := storetest.New()
	schema := seed(t, s)
	u := schema.Universe()

	fds := []model.FD{
		fd(schema.Name, u, []model.Attribute{"Number_Plate", "Date"}, "Departure_Time"),
		fd(schema.Name, u, []model.Attribute{"Number_Plate", "Date"}, "Driver"),
		fd(schema.Name, u, []model.Attribute{"Number_Plate", "Date"}, "Destination"),
	}

	tables, err := normalizer.NormalizeTable(context.Background(), s, schema.Name, fds)
	assert.NoError(t, err)
	assert.Len(t, tables, 1)
	assert.Len(t, tables[0].FDs, 3)
}

func TestNormalize_WritesToDestinationStore(t *testing.T) {
	src := storetest.New()
	schema := seed(t, src)
	u := schema.Universe()

	for _, f := range []model.FD{
		fd(schema.Name, u, []model.Attribute{"Number_Plate", "Date"}, "Departure_Time"),
		fd(schema.Name, u, []model.Attribute{"Number_Plate", "Date"}, "Driver"),
		fd(schema.Name, u, []model.Attribute{"Number_Plate", "Date"}, "Destination"),
		fd(schema.Name, u, []model.Attribute{"Number_Plate"}, "Driver"),
	} {
		assert.NoError(t, src.CatalogAppend(context.Background(), f))
	}

	dst := storetest.New()
	assert.NoError(t, normalizer.Normalize(context.Background(), src, dst))

	tables, err := dst.Tables(context.Background(), false)
	assert.NoError(t, err)
	assert.Len(t, tables, 2)

	fds, err := dst.CatalogLoad(context.Background())
	assert.NoError(t, err)
	assert.Len(t, fds, 4)
}

func columnNames(schema model.TableSchema) []model.Attribute {
	names := make([]model.Attribute, len(schema.Columns))
	for i, c := range schema.Columns {
		names[i] = c.Name
	}
	return names
}
