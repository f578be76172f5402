package shell_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fdengine/fdengine/model"
	"github.com/fdengine/fdengine/shell"
	"github.com/fdengine/fdengine/store"
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

func newShell(t *testing.T, input string) (*shell.Shell, *bytes.Buffer, *storetest.Store) {
	t.Helper()
	backing := storetest.New()
	assert.NoError(t, backing.CreateTable(context.Background(), tripsSchema()))
	assert.NoError(t, backing.InsertRows(context.Background(), "Trips", tripsSchema().Columns, []store.Row{
		{Values: []any{"AB-123", "2020-01-01", "Alice"}},
	}))

	out := &bytes.Buffer{}
	connect := func(ctx context.Context, dbName string) (store.Store, error) {
		return backing, nil
	}
	openOut := func(ctx context.Context) (store.Store, error) {
		return storetest.New(), nil
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := shell.New(strings.NewReader(input), out, connect, openOut, log)
	return s, out, backing
}

func TestShell_ConnectTablesDisconnect(t *testing.T) {
	s, out, _ := newShell(t, "connect mydb\ntables\ndisconnect\nexit\n")
	err := s.Run(context.Background())
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Trips")
}

func TestShell_AddAndList(t *testing.T) {
	s, out, _ := newShell(t, "connect mydb\nadd Trips Number_Plate Driver\nlist\nexit\n")
	err := s.Run(context.Background())
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Trips: Number_Plate -> Driver")
}

func TestShell_UnknownCommandReportsError(t *testing.T) {
	s, out, _ := newShell(t, "connect mydb\nbogus\nexit\n")
	err := s.Run(context.Background())
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "ERROR:")
}

func TestShell_CommandsRequireConnection(t *testing.T) {
	s, out, _ := newShell(t, "tables\nexit\n")
	err := s.Run(context.Background())
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "ERROR: not connected")
}
