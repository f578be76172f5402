// Package store defines the Store adapter contract (spec §4.2): the thin
// interface the rest of the engine uses to talk to a SQL database,
// without ever depending on a concrete driver. Concrete backends live in
// the postgres, mysql, sqlite3 and mssql subpackages, mirroring the
// teacher's one-package-per-backend layout.
package store

import (
	"context"

	"github.com/fdengine/fdengine/model"
)

// CatalogTableName is the reserved table name for the persisted FD
// catalog (spec §6.1).
const CatalogTableName = "FuncDep"

// Config carries the connection parameters for Open. Not every backend
// uses every field (sqlite3 only needs DbName as a file path).
type Config struct {
	Driver   string // "postgres", "mysql", "sqlite3", "mssql"
	DbName   string
	Host     string
	Port     int
	User     string
	Password string
}

// Row is a single tuple of values, column-aligned with whatever
// projection produced it.
type Row struct {
	Values []any
}

// EqCondition is an equality filter used by SelectWhere: the named
// attribute must equal Value.
type EqCondition struct {
	Attribute model.Attribute
	Value     any
}

// Store is the contract C3–C8 consult. Every method takes a context
// since each is a blocking round trip to the underlying database (spec
// §5: the engine itself is synchronous, but the store call beneath it
// still honors cancellation/timeouts the caller sets up).
type Store interface {
	// Tables lists table names present in the store. When
	// includeCatalog is false, FuncDep is excluded — this is the
	// "user tables" view the classifier and normalizer use.
	Tables(ctx context.Context, includeCatalog bool) ([]string, error)

	// Columns returns table's columns in declared order. Returns
	// *model.UnknownTableError if table is absent, *model.CatalogTableError
	// if table is FuncDep.
	Columns(ctx context.Context, table string) ([]model.Column, error)

	// DistinctProjection returns the distinct tuples of table projected
	// onto attrs, in attrs order.
	DistinctProjection(ctx context.Context, table string, attrs []model.Attribute) ([]Row, error)

	// SelectWhere returns DistinctProjection(table, attrs) further
	// filtered by equality on conditions.
	SelectWhere(ctx context.Context, table string, attrs []model.Attribute, conditions []EqCondition) ([]Row, error)

	// CatalogLoad reads every row of FuncDep. Returns an empty slice
	// (not an error) if FuncDep does not exist yet.
	CatalogLoad(ctx context.Context) ([]model.FD, error)

	// CatalogAppend inserts one FD row, lazily creating FuncDep on the
	// first call. Returns *model.FDAddTwiceError if the (table, lhs-set,
	// rhs) triple is already present (I4).
	CatalogAppend(ctx context.Context, fd model.FD) error

	// CatalogDelete removes the one matching FD row. Returns
	// *model.FDNotFoundError if no such row exists.
	CatalogDelete(ctx context.Context, fd model.FD) error

	// CatalogPurge empties FuncDep. A no-op if it doesn't exist.
	CatalogPurge(ctx context.Context) error

	// CreateTable issues a CREATE TABLE for a new table with the given
	// schema — used only by the Normalizer (spec §4.8) against the
	// freshly opened output store.
	CreateTable(ctx context.Context, schema model.TableSchema) error

	// InsertRows batch-inserts rows into table's columns, in column
	// order — used only by the Normalizer.
	InsertRows(ctx context.Context, table string, columns []model.Column, rows []Row) error

	Close() error
}

// Opener opens a Store for one backend. Backends add theirs with Register,
// and Open looks it up by cfg.Driver; none of the backends needs
// constructor options beyond Config.
type Opener func(ctx context.Context, cfg Config) (Store, error)

var openers = map[string]Opener{}

// Register adds a backend opener under name. Backend packages call this
// from an init() so importing fdengine/store/postgres (etc.) is enough
// to make "postgres" a valid Config.Driver value — the same blank-import
// wiring database/sql drivers themselves use.
func Register(name string, open Opener) {
	openers[name] = open
}

// Open opens a Store for cfg.Driver. Returns *model.StoreError wrapping
// an unrecognized-driver error if no backend was registered under that
// name.
func Open(ctx context.Context, cfg Config) (Store, error) {
	open, ok := openers[cfg.Driver]
	if !ok {
		return nil, &model.StoreError{Err: unknownDriverError(cfg.Driver)}
	}
	return open(ctx, cfg)
}

type unknownDriverError string

func (e unknownDriverError) Error() string { return "unknown store driver " + string(e) }
