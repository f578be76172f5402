// Package sqlite3 is the store.Store backend for SQLite, grounded on the
// teacher's adapter/sqlite3 package: same driver, same sqlite_master /
// PRAGMA introspection queries, extended with the data-reading and
// catalog operations store.Store requires.
package sqlite3

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fdengine/fdengine/model"
	"github.com/fdengine/fdengine/store"
)

func init() {
	store.Register("sqlite3", Open)
}

type Database struct {
	config store.Config
	db     *sql.DB
}

func Open(ctx context.Context, config store.Config) (store.Store, error) {
	db, err := sql.Open("sqlite3", config.DbName)
	if err != nil {
		return nil, &model.StoreError{Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &model.StoreError{Err: err}
	}
	return &Database{db: db, config: config}, nil
}

func (d *Database) Tables(ctx context.Context, includeCatalog bool) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`select tbl_name from sqlite_master where type = 'table' and tbl_name not like 'sqlite_%'`)
	if err != nil {
		return nil, &model.StoreError{Err: err}
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &model.StoreError{Err: err}
		}
		if !includeCatalog && name == store.CatalogTableName {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (d *Database) Columns(ctx context.Context, table string) ([]model.Column, error) {
	if table == store.CatalogTableName {
		return nil, &model.CatalogTableError{Table: table}
	}
	exists, err := d.tableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &model.UnknownTableError{Table: table}
	}

	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("pragma table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, &model.StoreError{Err: err}
	}
	defer rows.Close()

	var cols []model.Column
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull int
		var dfltValue any
		var pk int
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, &model.StoreError{Err: err}
		}
		cols = append(cols, model.Column{Name: model.Attribute(name), DeclaredType: colType})
	}
	return cols, rows.Err()
}

func (d *Database) tableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`select count(*) from sqlite_master where type = 'table' and tbl_name = ?`, table).Scan(&n)
	if err != nil {
		return false, &model.StoreError{Err: err}
	}
	return n > 0, nil
}

func (d *Database) DistinctProjection(ctx context.Context, table string, attrs []model.Attribute) ([]store.Row, error) {
	return d.selectWhere(ctx, table, attrs, nil)
}

func (d *Database) SelectWhere(ctx context.Context, table string, attrs []model.Attribute, conditions []store.EqCondition) ([]store.Row, error) {
	return d.selectWhere(ctx, table, attrs, conditions)
}

func (d *Database) selectWhere(ctx context.Context, table string, attrs []model.Attribute, conditions []store.EqCondition) ([]store.Row, error) {
	cols := make([]string, len(attrs))
	for i, a := range attrs {
		cols[i] = quoteIdent(string(a))
	}

	query := fmt.Sprintf("select distinct %s from %s", strings.Join(cols, ", "), quoteIdent(table))
	args := make([]any, 0, len(conditions))
	if len(conditions) > 0 {
		clauses := make([]string, len(conditions))
		for i, c := range conditions {
			clauses[i] = fmt.Sprintf("%s = ?", quoteIdent(string(c.Attribute)))
			args = append(args, c.Value)
		}
		query += " where " + strings.Join(clauses, " and ")
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &model.StoreError{Err: err}
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		values := make([]any, len(attrs))
		ptrs := make([]any, len(attrs))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &model.StoreError{Err: err}
		}
		out = append(out, store.Row{Values: values})
	}
	return out, rows.Err()
}

func (d *Database) CatalogLoad(ctx context.Context) ([]model.FD, error) {
	exists, err := d.tableExists(ctx, store.CatalogTableName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(`select "table", lhs, rhs from %s`, store.CatalogTableName))
	if err != nil {
		return nil, &model.StoreError{Err: err}
	}
	defer rows.Close()

	var fds []model.FD
	for rows.Next() {
		var table, lhs, rhs string
		if err := rows.Scan(&table, &lhs, &rhs); err != nil {
			return nil, &model.StoreError{Err: err}
		}
		lhsAttrs := model.ParseAttributes(lhs)
		u, err := d.universeFor(ctx, table, lhsAttrs)
		if err != nil {
			return nil, err
		}
		fds = append(fds, model.FD{
			Table: table,
			LHS:   model.NewSet(u, lhsAttrs...),
			RHS:   model.Attribute(rhs),
		})
	}
	return fds, rows.Err()
}

// universeFor builds the bitset universe for table, tolerating a table
// that no longer exists by returning a universe over the FD's own
// attribute tokens — callers that need strict existence checking (catalog
// reconcile) check existence separately.
func (d *Database) universeFor(ctx context.Context, table string, lhs []model.Attribute) (*model.Universe, error) {
	cols, err := d.Columns(ctx, table)
	if err == nil {
		return model.TableSchema{Name: table, Columns: cols}.Universe(), nil
	}
	return model.NewUniverse(lhs), nil
}

func (d *Database) ensureCatalogTable(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, fmt.Sprintf(
		`create table if not exists %s ("table" text, lhs text, rhs text, unique("table", lhs, rhs))`,
		store.CatalogTableName))
	if err != nil {
		return &model.StoreError{Err: err}
	}
	return nil
}

func (d *Database) CatalogAppend(ctx context.Context, fd model.FD) error {
	if err := d.ensureCatalogTable(ctx); err != nil {
		return err
	}

	_, err := d.db.ExecContext(ctx,
		fmt.Sprintf(`insert into %s ("table", lhs, rhs) values (?, ?, ?)`, store.CatalogTableName),
		fd.Table, fd.LHSString(), string(fd.RHS))
	if err != nil {
		if isUniqueViolation(err) {
			return &model.FDAddTwiceError{FD: fd}
		}
		return &model.StoreError{Err: err}
	}
	return nil
}

func (d *Database) CatalogDelete(ctx context.Context, fd model.FD) error {
	res, err := d.db.ExecContext(ctx,
		fmt.Sprintf(`delete from %s where "table" = ? and lhs = ? and rhs = ?`, store.CatalogTableName),
		fd.Table, fd.LHSString(), string(fd.RHS))
	if err != nil {
		return &model.StoreError{Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &model.StoreError{Err: err}
	}
	if n == 0 {
		return &model.FDNotFoundError{FD: fd}
	}
	return nil
}

func (d *Database) CatalogPurge(ctx context.Context) error {
	exists, err := d.tableExists(ctx, store.CatalogTableName)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	_, err = d.db.ExecContext(ctx, fmt.Sprintf(`delete from %s`, store.CatalogTableName))
	if err != nil {
		return &model.StoreError{Err: err}
	}
	return nil
}

func (d *Database) CreateTable(ctx context.Context, schema model.TableSchema) error {
	defs := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(string(c.Name)), sqliteType(c.DeclaredType))
	}
	stmt := fmt.Sprintf("create table %s (%s)", quoteIdent(schema.Name), strings.Join(defs, ", "))
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return &model.StoreError{Err: err}
	}
	return nil
}

func (d *Database) InsertRows(ctx context.Context, table string, columns []model.Column, rows []store.Row) error {
	if len(rows) == 0 {
		return nil
	}
	names := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		names[i] = quoteIdent(string(c.Name))
		placeholders[i] = "?"
	}
	stmt := fmt.Sprintf("insert into %s (%s) values (%s)",
		quoteIdent(table), strings.Join(names, ", "), strings.Join(placeholders, ", "))

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return &model.StoreError{Err: err}
	}
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, stmt, r.Values...); err != nil {
			tx.Rollback()
			return &model.StoreError{Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &model.StoreError{Err: err}
	}
	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// sqliteType returns the declared type unchanged, or TEXT when it is
// empty; SQLite's type affinity rules accept arbitrary declared types.
func sqliteType(declared string) string {
	if declared == "" {
		return "TEXT"
	}
	return declared
}
