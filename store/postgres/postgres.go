// Package postgres is the store.Store backend for PostgreSQL, grounded
// on the teacher's adapter/postgres package: same driver (lib/pq), same
// information_schema introspection approach.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/fdengine/fdengine/model"
	"github.com/fdengine/fdengine/store"
)

func init() {
	store.Register("postgres", Open)
}

type Database struct {
	config store.Config
	db     *sql.DB
}

func Open(ctx context.Context, config store.Config) (store.Store, error) {
	db, err := sql.Open("postgres", buildDSN(config))
	if err != nil {
		return nil, &model.StoreError{Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &model.StoreError{Err: err}
	}
	return &Database{db: db, config: config}, nil
}

func buildDSN(c store.Config) string {
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	parts := []string{
		fmt.Sprintf("host=%s", host),
		fmt.Sprintf("port=%d", port),
		fmt.Sprintf("dbname=%s", c.DbName),
		fmt.Sprintf("user=%s", c.User),
		"sslmode=disable",
	}
	if c.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", c.Password))
	}
	return strings.Join(parts, " ")
}

func (d *Database) Tables(ctx context.Context, includeCatalog bool) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`select table_name from information_schema.tables where table_schema = 'public'`)
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

func (d *Database) tableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`select count(*) from information_schema.tables where table_schema = 'public' and table_name = $1`,
		table).Scan(&n)
	if err != nil {
		return false, &model.StoreError{Err: err}
	}
	return n > 0, nil
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

	rows, err := d.db.QueryContext(ctx,
		`select column_name, data_type from information_schema.columns
		 where table_schema = 'public' and table_name = $1 order by ordinal_position`, table)
	if err != nil {
		return nil, &model.StoreError{Err: err}
	}
	defer rows.Close()

	var cols []model.Column
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, &model.StoreError{Err: err}
		}
		cols = append(cols, model.Column{Name: model.Attribute(name), DeclaredType: dataType})
	}
	return cols, rows.Err()
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
			clauses[i] = fmt.Sprintf("%s = $%d", quoteIdent(string(c.Attribute)), i+1)
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
		u, err := d.universeFor(ctx, table)
		if err != nil {
			return nil, err
		}
		fds = append(fds, model.FD{
			Table: table,
			LHS:   model.NewSet(u, model.ParseAttributes(lhs)...),
			RHS:   model.Attribute(rhs),
		})
	}
	return fds, rows.Err()
}

func (d *Database) universeFor(ctx context.Context, table string) (*model.Universe, error) {
	cols, err := d.Columns(ctx, table)
	if err == nil {
		return model.TableSchema{Name: table, Columns: cols}.Universe(), nil
	}
	return model.NewUniverse(nil), nil
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
		fmt.Sprintf(`insert into %s ("table", lhs, rhs) values ($1, $2, $3)`, store.CatalogTableName),
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
		fmt.Sprintf(`delete from %s where "table" = $1 and lhs = $2 and rhs = $3`, store.CatalogTableName),
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
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(string(c.Name)), pgType(c.DeclaredType))
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
		placeholders[i] = fmt.Sprintf("$%d", i+1)
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
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

func pgType(declared string) string {
	if declared == "" {
		return "text"
	}
	return declared
}
