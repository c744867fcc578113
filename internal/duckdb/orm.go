package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/coral-mesh/futurescope/internal/retry"
)

// Execer is an interface that matches both *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ErrNoPrimaryKey is returned by operations that address rows by primary key.
var ErrNoPrimaryKey = errors.New("no primary key defined for table")

// column is one tagged struct field.
type column struct {
	name      string
	field     int
	sqlType   string
	pk        bool
	immutable bool
}

// Table is a typed wrapper around one DuckDB table. T must be a struct whose
// persisted fields carry a `duckdb:"column[,pk][,immutable][,type=SQL]"` tag.
type Table[T any] struct {
	db      Execer
	name    string
	columns []column
}

// NewTable creates a Table[T]. It panics when T is not a struct or a tagged
// field has a Go type with no DuckDB mapping and no explicit type option.
func NewTable[T any](db Execer, tableName string) *Table[T] {
	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() != reflect.Struct {
		panic("Table generic type T must be a struct")
	}

	var columns []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("duckdb")
		if tag == "" || tag == "-" {
			continue
		}

		parts := strings.Split(tag, ",")
		col := column{name: strings.TrimSpace(parts[0]), field: i}
		for _, p := range parts[1:] {
			opt := strings.TrimSpace(p)
			switch {
			case opt == "pk":
				col.pk = true
			case opt == "immutable":
				col.immutable = true
			case strings.HasPrefix(opt, "type="):
				col.sqlType = strings.TrimPrefix(opt, "type=")
			}
		}
		if col.sqlType == "" {
			sqlType, ok := sqlTypeOf(f.Type)
			if !ok {
				panic(fmt.Sprintf("no DuckDB type for field %s (%s)", f.Name, f.Type))
			}
			col.sqlType = sqlType
		}
		columns = append(columns, col)
	}

	return &Table[T]{db: db, name: tableName, columns: columns}
}

var timeType = reflect.TypeOf(time.Time{})

func sqlTypeOf(t reflect.Type) (string, bool) {
	if t == timeType {
		return "TIMESTAMP", true
	}
	switch t.Kind() {
	case reflect.String:
		return "VARCHAR", true
	case reflect.Bool:
		return "BOOLEAN", true
	case reflect.Int, reflect.Int64:
		return "BIGINT", true
	case reflect.Int32:
		return "INTEGER", true
	case reflect.Uint, reflect.Uint64:
		return "UBIGINT", true
	case reflect.Uint32:
		return "UINTEGER", true
	case reflect.Float64:
		return "DOUBLE", true
	default:
		return "", false
	}
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// Columns returns the column names in field order.
func (t *Table[T]) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for T.
func (t *Table[T]) CreateTableSQL() string {
	defs := make([]string, 0, len(t.columns)+1)
	var pks []string
	for _, c := range t.columns {
		def := c.name + " " + c.sqlType
		if c.pk {
			def += " NOT NULL"
			pks = append(pks, c.name)
		}
		defs = append(defs, def)
	}
	if len(pks) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	// #nosec G201 - table and column names come from struct tags
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", t.name, strings.Join(defs, ",\n\t"))
}

// CreateTable creates the table when it does not exist.
func (t *Table[T]) CreateTable(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, t.CreateTableSQL()); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.name, err)
	}
	return nil
}

// upsertSQL builds the INSERT statement, with an ON CONFLICT clause when the
// table has a primary key. PK and immutable columns are never updated.
func (t *Table[T]) upsertSQL(onConflict bool) string {
	placeholders := make([]string, len(t.columns))
	var updates, pks []string
	for i, c := range t.columns {
		placeholders[i] = "?"
		if c.pk {
			pks = append(pks, c.name)
			continue
		}
		if !c.immutable {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", c.name, c.name))
		}
	}

	// #nosec G201 - table and column names come from struct tags
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name,
		strings.Join(t.Columns(), ", "),
		strings.Join(placeholders, ", "),
	)
	if onConflict && len(pks) > 0 {
		action := "DO NOTHING"
		if len(updates) > 0 {
			action = "DO UPDATE SET " + strings.Join(updates, ", ")
		}
		query += fmt.Sprintf(" ON CONFLICT (%s) %s", strings.Join(pks, ", "), action)
	}
	return query
}

func (t *Table[T]) values(item *T) []any {
	val := reflect.ValueOf(item).Elem()
	values := make([]any, len(t.columns))
	for i, c := range t.columns {
		values[i] = val.Field(c.field).Interface()
	}
	return values
}

// Upsert inserts item or updates the row with the same primary key.
func (t *Table[T]) Upsert(ctx context.Context, item *T) error {
	query := t.upsertSQL(true)
	values := t.values(item)
	return retry.Do(ctx, retry.Conflicts(), func() error {
		_, err := t.db.ExecContext(ctx, query, values...)
		return err
	}, IsTransactionConflict)
}

// Insert inserts item and fails on a duplicate primary key.
func (t *Table[T]) Insert(ctx context.Context, item *T) error {
	_, err := t.db.ExecContext(ctx, t.upsertSQL(false), t.values(item)...)
	return err
}

// BatchUpsert upserts items through one prepared statement. On a *sql.DB the
// batch runs in its own transaction, retried as a whole on conflicts; on a
// *sql.Tx it joins the caller's transaction.
func (t *Table[T]) BatchUpsert(ctx context.Context, items []*T) error {
	if len(items) == 0 {
		return nil
	}
	query := t.upsertSQL(true)

	switch d := t.db.(type) {
	case *sql.Tx:
		return t.execBatch(ctx, d, query, items)
	case *sql.DB:
		return retry.Do(ctx, retry.Conflicts(), func() (err error) {
			tx, err := d.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin tx: %w", err)
			}
			defer func() {
				if err != nil {
					_ = tx.Rollback()
				}
			}()
			if err = t.execBatch(ctx, tx, query, items); err != nil {
				return err
			}
			if err = tx.Commit(); err != nil {
				return fmt.Errorf("commit: %w", err)
			}
			return nil
		}, IsTransactionConflict)
	default:
		return fmt.Errorf("unsupported Execer type for BatchUpsert: %T", t.db)
	}
}

func (t *Table[T]) execBatch(ctx context.Context, tx *sql.Tx, query string, items []*T) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, t.values(item)...); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// Get retrieves the row whose primary key columns equal key, in PK order.
// It returns sql.ErrNoRows when nothing matches.
func (t *Table[T]) Get(ctx context.Context, key ...any) (*T, error) {
	var pks []string
	for _, c := range t.columns {
		if c.pk {
			pks = append(pks, c.name+" = ?")
		}
	}
	if len(pks) == 0 {
		return nil, ErrNoPrimaryKey
	}
	if len(key) != len(pks) {
		return nil, fmt.Errorf("table %s has %d primary key columns, got %d values", t.name, len(pks), len(key))
	}

	// #nosec G201 - table and column names come from struct tags
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		strings.Join(t.Columns(), ", "), t.name, strings.Join(pks, " AND "))

	item, dest := t.scanTarget()
	if err := t.db.QueryRowContext(ctx, query, key...).Scan(dest...); err != nil {
		return nil, err
	}
	return item, nil
}

// List retrieves all rows matching the "column = value" filters, ordered by
// primary key.
func (t *Table[T]) List(ctx context.Context, filters map[string]any) ([]*T, error) {
	b := NewQueryBuilder(t.name).Select(t.Columns()...)

	// Sorted for a stable statement text.
	cols := make([]string, 0, len(filters))
	for col := range filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		b.Where(col+" = ?", filters[col])
	}
	for _, c := range t.columns {
		if c.pk {
			b.OrderBy(c.name)
		}
	}

	query, args, err := b.Build()
	if err != nil {
		return nil, err
	}
	return t.Query(ctx, query, args...)
}

// Query runs a SELECT whose result columns are exactly Columns(), in order.
func (t *Table[T]) Query(ctx context.Context, query string, args ...any) ([]*T, error) {
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []*T
	for rows.Next() {
		item, dest := t.scanTarget()
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Delete removes rows matching the "column = value" filters and returns the
// number of rows removed. At least one filter is required.
func (t *Table[T]) Delete(ctx context.Context, filters map[string]any) (int64, error) {
	if len(filters) == 0 {
		return 0, errors.New("refusing to delete without filters")
	}
	cols := make([]string, 0, len(filters))
	for col := range filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	clauses := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		clauses[i] = col + " = ?"
		args[i] = filters[col]
	}

	// #nosec G201 - table and column names come from struct tags
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", t.name, strings.Join(clauses, " AND "))
	res, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanTarget returns a fresh item and pointers to its columns.
func (t *Table[T]) scanTarget() (*T, []any) {
	var item T
	val := reflect.ValueOf(&item).Elem()
	dest := make([]any, len(t.columns))
	for i, c := range t.columns {
		dest[i] = val.Field(c.field).Addr().Interface()
	}
	return &item, dest
}

// IsTransactionConflict reports whether err is a DuckDB write-write conflict
// that may succeed when the transaction is retried.
func IsTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Conflict on update") ||
		strings.Contains(msg, "conflict") ||
		strings.Contains(msg, "TransactionContext Error") ||
		strings.Contains(msg, "serialization")
}
