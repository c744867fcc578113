package duckdb

import (
	"database/sql"
	"net/url"
	"strconv"
	"strings"

	duckdbDriver "github.com/marcboeker/go-duckdb"
)

// Option sets a DuckDB configuration parameter in the DSN.
type Option func(params url.Values)

// ReadOnly opens the database with access_mode=READ_ONLY, so several query
// processes can share one file.
func ReadOnly() Option {
	return func(p url.Values) { p.Set("access_mode", "READ_ONLY") }
}

// Threads limits DuckDB's worker threads.
func Threads(n int) Option {
	return func(p url.Values) { p.Set("threads", strconv.Itoa(n)) }
}

// OpenDB opens the DuckDB database at path. An empty path or ":memory:" opens
// an in-memory database, which ignores options.
func OpenDB(path string, opts ...Option) (*sql.DB, error) {
	connector, err := duckdbDriver.NewConnector(withParams(path, opts), nil)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

// withParams applies opts to the DSN query string. Parameters already present
// in the DSN win over options.
func withParams(dsn string, opts []Option) string {
	if dsn == "" || dsn == ":memory:" || len(opts) == 0 {
		return dsn
	}

	path, query, _ := strings.Cut(dsn, "?")
	existing, err := url.ParseQuery(query)
	if err != nil {
		// Leave DSNs we cannot parse to the driver.
		return dsn
	}

	params := url.Values{}
	for _, opt := range opts {
		opt(params)
	}
	for k, v := range existing {
		params[k] = v
	}

	return path + "?" + params.Encode()
}
