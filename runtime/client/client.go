// Package client owns the database connection and the per-table registry.
package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/abushkanya/connector/query/builder"
	"github.com/abushkanya/connector/query/sqlgen"
	"github.com/abushkanya/connector/schema"
)

// Client is the main database handle. It may be shared across any number of
// table handles; each compiled statement acquires one pooled connection for
// the duration of its execution.
type Client struct {
	db       *sql.DB
	provider string
	gen      *sqlgen.Generator
	tables   map[string]*schema.Table
	order    []string
	stmts    *stmtCache
}

// NewClient opens a connection and builds the table registry from the
// declared specs. An empty locale set falls back to the default locales.
func NewClient(provider, dsn string, specs []schema.TableSpec, locales []string) (*Client, error) {
	driverName := driverFor(provider)
	if driverName == "" {
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	return NewClientFromDB(provider, db, specs, locales)
}

// NewClientFromDB wraps an existing connection.
func NewClientFromDB(provider string, db *sql.DB, specs []schema.TableSpec, locales []string) (*Client, error) {
	c := &Client{
		db:       db,
		provider: provider,
		gen:      sqlgen.NewGenerator(provider),
		tables:   make(map[string]*schema.Table),
		stmts:    newStmtCache(db, stmtCacheSize),
	}
	for _, spec := range specs {
		table, err := schema.NewTable(spec, locales)
		if err != nil {
			return nil, err
		}
		c.tables[spec.Name] = table
		c.order = append(c.order, spec.Name)
	}
	return c, nil
}

// driverFor maps provider names to Go database driver names.
func driverFor(provider string) string {
	switch provider {
	case "postgresql", "postgres":
		return "postgres"
	case "mysql":
		return "mysql"
	case "sqlite":
		return "sqlite3"
	default:
		return ""
	}
}

// Connect verifies the connection is usable.
func (c *Client) Connect(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Disconnect closes the connection pool.
func (c *Client) Disconnect(ctx context.Context) error {
	c.stmts.invalidate()
	return c.db.Close()
}

// DB returns the underlying connection pool.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Provider returns the configured provider name.
func (c *Client) Provider() string {
	return c.provider
}

// Generator returns the SQL generator for this client's provider.
func (c *Client) Generator() *sqlgen.Generator {
	return c.gen
}

// Table returns a fresh builder handle for a registered table. Handles are
// cheap to construct; callers get a new one per chain.
func (c *Client) Table(name string) (*builder.TableHandle, error) {
	table, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, ErrUnknownTable)
	}
	return builder.New(table, c.gen, c), nil
}

// Tables returns the registered tables in declaration order.
func (c *Client) Tables() []*schema.Table {
	out := make([]*schema.Table, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tables[name])
	}
	return out
}

// QueryContext runs a query through the prepared statement cache, retrying
// once after a connection failure.
func (c *Client) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	stmt, err := c.stmts.get(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil && c.reconnect(ctx, err) {
		return stmt.QueryContext(ctx, args...)
	}
	return rows, err
}

// ExecContext runs a statement through the prepared statement cache,
// retrying once after a connection failure.
func (c *Client) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	stmt, err := c.stmts.get(ctx, query)
	if err != nil {
		return nil, err
	}
	result, err := stmt.ExecContext(ctx, args...)
	if err != nil && c.reconnect(ctx, err) {
		return stmt.ExecContext(ctx, args...)
	}
	return result, err
}

// StmtCacheStats reports prepared statement cache counters.
func (c *Client) StmtCacheStats() CacheStats {
	return c.stmts.Stats()
}

// BeginTx starts a transaction.
func (c *Client) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, opts)
}

// reconnect reports whether a failed call is worth one retry. The pool
// re-dials on ping, so a successful ping means a fresh connection is
// available.
func (c *Client) reconnect(ctx context.Context, err error) bool {
	if !errors.Is(ClassifyError(err), ErrConnectionFailed) {
		return false
	}
	return c.db.PingContext(ctx) == nil
}

var _ builder.Executor = (*Client)(nil)
