// Package migrate converges live database schemas to declared specs.
package migrate

import (
	"context"
	"fmt"

	"github.com/abushkanya/connector/migrate/diff"
	"github.com/abushkanya/connector/migrate/introspect"
	"github.com/abushkanya/connector/migrate/sqlgen"
	"github.com/abushkanya/connector/runtime/client"
)

// Migrator plans and applies schema convergence for one client.
type Migrator struct {
	client *client.Client
	gen    *sqlgen.Generator
}

// New creates a migrator for the client's provider.
func New(c *client.Client) *Migrator {
	return &Migrator{
		client: c,
		gen:    sqlgen.NewGenerator(c.Provider()),
	}
}

// Plan introspects the live schema and diffs it against the registered
// table specs.
func (m *Migrator) Plan(ctx context.Context) (*diff.Diff, error) {
	introspector, err := introspect.NewIntrospector(m.client.DB(), m.client.Provider())
	if err != nil {
		return nil, err
	}
	live, err := introspector.Introspect(ctx)
	if err != nil {
		return nil, fmt.Errorf("introspect: %w", err)
	}
	return diff.Reconcile(m.client.Tables(), live), nil
}

// Apply executes the convergence DDL and returns the statements it ran.
// Conflicts in the diff are left untouched; callers surface them via
// Diff.ConflictError.
func (m *Migrator) Apply(ctx context.Context, d *diff.Diff) ([]string, error) {
	statements := m.gen.GenerateDDL(d)
	for _, stmt := range statements {
		if _, err := m.client.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("apply %q: %w", stmt, err)
		}
	}
	return statements, nil
}

// Push plans and applies in one step, returning the diff for reporting.
func (m *Migrator) Push(ctx context.Context) (*diff.Diff, []string, error) {
	d, err := m.Plan(ctx)
	if err != nil {
		return nil, nil, err
	}
	statements, err := m.Apply(ctx, d)
	if err != nil {
		return d, nil, err
	}
	return d, statements, nil
}
