// Package introspect reads live database schemas.
package introspect

import (
	"context"
	"database/sql"
)

// Introspector reads the live schema of one database.
type Introspector interface {
	Introspect(ctx context.Context) (*DatabaseSchema, error)
}

// DatabaseSchema is the introspected shape of a database.
type DatabaseSchema struct {
	Tables []Table
}

// Table represents one introspected table.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
}

// Column represents one introspected column.
type Column struct {
	Name         string
	Type         string
	Nullable     bool
	DefaultValue *string
}

// TableByName returns the named table, if present.
func (s *DatabaseSchema) TableByName(name string) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// ColumnByName returns the named column, if present.
func (t *Table) ColumnByName(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// NewIntrospector creates an introspector for the given provider.
func NewIntrospector(db *sql.DB, provider string) (Introspector, error) {
	switch provider {
	case "postgresql", "postgres":
		return &PostgresIntrospector{db: db}, nil
	case "mysql":
		return &MySQLIntrospector{db: db}, nil
	case "sqlite":
		return &SQLiteIntrospector{db: db}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
