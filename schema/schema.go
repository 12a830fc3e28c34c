// Package schema holds table and column declarations and their runtime form.
package schema

import (
	"fmt"
)

// ColumnSpec declares one logical column.
type ColumnSpec struct {
	Name         string `mapstructure:"name" json:"name"`
	Type         string `mapstructure:"type" json:"type"`
	PrimaryKey   bool   `mapstructure:"primary" json:"primary,omitempty"`
	Unique       bool   `mapstructure:"unique" json:"unique,omitempty"`
	NotNull      bool   `mapstructure:"not_null" json:"not_null,omitempty"`
	Multilingual bool   `mapstructure:"langs" json:"langs,omitempty"`
}

// TableSpec declares one table as an ordered sequence of columns.
type TableSpec struct {
	Name    string       `mapstructure:"name" json:"name"`
	Columns []ColumnSpec `mapstructure:"columns" json:"columns"`
}

// PhysicalColumn is an actual database column after multilingual expansion.
type PhysicalColumn struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary,omitempty"`
	Unique     bool   `json:"unique,omitempty"`
	NotNull    bool   `json:"not_null,omitempty"`
}

// Table is the runtime view of a TableSpec: physical columns in declaration
// order plus the lookup state needed to route logical names.
type Table struct {
	Name    string
	Columns []PhysicalColumn

	locales  []string
	spec     TableSpec
	physical map[string]PhysicalColumn
	logical  map[string]bool // multilingual base names
	pk       string
}

// NewTable expands a TableSpec against the configured locales.
func NewTable(spec TableSpec, locales []string) (*Table, error) {
	if len(locales) == 0 {
		locales = DefaultLocales
	}
	if err := ValidateLocales(locales); err != nil {
		return nil, err
	}

	t := &Table{
		Name:     spec.Name,
		locales:  locales,
		spec:     spec,
		physical: make(map[string]PhysicalColumn),
		logical:  make(map[string]bool),
	}

	for _, col := range spec.Columns {
		expanded := Expand(col, locales)
		for _, pc := range expanded {
			if _, exists := t.physical[pc.Name]; exists {
				return nil, fmt.Errorf("table %s: duplicate column %q", spec.Name, pc.Name)
			}
			t.Columns = append(t.Columns, pc)
			t.physical[pc.Name] = pc
		}
		if col.Multilingual {
			t.logical[col.Name] = true
		}
		if col.PrimaryKey && t.pk == "" {
			t.pk = expanded[0].Name
		}
	}

	return t, nil
}

// Spec returns the declaration this table was built from.
func (t *Table) Spec() TableSpec {
	return t.spec
}

// Locales returns the locale set the table was expanded with.
func (t *Table) Locales() []string {
	return t.locales
}

// PrimaryKey returns the primary key column name, or "" if none declared.
func (t *Table) PrimaryKey() string {
	return t.pk
}

// ColumnNames returns all physical column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether name is a physical column of the table.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.physical[name]
	return ok
}
