// Package backup serializes, restores, and synchronizes table contents
// across database instances.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/abushkanya/connector/schema"
)

// Dump is a portable snapshot of schema plus row data. The format is
// self-describing: each table carries the declaration it was produced from,
// its physical column names, and its rows in column order.
type Dump struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Provider  string      `json:"provider"`
	Locales   []string    `json:"locales"`
	Tables    []TableDump `json:"tables"`
}

// TableDump is one table's slice of a dump.
type TableDump struct {
	Name    string           `json:"name"`
	Spec    schema.TableSpec `json:"spec"`
	Columns []string         `json:"columns"`
	Rows    [][]interface{}  `json:"rows"`
}

// newDump allocates a dump with a fresh identity.
func newDump(provider string, locales []string) *Dump {
	return &Dump{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Provider:  provider,
		Locales:   locales,
	}
}

// WriteFile serializes the dump as indented JSON.
func (d *Dump) WriteFile(fs afero.Fs, path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}
	return afero.WriteFile(fs, path, data, 0644)
}

// ReadDumpFile loads a dump written by WriteFile.
func ReadDumpFile(fs afero.Fs, path string) (*Dump, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var d Dump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	return &d, nil
}

// rowMap rebuilds the column-keyed form of one dumped row.
func (td *TableDump) rowMap(row []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(td.Columns))
	for i, column := range td.Columns {
		if i < len(row) {
			m[column] = row[i]
		}
	}
	return m
}
