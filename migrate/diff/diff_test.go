package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abushkanya/connector/migrate/introspect"
	"github.com/abushkanya/connector/schema"
)

func declaredUsers(t *testing.T) *schema.Table {
	t.Helper()
	table, err := schema.NewTable(schema.TableSpec{
		Name: "users",
		Columns: []schema.ColumnSpec{
			{Name: "id", Type: "serial", PrimaryKey: true},
			{Name: "username", Type: "varchar(255)", Unique: true, NotNull: true},
		},
	}, nil)
	require.NoError(t, err)
	return table
}

func TestReconcile_MissingTable(t *testing.T) {
	d := Reconcile([]*schema.Table{declaredUsers(t)}, &introspect.DatabaseSchema{})

	require.Len(t, d.TablesToCreate, 1)
	assert.Equal(t, "users", d.TablesToCreate[0].Name)
	assert.False(t, d.Empty())
}

func TestReconcile_MissingColumn(t *testing.T) {
	live := &introspect.DatabaseSchema{Tables: []introspect.Table{{
		Name: "users",
		Columns: []introspect.Column{
			{Name: "id", Type: "integer"},
		},
		PrimaryKey: []string{"id"},
	}}}

	d := Reconcile([]*schema.Table{declaredUsers(t)}, live)

	require.Empty(t, d.TablesToCreate)
	require.Len(t, d.ColumnsToAdd, 1)
	assert.Equal(t, "username", d.ColumnsToAdd[0].Column.Name)
}

func TestReconcile_Converged(t *testing.T) {
	live := &introspect.DatabaseSchema{Tables: []introspect.Table{{
		Name: "users",
		Columns: []introspect.Column{
			{Name: "id", Type: "integer"},
			{Name: "username", Type: "character varying"},
		},
		PrimaryKey: []string{"id"},
	}}}

	d := Reconcile([]*schema.Table{declaredUsers(t)}, live)
	assert.True(t, d.Empty())
	assert.Empty(t, d.Conflicts)
}

func TestReconcile_TypeConflict(t *testing.T) {
	live := &introspect.DatabaseSchema{Tables: []introspect.Table{{
		Name: "users",
		Columns: []introspect.Column{
			{Name: "id", Type: "integer"},
			{Name: "username", Type: "bytea"},
		},
	}}}

	d := Reconcile([]*schema.Table{declaredUsers(t)}, live)

	require.Len(t, d.Conflicts, 1)
	require.ErrorIs(t, d.ConflictError(), ErrSchemaConflict)
	// A conflict alone does not make the diff non-empty: nothing is applied.
	assert.True(t, d.Empty())
}

func TestTypesEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"serial", "INTEGER", true},
		{"varchar(255)", "character varying", true},
		{"varchar(100)", "varchar(255)", true},
		{"text", "TEXT", true},
		{"numeric", "DECIMAL", true},
		{"text", "blob", false},
		{"integer", "text", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, typesEqual(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
