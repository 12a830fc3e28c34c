package backup

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abushkanya/connector/migrate"
	"github.com/abushkanya/connector/runtime/client"
	"github.com/abushkanya/connector/schema"
)

func testSpecs() []schema.TableSpec {
	return []schema.TableSpec{
		{
			Name: "users",
			Columns: []schema.ColumnSpec{
				{Name: "id", Type: "serial", PrimaryKey: true},
				{Name: "username", Type: "varchar(255)", Unique: true, NotNull: true},
				{Name: "description", Type: "text", Multilingual: true},
			},
		},
	}
}

// newInstance opens a fresh sqlite instance with the declared schema applied.
func newInstance(t *testing.T) *client.Client {
	t.Helper()
	c, err := client.NewClient("sqlite", ":memory:", testSpecs(), nil)
	require.NoError(t, err)
	// In-memory sqlite exists per connection; pin the pool to one.
	c.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { c.Disconnect(context.Background()) })

	_, _, err = migrate.New(c).Push(context.Background())
	require.NoError(t, err)
	return c
}

func seedUsers(t *testing.T, c *client.Client, rows ...map[string]interface{}) {
	t.Helper()
	h, err := c.Table("users")
	require.NoError(t, err)
	for _, row := range rows {
		h.Add(row)
	}
	_, err = h.Exec(context.Background())
	require.NoError(t, err)
}

func TestBackup_SnapshotsRows(t *testing.T) {
	ctx := context.Background()
	c := newInstance(t)
	seedUsers(t, c,
		map[string]interface{}{"id": 1, "username": "alice", "description_en": "first"},
		map[string]interface{}{"id": 2, "username": "bob"},
	)

	dump, err := Backup(ctx, c)
	require.NoError(t, err)

	assert.NotEmpty(t, dump.ID)
	assert.Equal(t, "sqlite", dump.Provider)
	require.Len(t, dump.Tables, 1)

	td := dump.Tables[0]
	assert.Equal(t, "users", td.Name)
	assert.Equal(t, []string{"id", "username", "description_ru", "description_en", "description_cn"}, td.Columns)
	require.Len(t, td.Rows, 2)
	assert.Equal(t, "alice", td.Rows[0][1])
}

func TestDump_FileRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newInstance(t)
	seedUsers(t, c, map[string]interface{}{"id": 1, "username": "alice"})

	dump, err := Backup(ctx, c)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, dump.WriteFile(fs, "/dump.json"))

	loaded, err := ReadDumpFile(fs, "/dump.json")
	require.NoError(t, err)
	assert.Equal(t, dump.ID, loaded.ID)
	require.Len(t, loaded.Tables, 1)
	assert.Equal(t, dump.Tables[0].Columns, loaded.Tables[0].Columns)
}

func TestRestore_RoundTripLaw(t *testing.T) {
	ctx := context.Background()
	source := newInstance(t)
	seedUsers(t, source,
		map[string]interface{}{"id": 1, "username": "alice", "description_ru": "привет", "description_en": "hello"},
		map[string]interface{}{"id": 2, "username": "bob", "description_cn": "你好"},
	)

	first, err := Backup(ctx, source)
	require.NoError(t, err)

	// Serialize through the on-disk format before restoring.
	fs := afero.NewMemMapFs()
	require.NoError(t, first.WriteFile(fs, "/dump.json"))
	loaded, err := ReadDumpFile(fs, "/dump.json")
	require.NoError(t, err)

	fresh, err := client.NewClient("sqlite", ":memory:", testSpecs(), nil)
	require.NoError(t, err)
	fresh.DB().SetMaxOpenConns(1)
	defer fresh.Disconnect(ctx)

	report, err := Restore(ctx, fresh, loaded)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TablesRestored)
	assert.Equal(t, int64(2), report.RowsInserted)
	assert.Empty(t, report.SkippedRows)
	assert.Empty(t, report.FailedTables)

	second, err := Backup(ctx, fresh)
	require.NoError(t, err)
	require.Len(t, second.Tables, 1)
	assert.Equal(t, first.Tables[0].Columns, second.Tables[0].Columns)
	assert.Equal(t, first.Tables[0].Rows, second.Tables[0].Rows)
}

func TestRestore_SkipsFailingRows(t *testing.T) {
	ctx := context.Background()
	source := newInstance(t)
	seedUsers(t, source,
		map[string]interface{}{"id": 1, "username": "alice"},
		map[string]interface{}{"id": 2, "username": "bob"},
	)

	dump, err := Backup(ctx, source)
	require.NoError(t, err)

	target := newInstance(t)
	// Occupies alice's username under a different id: that one dumped row
	// must be skipped, the rest restored.
	seedUsers(t, target, map[string]interface{}{"id": 10, "username": "alice"})

	report, err := Restore(ctx, target, dump)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.RowsInserted)
	require.Len(t, report.SkippedRows, 1)
	assert.Equal(t, "users", report.SkippedRows[0].Table)
	assert.Equal(t, 0, report.SkippedRows[0].RowIndex)
}

func TestSync_Delta(t *testing.T) {
	ctx := context.Background()
	source := newInstance(t)
	target := newInstance(t)

	seedUsers(t, source,
		map[string]interface{}{"id": 1, "username": "alice", "description_en": "new"},
		map[string]interface{}{"id": 2, "username": "bob"},
		map[string]interface{}{"id": 3, "username": "carol"},
	)
	seedUsers(t, target,
		map[string]interface{}{"id": 1, "username": "alice", "description_en": "old"},
		map[string]interface{}{"id": 9, "username": "zoe"},
	)

	report, err := Sync(ctx, source, target)
	require.NoError(t, err)
	assert.Empty(t, report.FailedTables)
	assert.Equal(t, int64(2), report.Inserted())
	assert.Equal(t, int64(1), report.Updated())

	// Rows present only in the target are never deleted.
	h, err := target.Table("users")
	require.NoError(t, err)
	row, err := h.Get(9).First(ctx)
	require.NoError(t, err)
	assert.Equal(t, "zoe", row["username"])

	row, err = h.Get(1).First(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", row["description_en"])
}

func TestSync_SecondRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	source := newInstance(t)
	target := newInstance(t)

	seedUsers(t, source,
		map[string]interface{}{"id": 1, "username": "alice"},
		map[string]interface{}{"id": 2, "username": "bob"},
	)

	first, err := Sync(ctx, source, target)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.Inserted())

	second, err := Sync(ctx, source, target)
	require.NoError(t, err)
	assert.Zero(t, second.Inserted())
	assert.Zero(t, second.Updated())
}
