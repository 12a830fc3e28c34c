package client

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abushkanya/connector/schema"
)

func testSpecs() []schema.TableSpec {
	return []schema.TableSpec{
		{
			Name: "users",
			Columns: []schema.ColumnSpec{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "username", Type: "text", Unique: true, NotNull: true},
			},
		},
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "deadline", err: context.DeadlineExceeded, want: ErrTimeout},
		{name: "canceled", err: context.Canceled, want: ErrCanceled},
		{name: "bad conn", err: driver.ErrBadConn, want: ErrConnectionFailed},
		{name: "refused", err: errors.New("dial tcp: connection refused"), want: ErrConnectionFailed},
		{name: "unique", err: errors.New(`duplicate key value violates unique constraint "users_username_key"`), want: ErrUniqueConstraint},
		{name: "fk", err: errors.New("foreign key constraint failed"), want: ErrForeignKeyConstraint},
		{name: "not null", err: errors.New("NOT NULL constraint failed: users.username"), want: ErrNullConstraint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestClassifyError_PassThrough(t *testing.T) {
	plain := errors.New("syntax error at or near SELECT")
	assert.Equal(t, plain, ClassifyError(plain))
}

func TestClient_Lifecycle(t *testing.T) {
	ctx := context.Background()

	c, err := NewClient("sqlite", ":memory:", testSpecs(), nil)
	require.NoError(t, err)
	// In-memory sqlite exists per connection; pin the pool to one.
	c.DB().SetMaxOpenConns(1)
	require.NoError(t, c.Connect(ctx))
	defer c.Disconnect(ctx)

	_, err = c.DB().ExecContext(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY, username TEXT UNIQUE NOT NULL)`)
	require.NoError(t, err)

	h, err := c.Table("users")
	require.NoError(t, err)

	affected, err := h.Add(map[string]interface{}{"id": 1, "username": "alice"}).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = c.Table("missing")
	require.ErrorIs(t, err, ErrUnknownTable)
}

func TestClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient("oracle", "dsn", nil, nil)
	require.Error(t, err)
}

func TestClient_ServerVersion(t *testing.T) {
	ctx := context.Background()

	c, err := NewClient("sqlite", ":memory:", nil, nil)
	require.NoError(t, err)
	defer c.Disconnect(ctx)

	v, err := c.ServerVersion(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^\d+\.\d+`, v)

	require.NoError(t, c.RequireServerVersion(ctx, "3.0"))
	require.Error(t, c.RequireServerVersion(ctx, "999.0"))
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()

	c, err := NewClient("sqlite", ":memory:", testSpecs(), nil)
	require.NoError(t, err)
	c.DB().SetMaxOpenConns(1)
	defer c.Disconnect(ctx)

	_, err = c.DB().ExecContext(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY, username TEXT)`)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = c.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (id, username) VALUES (1, 'alice')`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, c.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Zero(t, count)
}
