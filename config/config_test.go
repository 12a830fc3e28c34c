package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `provider: postgres
host: db.internal
user: app
password: secret
database: appdata
locales: [ru, en]
tables:
  - name: users
    columns:
      - name: id
        type: serial
        primary: true
      - name: username
        type: varchar(255)
        unique: true
        not_null: true
      - name: description
        type: text
        langs: true
`

func withMemFs(t *testing.T) afero.Fs {
	t.Helper()
	orig := AppFs
	AppFs = afero.NewMemMapFs()
	t.Cleanup(func() { AppFs = orig })
	return AppFs
}

func TestLoadFile(t *testing.T) {
	fs := withMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "/etc/connector.yaml", []byte(sampleConfig), 0644))

	cfg, err := LoadFile("/etc/connector.yaml")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Provider)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, []string{"ru", "en"}, cfg.Locales)

	require.Len(t, cfg.Tables, 1)
	table := cfg.Tables[0]
	assert.Equal(t, "users", table.Name)
	require.Len(t, table.Columns, 3)
	assert.True(t, table.Columns[0].PrimaryKey)
	assert.True(t, table.Columns[1].Unique)
	assert.True(t, table.Columns[2].Multilingual)
}

func TestLoadFile_Missing(t *testing.T) {
	withMemFs(t)
	_, err := LoadFile("/nope.yaml")
	assert.Error(t, err)
}

func TestDefaultLocales(t *testing.T) {
	fs := withMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "/min.yaml", []byte("provider: sqlite\ndatabase: app.db\n"), 0644))

	cfg, err := LoadFile("/min.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"ru", "en", "cn"}, cfg.Locales)
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "postgres",
			cfg:  Config{Provider: "postgres", Host: "localhost", Port: 5432, User: "app", Password: "pw", Database: "appdata"},
			want: "host=localhost port=5432 user=app dbname=appdata sslmode=disable password=pw",
		},
		{
			name: "postgres without password",
			cfg:  Config{Provider: "postgres", Host: "localhost", Port: 5432, User: "app", Database: "appdata"},
			want: "host=localhost port=5432 user=app dbname=appdata sslmode=disable",
		},
		{
			name: "mysql",
			cfg:  Config{Provider: "mysql", Host: "localhost", Port: 3306, User: "app", Password: "pw", Database: "appdata"},
			want: "app:pw@tcp(localhost:3306)/appdata?parseTime=true",
		},
		{
			name: "sqlite",
			cfg:  Config{Provider: "sqlite", Database: ":memory:"},
			want: ":memory:",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
