package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersSpec() TableSpec {
	return TableSpec{
		Name: "users",
		Columns: []ColumnSpec{
			{Name: "id", Type: "serial", PrimaryKey: true},
			{Name: "username", Type: "varchar(255)", Unique: true, NotNull: true},
			{Name: "description", Type: "text", Multilingual: true},
		},
	}
}

func TestNewTable_ExpandsMultilingualColumns(t *testing.T) {
	table, err := NewTable(usersSpec(), nil)
	require.NoError(t, err)

	expected := []string{"id", "username", "description_ru", "description_en", "description_cn"}
	assert.Equal(t, expected, table.ColumnNames())
	assert.Equal(t, "id", table.PrimaryKey())
}

func TestExpand_DefaultLocalePolicy(t *testing.T) {
	spec := ColumnSpec{Name: "title", Type: "text", Unique: true, NotNull: true, Multilingual: true}
	columns := Expand(spec, []string{"ru", "en"})

	require.Len(t, columns, 2)
	assert.Equal(t, "title_ru", columns[0].Name)
	assert.True(t, columns[0].Unique)
	assert.True(t, columns[0].NotNull)

	// Secondary locales are always nullable and never unique.
	assert.Equal(t, "title_en", columns[1].Name)
	assert.False(t, columns[1].Unique)
	assert.False(t, columns[1].NotNull)
}

func TestResolveColumn(t *testing.T) {
	table, err := NewTable(usersSpec(), nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain column", input: "username", want: "username"},
		{name: "logical defaults to first locale", input: "description", want: "description_ru"},
		{name: "explicit locale suffix", input: "description_en", want: "description_en"},
		{name: "unknown locale suffix", input: "description_de", wantErr: ErrUnknownLocale},
		{name: "unknown column", input: "missing", wantErr: ErrInvalidColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.ResolveColumn(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveWriteKey_LocaleRouting(t *testing.T) {
	table, err := NewTable(usersSpec(), []string{"en", "ru"})
	require.NoError(t, err)

	got, err := table.ResolveWriteKey("description")
	require.NoError(t, err)
	assert.Equal(t, "description_en", got)

	got, err = table.ResolveWriteKey("description_ru")
	require.NoError(t, err)
	assert.Equal(t, "description_ru", got)
}

func TestValidateLocales(t *testing.T) {
	require.NoError(t, ValidateLocales([]string{"ru", "en", "cn"}))
	require.Error(t, ValidateLocales([]string{"!!"}))
}

func TestNewTable_DuplicateColumn(t *testing.T) {
	spec := TableSpec{
		Name: "broken",
		Columns: []ColumnSpec{
			{Name: "name_en", Type: "text"},
			{Name: "name", Type: "text", Multilingual: true},
		},
	}
	_, err := NewTable(spec, []string{"en"})
	require.Error(t, err)
}
