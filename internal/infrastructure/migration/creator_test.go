package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Settlement Indexes")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14)
	assert.Contains(t, mf.UpPath, "add_settlement_indexes.up.sql")
	assert.Contains(t, mf.DownPath, "add_settlement_indexes.down.sql")

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "Add Settlement Indexes")

	_, err = os.Stat(mf.DownPath)
	assert.NoError(t, err)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add Settlement Indexes", "add_settlement_indexes"},
		{"create-grade-trackings", "create_grade_trackings"},
		{"weird!!chars##", "weirdchars"},
		{"trailing ", "trailing"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in), "input %q", tt.in)
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_one.up.sql"), []byte("-- up"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_one.down.sql"), []byte("-- down"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002_two.up.sql"), []byte("-- up"), 0644))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_one", "002_two"}, migrations)

	empty, err := ListMigrations(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
