package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add store regions", "add_store_regions"},
		{"Add-Store-Regions", "add_store_regions"},
		{"ADD_STORE_REGIONS", "add_store_regions"},
		{"add__store__regions", "add_store_regions"},
		{"Add Receipts 2", "add_receipts_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add store regions", "Group stores by region")
	require.NoError(t, err)

	assert.Equal(t, "000001", mf.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_store_regions.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_store_regions.down.sql"), mf.DownPath)

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add store regions")
	assert.Contains(t, string(upContent), "Group stores by region")
	assert.Contains(t, string(upContent), "Write your UP migration SQL here")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "Rollback")
	assert.Contains(t, string(downContent), "Write your DOWN migration SQL here")
}

func TestCreateMigration_NumbersAfterExisting(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"000001_init_procurement.up.sql",
		"000001_init_procurement.down.sql",
		"000007_add_regions.up.sql",
		"000007_add_regions.down.sql",
	)

	mf, err := CreateMigration(dir, "supplier terms", "")
	require.NoError(t, err)
	assert.Equal(t, "000008", mf.Version)
	assert.True(t, strings.HasSuffix(mf.UpPath, "000008_supplier_terms.up.sql"))
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable characters")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "test", "test migration")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNextVersion(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		v, err := NextVersion(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, uint64(1), v)
	})

	t.Run("ignores names without a numeric prefix", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "000003_a.up.sql", "draft_b.up.sql", "nounderscore.up.sql")
		v, err := NextVersion(dir)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), v)
	})
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"000003_add_receipts.up.sql",
		"000003_add_receipts.down.sql",
		"000001_init_procurement.up.sql",
		"000001_init_procurement.down.sql",
		"000002_add_stores.up.sql",
		"000002_add_stores.down.sql",
		"README.md",
		".gitkeep",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_init_procurement",
		"000002_add_stores",
		"000003_add_receipts",
	}, migrations)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}
