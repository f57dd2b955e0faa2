package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSource_PairsEveryMigration(t *testing.T) {
	src := EmbeddedSource()
	assert.Equal(t, "embedded", src.String())

	entries, err := fs.ReadDir(src.fsys(), ".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
	assert.True(t, ups["000001_init_procurement"])
}

func TestEmbeddedSource_DefinesLedgerConstraints(t *testing.T) {
	body, err := fs.ReadFile(EmbeddedSource().fsys(), "000001_init_procurement.up.sql")
	require.NoError(t, err)
	sql := string(body)

	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS inventory_receipts")
	assert.Contains(t, sql, "idx_store_inventory_store_product ON store_inventory (store_id, product_id)")
	assert.Contains(t, sql, "CHECK (quantity >= 0)")
	assert.Contains(t, sql, "received_quantity <= quantity")
}

func TestSource_Driver(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		d, err := EmbeddedSource().driver()
		require.NoError(t, err)
		defer d.Close()

		first, err := d.First()
		require.NoError(t, err)
		assert.Equal(t, uint(1), first)
	})

	t.Run("directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000004_x.up.sql"), []byte("SELECT 1;"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000004_x.down.sql"), []byte("SELECT 1;"), 0o644))

		src := DirSource(dir)
		assert.Equal(t, dir, src.String())

		d, err := src.driver()
		require.NoError(t, err)
		defer d.Close()

		first, err := d.First()
		require.NoError(t, err)
		assert.Equal(t, uint(4), first)
	})
}
