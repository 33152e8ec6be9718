package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.db")
	db, err := Open(path, DefaultConfig())
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	return path
}

func TestOpen_AppliesPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	db, err := Open(path, DefaultConfig())
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode;").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestVerifyIntegrity_HealthyStore(t *testing.T) {
	path := newStore(t)

	for _, mode := range []CheckMode{CheckQuick, CheckFull} {
		diags, err := VerifyIntegrity(path, mode)
		require.NoError(t, err)
		assert.Nil(t, diags)
	}
}

func TestVerifyIntegrity_CorruptStore(t *testing.T) {
	path := newStore(t)

	// Clobber the page payload past the 100-byte header.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	for i := 100; i < len(raw); i++ {
		raw[i] = 0xFF
	}
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	diags, err := VerifyIntegrity(path, CheckFull)
	if err == nil {
		assert.NotEmpty(t, diags)
	}
}
