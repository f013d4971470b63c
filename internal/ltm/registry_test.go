package ltm

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRegisterAndKnown(t *testing.T) {
	r := openTestRegistry(t)

	known, err := r.Known('L', 1)
	require.NoError(t, err)
	assert.False(t, known)

	require.NoError(t, r.Register('L', 1))
	known, err = r.Known('L', 1)
	require.NoError(t, err)
	assert.True(t, known)

	// Idempotent.
	require.NoError(t, r.Register('L', 1))
	n, err := r.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMaxNumber(t *testing.T) {
	r := openTestRegistry(t)

	n, err := r.MaxNumber('S')
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	require.NoError(t, r.Register('S', 3))
	require.NoError(t, r.Register('S', 17))
	require.NoError(t, r.Register('T', 99))

	n, err = r.MaxNumber('S')
	require.NoError(t, err)
	assert.Equal(t, uint64(17), n)
}

func TestResetHookKeepsRegistrations(t *testing.T) {
	r := openTestRegistry(t)

	require.NoError(t, r.Register('L', 7))
	require.NoError(t, r.OnIDCountersReset())

	known, err := r.Known('L', 7)
	require.NoError(t, err)
	assert.True(t, known)
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lti.db")

	r, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, r.Register('G', 2))
	require.NoError(t, r.Close())

	r2, err := Open(path)
	require.NoError(t, err)
	defer r2.Close()
	known, err := r2.Known('G', 2)
	require.NoError(t, err)
	assert.True(t, known)
}
