package pkg

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathExists(t *testing.T) {
	dir := t.TempDir()

	exists, err := PathExists(dir, true)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = PathExists(filepath.Join(dir, "nope"), true)
	require.NoError(t, err)
	assert.False(t, exists)

	// a dir is not a file
	exists, err = PathExists(dir, false)
	require.NoError(t, err)
	assert.False(t, exists)
}
