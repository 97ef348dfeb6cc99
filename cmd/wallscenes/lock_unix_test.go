//go:build !windows

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock_ReleaseAllowsReacquire(t *testing.T) {
	dir := t.TempDir()

	ok, err := acquireLock(dir)
	require.NoError(t, err)
	assert.True(t, ok)
	releaseLock()
	lockFile = nil

	ok, err = acquireLock(dir)
	require.NoError(t, err)
	assert.True(t, ok)
	releaseLock()
	lockFile = nil
}

func TestAcquireLock_MissingDir(t *testing.T) {
	_, err := acquireLock(t.TempDir() + "/missing")
	assert.Error(t, err)
}
