package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeExactMatch(t *testing.T) {
	e, err := NewEntities()
	require.NoError(t, err)

	name, err := e.Canonicalize(CategoryCmd, "add")
	require.NoError(t, err)
	assert.Equal(t, "add", name)
}

func TestCanonicalizeUniquePrefix(t *testing.T) {
	e, err := NewEntities()
	require.NoError(t, err)

	name, err := e.Canonicalize(CategoryCmd, "mod")
	require.NoError(t, err)
	assert.Equal(t, "modify", name)
}

func TestCanonicalizeShortThenUniquePrefix(t *testing.T) {
	e, err := NewEntities()
	require.NoError(t, err)

	_, err = e.Canonicalize(CategoryCmd, "d")
	assert.Error(t, err) // too short (<3 chars)

	_, err = e.Canonicalize(CategoryCmd, "don")
	// "don" -> only "done" matches, unambiguous
	assert.NoError(t, err)
}

func TestCanonicalizeUnknown(t *testing.T) {
	e, err := NewEntities()
	require.NoError(t, err)

	_, err = e.Canonicalize(CategoryCmd, "zzzz")
	assert.Error(t, err)
}

func TestIsReadWriteCommand(t *testing.T) {
	e, err := NewEntities()
	require.NoError(t, err)

	assert.True(t, e.IsReadCommand("list"))
	assert.False(t, e.IsReadCommand("add"))
	assert.True(t, e.IsWriteCommand("add"))
	assert.False(t, e.IsWriteCommand("list"))
}

func TestAddUDAThenCanonicalize(t *testing.T) {
	e, err := NewEntities()
	require.NoError(t, err)

	e.Add(CategoryUDA, "estimate")
	e.Add(CategoryAttr, "estimate")

	name, err := e.Canonicalize(CategoryAttr, "estim")
	require.NoError(t, err)
	assert.Equal(t, "estimate", name)
}
