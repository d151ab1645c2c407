package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesNameValueAndSections(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "taskrc", `
# comment
data.location=~/.task
default.command=list
alias.lsp=list project:
uda.estimate.type=duration
uda.estimate.label=Estimate
report.next.columns=id,description
holiday.christmas.name=Christmas
holiday.christmas.date=2026-12-25
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "list", c.DefaultCommand())
	assert.Equal(t, "list project:", c.Aliases["lsp"])
	assert.Equal(t, "duration", c.UDAs["estimate"]["type"])
	assert.Equal(t, "Estimate", c.UDAs["estimate"]["label"])
	assert.Equal(t, "id,description", c.Reports["next"]["columns"])
	assert.Equal(t, "Christmas", c.Holidays["christmas"]["name"])
	assert.Contains(t, c.Entities.Names(CategoryUDA), "estimate")
	assert.Contains(t, c.Entities.Names(CategoryAttr), "estimate")
}

func TestLoadFollowsInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.rc", "default.command=next\n")
	path := writeFile(t, dir, "taskrc", "include base.rc\nquiet=on\n")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "next", c.DefaultCommand())
	assert.Equal(t, "on", c.Values["quiet"])
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(filepath.Join(dir, "missing-rc"))
	require.NoError(t, err)
	assert.Empty(t, c.Values)
}

func TestMalformedLineIsParseError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "taskrc", "this is not valid\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "taskrc", "default.command=list\n")
	c, err := Load(path)
	require.NoError(t, err)

	c.ApplyOverride("default.command", "next")
	assert.Equal(t, "next", c.DefaultCommand())
}
