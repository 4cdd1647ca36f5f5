package sensitive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWordFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndMatch(t *testing.T) {
	path := writeWordFile(t, "gore\nviolence\n\n# comment\n  weapon  \n")

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Count())

	assert.True(t, f.Match("a scene full of gore"))
	assert.True(t, f.Match("WEAPON of choice"), "matching is case-insensitive")
	assert.False(t, f.Match("a peaceful sunset"))
	assert.False(t, f.Match("# comment"), "comment lines are not words")
}

func TestEmptyPathIsPermissive(t *testing.T) {
	f, err := Load("")
	require.NoError(t, err)
	assert.Zero(t, f.Count())
	assert.False(t, f.Match("anything at all"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
