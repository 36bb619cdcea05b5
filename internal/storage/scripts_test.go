package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, text string) {
	t.Helper()
	path := filepath.Join(dir, "scripts", name+ScriptExt)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func TestFileScripts_Load(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "guard", "ON INIT { ACCEPT }")
	fs := NewFileScripts(dir, 0, testLogger())

	text, err := fs.Load("guard")
	require.NoError(t, err)
	assert.Equal(t, "ON INIT { ACCEPT }", text)

	text, err = fs.Load("guard.asl")
	require.NoError(t, err)
	assert.Equal(t, "ON INIT { ACCEPT }", text)
}

func TestFileScripts_Cache(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "guard", "old")
	fs := NewFileScripts(dir, 0, testLogger())

	_, err := fs.Load("guard")
	require.NoError(t, err)
	writeScript(t, dir, "guard", "new")

	text, _ := fs.Load("guard")
	assert.Equal(t, "old", text, "cached text")

	fs.Invalidate("guard")
	text, _ = fs.Load("guard")
	assert.Equal(t, "new", text)

	writeScript(t, dir, "guard", "newer")
	fs.Invalidate("")
	text, _ = fs.Load("guard")
	assert.Equal(t, "newer", text)
}

func TestFileScripts_Errors(t *testing.T) {
	fs := NewFileScripts(t.TempDir(), 0, testLogger())

	tests := []string{"", "missing", "../escape", "/abs"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := fs.Load(name)
			assert.Error(t, err)
		})
	}
}

func TestFileScripts_List(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "guard", "")
	writeScript(t, dir, "items/key", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "notes.txt"), nil, 0o644))

	names, err := NewFileScripts(dir, 0, testLogger()).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"guard", "items/key"}, names)

	names, err = NewFileScripts(t.TempDir(), 0, testLogger()).List()
	assert.NoError(t, err)
	assert.Empty(t, names)
}
