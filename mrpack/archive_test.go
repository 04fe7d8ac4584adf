package mrpack

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestArchive(t *testing.T, files map[string]string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "pack.mrpack")
	f, err := os.Create(name)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for entry, content := range files {
		w, err := zw.Create(entry)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return name
}

func TestArchiveIndex(t *testing.T) {
	name := writeTestArchive(t, map[string]string{
		"modrinth.index.json": sampleIndex,
	})
	a, err := Open(name)
	require.NoError(t, err)
	defer a.Close()

	idx, err := a.Index()
	require.NoError(t, err)
	assert.Equal(t, "Test Pack", idx.Name)
}

func TestArchiveMissingIndex(t *testing.T) {
	name := writeTestArchive(t, map[string]string{
		"overrides/config/a.toml": "a",
	})
	a, err := Open(name)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Index()
	assert.Error(t, err)
}

func TestArchiveOverrides(t *testing.T) {
	name := writeTestArchive(t, map[string]string{
		"modrinth.index.json":            sampleIndex,
		"overrides/config/shared.toml":   "client value",
		"overrides/config/deep/a.toml":   "deep",
		"overrides/server.properties":    "motd=hello",
		"server-overrides/config/shared.toml": "server value",
	})
	a, err := Open(name)
	require.NoError(t, err)
	defer a.Close()

	entries := a.Overrides()
	require.Len(t, entries, 4)

	// server-overrides entries come after overrides entries, so writing them
	// in order makes the server tree win for shared paths.
	byOrder := make(map[string]int)
	contents := make(map[string]string)
	for i, e := range entries {
		byOrder[e.Path+"#"+readEntry(t, e)] = i
		contents[e.Path] = readEntry(t, e)
	}
	assert.Less(t, byOrder["config/shared.toml#client value"], byOrder["config/shared.toml#server value"])
	assert.Equal(t, "deep", contents["config/deep/a.toml"])

	tops := make(map[string]bool)
	for _, e := range entries {
		tops[e.TopLevel()] = true
	}
	assert.Equal(t, map[string]bool{"config": true, "server.properties": true}, tops)
}

func TestArchiveOverridesSkipEscapingEntries(t *testing.T) {
	name := writeTestArchive(t, map[string]string{
		"modrinth.index.json":              sampleIndex,
		"overrides/../evil.txt":            "escape",
		"overrides/config/../../../up.txt": "escape",
		"overrides/..":                     "escape",
		"overrides//etc/passwd":            "escape",
		"overrides/config/ok.toml":         "fine",
	})
	a, err := Open(name)
	require.NoError(t, err)
	defer a.Close()

	entries := a.Overrides()
	require.Len(t, entries, 1, "entries resolving outside the instance root are dropped")
	assert.Equal(t, "config/ok.toml", entries[0].Path)
}

func TestArchiveNoOverrides(t *testing.T) {
	name := writeTestArchive(t, map[string]string{
		"modrinth.index.json": sampleIndex,
	})
	a, err := Open(name)
	require.NoError(t, err)
	defer a.Close()

	assert.Empty(t, a.Overrides())
}

func readEntry(t *testing.T, e OverrideEntry) string {
	t.Helper()
	rc, err := e.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}
