package mrpack

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/packdock/packdock/core"
)

const indexFileName = "modrinth.index.json"

// Override directory names, in application order; later trees take precedence
// for server installs.
var overrideDirs = []string{"overrides", "server-overrides"}

// Archive is an opened .mrpack file.
type Archive struct {
	zr *zip.ReadCloser
}

// OverrideEntry is one file bundled under an overrides tree, with Path
// relative to the instance root.
type OverrideEntry struct {
	Path string
	file *zip.File
}

// Open opens a .mrpack archive on the local filesystem.
func Open(name string) (*Archive, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open pack archive: %v", core.ErrParse, err)
	}
	return &Archive{zr: zr}, nil
}

func (a *Archive) Close() error {
	return a.zr.Close()
}

// Index reads and parses the bundled package index.
func (a *Archive) Index() (*Index, error) {
	for _, f := range a.zr.File {
		if f.Name != indexFileName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: invalid index: %v", core.ErrParse, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: invalid index: %v", core.ErrParse, err)
		}
		return ParseIndex(data)
	}
	return nil, fmt.Errorf("%w: invalid index: no %s in archive", core.ErrParse, indexFileName)
}

// Overrides lists the bundled override files in application order. A pack
// without override trees yields an empty list. Entry names are read straight
// out of the archive, so anything that would resolve outside the instance
// root is dropped here rather than trusted downstream.
func (a *Archive) Overrides() []OverrideEntry {
	var entries []OverrideEntry
	for _, dir := range overrideDirs {
		prefix := dir + "/"
		for _, f := range a.zr.File {
			if f.Mode().IsDir() || !strings.HasPrefix(f.Name, prefix) {
				continue
			}
			rel := path.Clean(strings.TrimPrefix(f.Name, prefix))
			if !safeOverridePath(rel) {
				continue
			}
			entries = append(entries, OverrideEntry{Path: rel, file: f})
		}
	}
	return entries
}

// safeOverridePath reports whether a cleaned entry path stays inside the
// instance root.
func safeOverridePath(p string) bool {
	if p == "" || p == "." || p == ".." {
		return false
	}
	return !strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "../")
}

// Open returns a reader for the entry's content.
func (e OverrideEntry) Open() (io.ReadCloser, error) {
	return e.file.Open()
}

// TopLevel returns the first path segment of the entry.
func (e OverrideEntry) TopLevel() string {
	if i := strings.IndexByte(e.Path, '/'); i >= 0 {
		return e.Path[:i]
	}
	return e.Path
}
