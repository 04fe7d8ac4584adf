// Package remote defines the command surface of an instance file tree, which
// may live on the local machine or behind an agent node. All paths are
// forward-slash paths relative to the instance root.
package remote

import (
	"context"
	"errors"
	"time"
)

// ErrNotExist is returned by Read, List, Move and Delete when the path is
// absent from the tree.
var ErrNotExist = errors.New("path does not exist")

// Entry is a single item in a directory listing.
type Entry struct {
	Name string
	Path string
	Dir  bool
	Size int64
}

// FS is the remote filesystem command API. Each call carries its own timeout;
// calls are individually at-least-once-attempted but not atomic as a group.
//
// Write and Download create missing parent directories. Move replaces
// anything at the destination.
type FS interface {
	List(ctx context.Context, path string) ([]Entry, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Move(ctx context.Context, from, to string) error
	Delete(ctx context.Context, path string) error
	Mkdir(ctx context.Context, path string) error
	// Download fetches url into path on the remote side. A non-empty sha1
	// makes the transfer fail on digest mismatch; an empty sha1 skips
	// verification.
	Download(ctx context.Context, path, url, sha1 string) error
}

// Per-call timeouts, matching the limits enforced by agent nodes.
const (
	MetaTimeout     = 10 * time.Second
	WriteTimeout    = 1 * time.Minute
	TransferTimeout = 10 * time.Minute
)

// WalkFiles returns the set of file paths under root, recursively. A missing
// root yields an empty set.
func WalkFiles(ctx context.Context, fsys FS, root string) (map[string]bool, error) {
	found := make(map[string]bool)

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := fsys.List(ctx, dir)
		if err != nil {
			if errors.Is(err, ErrNotExist) {
				return nil
			}
			return err
		}
		for _, e := range entries {
			if e.Dir {
				if err := walk(e.Path); err != nil {
					return err
				}
			} else {
				found[e.Path] = true
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return found, nil
}
