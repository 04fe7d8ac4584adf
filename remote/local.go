package remote

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/packdock/packdock/core"
)

// Local is an FS over a directory on the local machine, used when the panel
// and the instance share a host.
type Local struct {
	base   string
	client *http.Client
}

// NewLocal returns an FS rooted at base.
func NewLocal(base string) *Local {
	return &Local{
		base:   base,
		client: &http.Client{Timeout: TransferTimeout},
	}
}

// resolve maps a slash path onto the base directory, rejecting escapes. The
// path is cleaned before prefixing the base so leading ".." segments are
// still visible to the check instead of silently collapsing into the root.
func (l *Local) resolve(p string) (string, error) {
	cleaned := path.Clean(strings.TrimPrefix(p, "/"))
	if cleaned == "." {
		return l.base, nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path %s escapes the instance root", p)
	}
	return filepath.Join(l.base, filepath.FromSlash(cleaned)), nil
}

func (l *Local) List(_ context.Context, p string) ([]Entry, error) {
	dir, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, p)
		}
		return nil, err
	}
	res := make([]Entry, 0, len(entries))
	for _, e := range entries {
		entry := Entry{
			Name: e.Name(),
			Path: path.Join(p, e.Name()),
			Dir:  e.IsDir(),
		}
		if info, err := e.Info(); err == nil {
			entry.Size = info.Size()
		}
		res = append(res, entry)
	}
	return res, nil
}

func (l *Local) Read(_ context.Context, p string) ([]byte, error) {
	name, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, p)
		}
		return nil, err
	}
	return data, nil
}

func (l *Local) Write(_ context.Context, p string, data []byte) error {
	name, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return err
	}
	return os.WriteFile(name, data, 0644)
}

func (l *Local) Move(_ context.Context, from, to string) error {
	src, err := l.resolve(from)
	if err != nil {
		return err
	}
	dst, err := l.resolve(to)
	if err != nil {
		return err
	}
	// The destination is replaced wholesale below; replacing the root itself
	// would take the whole instance with it.
	if dst == l.base {
		return fmt.Errorf("refusing to replace the instance root")
	}
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotExist, from)
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	// The destination is replaced wholesale; os.Rename only does that for
	// files, so clear a pre-existing directory first.
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	return os.Rename(src, dst)
}

func (l *Local) Delete(_ context.Context, p string) error {
	name, err := l.resolve(p)
	if err != nil {
		return err
	}
	if name == l.base {
		return fmt.Errorf("refusing to delete the instance root")
	}
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotExist, p)
		}
		return err
	}
	return os.RemoveAll(name)
}

func (l *Local) Mkdir(_ context.Context, p string) error {
	name, err := l.resolve(p)
	if err != nil {
		return err
	}
	return os.MkdirAll(name, 0755)
}

func (l *Local) Download(ctx context.Context, p, url, sha1 string) error {
	name, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", core.UserAgent)
	res, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("unexpected response status for %s: %s", url, res.Status)
	}

	// Download to a temp file next to the destination and rename into place
	// once the digest checks out, so a torn transfer never lands on the path.
	tmp, err := os.CreateTemp(filepath.Dir(name), ".packdock-dl-")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	h, err := core.GetHashImpl("sha1")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, io.TeeReader(res.Body, h)); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if sha1 != "" {
		actual := hex.EncodeToString(h.Sum(nil))
		if !core.HashesEqual(actual, sha1) {
			return fmt.Errorf("hash mismatch for %s: got %s, expected %s", p, actual, sha1)
		}
	}
	return os.Rename(tmp.Name(), name)
}
