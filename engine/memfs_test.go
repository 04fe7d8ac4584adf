package engine

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/packdock/packdock/remote"
)

// memFS is an in-memory remote.FS for engine tests. Download serves content
// registered per URL and tracks the in-flight transfer count so tests can
// assert the worker pool bound.
type memFS struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool

	content map[string][]byte
	failing map[string]error

	downloads   []string
	inflight    int
	maxInflight int
	dlDelay     time.Duration
}

func newMemFS() *memFS {
	return &memFS{
		files:   make(map[string][]byte),
		dirs:    make(map[string]bool),
		content: make(map[string][]byte),
		failing: make(map[string]error),
	}
}

// serve registers downloadable content and returns its sha1 digest.
func (m *memFS) serve(url string, data []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[url] = data
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func (m *memFS) addDirs(p string) {
	for d := path.Dir(p); d != "." && d != "/"; d = path.Dir(d) {
		m.dirs[d] = true
	}
}

func (m *memFS) exists(dir string) bool {
	if dir == "" || dir == "." {
		return true
	}
	if m.dirs[dir] {
		return true
	}
	prefix := dir + "/"
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func (m *memFS) List(_ context.Context, dir string) ([]remote.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir = strings.Trim(dir, "/")
	if !m.exists(dir) {
		return nil, fmt.Errorf("%w: %s", remote.ErrNotExist, dir)
	}

	prefix := ""
	if dir != "" && dir != "." {
		prefix = dir + "/"
	}
	children := make(map[string]remote.Entry)
	for p, data := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			name := rest[:i]
			children[name] = remote.Entry{Name: name, Path: path.Join(dir, name), Dir: true}
		} else {
			children[rest] = remote.Entry{Name: rest, Path: p, Size: int64(len(data))}
		}
	}
	for d := range m.dirs {
		if !strings.HasPrefix(d, prefix) || d == dir {
			continue
		}
		rest := strings.TrimPrefix(d, prefix)
		name := rest
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			name = rest[:i]
		}
		children[name] = remote.Entry{Name: name, Path: path.Join(dir, name), Dir: true}
	}

	entries := make([]remote.Entry, 0, len(children))
	for _, e := range children {
		entries = append(entries, e)
	}
	return entries, nil
}

func (m *memFS) Read(_ context.Context, p string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", remote.ErrNotExist, p)
	}
	return data, nil
}

func (m *memFS) Write(_ context.Context, p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = data
	m.addDirs(p)
	return nil
}

func (m *memFS) Move(_ context.Context, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[from]; ok {
		m.removeLocked(to)
		m.files[to] = m.files[from]
		delete(m.files, from)
		m.addDirs(to)
		return nil
	}
	if !m.exists(from) {
		return fmt.Errorf("%w: %s", remote.ErrNotExist, from)
	}

	m.removeLocked(to)
	prefix := from + "/"
	for p, data := range m.files {
		if strings.HasPrefix(p, prefix) {
			np := to + "/" + strings.TrimPrefix(p, prefix)
			m.files[np] = data
			m.addDirs(np)
			delete(m.files, p)
		}
	}
	for d := range m.dirs {
		if d == from || strings.HasPrefix(d, prefix) {
			delete(m.dirs, d)
		}
	}
	m.dirs[to] = true
	m.addDirs(to + "/x")
	return nil
}

func (m *memFS) Delete(_ context.Context, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[p]; !ok && !m.exists(p) {
		return fmt.Errorf("%w: %s", remote.ErrNotExist, p)
	}
	m.removeLocked(p)
	return nil
}

func (m *memFS) removeLocked(p string) {
	delete(m.files, p)
	delete(m.dirs, p)
	prefix := p + "/"
	for f := range m.files {
		if strings.HasPrefix(f, prefix) {
			delete(m.files, f)
		}
	}
	for d := range m.dirs {
		if strings.HasPrefix(d, prefix) {
			delete(m.dirs, d)
		}
	}
}

func (m *memFS) Mkdir(_ context.Context, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[p] = true
	m.addDirs(p + "/x")
	return nil
}

func (m *memFS) Download(_ context.Context, p, url, sum string) error {
	m.mu.Lock()
	m.inflight++
	if m.inflight > m.maxInflight {
		m.maxInflight = m.inflight
	}
	delay := m.dlDelay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight--

	if err, ok := m.failing[url]; ok {
		return err
	}
	data, ok := m.content[url]
	if !ok {
		return fmt.Errorf("no content registered for %s", url)
	}
	if sum != "" {
		actual := sha1.Sum(data)
		if hex.EncodeToString(actual[:]) != strings.ToLower(sum) {
			return fmt.Errorf("hash mismatch for %s", p)
		}
	}
	m.files[p] = data
	m.addDirs(p)
	m.downloads = append(m.downloads, p)
	return nil
}
