package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packdock/packdock/core"
)

func TestPoolWorkers(t *testing.T) {
	tests := []struct {
		total, want int
	}{
		{0, 1},
		{1, 1},
		{3, 3},
		{4, 4},
		{50, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, poolWorkers(tt.total), "total=%d", tt.total)
	}
}

func TestFetchAll(t *testing.T) {
	fsys := newMemFS()
	var items []Item
	for i := 0; i < 9; i++ {
		url := fmt.Sprintf("https://cdn.test/mod%d.jar", i)
		sum := fsys.serve(url, []byte(fmt.Sprintf("mod %d content", i)))
		items = append(items, Item{Path: fmt.Sprintf("mods/mod%d.jar", i), URL: url, SHA1: sum})
	}

	var progress [][2]int
	err := fetchAll(context.Background(), fsys, items, func(done, total int, _ string) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Len(t, fsys.downloads, 9)
	for _, item := range items {
		_, ok := fsys.files[item.Path]
		assert.True(t, ok, item.Path)
	}

	// Progress is serialized and monotonic, ending at done == total
	require.Len(t, progress, 9)
	for i, p := range progress {
		assert.Equal(t, i+1, p[0])
		assert.Equal(t, 9, p[1])
	}
}

func TestFetchAllWorkerBound(t *testing.T) {
	fsys := newMemFS()
	fsys.dlDelay = 2 * time.Millisecond
	var items []Item
	for i := 0; i < 20; i++ {
		url := fmt.Sprintf("https://cdn.test/mod%d.jar", i)
		sum := fsys.serve(url, []byte{byte(i)})
		items = append(items, Item{Path: fmt.Sprintf("mods/mod%d.jar", i), URL: url, SHA1: sum})
	}

	require.NoError(t, fetchAll(context.Background(), fsys, items, nil))
	assert.LessOrEqual(t, fsys.maxInflight, maxWorkers)
}

func TestFetchAllFailFast(t *testing.T) {
	fsys := newMemFS()
	var items []Item
	for i := 0; i < 8; i++ {
		url := fmt.Sprintf("https://cdn.test/mod%d.jar", i)
		sum := fsys.serve(url, []byte{byte(i)})
		items = append(items, Item{Path: fmt.Sprintf("mods/mod%d.jar", i), URL: url, SHA1: sum})
	}
	fsys.failing["https://cdn.test/mod3.jar"] = errors.New("connection reset")

	err := fetchAll(context.Background(), fsys, items, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrFetch))
	assert.Contains(t, err.Error(), "mods/mod3.jar")

	// No rollback: completed transfers stay in place
	for _, p := range fsys.downloads {
		_, ok := fsys.files[p]
		assert.True(t, ok, p)
	}
}

func TestFetchAllUnverified(t *testing.T) {
	fsys := newMemFS()
	fsys.serve("https://cdn.test/a.jar", []byte("whatever"))

	// A malformed digest downgrades to an unverified transfer instead of
	// failing every time
	items := []Item{{Path: "mods/a.jar", URL: "https://cdn.test/a.jar", SHA1: "not-a-digest"}}
	require.NoError(t, fetchAll(context.Background(), fsys, items, nil))

	_, ok := fsys.files["mods/a.jar"]
	assert.True(t, ok)
}

func TestFetchAllEmpty(t *testing.T) {
	called := false
	err := fetchAll(context.Background(), newMemFS(), nil, func(int, int, string) { called = true })
	require.NoError(t, err)
	assert.False(t, called)
}

func TestFetchAllHashMismatch(t *testing.T) {
	fsys := newMemFS()
	fsys.serve("https://cdn.test/a.jar", []byte("actual content"))

	items := []Item{{
		Path: "mods/a.jar",
		URL:  "https://cdn.test/a.jar",
		SHA1: strings.Repeat("0", 40),
	}}
	err := fetchAll(context.Background(), fsys, items, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrFetch))
}
