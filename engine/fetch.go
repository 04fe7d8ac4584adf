package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/packdock/packdock/core"
	"github.com/packdock/packdock/remote"
)

// Item is one content file to materialize on the remote tree. SHA1 may be
// empty or malformed, in which case the transfer is unverified.
type Item struct {
	Path string
	URL  string
	SHA1 string
}

// maxWorkers bounds concurrent transfers to keep remote load sane.
const maxWorkers = 4

func poolWorkers(total int) int {
	if total < 1 {
		return 1
	}
	if total > maxWorkers {
		return maxWorkers
	}
	return total
}

// fetchAll downloads every item onto the remote tree with a bounded worker
// pool over a shared queue. On the first failure the abort flag stops new
// dequeues; in-flight transfers finish and their results stay on disk (no
// rollback). The first error encountered is the one returned.
func fetchAll(ctx context.Context, fsys remote.FS, items []Item, onProgress ProgressFunc) error {
	total := len(items)
	if total == 0 {
		return nil
	}

	var (
		next     atomic.Int64
		aborted  atomic.Bool
		errOnce  sync.Once
		firstErr error

		progressMu sync.Mutex
		done       int

		wg sync.WaitGroup
	)

	for w := 0; w < poolWorkers(total); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if aborted.Load() {
					return
				}
				i := int(next.Add(1)) - 1
				if i >= total {
					return
				}
				item := items[i]

				sum := ""
				if core.WellFormedSHA1(item.SHA1) {
					sum = strings.ToLower(item.SHA1)
				}
				if err := fsys.Download(ctx, item.Path, item.URL, sum); err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("%w: %s: %v", core.ErrFetch, item.Path, err)
						aborted.Store(true)
					})
					return
				}

				progressMu.Lock()
				done++
				if onProgress != nil {
					onProgress(done, total, item.Path)
				}
				progressMu.Unlock()
			}
		}()
	}

	wg.Wait()
	return firstErr
}
