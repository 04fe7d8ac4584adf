package cmd

import (
	"sync"

	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"
)

// progressBar renders fetch progress on the terminal. The bar is created
// lazily on the first callback, once the total is known.
type progressBar struct {
	p   *mpb.Progress
	bar *mpb.Bar

	mu   sync.Mutex
	cur  string
	done int
}

func newProgressBar() *progressBar {
	return &progressBar{p: mpb.New(mpb.WithWidth(64))}
}

// update implements engine.ProgressFunc.
func (pb *progressBar) update(done, total int, currentFile string) {
	pb.mu.Lock()
	pb.cur = currentFile
	pb.done = done
	pb.mu.Unlock()

	if pb.bar == nil {
		pb.bar = pb.p.AddBar(int64(total),
			mpb.PrependDecorators(
				decor.Name("downloading "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.Any(func(*decor.Statistics) string {
					pb.mu.Lock()
					defer pb.mu.Unlock()
					return " " + pb.cur
				}),
			),
		)
	}
	pb.bar.SetCurrent(int64(done))
}

// wait flushes the bar. An aborted fetch leaves the bar incomplete, so force
// completion to avoid blocking on it.
func (pb *progressBar) wait() {
	if pb.bar == nil {
		return
	}
	if !pb.bar.Completed() {
		pb.mu.Lock()
		done := pb.done
		pb.mu.Unlock()
		pb.bar.SetTotal(int64(done), true)
	}
	pb.p.Wait()
}
