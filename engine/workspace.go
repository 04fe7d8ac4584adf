package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/packdock/packdock/remote"
)

// workDir is the scratch workspace on the remote tree, deterministic per
// instance. One orchestration run owns it at a time (see the advisory lock).
const workDir = ".packdock/work"

// resetWorkspace clears and recreates the scratch workspace so a previous
// failed run can't leak staged files into this one.
func (e *Engine) resetWorkspace(ctx context.Context) error {
	if err := e.fsys.Delete(ctx, workDir); err != nil && !errors.Is(err, remote.ErrNotExist) {
		return fmt.Errorf("failed to clear workspace: %w", err)
	}
	if err := e.fsys.Mkdir(ctx, workDir); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	return nil
}

// cleanupWorkspace removes the scratch workspace. Best-effort: failures are
// logged on their own channel and never fail the operation.
func (e *Engine) cleanupWorkspace(ctx context.Context) {
	if err := e.fsys.Delete(ctx, workDir); err != nil && !errors.Is(err, remote.ErrNotExist) {
		e.logger.Warn("workspace cleanup failed", "dir", workDir, "error", err.Error())
	}
}
