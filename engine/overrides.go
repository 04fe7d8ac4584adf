package engine

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/packdock/packdock/mrpack"
)

// applyOverrides stages the archive's bundled override trees in the scratch
// workspace, then moves each top-level entry into the instance root. Each
// moved entry replaces anything at the destination; this is not a recursive
// merge. Only used on fresh install - updates skip override re-application to
// avoid clobbering live configuration.
func (e *Engine) applyOverrides(ctx context.Context, a *mrpack.Archive) error {
	entries := a.Overrides()
	if len(entries) == 0 {
		return nil
	}

	stage := path.Join(workDir, "overrides")

	// Entries come in application order; a server-overrides file written
	// after an overrides file with the same path wins.
	tops := make(map[string]bool)
	for _, entry := range entries {
		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("failed to unpack override %s: %w", entry.Path, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("failed to unpack override %s: %w", entry.Path, err)
		}
		if err := e.fsys.Write(ctx, path.Join(stage, entry.Path), data); err != nil {
			return fmt.Errorf("failed to stage override %s: %w", entry.Path, err)
		}
		tops[entry.TopLevel()] = true
	}

	names := make([]string, 0, len(tops))
	for name := range tops {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := e.fsys.Move(ctx, path.Join(stage, name), name); err != nil {
			return fmt.Errorf("failed to apply override %s: %w", name, err)
		}
	}

	e.logger.Info("overrides applied", "entries", len(entries), "top_level", len(names))
	return nil
}
