package engine

import (
	"path"
	"sort"
	"strings"

	"github.com/packdock/packdock/core"
	"github.com/packdock/packdock/instance"
	"github.com/packdock/packdock/mrpack"
)

// Action is the per-file decision of the update planner.
type Action string

const (
	ActionFetch  Action = "fetch"
	ActionSkip   Action = "skip"
	ActionDelete Action = "delete"
)

// Decision is one planner outcome, with a human-readable reason.
type Decision struct {
	Action Action
	Path   string
	Reason string
}

// Plan is the diff between the recorded install and a new package index.
type Plan struct {
	Fetch     []Item
	Delete    []string
	Decisions []Decision
}

// obsoleteScope limits stale-file deletion to the mod tree. Deleting stale
// paths elsewhere risks taking user content with them.
const obsoleteScope = "mods/"

// serverFiles filters a package index down to the files a server install
// materializes.
func serverFiles(idx *mrpack.Index) []mrpack.IndexFile {
	files := make([]mrpack.IndexFile, 0, len(idx.Files))
	for _, f := range idx.Files {
		if f.ServerSide() == mrpack.EnvUnsupported {
			continue
		}
		files = append(files, f)
	}
	return files
}

// buildPlan diffs the previously recorded files against the new index.
// Updates must be safe-by-default: losing a world or a hand-edited config is
// worse than leaving a stale file behind.
//
// old maps recorded paths to their sha1; existing is the set of
// conditionally-protected paths already present on the remote tree. A fresh
// install passes empty maps, turning the plan into "fetch everything".
func buildPlan(old map[string]string, files []mrpack.IndexFile, existing map[string]bool, protected []string) Plan {
	var plan Plan

	inNewIndex := make(map[string]bool, len(files))
	for _, f := range files {
		p := path.Clean(f.Path)
		inNewIndex[p] = true

		if instance.Protected(p, protected) {
			plan.Decisions = append(plan.Decisions, Decision{ActionSkip, p, "protected path"})
			continue
		}
		if instance.PreserveIfPresent(p) && existing[p] {
			plan.Decisions = append(plan.Decisions, Decision{ActionSkip, p, "existing config preserved"})
			continue
		}

		oldSum, known := old[p]
		newSum := f.SHA1()
		if known && core.WellFormedSHA1(oldSum) && core.WellFormedSHA1(newSum) && core.HashesEqual(oldSum, newSum) {
			plan.Decisions = append(plan.Decisions, Decision{ActionSkip, p, "unchanged hash"})
			continue
		}

		plan.Fetch = append(plan.Fetch, Item{Path: p, URL: f.PrimaryDownload(), SHA1: newSum})
		plan.Decisions = append(plan.Decisions, Decision{ActionFetch, p, "new or changed"})
	}

	for p := range old {
		if inNewIndex[p] || !strings.HasPrefix(p, obsoleteScope) {
			continue
		}
		plan.Delete = append(plan.Delete, p)
		plan.Decisions = append(plan.Decisions, Decision{ActionDelete, p, "obsolete"})
	}

	// Deterministic output regardless of map iteration order
	sort.Slice(plan.Fetch, func(i, j int) bool { return plan.Fetch[i].Path < plan.Fetch[j].Path })
	sort.Strings(plan.Delete)
	sort.Slice(plan.Decisions, func(i, j int) bool { return plan.Decisions[i].Path < plan.Decisions[j].Path })

	return plan
}

func (p Plan) countSkips(reason string) int {
	n := 0
	for _, d := range p.Decisions {
		if d.Action == ActionSkip && strings.Contains(d.Reason, reason) {
			n++
		}
	}
	return n
}
