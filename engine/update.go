package engine

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/packdock/packdock/core"
	"github.com/packdock/packdock/instance"
	"github.com/packdock/packdock/mrpack"
	"github.com/packdock/packdock/provider"
	"github.com/packdock/packdock/remote"
)

// UpdatePreview is the dry-run output of PlanUpdate: what Update would do,
// without touching the instance.
type UpdatePreview struct {
	Name           string
	CurrentVersion string
	LatestVersion  string
	UpToDate       bool
	Plan           Plan
}

// Update brings an installed instance to the latest available pack version.
// Unchanged files are skipped, protected paths are never overwritten, and
// stale files are only deleted inside the mod tree. When the recorded version
// is already the latest this is a no-op.
func (e *Engine) Update(ctx context.Context) (*Result, error) {
	st, ref, upToDate, err := e.resolveUpdate(ctx)
	if err != nil {
		return nil, err
	}
	if upToDate {
		e.logger.Info("pack already up to date", "version", st.Source.VersionID)
		return &Result{
			Status:        StatusNoChanges,
			VersionID:     st.Source.VersionID,
			Minecraft:     st.Minecraft.Version,
			LoaderKind:    st.Loader.Kind,
			LoaderVersion: st.Loader.Version,
			JarPath:       st.Server.JarPath,
		}, nil
	}

	lock, err := instance.AcquireLock(ctx, e.fsys)
	if err != nil {
		return nil, err
	}
	defer e.releaseLock(ctx, lock)

	if err := e.resetWorkspace(ctx); err != nil {
		return nil, err
	}
	defer e.cleanupWorkspace(ctx)

	a, cleanup, err := e.fetchArchive(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	idx, err := a.Index()
	if err != nil {
		return nil, err
	}
	ldr, err := mrpack.ResolveLoader(idx)
	if err != nil {
		return nil, err
	}
	mcVersion := idx.MinecraftVersion()

	e.logger.Info("updating pack",
		"name", idx.Name,
		"from", st.Source.VersionID,
		"to", ref.VersionID,
		"minecraft", mcVersion,
		"loader", string(ldr.Kind))

	files := serverFiles(idx)
	plan, err := e.planAgainst(ctx, st, files)
	if err != nil {
		return nil, err
	}

	if err := fetchAll(ctx, e.fsys, plan.Fetch, e.onProgress); err != nil {
		return nil, err
	}

	for _, p := range plan.Delete {
		if err := e.fsys.Delete(ctx, p); err != nil && !errors.Is(err, remote.ErrNotExist) {
			return nil, fmt.Errorf("failed to delete obsolete file %s: %w", p, err)
		}
	}

	jarPath, err := e.refreshServerJar(ctx, st, mcVersion, ldr)
	if err != nil {
		return nil, err
	}

	src := st.Source
	src.VersionID = ref.VersionID
	src.URL = ref.URL
	src.FileName = ref.FileName
	versionID := ref.VersionID
	if versionID == "" {
		versionID = idx.VersionID
		src.VersionID = idx.VersionID
	}

	newState := &instance.State{
		SchemaVersion: instance.SchemaVersion,
		Provider:      st.Provider,
		InstalledAt:   time.Now().UTC(),
		Source:        src,
		Minecraft:     instance.Minecraft{Version: mcVersion},
		Loader:        instance.Loader{Kind: string(ldr.Kind), Version: ldr.Version},
		Server:        instance.Server{JarPath: jarPath},
		Files:         mergeStateFiles(st.FileMap(), files, plan),
	}
	if err := instance.WriteState(ctx, e.fsys, newState); err != nil {
		return nil, err
	}

	return &Result{
		Status:           StatusUpdated,
		Name:             idx.Name,
		VersionID:        versionID,
		Minecraft:        mcVersion,
		LoaderKind:       string(ldr.Kind),
		LoaderVersion:    ldr.Version,
		JarPath:          jarPath,
		Fetched:          len(plan.Fetch),
		Deleted:          len(plan.Delete),
		SkippedUnchanged: plan.countSkips("unchanged"),
		SkippedProtected: plan.countSkips("protected") + plan.countSkips("preserved"),
	}, nil
}

// PlanUpdate computes the update diff without applying anything. The pack
// archive is still downloaded (to the panel side) since the plan needs the
// new index.
func (e *Engine) PlanUpdate(ctx context.Context) (*UpdatePreview, error) {
	st, ref, upToDate, err := e.resolveUpdate(ctx)
	if err != nil {
		return nil, err
	}
	if upToDate {
		return &UpdatePreview{
			CurrentVersion: st.Source.VersionID,
			LatestVersion:  st.Source.VersionID,
			UpToDate:       true,
		}, nil
	}

	a, cleanup, err := e.fetchArchive(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	idx, err := a.Index()
	if err != nil {
		return nil, err
	}
	plan, err := e.planAgainst(ctx, st, serverFiles(idx))
	if err != nil {
		return nil, err
	}

	latest := ref.VersionID
	if latest == "" {
		latest = idx.VersionID
	}
	return &UpdatePreview{
		Name:           idx.Name,
		CurrentVersion: st.Source.VersionID,
		LatestVersion:  latest,
		Plan:           plan,
	}, nil
}

// resolveUpdate loads the state record and asks the provider for the latest
// archive. Sources without an update channel (plain URLs) are re-resolved and
// always diffed, since there is no version to compare.
func (e *Engine) resolveUpdate(ctx context.Context) (*instance.State, provider.ArchiveRef, bool, error) {
	st, err := instance.ReadState(ctx, e.fsys)
	if err != nil {
		return nil, provider.ArchiveRef{}, false, err
	}
	if st == nil {
		return nil, provider.ArchiveRef{}, false, ErrNotInstalled
	}

	p, ok := e.providers[st.Provider]
	if !ok {
		return nil, provider.ArchiveRef{}, false, fmt.Errorf("%w: unknown source kind %q", core.ErrResolve, st.Provider)
	}

	ref, err := p.Latest(ctx, st.Source)
	if errors.Is(err, provider.ErrNoUpdateCheck) {
		ref, err = p.Resolve(ctx, st.Source)
	}
	if err != nil {
		return nil, provider.ArchiveRef{}, false, fmt.Errorf("%w: %v", core.ErrResolve, err)
	}

	if ref.VersionID != "" && ref.VersionID == st.Source.VersionID {
		return st, ref, true, nil
	}
	return st, ref, false, nil
}

// planAgainst builds the update plan for the new file list, consulting the
// remote tree for which conditionally-preserved files already exist.
func (e *Engine) planAgainst(ctx context.Context, st *instance.State, files []mrpack.IndexFile) (Plan, error) {
	existing, err := remote.WalkFiles(ctx, e.fsys, strings.TrimSuffix(instance.ConfigPrefix, "/"))
	if err != nil {
		return Plan{}, fmt.Errorf("%w: failed to scan instance tree: %v", core.ErrPlan, err)
	}
	return buildPlan(st.FileMap(), files, existing, e.protected), nil
}

// refreshServerJar re-bootstraps the loader only when the loader or Minecraft
// version changed, or when no jar was recorded. Otherwise the existing jar is
// kept as-is.
func (e *Engine) refreshServerJar(ctx context.Context, st *instance.State, mcVersion string, ldr mrpack.Loader) (string, error) {
	changed := st.Loader.Kind != string(ldr.Kind) ||
		st.Loader.Version != ldr.Version ||
		st.Minecraft.Version != mcVersion

	if !ldr.Kind.Automatable() {
		if changed {
			if err := e.writeBootstrapDoc(ctx, mcVersion, ldr); err != nil {
				return "", err
			}
		}
		return "", nil
	}
	if !changed && st.Server.JarPath != "" {
		return st.Server.JarPath, nil
	}
	return e.installServerJar(ctx, mcVersion, ldr)
}

// mergeStateFiles builds the new state record's file list. Fetched and
// unchanged files carry the new index digest; files skipped for protection
// keep their previously recorded digest, and are dropped from the record if
// they were never recorded (the engine has never written them).
func mergeStateFiles(old map[string]string, files []mrpack.IndexFile, plan Plan) []instance.File {
	byPath := make(map[string]Decision, len(plan.Decisions))
	for _, d := range plan.Decisions {
		byPath[d.Path] = d
	}

	out := make([]instance.File, 0, len(files))
	for _, f := range files {
		p := path.Clean(f.Path)
		d := byPath[p]
		if d.Action == ActionSkip && d.Reason != "unchanged hash" {
			oldSum, recorded := old[p]
			if !recorded {
				continue
			}
			out = append(out, instance.File{Path: p, SHA1: oldSum})
			continue
		}
		out = append(out, instance.File{Path: p, SHA1: strings.ToLower(f.SHA1())})
	}
	return out
}
