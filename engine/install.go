package engine

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/packdock/packdock/core"
	"github.com/packdock/packdock/instance"
	"github.com/packdock/packdock/mrpack"
	"github.com/packdock/packdock/provider"
)

// Install performs a fresh install of the pack described by src:
// parse, resolve loader, apply overrides, fetch content, bootstrap the loader
// jar, persist the state record, clean up the workspace.
func (e *Engine) Install(ctx context.Context, src provider.Source) (*Result, error) {
	p, ok := e.providers[src.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown source kind %q", core.ErrResolve, src.Kind)
	}
	ref, err := p.Resolve(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrResolve, err)
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

	e.logger.Info("installing pack",
		"name", idx.Name,
		"version", idx.VersionID,
		"minecraft", mcVersion,
		"loader", string(ldr.Kind))

	if err := e.applyOverrides(ctx, a); err != nil {
		return nil, err
	}

	files := serverFiles(idx)
	items := make([]Item, 0, len(files))
	for _, f := range files {
		items = append(items, Item{
			Path: path.Clean(f.Path),
			URL:  f.PrimaryDownload(),
			SHA1: f.SHA1(),
		})
	}
	if err := fetchAll(ctx, e.fsys, items, e.onProgress); err != nil {
		return nil, err
	}

	status := StatusInstalled
	jarPath := ""
	if ldr.Kind.Automatable() {
		jarPath, err = e.installServerJar(ctx, mcVersion, ldr)
		if err != nil {
			return nil, err
		}
	} else {
		if err := e.writeBootstrapDoc(ctx, mcVersion, ldr); err != nil {
			return nil, err
		}
		status = StatusStaged
	}

	src.VersionID = ref.VersionID
	src.URL = ref.URL
	src.FileName = ref.FileName

	versionID := ref.VersionID
	if versionID == "" {
		versionID = idx.VersionID
		src.VersionID = idx.VersionID
	}

	st := &instance.State{
		SchemaVersion: instance.SchemaVersion,
		Provider:      src.Kind,
		InstalledAt:   time.Now().UTC(),
		Source:        src,
		Minecraft:     instance.Minecraft{Version: mcVersion},
		Loader:        instance.Loader{Kind: string(ldr.Kind), Version: ldr.Version},
		Server:        instance.Server{JarPath: jarPath},
		Files:         stateFilesFromIndex(files),
	}
	if err := instance.WriteState(ctx, e.fsys, st); err != nil {
		return nil, err
	}

	return &Result{
		Status:        status,
		Name:          idx.Name,
		VersionID:     versionID,
		Minecraft:     mcVersion,
		LoaderKind:    string(ldr.Kind),
		LoaderVersion: ldr.Version,
		JarPath:       jarPath,
		Fetched:       len(items),
	}, nil
}

// installServerJar resolves and downloads the launcher jar for an automatable
// loader, returning its path under the instance root.
func (e *Engine) installServerJar(ctx context.Context, mcVersion string, ldr mrpack.Loader) (string, error) {
	jar, err := e.resolver.ResolveServerJar(ctx, mcVersion, ldr.Kind, ldr.Version)
	if err != nil {
		return "", err
	}
	jarPath := fmt.Sprintf("%s-server.jar", ldr.Kind)
	if err := e.fsys.Download(ctx, jarPath, jar.URL, strings.ToLower(jar.SHA1)); err != nil {
		return "", fmt.Errorf("%w: failed to download server jar: %v", core.ErrFetch, err)
	}
	e.logger.Info("server jar installed", "path", jarPath)
	return jarPath, nil
}

// stateFilesFromIndex records the installed files for a fresh install.
// Digests are normalized to lower case; files without one are recorded with
// an empty digest and re-fetched on the next update.
func stateFilesFromIndex(files []mrpack.IndexFile) []instance.File {
	out := make([]instance.File, 0, len(files))
	for _, f := range files {
		out = append(out, instance.File{
			Path: path.Clean(f.Path),
			SHA1: strings.ToLower(f.SHA1()),
		})
	}
	return out
}

func (e *Engine) releaseLock(ctx context.Context, lock *instance.Lock) {
	if err := lock.Release(ctx); err != nil {
		e.logger.Warn("failed to release instance lock", "error", err.Error())
	}
}
