// Package engine implements the modpack install and incremental-update
// pipeline over a remote instance file tree.
package engine

import (
	"errors"
	"log/slog"
	"os"

	"github.com/packdock/packdock/instance"
	"github.com/packdock/packdock/loader"
	"github.com/packdock/packdock/provider"
	"github.com/packdock/packdock/remote"
)

// ErrNotInstalled is returned by Update when the instance has no pack state
// record to diff against.
var ErrNotInstalled = errors.New("no modpack is installed in this instance")

// ProgressFunc receives completion updates from the fetch pool. done is
// monotonically increasing; calls are serialized. For display only, never for
// control flow.
type ProgressFunc func(done, total int, currentFile string)

// Config carries everything the orchestrator needs. The engine reads no
// ambient state; the caller decides where each piece comes from.
type Config struct {
	// FS is the instance file tree (required).
	FS remote.FS
	// Resolver resolves server jars for automatable loaders (required).
	Resolver loader.Resolver
	// Providers overrides the pack source registry; defaults to
	// provider.Providers.
	Providers map[string]provider.Provider
	// ProtectedGlobs overrides instance.DefaultProtectedGlobs.
	ProtectedGlobs []string
	// TempDir holds downloaded pack archives on the panel side; defaults to
	// the system temp directory.
	TempDir string
	// OnProgress, when set, receives fetch progress.
	OnProgress ProgressFunc
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Engine sequences install and update operations for one instance. One
// operation runs at a time; the advisory instance lock enforces that across
// processes.
type Engine struct {
	fsys       remote.FS
	resolver   loader.Resolver
	providers  map[string]provider.Provider
	protected  []string
	tempDir    string
	onProgress ProgressFunc
	logger     *slog.Logger
}

// New validates the config and returns an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.FS == nil {
		return nil, errors.New("engine: config needs a remote FS")
	}
	if cfg.Resolver == nil {
		return nil, errors.New("engine: config needs a loader resolver")
	}
	e := &Engine{
		fsys:       cfg.FS,
		resolver:   cfg.Resolver,
		providers:  cfg.Providers,
		protected:  cfg.ProtectedGlobs,
		tempDir:    cfg.TempDir,
		onProgress: cfg.OnProgress,
		logger:     cfg.Logger,
	}
	if e.providers == nil {
		e.providers = provider.Providers
	}
	if e.protected == nil {
		e.protected = instance.DefaultProtectedGlobs
	}
	if e.tempDir == "" {
		e.tempDir = os.TempDir()
	}
	if e.logger == nil {
		e.logger = slog.Default().With("logger", "engine")
	}
	return e, nil
}

// Status of a finished operation.
type Status string

const (
	// StatusInstalled: fresh install with a runnable server.
	StatusInstalled Status = "installed"
	// StatusStaged: files installed, but the loader needs a manual
	// bootstrap before the server can run.
	StatusStaged Status = "staged"
	// StatusUpdated: incremental update applied.
	StatusUpdated Status = "updated"
	// StatusNoChanges: the recorded version is already the latest.
	StatusNoChanges Status = "no changes"
)

// Result summarizes a finished install or update.
type Result struct {
	Status           Status
	Name             string
	VersionID        string
	Minecraft        string
	LoaderKind       string
	LoaderVersion    string
	JarPath          string
	Fetched          int
	Deleted          int
	SkippedUnchanged int
	SkippedProtected int
}
