// Package loader resolves a runnable server launcher jar for the loader
// declared by a pack index.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/unascribed/FlexVer/go/flexver"

	"github.com/packdock/packdock/core"
	"github.com/packdock/packdock/mrpack"
)

// Jar identifies a downloadable server launcher for a resolved loader.
type Jar struct {
	URL  string
	SHA1 string
}

// Resolver maps (minecraft version, loader kind, loader version) to a server
// launcher jar. Only called for automatable loader kinds.
type Resolver interface {
	ResolveServerJar(ctx context.Context, mcVersion string, kind mrpack.LoaderKind, version string) (Jar, error)
}

// metaTimeout bounds each meta-service call, matching the metadata-op limit
// on remote calls.
const metaTimeout = 10 * time.Second

// Meta service endpoints for the automatable loaders.
var metaEndpoints = map[mrpack.LoaderKind]string{
	mrpack.LoaderFabric: "https://meta.fabricmc.net/v2",
	mrpack.LoaderQuilt:  "https://meta.quiltmc.org/v3",
}

// MetaResolver resolves launcher jars through the fabric/quilt meta services.
type MetaResolver struct {
	logger *slog.Logger
}

func NewMetaResolver() *MetaResolver {
	return &MetaResolver{logger: slog.Default().With("logger", "loader_resolver")}
}

type loaderEntry struct {
	Loader struct {
		Version string `json:"version"`
		Stable  bool   `json:"stable"`
	} `json:"loader"`
}

type installerEntry struct {
	URL     string `json:"url"`
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

// ResolveServerJar validates the requested loader version against the loader
// list for the minecraft version, picks the latest stable installer and
// returns the launcher jar URL. The meta services publish no digest for the
// bundled jar, so the returned SHA1 is empty and the download is unverified.
func (r *MetaResolver) ResolveServerJar(ctx context.Context, mcVersion string, kind mrpack.LoaderKind, version string) (Jar, error) {
	base, ok := metaEndpoints[kind]
	if !ok {
		return Jar{}, fmt.Errorf("%w: no server jar source for loader %s", core.ErrResolve, kind)
	}

	loaders, err := fetchJSON[[]loaderEntry](ctx, fmt.Sprintf("%s/versions/loader/%s", base, mcVersion))
	if err != nil {
		return Jar{}, fmt.Errorf("%w: failed to list %s loader versions: %v", core.ErrResolve, kind, err)
	}
	if len(loaders) == 0 {
		return Jar{}, fmt.Errorf("%w: no %s loader versions for minecraft %s", core.ErrResolve, kind, mcVersion)
	}

	if version == "" {
		version = latestLoaderVersion(loaders)
		r.logger.Info("no loader version requested, using latest", "loader", string(kind), "version", version)
	} else if !containsLoaderVersion(loaders, version) {
		return Jar{}, fmt.Errorf("%w: %s loader %s is not available for minecraft %s", core.ErrResolve, kind, version, mcVersion)
	}

	installers, err := fetchJSON[[]installerEntry](ctx, base+"/versions/installer")
	if err != nil {
		return Jar{}, fmt.Errorf("%w: failed to list %s installer versions: %v", core.ErrResolve, kind, err)
	}
	installer := latestStableInstaller(installers)
	if installer == "" {
		return Jar{}, fmt.Errorf("%w: no %s installer versions published", core.ErrResolve, kind)
	}

	return Jar{
		URL: fmt.Sprintf("%s/versions/loader/%s/%s/%s/server/jar", base, mcVersion, version, installer),
	}, nil
}

func fetchJSON[T any](ctx context.Context, url string) (T, error) {
	var out T
	ctx, cancel := context.WithTimeout(ctx, metaTimeout)
	defer cancel()
	res, err := core.GetWithUAContext(ctx, url, "application/json")
	if err != nil {
		return out, err
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func containsLoaderVersion(list []loaderEntry, version string) bool {
	for _, l := range list {
		if l.Loader.Version == version {
			return true
		}
	}
	return false
}

// latestLoaderVersion prefers stable entries and breaks ties with FlexVer,
// as the list ordering differs between the fabric and quilt services.
func latestLoaderVersion(list []loaderEntry) string {
	best := ""
	bestStable := false
	for _, l := range list {
		v := l.Loader.Version
		if best == "" {
			best, bestStable = v, l.Loader.Stable
			continue
		}
		if l.Loader.Stable != bestStable {
			if l.Loader.Stable {
				best, bestStable = v, true
			}
			continue
		}
		if flexver.Less(best, v) {
			best = v
		}
	}
	return best
}

// latestStableInstaller picks the highest stable semver-tagged installer,
// falling back to the first listed entry.
func latestStableInstaller(list []installerEntry) string {
	var best *semver.Version
	bestRaw := ""
	for _, in := range list {
		if !in.Stable {
			continue
		}
		v, err := semver.NewVersion(in.Version)
		if err != nil {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestRaw = v, in.Version
		}
	}
	if bestRaw == "" && len(list) > 0 {
		return list[0].Version
	}
	return bestRaw
}
