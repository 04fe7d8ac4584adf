package mrpack

import (
	"fmt"

	"github.com/packdock/packdock/core"
)

// LoaderKind is the closed set of mod loaders a pack index may declare.
type LoaderKind string

const (
	LoaderFabric   LoaderKind = "fabric"
	LoaderQuilt    LoaderKind = "quilt"
	LoaderNeoForge LoaderKind = "neoforge"
	LoaderForge    LoaderKind = "forge"
)

// Loader is the resolved loader declaration of a pack.
type Loader struct {
	Kind    LoaderKind
	Version string
}

// Automatable reports whether a runnable server jar can be resolved and
// downloaded for this loader kind. The others need a manual installer run.
func (k LoaderKind) Automatable() bool {
	return k == LoaderFabric || k == LoaderQuilt
}

// Dependency keys in precedence order. A pack should declare exactly one
// loader; when it doesn't, the first non-empty key wins (a policy choice, the
// format itself guarantees nothing here).
var loaderKeys = []struct {
	key  string
	kind LoaderKind
}{
	{"fabric-loader", LoaderFabric},
	{"quilt-loader", LoaderQuilt},
	{"neoforge", LoaderNeoForge},
	{"forge", LoaderForge},
}

// ResolveLoader picks the loader declared by the index, rejecting unknown or
// absent loader keys rather than falling through silently.
func ResolveLoader(idx *Index) (Loader, error) {
	for _, l := range loaderKeys {
		if v := idx.Dependencies[l.key]; v != "" {
			return Loader{Kind: l.kind, Version: v}, nil
		}
	}
	return Loader{}, fmt.Errorf("%w: unsupported loader", core.ErrResolve)
}
