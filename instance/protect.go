package instance

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultProtectedGlobs match paths an update must never overwrite: worlds
// and shipped default configs that servers copy from on first boot.
var DefaultProtectedGlobs = []string{
	"world/**",
	"saves/**",
	"defaultconfigs/**",
}

// ConfigPrefix marks the conditionally-protected tree: a config that already
// exists on the instance is assumed user-modified and preserved, one that
// doesn't exist yet is still written.
const ConfigPrefix = "config/"

// Protected reports whether path matches one of the protected globs.
func Protected(path string, globs []string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, path); err == nil && ok {
			return true
		}
	}
	return false
}

// PreserveIfPresent reports whether path is protected only when it already
// exists on the remote tree.
func PreserveIfPresent(path string) bool {
	return strings.HasPrefix(path, ConfigPrefix)
}
