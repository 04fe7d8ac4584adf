// Package provider resolves pack archives from their source site. Providers
// register themselves by source kind; add your own source systems to the map.
package provider

import (
	"context"
	"errors"
)

// ErrNoUpdateCheck is returned by Latest for source kinds that have no
// version listing to check against.
var ErrNoUpdateCheck = errors.New("source kind does not support update checks")

// Source records where a pack came from. It is persisted verbatim in the pack
// state record; Extra carries provider-specific fields as a generic map,
// decoded by each provider with mapstructure.
type Source struct {
	Kind      string         `json:"kind"`
	ProjectID string         `json:"project_id,omitempty"`
	VersionID string         `json:"version_id,omitempty"`
	URL       string         `json:"url"`
	FileName  string         `json:"file_name"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// ArchiveRef is a concrete, downloadable pack archive.
type ArchiveRef struct {
	VersionID string
	URL       string
	SHA1      string
	FileName  string
}

// Provider resolves pack archives for one source kind.
type Provider interface {
	// Resolve turns a source into a concrete archive reference for install.
	Resolve(ctx context.Context, src Source) (ArchiveRef, error)
	// Latest returns the newest available archive for the source, used by
	// the update version check.
	Latest(ctx context.Context, src Source) (ArchiveRef, error)
}

// Providers stores all the pack sources packdock can install from.
var Providers = make(map[string]Provider)
