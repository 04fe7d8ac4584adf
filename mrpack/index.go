// Package mrpack reads the Modrinth modpack format: a zip archive bundling a
// modrinth.index.json manifest, externally-hosted content files and an
// optional overrides tree.
package mrpack

import (
	"encoding/json"
	"fmt"

	"github.com/packdock/packdock/core"
)

// Index is the modrinth.index.json manifest bundled in a .mrpack archive.
type Index struct {
	FormatVersion uint32            `json:"formatVersion"`
	Game          string            `json:"game"`
	VersionID     string            `json:"versionId"`
	Name          string            `json:"name"`
	Summary       string            `json:"summary,omitempty"`
	Files         []IndexFile       `json:"files"`
	Dependencies  map[string]string `json:"dependencies"`
}

// IndexFile is one externally-hosted content file.
type IndexFile struct {
	Path      string            `json:"path"`
	Hashes    map[string]string `json:"hashes"`
	Env       *Env              `json:"env"`
	Downloads []string          `json:"downloads"`
	FileSize  uint32            `json:"fileSize"`
}

// Env declares per-side support for a file.
type Env struct {
	Client string `json:"client"`
	Server string `json:"server"`
}

const (
	EnvRequired    = "required"
	EnvOptional    = "optional"
	EnvUnsupported = "unsupported"
)

// ParseIndex decodes and validates a package index. The minecraft dependency
// is the one block every pack must declare.
func ParseIndex(data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: invalid index: %v", core.ErrParse, err)
	}
	if idx.Dependencies["minecraft"] == "" {
		return nil, fmt.Errorf("%w: invalid index: missing minecraft dependency", core.ErrParse)
	}
	return &idx, nil
}

// MinecraftVersion returns the declared game version.
func (i *Index) MinecraftVersion() string {
	return i.Dependencies["minecraft"]
}

// SHA1 returns the declared sha1 digest, or "" when the source didn't supply
// one.
func (f *IndexFile) SHA1() string {
	return f.Hashes["sha1"]
}

// PrimaryDownload returns the first download URL, or "".
func (f *IndexFile) PrimaryDownload() string {
	if len(f.Downloads) == 0 {
		return ""
	}
	return f.Downloads[0]
}

// ServerSide returns the server env declaration; a missing env block means
// the file is required on both sides.
func (f *IndexFile) ServerSide() string {
	if f.Env == nil {
		return EnvRequired
	}
	return f.Env.Server
}
