// Package instance holds the per-instance artifacts of the engine: the pack
// state record, protected-path rules, the optional settings file and the
// advisory operation lock.
package instance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/packdock/packdock/core"
	"github.com/packdock/packdock/provider"
	"github.com/packdock/packdock/remote"
)

// StateFileName is the well-known path of the pack state record under the
// instance root. Other tooling relies on it for "is a pack installed".
const StateFileName = "pack-state.json"

// SchemaVersion of the pack state record.
const SchemaVersion = 1

// State is the persisted record of what is currently installed. It is created
// on first successful install and fully rewritten on each successful update;
// later updates read it back to diff against.
type State struct {
	SchemaVersion int             `json:"schema_version"`
	Provider      string          `json:"provider"`
	InstalledAt   time.Time       `json:"installed_at"`
	Source        provider.Source `json:"source"`
	Minecraft     Minecraft       `json:"minecraft"`
	Loader        Loader          `json:"loader"`
	Server        Server          `json:"server"`
	Files         []File          `json:"files"`
}

type Minecraft struct {
	Version string `json:"version"`
}

type Loader struct {
	Kind    string `json:"kind"`
	Version string `json:"version"`
}

type Server struct {
	// JarPath is empty when the loader needs a manual bootstrap.
	JarPath string `json:"jar_path"`
}

type File struct {
	Path string `json:"path"`
	SHA1 string `json:"sha1"`
}

// ReadState loads the pack state record. An absent or unparseable record
// means "no prior install" and returns nil without an error.
func ReadState(ctx context.Context, fsys remote.FS) (*State, error) {
	data, err := fsys.Read(ctx, StateFileName)
	if err != nil {
		return nil, nil
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, nil
	}
	return &st, nil
}

// WriteState overwrites the whole record in a single write call; there is no
// partial-field merge.
func WriteState(ctx context.Context, fsys remote.FS, st *State) error {
	data, err := json.MarshalIndent(st, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode pack state: %v", core.ErrPersist, err)
	}
	if err := fsys.Write(ctx, StateFileName, append(data, '\n')); err != nil {
		return fmt.Errorf("%w: failed to write pack state: %v", core.ErrPersist, err)
	}
	return nil
}

// FileMap returns the recorded files as a path → sha1 map for diffing.
func (s *State) FileMap() map[string]string {
	m := make(map[string]string, len(s.Files))
	for _, f := range s.Files {
		m[f.Path] = f.SHA1
	}
	return m
}
