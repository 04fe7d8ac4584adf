package instance

import (
	"os"

	"github.com/BurntSushi/toml"
)

// SettingsFileName is the optional per-instance settings file, kept next to
// the instance directory on the panel side.
const SettingsFileName = "instance.toml"

// Settings configures how the engine treats one instance.
type Settings struct {
	Name  string `toml:"name"`
	Agent struct {
		// URL of the agent file API; empty means the instance directory is
		// on the local machine.
		URL   string `toml:"url"`
		Token string `toml:"token"`
	} `toml:"agent"`
	// Protect adds extra protected globs on top of the defaults.
	Protect []string `toml:"protect"`
}

// LoadSettings reads an instance settings file; a missing file yields zero
// settings, not an error.
func LoadSettings(path string) (Settings, error) {
	var settings Settings
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return settings, nil
	}
	if _, err := toml.DecodeFile(path, &settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// ProtectedGlobs returns the default protected globs plus any configured
// extras.
func (s Settings) ProtectedGlobs() []string {
	return append(append([]string{}, DefaultProtectedGlobs...), s.Protect...)
}
