package engine

import (
	"context"
	"fmt"

	"github.com/packdock/packdock/core"
	"github.com/packdock/packdock/mrpack"
)

// bootstrapDocName is written into the instance root for loaders the engine
// can't bootstrap itself.
const bootstrapDocName = "INSTALL-LOADER.txt"

// writeBootstrapDoc emits manual setup instructions for non-automatable
// loaders. The pack's files are staged at this point; the instance is just
// not runnable until the loader installer has been run by hand.
func (e *Engine) writeBootstrapDoc(ctx context.Context, mcVersion string, ldr mrpack.Loader) error {
	doc := fmt.Sprintf(`This modpack needs the %[1]s loader, which packdock cannot set up automatically.

  Minecraft version: %[2]s
  Loader:            %[1]s %[3]s

To finish the installation:

 1. Download the %[1]s installer for Minecraft %[2]s, version %[3]s,
    from the official %[1]s website.
 2. Run the installer with its server option, targeting this directory.
 3. Point the panel's start command at the server jar the installer produced.

The pack's mods and configuration files are already in place; do not re-run
the pack install afterwards.
`, ldr.Kind, mcVersion, ldr.Version)

	if err := e.fsys.Write(ctx, bootstrapDocName, []byte(doc)); err != nil {
		return fmt.Errorf("%w: failed to write bootstrap instructions: %v", core.ErrPersist, err)
	}

	e.logger.Info("manual loader bootstrap required", "loader", string(ldr.Kind), "version", ldr.Version)
	return nil
}
