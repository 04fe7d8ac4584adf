package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packdock/packdock/engine"
	"github.com/packdock/packdock/provider"
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install [url]",
	Short: "Install a modpack onto the instance, from Modrinth or a direct pack URL",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		src, err := sourceFromArgs(cmd, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		fsys, settings, err := openInstance()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		bar := newProgressBar()
		eng, err := newEngine(fsys, settings, bar.update)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		fmt.Println("Installing modpack...")
		res, err := eng.Install(cmd.Context(), src)
		bar.wait()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		fmt.Printf("Installed %s (%s) for Minecraft %s with %s %s\n",
			res.Name, res.VersionID, res.Minecraft, res.LoaderKind, res.LoaderVersion)
		if res.Status == engine.StatusStaged {
			fmt.Println("The loader needs a manual bootstrap; see INSTALL-LOADER.txt in the instance directory.")
		} else if res.JarPath != "" {
			fmt.Println("Server jar:", res.JarPath)
		}
		fmt.Printf("%d file(s) downloaded\n", res.Fetched)
	},
}

// sourceFromArgs builds the pack source from the positional URL or the
// Modrinth flags.
func sourceFromArgs(cmd *cobra.Command, args []string) (provider.Source, error) {
	projectID, _ := cmd.Flags().GetString("project-id")
	versionID, _ := cmd.Flags().GetString("version-id")
	channel, _ := cmd.Flags().GetString("channel")

	if len(args) == 1 {
		if projectID != "" {
			return provider.Source{}, errors.New("specify either a pack URL or --project-id, not both")
		}
		return provider.Source{Kind: "url", URL: args[0]}, nil
	}
	if projectID == "" {
		return provider.Source{}, errors.New("specify a pack URL or a Modrinth project with --project-id")
	}

	src := provider.Source{
		Kind:      "modrinth",
		ProjectID: projectID,
		VersionID: versionID,
	}
	if channel != "" {
		src.Extra = map[string]any{"channel": channel}
	}
	return src, nil
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().String("project-id", "", "Modrinth project ID or slug to install")
	installCmd.Flags().String("version-id", "", "Modrinth version ID to install (defaults to the latest version)")
	installCmd.Flags().String("channel", "", "Limit the latest-version lookup to a release channel (release, beta or alpha)")
}
