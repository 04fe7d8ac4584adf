package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packdock/packdock/engine"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the installed modpack to its latest version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
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

		fmt.Println("Checking for updates...")
		res, err := eng.Update(cmd.Context())
		bar.wait()
		if err != nil {
			if errors.Is(err, engine.ErrNotInstalled) {
				fmt.Println("No modpack is installed in this instance; run packdock install first.")
			} else {
				fmt.Println(err)
			}
			os.Exit(1)
		}

		if res.Status == engine.StatusNoChanges {
			fmt.Printf("Already up to date (%s)!\n", res.VersionID)
			return
		}
		fmt.Printf("Updated %s to %s\n", res.Name, res.VersionID)
		fmt.Printf("%d file(s) downloaded, %d deleted, %d unchanged, %d protected\n",
			res.Fetched, res.Deleted, res.SkippedUnchanged, res.SkippedProtected)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
