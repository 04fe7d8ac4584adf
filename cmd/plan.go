package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packdock/packdock/engine"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what an update would change, without applying anything",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fsys, settings, err := openInstance()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		eng, err := newEngine(fsys, settings, nil)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		preview, err := eng.PlanUpdate(cmd.Context())
		if err != nil {
			if errors.Is(err, engine.ErrNotInstalled) {
				fmt.Println("No modpack is installed in this instance; run packdock install first.")
			} else {
				fmt.Println(err)
			}
			os.Exit(1)
		}

		if preview.UpToDate {
			fmt.Printf("Already up to date (%s)!\n", preview.CurrentVersion)
			return
		}

		fmt.Printf("Update %s: %s -> %s\n", preview.Name, preview.CurrentVersion, preview.LatestVersion)
		skipped := 0
		for _, d := range preview.Plan.Decisions {
			if d.Action == engine.ActionSkip {
				skipped++
			}
			fmt.Printf("  %-6s  %s (%s)\n", d.Action, d.Path, d.Reason)
		}
		fmt.Printf("%d file(s) to download, %d to delete, %d skipped\n",
			len(preview.Plan.Fetch), len(preview.Plan.Delete), skipped)
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
