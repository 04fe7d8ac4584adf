package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packdock/packdock/instance"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the pack currently installed in the instance",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fsys, settings, err := openInstance()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		st, err := instance.ReadState(cmd.Context(), fsys)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if st == nil {
			fmt.Println("No modpack is installed in this instance.")
			return
		}

		name := settings.Name
		if name == "" {
			name = st.Source.FileName
		}
		fmt.Println("Instance:", name)
		fmt.Printf("Pack version: %s (from %s)\n", st.Source.VersionID, st.Provider)
		fmt.Println("Minecraft:", st.Minecraft.Version)
		fmt.Printf("Loader: %s %s\n", st.Loader.Kind, st.Loader.Version)
		if st.Server.JarPath != "" {
			fmt.Println("Server jar:", st.Server.JarPath)
		} else {
			fmt.Println("Server jar: not bootstrapped (see INSTALL-LOADER.txt)")
		}
		fmt.Printf("Managed files: %d\n", len(st.Files))
		fmt.Println("Installed at:", st.InstalledAt.Format("2006-01-02 15:04:05 MST"))
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
