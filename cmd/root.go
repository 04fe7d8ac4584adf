package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/packdock/packdock/engine"
	"github.com/packdock/packdock/instance"
	"github.com/packdock/packdock/loader"
	"github.com/packdock/packdock/remote"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "packdock",
	Short: "A command line tool for deploying Minecraft modpacks onto server instances",
}

// Execute starts the root command for packdock
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLog)

	rootCmd.PersistentFlags().String("instance-dir", ".", "The instance directory to operate on")
	viper.BindPFlag("instance-dir", rootCmd.PersistentFlags().Lookup("instance-dir"))

	rootCmd.PersistentFlags().String("agent-url", "", "Base URL of the agent file API; overrides the instance settings file")
	viper.BindPFlag("agent-url", rootCmd.PersistentFlags().Lookup("agent-url"))

	rootCmd.PersistentFlags().String("agent-token", "", "Bearer token for the agent file API")
	viper.BindPFlag("agent-token", rootCmd.PersistentFlags().Lookup("agent-token"))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.packdock.toml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".packdock" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".packdock")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func initLog() {
	level := slog.LevelWarn
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// openInstance builds the remote FS and settings for the selected instance.
// An agent URL (flag or settings file) selects the agent-backed FS; otherwise
// the instance directory is used directly.
func openInstance() (remote.FS, instance.Settings, error) {
	dir := viper.GetString("instance-dir")
	settings, err := instance.LoadSettings(filepath.Join(dir, instance.SettingsFileName))
	if err != nil {
		return nil, instance.Settings{}, fmt.Errorf("failed to read instance settings: %w", err)
	}

	agentURL := viper.GetString("agent-url")
	if agentURL == "" {
		agentURL = settings.Agent.URL
	}
	agentToken := viper.GetString("agent-token")
	if agentToken == "" {
		agentToken = settings.Agent.Token
	}

	if agentURL != "" {
		return remote.NewAgent(agentURL, agentToken), settings, nil
	}
	return remote.NewLocal(dir), settings, nil
}

func newEngine(fsys remote.FS, settings instance.Settings, onProgress engine.ProgressFunc) (*engine.Engine, error) {
	return engine.New(engine.Config{
		FS:             fsys,
		Resolver:       loader.NewMetaResolver(),
		ProtectedGlobs: settings.ProtectedGlobs(),
		OnProgress:     onProgress,
	})
}
