package cmd

import (
	"fmt"
	"os"

	"github.com/mediatag/tagger-api/pkg/config"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tagger-api",
	Short: "Media Tagger API server",
	Long: `Media Tagger API - automatic tagging and search for videos and images

The server registers video and image files, runs an AI tagging pipeline
over them (scene detection, frame sampling, tag generation) and exposes
boolean tag search across everything that has been tagged.

Features:
  • Scene detection and per-scene tagging for videos
  • Whole-image description and tagging for stills
  • User tags with provenance, protected from retagging
  • Boolean AND/OR/NOT tag search across videos, scenes and images`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// loadConfig loads the configuration when a command needs it
func loadConfig() {
	// Version and help never need config
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		return
	}

	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}
