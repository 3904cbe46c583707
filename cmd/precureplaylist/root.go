// Package cmd provides command-line interface functionality for the precureplaylist application.
//
// This package implements the root command and manages the command-line interface
// using the cobra library. It handles configuration, logging setup, and command
// execution for the precureplaylist application.
//
// The package integrates with several components:
//   - Configuration management through pkg/config
//   - Document export and import through internal/playlist
//   - Manual pages through pkg/man
//   - Version information through pkg/version
//
// Example usage:
//
//	import cmd "github.com/toozej/precureplaylist/cmd/precureplaylist"
//
//	func main() {
//		cmd.Execute()
//	}
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/precureplaylist/pkg/config"
	"github.com/toozej/precureplaylist/pkg/man"
	"github.com/toozej/precureplaylist/pkg/version"
)

// conf holds the application configuration loaded from environment variables.
// It is populated before any command runs.
var (
	conf config.Config
	// debug controls the logging level for the application.
	// When true, debug-level logging is enabled through logrus.
	debug bool
)

// rootCmd defines the base command for the precureplaylist CLI application.
var rootCmd = &cobra.Command{
	Use:   "precureplaylist",
	Short: "Export and import Precure playlist documents",
	Long: `precureplaylist converts music playlists into Precure playlist documents and back.
It accepts its own export documents, raw Spotify playlist responses, and plain
track arrays, keeps only Precure tracks, and writes detailed or simple documents
with per-series statistics. Imported documents can be stored locally or
published to Spotify.`,
	Args:             cobra.ExactArgs(0),
	PersistentPreRun: rootCmdPreRun,
	Run:              rootCmdRun,
}

// rootCmdRun is the main execution function for the root command.
func rootCmdRun(cmd *cobra.Command, args []string) {
	log.Info("Use 'precureplaylist export <input>' to build a playlist document")
	log.Info("Use 'precureplaylist import <document>' to validate, save, or publish a document")
}

// rootCmdPreRun loads configuration and sets the log level before any command runs.
func rootCmdPreRun(cmd *cobra.Command, args []string) {
	conf = config.GetEnvVars()
	if debug {
		log.SetLevel(log.DebugLevel)
	}
}

// Execute starts the command-line interface execution.
// If command execution fails, it prints the error and exits with status 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func init() {
	// create rootCmd-level flags
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug-level logging")

	// add sub-commands
	rootCmd.AddCommand(
		newExportCmd(),
		newImportCmd(),
		newSearchCmd(),
		newListCmd(),
		newDeleteCmd(),
		newServeCmd(),
		newAuthCmd(),
		man.NewManCmd(),
		version.Command(),
	)
}
