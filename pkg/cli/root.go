// Package cli implements the mqttsim command line: the root cobra command
// plus version, validate, and run.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected at build time via -ldflags.
	Version = "dev"
	// Commit is injected at build time via -ldflags.
	Commit = "none"
	// BuildDate is injected at build time via -ldflags.
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mqttsim",
	Short: "mqttsim generates configurable MQTT publish traffic",
	Long: `mqttsim reads a declarative plan of brokers and streams and publishes
synthetic MQTT traffic against them at configured rates, with deterministic
per-field value generation for reproducible load tests and demos.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command, exiting the process with the code
// appropriate to whatever failed. Called once from cmd/mqttsim/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
