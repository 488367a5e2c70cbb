package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is a declarative presentation-node tree toolkit",
	Long: `Arbor reduces loosely-typed construction parameters into canonical
node descriptors and manages the resulting component trees.

The CLI is an inspection surface over the same engine: feed it compact
syntax strings or YAML parameter files and see what the reduction
produces.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
