package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fencerow",
	Short: "Fencerow - field adjacency and spray coordination service",
	Long: `Fencerow maintains the adjacency graph between registered field
boundaries so neighboring farmers can coordinate spraying.

Run 'fencerow serve' to start the API server, or 'fencerow recompute'
to rebuild the adjacency graph offline.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recomputeCmd)
}
