// atomgraph - split payloads into atoms and build proximity graphs from them
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "dev"

	// Global flags
	configPath string
	dataDir    string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "atomgraph",
	Short: "Split payloads into atoms and build proximity graphs",
	Long: `atomgraph decomposes payloads (text, files, sequences) into atoms with a
configurable splitting strategy and links atoms that occur near each other
into a proximity graph. Graphs are stored locally in SQLite.

Examples:
  # Split text into character 3-grams
  atomgraph split "abcdef"

  # Split into stemmed word pairs
  atomgraph split --strategy words --atom-size 2 --stem english "Cats running quickly"

  # Build a graph from several payloads
  atomgraph build --name demo "abcd" "abce"

  # Build a graph from a codebase
  atomgraph index ./src --strategy lines --atom-size 1

  # Start the HTTP server
  atomgraph serve`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default: ~/.atomgraph)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(strategiesCmd)
	rootCmd.AddCommand(serveCmd)
}
