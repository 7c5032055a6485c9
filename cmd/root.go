package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "scoutline",
	Short: "AI-assisted talent matching over a local candidate store",
	Long: `Scoutline answers natural-language hiring queries like "React developer
who can lead a team" with ranked, explained candidate matches. It keeps
candidate profiles, embeddings, and a full audit trail in local SQLite,
and exposes the matcher over a REST API and MCP for AI agents.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".scoutline.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
