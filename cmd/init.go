package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scoutline/scoutline/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize scoutline configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure providers and limits and generates a .scoutline.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
