package cmd

import (
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the filter presets from the config file",
	Long: `List the filter presets defined under filter.presets, with their expressions.
Every preset has been compiled by the time this runs, so an invalid expression
fails here before any request is made.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return render(cmd, filters.Presets())
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
