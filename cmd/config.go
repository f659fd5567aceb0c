package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewCmdConfig prints the effective configuration.
func NewCmdConfig(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(a.Config)
		},
	}
}
