package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate a configuration file without starting the server.

Checks file syntax, environment variable expansion, and that the portal
and credentials required to serve are present.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintf(a.stdout, "Configuration is valid.\n")
			fmt.Fprintf(a.stdout, "  Portal URL: %s\n", cfg.PortalURL())
			fmt.Fprintf(a.stdout, "  Read-only:  %v\n", cfg.ReadOnly)
			fmt.Fprintf(a.stdout, "  Log level:  %s\n", cfg.Log.Level)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	return cmd
}
