package main

import (
	"fmt"

	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "validate",
			Short: "Validate a configuration file",
			Long: `Validates a folio configuration file for syntax errors and invalid values.

Examples:
  folio config validate                   # Validates default config locations
  folio config validate -c folio.toml     # Validates specific file
  folio config validate -r notes          # Looks in notes/ and notes/.folio`,
			Args: cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				result, err := a.loadConfig()
				if err != nil {
					fmt.Fprintln(a.stderr, "Configuration validation failed:")
					fmt.Fprintf(a.stderr, "  - %s\n", err)
					return err
				}
				if result.Source != "" {
					a.success("Configuration valid: %s", result.Source)
				} else {
					a.notice("No config file found. Default configuration is valid.")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration",
			Long: `Shows the merged configuration from defaults and config file.

Examples:
  folio config show                # Show effective config
  folio config show -c folio.toml  # Show config from specific file`,
			Args: cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				result, err := a.loadConfig()
				if err != nil {
					return err
				}
				if result.Source != "" {
					fmt.Fprintf(a.stdout, "# Configuration from: %s\n\n", result.Source)
				} else {
					fmt.Fprintln(a.stdout, "# Default configuration (no config file found)")
				}
				content, err := toml.Marshal(result.Config)
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				_, err = a.stdout.Write(content)
				return err
			},
		},
	)
	return cmd
}
