package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/config"
)

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configShowCommand prints the effective configuration as TOML.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Long: `Print the effective configuration as TOML.

The output merges the config file over the built-in defaults and can be
saved as a starting point for a new config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Encode(c.Config)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}

// configPathCommand prints where the config file is read from.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				p, err := config.Path()
				if err != nil {
					return fmt.Errorf("get config path: %w", err)
				}
				path = p
			}
			fmt.Println(path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				printDetail("not found; built-in defaults are in use")
			}
			return nil
		},
	}
}
