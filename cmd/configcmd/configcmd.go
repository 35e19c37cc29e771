// Package configcmd provides the config command
package configcmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/labelquorum/quorum/internal/conf"
)

// Command creates the config parent command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or inspect configuration",
	}

	cmd.AddCommand(initCommand(), showCommand(settings))

	return cmd
}

func initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a config.yaml populated with defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(conf.DefaultConfigPaths()[0], "config.yaml")
			if len(args) == 1 {
				path = args[0]
			}
			if err := conf.WriteConfig(path, conf.Defaults(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func showCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as YAML with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(masked(settings)); err != nil {
				return fmt.Errorf("error encoding settings: %w", err)
			}
			return enc.Close()
		},
	}
}

const mask = "********"

func masked(settings *conf.Settings) *conf.Settings {
	out := *settings
	if out.Database.MySQL.Password != "" {
		out.Database.MySQL.Password = mask
	}
	if out.Telemetry.SentryDSN != "" {
		out.Telemetry.SentryDSN = mask
	}
	return &out
}
