// Package cmd assembles the quorum command line interface.
package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/labelquorum/quorum/cmd/ballot"
	"github.com/labelquorum/quorum/cmd/configcmd"
	"github.com/labelquorum/quorum/cmd/discrepancies"
	"github.com/labelquorum/quorum/cmd/labels"
	"github.com/labelquorum/quorum/cmd/migrate"
	"github.com/labelquorum/quorum/cmd/reviews"
	"github.com/labelquorum/quorum/cmd/rounds"
	"github.com/labelquorum/quorum/cmd/rules"
	"github.com/labelquorum/quorum/cmd/sweep"
	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/logger"
)

// RootCommand creates and returns the root command. settings is filled in
// before any subcommand runs.
func RootCommand(settings *conf.Settings) *cobra.Command {
	v := conf.NewViper()
	var (
		configFile string
		central    *logger.CentralLogger
	)

	rootCmd := &cobra.Command{
		Use:           "quorum",
		Short:         "Annotation consensus engine",
		Long:          `quorum validates annotator labels, runs voting rounds on annotation rules and reports annotator disagreement.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config.yaml (default: search ./, ~/.config/quorum, /etc/quorum)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().String("database", "", "SQLite database path (overrides database.sqlite.path)")
	_ = v.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = v.BindPFlag("database.sqlite.path", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.AddCommand(
		migrate.Command(settings),
		sweep.Command(settings),
		rounds.Command(settings),
		rules.Command(settings),
		ballot.Command(settings),
		labels.Command(settings),
		discrepancies.Command(settings),
		reviews.Command(settings),
		configcmd.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := conf.Load(v, configFile)
		if err != nil {
			return err
		}
		*settings = *loaded

		central, err = logger.NewCentralLogger(&settings.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logger.SetGlobal(central)

		// Every log line of one invocation shares a trace id.
		cmd.SetContext(logger.WithTraceID(cmd.Context(), uuid.NewString()))
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return central.Close()
	}

	return rootCmd
}
