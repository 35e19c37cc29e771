// Package migrate provides the migrate command
package migrate

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labelquorum/quorum/cmd/cmdutil"
	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/consensus"
	"github.com/labelquorum/quorum/internal/datastore"
)

// Command creates and returns the migrate command
func Command(settings *conf.Settings) *cobra.Command {
	var seedDemo bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long:  `Migrate opens the configured database and creates or upgrades every table. With --seed-demo it also creates a small demo project.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
				if !seedDemo {
					return nil
				}
				return seed(ctx, cmd, e)
			})
		},
	}

	cmd.Flags().BoolVar(&seedDemo, "seed-demo", false, "Create a demo project with an admin, three annotators and an approver")

	return cmd
}

func seed(ctx context.Context, cmd *cobra.Command, e *consensus.Engine) error {
	demo, err := datastore.SeedDemo(ctx, e.Store())
	if err != nil {
		return err
	}

	w := cmdutil.Table(cmd.OutOrStdout())
	fmt.Fprintf(w, "Demo project\t%d\n", demo.Project.ID)
	fmt.Fprintf(w, "Admin member\t%d\n", demo.Admin.ID)
	for i, m := range demo.Annotators {
		fmt.Fprintf(w, "Annotator %d member\t%d\n", i+1, m.ID)
	}
	fmt.Fprintf(w, "Approver member\t%d\n", demo.Approver.ID)
	return w.Flush()
}
