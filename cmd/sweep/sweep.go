// Package sweep provides the sweep command
package sweep

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labelquorum/quorum/cmd/cmdutil"
	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/consensus"
	"github.com/labelquorum/quorum/internal/voting"
)

// Command creates and returns the sweep command
func Command(settings *conf.Settings) *cobra.Command {
	var projectID uint

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Finalize expired voting rounds",
		Long: `Sweep finalizes every pending rule of open rounds whose voting window has ended and closes those rounds.
Rounds whose rules are all finalized are closed as well. Listing rules or rounds runs the same sweep for one project.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				var (
					res voting.SweepResult
					err error
				)
				if projectID != 0 {
					res, err = e.Voting().Sweep(ctx, projectID)
				} else {
					res, err = e.Voting().SweepAll(ctx)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Swept %d project(s): %d rule(s) finalized, %d round(s) closed\n",
					res.Projects, res.RulesFinalized, res.RoundsClosed)
				return err
			})
		},
	}

	cmd.Flags().UintVar(&projectID, "project-id", 0, "Sweep only this project")

	return cmd
}
