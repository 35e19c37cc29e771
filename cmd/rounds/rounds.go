// Package rounds provides the rounds command and its subcommands
package rounds

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/labelquorum/quorum/cmd/cmdutil"
	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/consensus"
	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/voting"
)

// Command creates the rounds parent command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rounds",
		Short: "Manage voting rounds",
	}

	cmd.AddCommand(listCommand(settings), createCommand(settings), closeCommand(settings))

	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	var projectID uint

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's voting rounds, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlags(cmd, "project-id"); err != nil {
				return err
			}
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				rounds, err := e.Voting().ListRounds(ctx, projectID)
				if err != nil {
					return err
				}
				return printRounds(cmd.OutOrStdout(), rounds)
			})
		},
	}

	cmd.Flags().UintVar(&projectID, "project-id", 0, "Project id")

	return cmd
}

func createCommand(settings *conf.Settings) *cobra.Command {
	var (
		params       voting.RoundParams
		begins, ends string
		duration     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new voting round",
		Long: `Create opens a voting round for a project. The round gets the next free version unless --version names a free one.
A project can have one open round; an open round without pending rules is closed to make room.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlags(cmd, "project-id", "created-by"); err != nil {
				return err
			}

			var err error
			params.BeginsAt = time.Now().UTC()
			if begins != "" {
				if params.BeginsAt, err = cmdutil.ParseTime(begins); err != nil {
					return err
				}
			}
			params.EndsAt = params.BeginsAt.Add(duration)
			if ends != "" {
				if params.EndsAt, err = cmdutil.ParseTime(ends); err != nil {
					return err
				}
			}

			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				round, err := e.Voting().CreateRound(ctx, params)
				if err != nil {
					return err
				}
				return printRounds(cmd.OutOrStdout(), []*entities.VotingRound{round})
			})
		},
	}

	cmd.Flags().UintVar(&params.ProjectID, "project-id", 0, "Project id")
	cmd.Flags().UintVar(&params.CreatedBy, "created-by", 0, "Member id of the creating admin")
	cmd.Flags().StringVar(&begins, "begins", "", "Start of the voting window (default: now)")
	cmd.Flags().StringVar(&ends, "ends", "", "End of the voting window (default: begins + --duration)")
	cmd.Flags().DurationVar(&duration, "duration", 7*24*time.Hour, "Window length when --ends is not given")
	cmd.Flags().IntVar(&params.Version, "version", 0, "Requested version number")
	cmd.Flags().IntVar(&params.VotingThreshold, "voting-threshold", 0, "Informational minimum ballot count")
	cmd.Flags().Float64Var(&params.PercentageThreshold, "percentage-threshold", 0, "Informational approval percentage")

	return cmd
}

func closeCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "close ROUND_ID",
		Short: "Finalize pending rules with their current ballots and close the round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roundID, err := cmdutil.ParseID("round id", args[0])
			if err != nil {
				return err
			}
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				round, err := e.Voting().CloseRound(ctx, roundID)
				if err != nil {
					return err
				}
				return printRounds(cmd.OutOrStdout(), []*entities.VotingRound{round})
			})
		},
	}
}

func printRounds(out io.Writer, rounds []*entities.VotingRound) error {
	w := cmdutil.Table(out)
	fmt.Fprintln(w, "ID\tPROJECT\tVERSION\tSTATE\tBEGINS\tENDS\tCLOSED AT")
	for _, r := range rounds {
		state := "open"
		closedAt := "-"
		if r.Closed {
			state = "closed"
			if r.ClosedAt != nil {
				closedAt = cmdutil.FormatTime(*r.ClosedAt)
			}
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.ProjectID, r.Version, state,
			cmdutil.FormatTime(r.BeginsAt), cmdutil.FormatTime(r.EndsAt), closedAt)
	}
	return w.Flush()
}
