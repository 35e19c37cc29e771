// Package discrepancies provides the discrepancies command and its subcommands
package discrepancies

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labelquorum/quorum/cmd/cmdutil"
	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/consensus"
	"github.com/labelquorum/quorum/internal/datastore/repository"
)

// Command creates the discrepancies parent command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "discrepancies",
		Aliases: []string{"disc"},
		Short:   "Report automatic disagreement and manage manual flags",
	}

	cmd.AddCommand(
		reportCommand(settings),
		flagCommand(settings),
		unflagCommand(settings),
		listCommand(settings),
	)

	return cmd
}

func reportCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "report ITEM_ID...",
		Short: "Split items into those where annotators disagree and those where they do not",
		Long: `Report compares the label sets of every annotator of each item. An item is in discrepancy when at least two
annotators produced different label sets. Items without labels are reported as without discrepancy.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemIDs, err := cmdutil.ParseIDs("item id", args)
			if err != nil {
				return err
			}
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				with, without, err := e.GetDiscrepancyPartition(ctx, itemIDs)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "With discrepancy:    %v\n", with)
				fmt.Fprintf(out, "Without discrepancy: %v\n", without)
				return nil
			})
		},
	}
}

func flagCommand(settings *conf.Settings) *cobra.Command {
	var (
		projectID, itemID, memberID uint
		reason                      string
	)

	cmd := &cobra.Command{
		Use:   "flag",
		Short: "Flag an item as disputed by hand",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlags(cmd, "project-id", "item-id", "member-id"); err != nil {
				return err
			}
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				flag, err := e.Reviews().Flag(ctx, projectID, itemID, memberID, reason)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Flag %d recorded on item %d\n", flag.ID, flag.ItemID)
				return nil
			})
		},
	}

	cmd.Flags().UintVar(&projectID, "project-id", 0, "Project id")
	cmd.Flags().UintVar(&itemID, "item-id", 0, "Item id")
	cmd.Flags().UintVar(&memberID, "member-id", 0, "Flagging member id")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the item is disputed")

	return cmd
}

func unflagCommand(settings *conf.Settings) *cobra.Command {
	var itemID, memberID uint

	cmd := &cobra.Command{
		Use:   "unflag",
		Short: "Remove a member's manual flag from an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlags(cmd, "item-id", "member-id"); err != nil {
				return err
			}
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				if err := e.Reviews().Unflag(ctx, itemID, memberID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Flag removed from item %d\n", itemID)
				return nil
			})
		},
	}

	cmd.Flags().UintVar(&itemID, "item-id", 0, "Item id")
	cmd.Flags().UintVar(&memberID, "member-id", 0, "Flagging member id")

	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	var filter repository.DiscrepancyFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List manual flags of a project or item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				flags, err := e.Reviews().ListFlags(ctx, filter)
				if err != nil {
					return err
				}
				w := cmdutil.Table(cmd.OutOrStdout())
				fmt.Fprintln(w, "ID\tPROJECT\tITEM\tMEMBER\tREASON\tFLAGGED")
				for _, f := range flags {
					fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\t%s\n",
						f.ID, f.ProjectID, f.ItemID, f.MemberID, f.Reason, cmdutil.FormatTime(f.CreatedAt))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().UintVar(&filter.ProjectID, "project-id", 0, "Only flags of this project")
	cmd.Flags().UintVar(&filter.ItemID, "item-id", 0, "Only flags on this item")

	return cmd
}
