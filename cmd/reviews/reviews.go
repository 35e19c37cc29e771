// Package reviews provides the reviews command and its subcommands
package reviews

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/labelquorum/quorum/cmd/cmdutil"
	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/consensus"
	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/review"
)

// Command creates the reviews parent command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Record and list dataset reviews",
	}

	cmd.AddCommand(
		upsertCommand(settings),
		listCommand(settings),
	)

	return cmd
}

func upsertCommand(settings *conf.Settings) *cobra.Command {
	var (
		in         review.Input
		rejected   bool
		agreements []string
	)

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Record a reviewer's decision on an item, replacing any earlier one",
		Example: `  quorum reviews upsert --project-id 1 --item-id 5 --reviewer-id 2 --agreement 3:true --agreement "4:false:wrong span"
  quorum reviews upsert --project-id 1 --item-id 5 --reviewer-id 2 --rejected --comment "needs relabeling"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlags(cmd, "project-id", "item-id", "reviewer-id"); err != nil {
				return err
			}
			if rejected {
				approved := false
				in.Approved = &approved
			}
			parsed, err := parseAgreements(agreements)
			if err != nil {
				return err
			}
			in.LabelAgreements = parsed

			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				r, err := e.UpsertReview(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Review %d saved for item %d (approved: %t)\n", r.ID, r.ItemID, r.Approved)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.UintVar(&in.ProjectID, "project-id", 0, "Project id")
	flags.UintVar(&in.ItemID, "item-id", 0, "Item id")
	flags.UintVar(&in.ReviewerID, "reviewer-id", 0, "Reviewer (member) id")
	flags.BoolVar(&rejected, "rejected", false, "Reject the item instead of approving it")
	flags.StringVar(&in.Comment, "comment", "", "Review comment")
	flags.StringArrayVar(&agreements, "agreement", nil, "Per label type agreement as TYPE_ID:true|false[:note], repeatable")

	return cmd
}

// parseAgreements reads TYPE_ID:AGREED[:NOTE] values.
func parseAgreements(values []string) ([]entities.LabelAgreement, error) {
	out := make([]entities.LabelAgreement, 0, len(values))
	for _, value := range values {
		parts := strings.SplitN(value, ":", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid agreement %q, expected TYPE_ID:true|false[:note]", value)
		}
		typeID, err := cmdutil.ParseID("label type id", parts[0])
		if err != nil {
			return nil, err
		}
		agreed, err := strconv.ParseBool(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid agreement %q: %w", value, err)
		}
		a := entities.LabelAgreement{LabelTypeID: typeID, Agreed: agreed}
		if len(parts) == 3 {
			a.Note = parts[2]
		}
		out = append(out, a)
	}
	return out, nil
}

func listCommand(settings *conf.Settings) *cobra.Command {
	var (
		filter   repository.ReviewFilter
		approved string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if approved != "" {
				v, err := strconv.ParseBool(approved)
				if err != nil {
					return fmt.Errorf("invalid --approved value %q: %w", approved, err)
				}
				filter.Approved = &v
			}
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				reviews, err := e.Reviews().List(ctx, filter)
				if err != nil {
					return err
				}
				w := cmdutil.Table(cmd.OutOrStdout())
				fmt.Fprintln(w, "ID\tITEM\tREVIEWER\tAPPROVED\tAGREEMENTS\tUPDATED\tCOMMENT")
				for _, r := range reviews {
					fmt.Fprintf(w, "%d\t%d\t%d\t%t\t%d\t%s\t%s\n",
						r.ID, r.ItemID, r.ReviewerID, r.Approved, len(r.LabelAgreements),
						cmdutil.FormatTime(r.UpdatedAt), r.Comment)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().UintVar(&filter.ProjectID, "project-id", 0, "Only reviews of this project")
	cmd.Flags().UintVar(&filter.ReviewerID, "reviewer-id", 0, "Only reviews by this member")
	cmd.Flags().StringVar(&approved, "approved", "", "Only approved (true) or rejected (false) reviews")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "Maximum number of reviews")

	return cmd
}
