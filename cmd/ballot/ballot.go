// Package ballot provides the ballot command
package ballot

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/labelquorum/quorum/cmd/cmdutil"
	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/consensus"
	"github.com/labelquorum/quorum/internal/voting"
)

// Command creates and returns the ballot command
func Command(settings *conf.Settings) *cobra.Command {
	var (
		memberID uint
		answer   string
		comment  string
	)

	cmd := &cobra.Command{
		Use:   "ballot RULE_ID",
		Short: "Cast a ballot on an annotation rule",
		Long: `Ballot records a member's vote. Only annotators of the rule's project can vote, once per rule, while the round is open.
The rule is finalized as soon as every annotator of the project has voted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleID, err := cmdutil.ParseID("rule id", args[0])
			if err != nil {
				return err
			}
			if err := cmdutil.RequireFlags(cmd, "member-id"); err != nil {
				return err
			}
			a, err := parseAnswer(answer, comment)
			if err != nil {
				return err
			}

			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				receipt, err := e.SubmitBallot(ctx, ruleID, memberID, a)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Ballot %d recorded on rule %d\n", receipt.Ballot.ID, receipt.Rule.ID)
				if receipt.Rule.Finalized {
					fmt.Fprintf(out, "Rule finalized: %s\n", receipt.Rule.Verdict)
				}
				if receipt.RoundClosed {
					fmt.Fprintf(out, "Round %d closed\n", receipt.Rule.RoundID)
				}
				return nil
			})
		},
	}

	cmd.Flags().UintVar(&memberID, "member-id", 0, "Voting member id")
	cmd.Flags().StringVar(&answer, "answer", "", "yes, no or none (comment only)")
	cmd.Flags().StringVar(&comment, "comment", "", "Free-form comment")

	return cmd
}

func parseAnswer(answer, comment string) (voting.Answer, error) {
	switch strings.ToLower(answer) {
	case "yes", "y", "true", "approve":
		return voting.Yes(comment), nil
	case "no", "n", "false", "reject":
		return voting.No(comment), nil
	case "none", "":
		if strings.TrimSpace(comment) == "" {
			return voting.Answer{}, fmt.Errorf("--comment is required when --answer is none")
		}
		return voting.CommentOnly(comment), nil
	}
	return voting.Answer{}, fmt.Errorf("invalid answer %q, use yes, no or none", answer)
}
