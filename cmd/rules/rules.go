// Package rules provides the rules command and its subcommands
package rules

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/labelquorum/quorum/cmd/cmdutil"
	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/consensus"
	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/tally"
	"github.com/labelquorum/quorum/internal/voting"
)

// Command creates the rules parent command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage annotation rules voted on in rounds",
	}

	cmd.AddCommand(
		listCommand(settings),
		addCommand(settings),
		showCommand(settings),
		updateCommand(settings),
	)

	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	var projectID uint

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's rules, finalizing expired rounds first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlags(cmd, "project-id"); err != nil {
				return err
			}
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				rules, err := e.ListRulesForRound(ctx, projectID)
				if err != nil {
					return err
				}
				return printRules(cmd.OutOrStdout(), rules)
			})
		},
	}

	cmd.Flags().UintVar(&projectID, "project-id", 0, "Project id")

	return cmd
}

func addCommand(settings *conf.Settings) *cobra.Command {
	var (
		roundID     uint
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a rule to an open round",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlags(cmd, "round-id"); err != nil {
				return err
			}
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				rule, err := e.Voting().AddRule(ctx, roundID, name, description)
				if err != nil {
					return err
				}
				return printRules(cmd.OutOrStdout(), []*entities.AnnotationRule{rule})
			})
		},
	}

	cmd.Flags().UintVar(&roundID, "round-id", 0, "Round id")
	cmd.Flags().StringVar(&name, "name", "", "Rule name")
	cmd.Flags().StringVar(&description, "description", "", "Rule description")

	return cmd
}

func showCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "show RULE_ID",
		Short: "Show a rule with its current tally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleID, err := cmdutil.ParseID("rule id", args[0])
			if err != nil {
				return err
			}
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				rule, err := e.Voting().GetRule(ctx, ruleID)
				if err != nil {
					return err
				}
				counts, err := e.Voting().Counts(ctx, ruleID)
				if err != nil {
					return err
				}
				if err := printRules(cmd.OutOrStdout(), []*entities.AnnotationRule{rule}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nFor: %d  Against: %d  Leading: %s\n",
					counts.For, counts.Against, counts.Verdict())
				return nil
			})
		},
	}
}

// updateFlags holds the update command's flags.
type updateFlags struct {
	name, description, verdict string
	finalize                   bool
}

// update turns the flags the user set into a RuleUpdate. Unset text flags
// leave the rule's text alone.
func (f *updateFlags) update(cmd *cobra.Command) voting.RuleUpdate {
	var u voting.RuleUpdate
	if cmd.Flags().Changed("name") {
		u.Name = &f.name
	}
	if cmd.Flags().Changed("description") {
		u.Description = &f.description
	}
	if f.finalize {
		u.Finalized = &f.finalize
	}
	if f.verdict != "" {
		v := tally.Verdict(f.verdict)
		u.Verdict = &v
	}
	return u
}

func updateCommand(settings *conf.Settings) *cobra.Command {
	var f updateFlags

	cmd := &cobra.Command{
		Use:   "update RULE_ID",
		Short: "Edit or finalize a rule as project admin",
		Long: `Update edits the text of a pending rule or finalizes it. --finalize computes the verdict from the ballots cast so far;
--verdict records an explicit one. A finalized rule cannot be changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleID, err := cmdutil.ParseID("rule id", args[0])
			if err != nil {
				return err
			}
			u := f.update(cmd)

			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				rule, err := e.Voting().UpdateRule(ctx, ruleID, u)
				if err != nil {
					return err
				}
				return printRules(cmd.OutOrStdout(), []*entities.AnnotationRule{rule})
			})
		},
	}

	f.bind(cmd)

	return cmd
}

func (f *updateFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "New rule name")
	cmd.Flags().StringVar(&f.description, "description", "", "New rule description")
	cmd.Flags().BoolVar(&f.finalize, "finalize", false, "Finalize with the current ballots")
	cmd.Flags().StringVar(&f.verdict, "verdict", "", "Finalize with this verdict: approved, rejected, tie or no_votes")
}

func printRules(out io.Writer, rules []*entities.AnnotationRule) error {
	w := cmdutil.Table(out)
	fmt.Fprintln(w, "ID\tROUND\tNAME\tSTATE\tVERDICT")
	for _, r := range rules {
		state := "pending"
		if r.Finalized {
			state = "finalized"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", r.ID, r.RoundID, r.Name, state, r.Verdict)
	}
	return w.Flush()
}
