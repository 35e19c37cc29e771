// Package labels provides the labels command and its subcommands
package labels

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/labelquorum/quorum/cmd/cmdutil"
	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/consensus"
	"github.com/labelquorum/quorum/internal/labeling"
)

// Command creates the labels parent command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Record, list and retract annotator labels",
	}

	cmd.AddCommand(
		addCommand(settings),
		listCommand(settings),
		retractCommand(settings),
	)

	return cmd
}

// labelFlags collects the flags of one candidate label.
type labelFlags struct {
	projectID, itemID, annotatorID uint
	kind                           string
	typeID                         uint
	start, end                     int
	text                           string
	from, to                       uint
}

func (f *labelFlags) label() (labeling.Label, error) {
	kind, err := labeling.ParseKind(f.kind)
	if err != nil {
		return labeling.Label{}, err
	}

	l := labeling.Label{ItemID: f.itemID, AnnotatorID: f.annotatorID}
	switch kind {
	case labeling.KindCategory:
		l.Payload = labeling.Category{TypeID: f.typeID}
	case labeling.KindSpan:
		l.Payload = labeling.Span{TypeID: f.typeID, Start: f.start, End: f.end}
	case labeling.KindText:
		l.Payload = labeling.FreeText{Text: f.text}
	case labeling.KindRelation:
		l.Payload = labeling.Relation{TypeID: f.typeID, FromID: f.from, ToID: f.to}
	}
	return l, nil
}

func addCommand(settings *conf.Settings) *cobra.Command {
	var f labelFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Validate a label against the project policy and record it",
		Example: `  quorum labels add --project-id 1 --item-id 5 --annotator-id 2 --kind category --type-id 3
  quorum labels add --project-id 1 --item-id 5 --annotator-id 2 --kind span --type-id 3 --start 0 --end 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlags(cmd, "project-id", "item-id", "annotator-id"); err != nil {
				return err
			}
			candidate, err := f.label()
			if err != nil {
				return err
			}
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				row, err := e.Labels().ValidateAndRecord(ctx, f.projectID, candidate)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Label %d recorded on item %d\n", row.ID, row.ItemID)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.UintVar(&f.projectID, "project-id", 0, "Project id")
	flags.UintVar(&f.itemID, "item-id", 0, "Item id")
	flags.UintVar(&f.annotatorID, "annotator-id", 0, "Annotator (member) id")
	flags.StringVar(&f.kind, "kind", string(labeling.KindCategory), "Label kind: category, span, text or relation")
	flags.UintVar(&f.typeID, "type-id", 0, "Label type id")
	flags.IntVar(&f.start, "start", 0, "Span start offset")
	flags.IntVar(&f.end, "end", 0, "Span end offset, exclusive")
	flags.StringVar(&f.text, "text", "", "Free text value")
	flags.UintVar(&f.from, "from", 0, "Relation source label id")
	flags.UintVar(&f.to, "to", 0, "Relation target label id")

	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	var itemID uint

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every annotator's labels on an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlags(cmd, "item-id"); err != nil {
				return err
			}
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				labels, err := e.Labels().ListForItem(ctx, itemID)
				if err != nil {
					return err
				}
				return printLabels(cmd.OutOrStdout(), labels)
			})
		},
	}

	cmd.Flags().UintVar(&itemID, "item-id", 0, "Item id")

	return cmd
}

func retractCommand(settings *conf.Settings) *cobra.Command {
	var annotatorID uint

	cmd := &cobra.Command{
		Use:   "retract LABEL_ID",
		Short: "Delete a label on behalf of its annotator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			labelID, err := cmdutil.ParseID("label id", args[0])
			if err != nil {
				return err
			}
			if err := cmdutil.RequireFlags(cmd, "annotator-id"); err != nil {
				return err
			}
			return cmdutil.WithEngine(cmd, settings, func(ctx context.Context, e *consensus.Engine) error {
				if err := e.Labels().Retract(ctx, labelID, annotatorID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Label %d retracted\n", labelID)
				return nil
			})
		},
	}

	cmd.Flags().UintVar(&annotatorID, "annotator-id", 0, "Annotator (member) id")

	return cmd
}

func printLabels(out io.Writer, labels []labeling.Label) error {
	w := cmdutil.Table(out)
	fmt.Fprintln(w, "ID\tANNOTATOR\tKIND\tVALUE")
	for _, l := range labels {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", l.ID, l.AnnotatorID, l.Kind(), describe(l.Payload))
	}
	return w.Flush()
}

func describe(p labeling.Payload) string {
	switch v := p.(type) {
	case labeling.Category:
		return fmt.Sprintf("type=%d", v.TypeID)
	case labeling.Span:
		return fmt.Sprintf("type=%d [%d,%d)", v.TypeID, v.Start, v.End)
	case labeling.FreeText:
		return fmt.Sprintf("%q", v.Text)
	case labeling.Relation:
		return fmt.Sprintf("type=%d %d->%d", v.TypeID, v.FromID, v.ToID)
	default:
		return "-"
	}
}
