// Package cmdutil holds helpers shared by the quorum subcommands.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/consensus"
	"github.com/labelquorum/quorum/internal/errors"
	"github.com/labelquorum/quorum/internal/logger"
)

// displayError shows the user message of an error while keeping the
// original for errors.Is.
type displayError struct {
	err error
}

func (e displayError) Error() string { return consensus.UserMessage(e.err) }

func (e displayError) Unwrap() error { return e.err }

// WithEngine opens the engine configured by settings, runs fn and closes
// the engine. Errors from fn are rendered with consensus.UserMessage.
func WithEngine(cmd *cobra.Command, settings *conf.Settings, fn func(ctx context.Context, e *consensus.Engine) error) error {
	log := logger.Global().Module("cli")
	e, err := consensus.New(settings, consensus.WithLogger(logger.Global().Module("quorum")))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runErr := fn(ctx, e)
	closeErr := e.Close()

	if runErr != nil {
		if errors.IsCategory(runErr, errors.CategoryDatabase) || consensus.UserMessage(runErr) == "internal error" {
			log.WithContext(ctx).Error("command failed",
				logger.String("command", cmd.CommandPath()),
				logger.Error(runErr))
		}
		return displayError{err: runErr}
	}
	return closeErr
}

// Table returns a tab aligned writer; call Flush when done.
func Table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// ParseTime accepts RFC 3339 timestamps and plain dates, which are read
// as midnight UTC.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, use RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatTime renders t for tables.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// ParseID parses a positional id argument.
func ParseID(name, s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return uint(id), nil
}

// ParseIDs parses a list of id arguments.
func ParseIDs(name string, args []string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, a := range args {
		for part := range strings.SplitSeq(a, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			id, err := ParseID(name, part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// RequireFlags fails when any of the named uint flags is zero.
func RequireFlags(cmd *cobra.Command, names ...string) error {
	var missing []string
	for _, name := range names {
		if v, err := cmd.Flags().GetUint(name); err != nil || v == 0 {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required flags not set: %s", strings.Join(missing, ", "))
	}
	return nil
}
