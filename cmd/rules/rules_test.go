package rules

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/consensus"
	"github.com/labelquorum/quorum/internal/datastore"
	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/logger"
	"github.com/labelquorum/quorum/internal/tally"
	"github.com/labelquorum/quorum/internal/voting"
)

func execute(settings *conf.Settings, args ...string) (string, error) {
	cmd := Command(settings)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	settings := conf.Defaults()
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "quorum.db")
	return settings
}

// openRound seeds the demo project and opens a round in it.
func openRound(t *testing.T, settings *conf.Settings) (*datastore.Demo, *entities.VotingRound) {
	t.Helper()
	ctx := context.Background()

	e, err := consensus.New(settings, consensus.WithLogger(logger.NewSlogLogger(io.Discard, logger.LogLevelInfo, nil)))
	require.NoError(t, err)
	defer func() { require.NoError(t, e.Close()) }()

	demo, err := datastore.SeedDemo(ctx, e.Store())
	require.NoError(t, err)
	now := time.Now().UTC()
	round, err := e.Voting().CreateRound(ctx, voting.RoundParams{
		ProjectID: demo.Project.ID,
		CreatedBy: demo.Admin.ID,
		BeginsAt:  now.Add(-time.Minute),
		EndsAt:    now.Add(time.Hour),
	})
	require.NoError(t, err)
	return demo, round
}

func TestCommandArgs(t *testing.T) {
	t.Parallel()
	settings := testSettings(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"update without id", []string{"update"}, "accepts 1 arg(s), received 0"},
		{"update with text id", []string{"update", "abc"}, `invalid rule id "abc"`},
		{"show zero id", []string{"show", "0"}, `invalid rule id "0"`},
		{"show two ids", []string{"show", "1", "2"}, "accepts 1 arg(s), received 2"},
		{"add without round", []string{"add", "--name", "x"}, "required flags not set: --round-id"},
		{"list without project", []string{"list"}, "required flags not set: --project-id"},
		{"unknown flag", []string{"update", "1", "--approve"}, "unknown flag: --approve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := execute(settings, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUpdateFlags(t *testing.T) {
	t.Parallel()

	name, empty, finalize := "tight boxes", "", true
	approved := tally.Approved

	tests := []struct {
		name string
		args []string
		want voting.RuleUpdate
	}{
		{"nothing set", nil, voting.RuleUpdate{}},
		{"rename", []string{"--name", "tight boxes"}, voting.RuleUpdate{Name: &name}},
		{"clear description", []string{"--description", ""}, voting.RuleUpdate{Description: &empty}},
		{"finalize", []string{"--finalize"}, voting.RuleUpdate{Finalized: &finalize}},
		{"explicit verdict", []string{"--verdict", "approved"}, voting.RuleUpdate{Verdict: &approved}},
		{"finalize false is ignored", []string{"--finalize=false"}, voting.RuleUpdate{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var f updateFlags
			cmd := &cobra.Command{Use: "update"}
			f.bind(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))
			assert.Equal(t, tt.want, f.update(cmd))
		})
	}
}

func TestPrintRules(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, printRules(&out, []*entities.AnnotationRule{
		{ID: 1, RoundID: 4, Name: "tight boxes", Verdict: tally.Pending},
		{ID: 2, RoundID: 4, Name: "no overlaps", Finalized: true, Verdict: tally.Rejected},
	}))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Regexp(t, `^ID\s+ROUND\s+NAME\s+STATE\s+VERDICT$`, string(lines[0]))
	assert.Regexp(t, `^1\s+4\s+tight boxes\s+pending\s+pending$`, string(lines[1]))
	assert.Regexp(t, `^2\s+4\s+no overlaps\s+finalized\s+rejected$`, string(lines[2]))
}

func TestAddAndFinalizeRule(t *testing.T) {
	t.Parallel()
	settings := testSettings(t)
	demo, round := openRound(t, settings)

	out, err := execute(settings, "add", "--round-id", strconv.FormatUint(uint64(round.ID), 10), "--name", "tight boxes")
	require.NoError(t, err)
	assert.Contains(t, out, "tight boxes")
	assert.Contains(t, out, "pending")

	out, err = execute(settings, "update", "1", "--verdict", "approved")
	require.NoError(t, err)
	assert.Contains(t, out, "finalized")
	assert.Contains(t, out, "approved")

	out, err = execute(settings, "list", "--project-id", strconv.FormatUint(uint64(demo.Project.ID), 10))
	require.NoError(t, err)
	assert.Contains(t, out, "tight boxes")

	_, err = execute(settings, "update", "1", "--name", "loose boxes")
	require.Error(t, err, "a finalized rule cannot be changed")
}
