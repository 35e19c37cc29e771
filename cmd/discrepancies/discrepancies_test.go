package discrepancies

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelquorum/quorum/internal/conf"
	"github.com/labelquorum/quorum/internal/consensus"
	"github.com/labelquorum/quorum/internal/datastore"
	"github.com/labelquorum/quorum/internal/logger"
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

func seededSettings(t *testing.T) (*conf.Settings, *datastore.Demo) {
	t.Helper()
	settings := conf.Defaults()
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "quorum.db")

	e, err := consensus.New(settings, consensus.WithLogger(logger.NewSlogLogger(io.Discard, logger.LogLevelInfo, nil)))
	require.NoError(t, err)
	demo, err := datastore.SeedDemo(context.Background(), e.Store())
	require.NoError(t, err)
	require.NoError(t, e.Close())
	return settings, demo
}

func id(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func TestCommandArgs(t *testing.T) {
	t.Parallel()
	settings := conf.Defaults()
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "quorum.db")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"report without items", []string{"report"}, "requires at least 1 arg(s), only received 0"},
		{"report with text item", []string{"report", "1,two"}, `invalid item id "two"`},
		{"report with zero item", []string{"report", "0"}, `invalid item id "0"`},
		{"flag without flags", []string{"flag"}, "required flags not set: --project-id, --item-id, --member-id"},
		{"flag without member", []string{"flag", "--project-id", "1", "--item-id", "3"}, "required flags not set: --member-id"},
		{"unflag without item", []string{"unflag", "--member-id", "2"}, "required flags not set: --item-id"},
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

func TestReportWithoutLabels(t *testing.T) {
	t.Parallel()
	settings, _ := seededSettings(t)

	out, err := execute(settings, "report", "1,2", "5")
	require.NoError(t, err)
	assert.Equal(t, "With discrepancy:    []\nWithout discrepancy: [1 2 5]\n", out)
}

func TestFlagListUnflag(t *testing.T) {
	t.Parallel()
	settings, demo := seededSettings(t)
	member := id(demo.Annotators[0].ID)

	out, err := execute(settings, "flag",
		"--project-id", id(demo.Project.ID),
		"--item-id", "3",
		"--member-id", member,
		"--reason", "boxes differ")
	require.NoError(t, err)
	assert.Contains(t, out, "recorded on item 3")

	out, err = execute(settings, "list", "--project-id", id(demo.Project.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "boxes differ")

	out, err = execute(settings, "unflag", "--item-id", "3", "--member-id", member)
	require.NoError(t, err)
	assert.Equal(t, "Flag removed from item 3\n", out)

	out, err = execute(settings, "list", "--item-id", "3")
	require.NoError(t, err)
	assert.NotContains(t, out, "boxes differ")

	_, err = execute(settings, "flag",
		"--project-id", id(demo.Project.ID+1),
		"--item-id", "3",
		"--member-id", member)
	require.Error(t, err, "members of another project cannot flag")
}
