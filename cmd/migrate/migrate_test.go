package migrate

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelquorum/quorum/internal/conf"
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

func TestMigrate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		want     []string
		wantNot  []string
		wantErr  string
		database string
	}{
		{
			name:    "schema only",
			args:    []string{},
			want:    []string{"Schema is up to date"},
			wantNot: []string{"Demo project"},
		},
		{
			name: "seed demo",
			args: []string{"--seed-demo"},
			want: []string{"Schema is up to date", "Demo project", "Annotator 3 member", "Approver member"},
		},
		{
			name:    "positional arguments are ignored",
			args:    []string{"now"},
			want:    []string{"Schema is up to date"},
			wantNot: []string{"Demo project"},
		},
		{
			name:    "bad seed flag value",
			args:    []string{"--seed-demo=maybe"},
			wantErr: `invalid argument "maybe"`,
		},
		{
			name:     "unsupported database",
			args:     []string{},
			database: "postgres",
			wantErr:  `unsupported database type "postgres"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			settings := conf.Defaults()
			settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "quorum.db")
			if tt.database != "" {
				settings.Database.Type = tt.database
			}

			out, err := execute(settings, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.wantNot {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	t.Parallel()
	settings := conf.Defaults()
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "quorum.db")

	_, err := execute(settings, "--seed-demo")
	require.NoError(t, err)

	out, err := execute(settings)
	require.NoError(t, err, "migrating an existing schema is a no-op")
	assert.Equal(t, "Schema is up to date\n", out)
}
