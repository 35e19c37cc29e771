package configcmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelquorum/quorum/internal/conf"
)

func TestInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quorum", "config.yaml")

	cmd := initCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), path)

	loaded, err := conf.Load(conf.NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, conf.Defaults().Database.Type, loaded.Database.Type)

	// A second init without --force leaves the file alone.
	cmd = initCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.Error(t, cmd.Execute())

	cmd = initCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--force", path})
	require.NoError(t, cmd.Execute())
}

func TestShowMasksSecrets(t *testing.T) {
	t.Parallel()

	settings := conf.Defaults()
	settings.Database.MySQL.Password = "hunter2"
	settings.Telemetry.SentryDSN = "https://key@sentry.example/1"

	cmd := showCommand(settings)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.NotContains(t, out.String(), "hunter2")
	assert.NotContains(t, out.String(), "sentry.example")
	assert.Contains(t, out.String(), mask)
	assert.Equal(t, "hunter2", settings.Database.MySQL.Password)
}
