package logger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSlogLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewSlogLogger(&buf, LogLevelInfo, time.UTC)

	log.Debug("hidden")
	log.Info("visible", String("project", "p1"), Int("rules", 3))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "project=p1")
	assert.Contains(t, out, "rules=3")
}

func TestModuleAndFieldsAccumulate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := NewSlogLogger(&buf, LogLevelTrace, time.UTC)

	voting := base.Module("voting").With(Uint64("round_id", 7))
	sweep := voting.Module("sweep")
	sweep.Trace("tick", Bool("expired", true))

	out := buf.String()
	assert.Contains(t, out, "module=voting.sweep")
	assert.Contains(t, out, "round_id=7")
	assert.Contains(t, out, "expired=true")
	assert.Contains(t, out, "level=TRACE")
}

func TestWithContextAddsTraceID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewSlogLogger(&buf, LogLevelDebug, time.UTC)

	ctx := WithTraceID(context.Background(), "sweep-42")
	log.WithContext(ctx).Info("sweeping")
	log.WithContext(context.Background()).Info("no trace")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "trace_id=sweep-42")
	assert.NotContains(t, lines[1], "trace_id")
}

func TestErrorField(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "boom", Error(errors.New("boom")).Value)
	assert.Nil(t, Error(nil).Value)
	assert.Equal(t, "error", Error(nil).Key)
}

func TestCentralLoggerModuleLevels(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "quorum.log")
	cl, err := NewCentralLogger(&LoggingConfig{
		DefaultLevel: "warn",
		Timezone:     "UTC",
		FilePath:     path,
		ModuleLevels: map[string]string{"voting": "debug"},
	})
	require.NoError(t, err)

	cl.Module("voting").Debug("ballot accepted")
	cl.Module("review").Info("review stored")
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"ballot accepted"`)
	assert.Contains(t, string(data), `"module":"voting"`)
	assert.NotContains(t, string(data), "review stored")
}

func TestCentralLoggerRejectsBadTimezone(t *testing.T) {
	t.Parallel()

	_, err := NewCentralLogger(&LoggingConfig{Timezone: "Mars/Olympus"})
	require.Error(t, err)

	_, err = NewCentralLogger(nil)
	require.Error(t, err)
}

func TestGormAdapterTrace(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := NewGormLoggerAdapter(NewSlogLogger(&buf, LogLevelTrace, time.UTC), 50*time.Millisecond)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	adapter.Trace(context.Background(), time.Now(), sql, nil)
	adapter.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	adapter.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	adapter.Trace(context.Background(), time.Now(), sql, errors.New("database is locked"))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "msg=\"sql query\""))
	assert.Contains(t, out, "msg=\"slow query\"")
	assert.Contains(t, out, "msg=\"query error\"")
	assert.Contains(t, out, "database is locked")
}

func TestGormAdapterNilLogger(t *testing.T) {
	t.Parallel()

	adapter := NewGormLoggerAdapter(nil, 0)
	assert.Same(t, adapter, adapter.LogMode(0))

	quiet := NewGormLoggerAdapter(NewSlogLogger(io.Discard, LogLevelError, nil), 0)
	quiet.Info(context.Background(), "migrated %d tables", 3)
}
