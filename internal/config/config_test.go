package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "4091 Home", cfg.App.StartLink)
	assert.Equal(t, 32, cfg.App.HistoryLimit)
	assert.Equal(t, 50, cfg.Trace.MaxNavigations)
	assert.Equal(t, "navscope", cfg.Trace.ServiceName)
	assert.Equal(t, 9876, cfg.Server.Port)
	assert.Empty(t, cfg.Validate())
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navscope.yaml")
	content := `
log:
  level: debug
app:
  start_link: test1
  history_limit: 4
trace:
  otlp_endpoint: localhost:4318
server:
  port: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "test1", cfg.App.StartLink)
	assert.Equal(t, 4, cfg.App.HistoryLimit)
	assert.Equal(t, "localhost:4318", cfg.Trace.OTLPEndpoint)
	assert.Equal(t, 50, cfg.Trace.MaxNavigations, "unset keys keep defaults")
	assert.Equal(t, 0, cfg.Server.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))
	t.Setenv("NAVSCOPE_LOG_LEVEL", "warn")
	t.Setenv("NAVSCOPE_SERVER_PORT", "7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\nserver:\n  port: 70000\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Equal(t, "log.level", verrs[0].Field)
	assert.Equal(t, "server.port", verrs[1].Field)
}

func TestValidate_Limits(t *testing.T) {
	for _, tt := range []struct {
		name           string
		history, trace int
	}{
		{"negative", -1, -2},
		{"zero", 0, 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.App.HistoryLimit = tt.history
			cfg.Trace.MaxNavigations = tt.trace

			errs := cfg.Validate()
			require.Len(t, errs, 2)
			assert.Contains(t, errs[0].Error(), "app.history_limit")
			assert.Contains(t, ValidationErrors(errs).Error(), "trace.max_navigations")
		})
	}
}

func TestLoad_ZeroHistoryLimitRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  history_limit: 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.history_limit")
}
