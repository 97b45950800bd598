package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mcdev12/gimgrill/go/internal/grill"
	"github.com/mcdev12/gimgrill/go/internal/grill/publisher"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, grill.DefaultRules(), cfg.Game)
	assert.Equal(t, "GRILL_EVENTS", cfg.NATS.StreamName)
	assert.False(t, cfg.NATS.PublishTicks)
}

func TestLoadConfig_OverlaysFile(t *testing.T) {
	path := writeConfig(t, `
game:
  session_length_sec: 90
  tick_period: 500ms
  vip_chance: 0.5
nats:
  subject_prefix: arcade.grill
  publish_ticks: true
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	want := grill.DefaultRules()
	want.SessionLength = 90
	want.TickPeriod = 500 * time.Millisecond
	want.VIPChance = 0.5
	assert.Equal(t, want, cfg.Game)

	js := cfg.jetStreamConfig("nats://nats:4222")
	assert.Equal(t, "nats://nats:4222", js.URL)
	assert.Equal(t, "GRILL_EVENTS", js.StreamName)
	assert.Equal(t, "arcade.grill", js.SubjectPrefix)
	assert.True(t, js.PublishTicks)
	assert.Equal(t, publisher.DefaultJetStreamConfig().DuplicateWindow, js.DuplicateWindow)
}

func TestLoadConfig_RejectsInvalidRules(t *testing.T) {
	path := writeConfig(t, "game:\n  seaweed_cap: 0\n")
	_, err := loadConfig(path)
	assert.ErrorIs(t, err, grill.ErrInvalidRules)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("GRILL_TEST_INT", "42")
	t.Setenv("GRILL_TEST_BAD_INT", "forty")
	t.Setenv("GRILL_TEST_BOOL", "true")

	assert.Equal(t, 42, getEnvAsInt("GRILL_TEST_INT", 7))
	assert.Equal(t, 7, getEnvAsInt("GRILL_TEST_BAD_INT", 7))
	assert.True(t, getEnvAsBool("GRILL_TEST_BOOL", false))
	assert.True(t, getEnvAsBool("GRILL_TEST_UNSET", true))
	assert.Equal(t, "fallback", getEnv("GRILL_TEST_UNSET", "fallback"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLogLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLogLevel("loud"))
	assert.Equal(t, zerolog.InfoLevel, parseLogLevel(""))
}
