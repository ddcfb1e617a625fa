package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "awsaudit.yaml")

	cfg := Default()
	cfg.Email.Server = "relay.example.corp:587"
	cfg.Email.To = "finance@example.corp"
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "awsaudit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("email: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDefaultHasFraming(t *testing.T) {
	cfg := Default()
	assert.Contains(t, cfg.Email.SubjectWeekly, "{month_name}")
	assert.Contains(t, cfg.Email.PreambleWeekly, "{date}")
	assert.NotEmpty(t, cfg.Email.Preamble)
}
