// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Backend.URL)
	assert.Equal(t, 30, cfg.Backend.TimeoutSecs)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, "downloads", cfg.Downloads.Dir)
	assert.Equal(t, "HR", cfg.UI.DefaultPersona)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Backend.URL, cfg.Backend.URL)
}

func TestLoadFromPath_PartialFileBackfilled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[backend]
url = "http://assistant.internal:9000"

[ui]
default_persona = "Legal"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://assistant.internal:9000", cfg.Backend.URL)
	assert.Equal(t, "Legal", cfg.UI.DefaultPersona)
	// Unset fields come from defaults.
	assert.Equal(t, 30, cfg.Backend.TimeoutSecs)
	assert.Equal(t, "downloads", cfg.Downloads.Dir)
}

func TestLoadFromPath_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("backend = {"), 0o644))

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PERSONADESK_BACKEND_URL", "http://10.1.2.3:8000")
	t.Setenv("PERSONADESK_TIMEOUT_SECS", "5")
	t.Setenv("PERSONADESK_PERSONA", "L2")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "http://10.1.2.3:8000", cfg.Backend.URL)
	assert.Equal(t, 5, cfg.Backend.TimeoutSecs)
	assert.Equal(t, "L2", cfg.UI.DefaultPersona)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad url",
			mutate:  func(c *Config) { c.Backend.URL = "not a url" },
			wantErr: "backend.url",
		},
		{
			name:    "bad scheme",
			mutate:  func(c *Config) { c.Backend.URL = "ftp://host" },
			wantErr: "backend.url",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Backend.TimeoutSecs = 0 },
			wantErr: "backend.timeout_secs",
		},
		{
			name:    "unknown persona",
			mutate:  func(c *Config) { c.UI.DefaultPersona = "Finance" },
			wantErr: "ui.default_persona",
		},
		{
			name:    "empty download dir",
			mutate:  func(c *Config) { c.Downloads.Dir = "" },
			wantErr: "downloads.dir",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestWatcher_ReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	body := "[backend]\nurl = \"http://assistant.internal:9000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "http://assistant.internal:9000", cfg.Backend.URL)
	case <-time.After(3 * time.Second):
		t.Fatal("config reload not delivered")
	}
}

func TestWatcher_InvalidConfigSkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("backend = {"), 0o644))

	select {
	case <-reloaded:
		t.Fatal("invalid config should not be delivered")
	case <-time.After(600 * time.Millisecond):
	}
}
