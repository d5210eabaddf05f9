// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/platform/config"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "panel.db")
	t.Setenv("JWT_PRIVATE_KEY_PATH", "private.pem")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "public.pem")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("EXTRA_ORIGINS", "https://admin.example.com, ,https://ops.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 25, cfg.Panel.DefaultPerPage)
	assert.Equal(t, 5*time.Minute, cfg.Panel.CacheTTL)
	assert.False(t, cfg.Panel.AllowOnMissingPolicy())
	assert.Equal(t, []string{"https://admin.example.com", "https://ops.example.com"}, cfg.Origins())
}

func TestLoadPanelPrefix(t *testing.T) {
	setRequired(t)
	t.Setenv("PANEL_MAX_PER_PAGE", "500")
	t.Setenv("PANEL_CACHE_TTL", "30s")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Panel.MaxPerPage)
	assert.Equal(t, 30*time.Second, cfg.Panel.CacheTTL)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]map[string]string{
		"driver":            {"DATABASE_DRIVER": "oracle"},
		"fallback":          {"PANEL_POLICY_FALLBACK": "maybe"},
		"allow_in_prod":     {"PANEL_POLICY_FALLBACK": "allow", "ENVIRONMENT": "production"},
		"inverted_per_page": {"PANEL_DEFAULT_PER_PAGE": "50", "PANEL_MAX_PER_PAGE": "10"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			for key, value := range env {
				t.Setenv(key, value)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}

	t.Run("missing_required", func(t *testing.T) {
		setRequired(t)
		require.NoError(t, os.Unsetenv("DATABASE_URL"))
		_, err := config.Load()
		assert.Error(t, err)
	})
}
