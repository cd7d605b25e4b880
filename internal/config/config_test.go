package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"general", "random", "tech"}, cfg.Chat.Rooms)
	assert.Equal(t, "general", cfg.Chat.DefaultRoom)
	assert.Equal(t, 100, cfg.Chat.HistoryLimit)
	assert.Empty(t, cfg.Chat.DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", ":9000")
	t.Setenv("ROOMS", "lobby,dev")
	t.Setenv("DEFAULT_ROOM", "lobby")
	t.Setenv("HISTORY_LIMIT", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"lobby", "dev"}, cfg.Chat.Rooms)
	assert.Equal(t, "lobby", cfg.Chat.DefaultRoom)
	assert.Equal(t, 50, cfg.Chat.HistoryLimit)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadHistoryLimit(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HISTORY_LIMIT", "0")

	_, err := Load()
	assert.Error(t, err)
}
