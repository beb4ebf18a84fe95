package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pqrs-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())

	assert.Equal(t, 15, cfg.Lifecycle.PetitionDays)
	assert.Equal(t, 15, cfg.Lifecycle.ComplaintDays)
	assert.Equal(t, 15, cfg.Lifecycle.ClaimDays)
	assert.Equal(t, 30, cfg.Lifecycle.SuggestionDays)
	assert.Equal(t, 3, cfg.Lifecycle.YellowWithinDays)
	assert.True(t, cfg.Lifecycle.AllowReopenTerminal)
	assert.Equal(t, 5, cfg.Lifecycle.TrackingCodeAttempts)

	assert.Equal(t, int64(10*1024*1024), cfg.Attachment.MaxSizeBytes)
	assert.Contains(t, cfg.Attachment.AllowedExtensions, ".pdf")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SLA_SUGGESTION_DAYS", "45")
	t.Setenv("SLA_YELLOW_WITHIN_DAYS", "5")
	t.Setenv("LIFECYCLE_ALLOW_REOPEN_TERMINAL", "false")
	t.Setenv("ATTACHMENT_ALLOWED_EXTENSIONS", "PDF, docx")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.Lifecycle.SuggestionDays)
	assert.Equal(t, 5, cfg.Lifecycle.YellowWithinDays)
	assert.False(t, cfg.Lifecycle.AllowReopenTerminal)
	assert.Equal(t, []string{".pdf", ".docx"}, cfg.Attachment.AllowedExtensions)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
