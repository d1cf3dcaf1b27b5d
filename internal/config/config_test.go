package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse("SITE_", nil)
	require.NoError(t, err)

	assert.Equal(t, "kingdojo_admin", cfg.Admin.CookieName)
	assert.Equal(t, 30, cfg.Admin.CookieMaxAgeDays)
	assert.Equal(t, 30*24*time.Hour, cfg.Admin.SessionTTL())
	assert.Equal(t, 3*time.Second, cfg.Admin.AuthTimeout)
	assert.Equal(t, 3*time.Second, cfg.Admin.AllowlistTimeout)
	assert.Equal(t, 30*time.Second, cfg.Admin.RefreshGrace)
	assert.Equal(t, "kingdojo_service", cfg.ServiceDatabase.Role)
	assert.False(t, cfg.IsProduction())
}

func TestParsePrefixOverridesShared(t *testing.T) {
	cfg, err := parse("SITE_", []string{
		"ADMIN_COOKIE_NAME=shared",
		"SITE_ADMIN_COOKIE_NAME=site_only",
		"ADMIN_COOKIE_MAX_AGE_DAYS=7",
		"ENV=production",
	})
	require.NoError(t, err)

	assert.Equal(t, "site_only", cfg.Admin.CookieName)
	assert.Equal(t, 7, cfg.Admin.CookieMaxAgeDays)
	assert.True(t, cfg.IsProduction())
}

func TestOperatorRequiresCredentials(t *testing.T) {
	_, _, err := AdminConfig{Username: "owner@kingdojo.kz"}.Operator()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMisconfigured))

	email, password, err := AdminConfig{Username: " owner@kingdojo.kz ", Password: "s3cret"}.Operator()
	require.NoError(t, err)
	assert.Equal(t, "owner@kingdojo.kz", email)
	assert.Equal(t, "s3cret", password)
}
