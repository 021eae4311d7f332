package accounts_test

import (
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("SECRET", "top-secret")
	t.Setenv("PORT", "8080")
	t.Setenv("DSN", "file:custom.db")
	t.Setenv("SENDGRID_API_KEY", "sg-key")
	t.Setenv("MAIL_FROM", "noreply@test.com")

	cfg, err := accounts.NewConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "top-secret", cfg.SigningKey)
	assert.Equal(t, "file:custom.db", cfg.DSN)
	assert.Equal(t, "sg-key", cfg.SendgridAPIKey)
	assert.Equal(t, "noreply@test.com", cfg.MailFrom)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestNewConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("SECRET", "top-secret")
	t.Setenv("PORT", "")
	t.Setenv("DSN", "")

	cfg, err := accounts.NewConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "file:accounts.db", cfg.DSN)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, accounts.DefaultHashCost, cfg.HashCost)
}

func TestNewConfigFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("SECRET", "")

	_, err := accounts.NewConfigFromEnv()
	assert.Error(t, err)
}
