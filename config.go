package accounts

import (
	"os"

	"github.com/goliatone/go-errors"
)

// Config holds everything the service needs at startup: the token signing
// secret, the store connection string, and the mail credentials. It is built
// once and passed by reference into constructors; nothing reads the
// environment after boot.
type Config struct {
	SigningKey     string
	Issuer         string
	DSN            string
	Port           string
	SendgridAPIKey string
	MailFrom       string
	HashCost       int
}

// NewConfigFromEnv loads configuration from the process environment.
func NewConfigFromEnv() (*Config, error) {
	cfg := &Config{
		SigningKey:     os.Getenv("SECRET"),
		Issuer:         os.Getenv("TOKEN_ISSUER"),
		DSN:            os.Getenv("DSN"),
		Port:           os.Getenv("PORT"),
		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       os.Getenv("MAIL_FROM"),
		HashCost:       DefaultHashCost,
	}

	if cfg.SigningKey == "" {
		return nil, errors.New("SECRET is required", errors.CategoryBadInput)
	}

	if cfg.DSN == "" {
		cfg.DSN = "file:accounts.db"
	}

	if cfg.Port == "" {
		cfg.Port = "3000"
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
