package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())

	rate, err := cfg.Invoice.GetDefaultTaxRate()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.10").Equal(rate))
	assert.Equal(t, time.Hour, cfg.Invoice.DuplicateWindow)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr bool
	}{
		{"defaults", func(c *Configuration) {}, false},
		{"negative tax rate", func(c *Configuration) { c.Invoice.DefaultTaxRate = "-0.05" }, true},
		{"non numeric tax rate", func(c *Configuration) { c.Invoice.DefaultTaxRate = "ten" }, true},
		{"zero duplicate window", func(c *Configuration) { c.Invoice.DuplicateWindow = 0 }, true},
		{"s3 without bucket", func(c *Configuration) { c.S3.Enabled = true }, true},
		{"s3 with bucket", func(c *Configuration) {
			c.S3.Enabled = true
			c.S3.Bucket = "invoices"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("INVOICER_INVOICE_DEFAULT_TAX_RATE", "0.2")
	t.Setenv("INVOICER_SERVER_ADDRESS", ":9090")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "0.2", cfg.Invoice.DefaultTaxRate)
	assert.Equal(t, time.Hour, cfg.Invoice.DuplicateWindow)
	assert.Equal(t, 30*time.Second, cfg.Postgres.ConnectTimeout)
	assert.Equal(t, "invoice_events", cfg.Events.Topic)
}

func TestGetDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db",
		Port:     5432,
		User:     "invoicer",
		Password: "secret",
		DBName:   "invoices",
		SSLMode:  "disable",
	}

	assert.Equal(t, "user=invoicer password=secret dbname=invoices host=db port=5432 sslmode=disable", cfg.GetDSN())
}
