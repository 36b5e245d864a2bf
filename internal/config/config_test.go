package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
database:
  driver: sqlite
payment:
  stripe_secret_key: sk_test_x
storage:
  type: minio
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, CurrencyModeCaller, cfg.Payment.CurrencyMode)
	assert.Equal(t, "usd", cfg.Payment.DefaultCurrency)
	assert.Equal(t, 30*time.Second, cfg.Redis.PurchaseLockTTL)
	assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiry)
	assert.Equal(t, dir, cfg.Path)
}

func TestLoadConfigParsesDurations(t *testing.T) {
	dir := writeConfig(t, `
payment:
  stripe_secret_key: sk_test_x
  currency_mode: fixed
  fixed_currency: inr
redis:
  purchase_lock_ttl: 2m
storage:
  type: oss
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Redis.PurchaseLockTTL)
	assert.Equal(t, CurrencyModeFixed, cfg.Payment.CurrencyMode)
	assert.Equal(t, "inr", cfg.Payment.FixedCurrency)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:  ServerConfig{Mode: "debug"},
			JWT:     JWTConfig{Secret: "short"},
			Payment: PaymentConfig{Provider: "stripe", StripeSecretKey: "sk", CurrencyMode: CurrencyModeCaller},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Server.Mode = "release"
	assert.Error(t, cfg.Validate(), "short secret rejected in release mode")

	cfg.JWT.PublicKey = "-----BEGIN PUBLIC KEY-----"
	assert.NoError(t, cfg.Validate(), "public key verification does not need a secret")

	cfg = base()
	cfg.Payment.StripeSecretKey = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Payment.CurrencyMode = "whatever"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Payment.CurrencyMode = CurrencyModeFixed
	assert.Error(t, cfg.Validate())
}
