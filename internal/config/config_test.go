package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Wallet.Address = "0x52908400098527886E0F7030069857D2E4169EE7"
	cfg.Gateway.BaseURL = "https://gateway.example.com"
	return cfg
}

func TestValidate(t *testing.T) {
	t.Run("defaults plus wallet and gateway pass", func(t *testing.T) {
		cfg := validConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("collects every problem at once", func(t *testing.T) {
		cfg := validConfig()
		cfg.Mode = "backtest"
		cfg.Wallet.Address = ""
		cfg.Redis.Addr = ""

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown mode")
		assert.Contains(t, err.Error(), "wallet: address")
		assert.Contains(t, err.Error(), "redis: addr")
	})

	t.Run("postgres section ignored until enabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.Postgres.PoolMaxConns = 0
		assert.NoError(t, cfg.Validate())

		cfg.Postgres.Host = "db.example.com"
		cfg.Postgres.Database = "crossdesk"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pool_max_conns")
	})

	t.Run("s3 section ignored until a bucket is set", func(t *testing.T) {
		cfg := validConfig()
		cfg.Archive.Retention = duration{0}
		assert.NoError(t, cfg.Validate())

		cfg.S3.Bucket = "crossdesk-history"
		cfg.S3.Endpoint = "https://s3.example.com"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "archive: retention")
	})

	t.Run("bad deposit token is flagged with its index", func(t *testing.T) {
		cfg := validConfig()
		cfg.Deposit.Tokens = []DepositTokenConfig{
			{Symbol: "USDC", Address: "0xsrc", Decimals: 6, ChainID: 1},
			{Symbol: "", Address: "", Decimals: 6, ChainID: 1},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tokens[1]")
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "monitor"
log_level = "debug"

[wallet]
address = "0x52908400098527886E0F7030069857D2E4169EE7"

[gateway]
base_url = "https://gateway.example.com"

[poll]
positions = "2s"
orders = "3s"
balances = "1m"

[redis]
cache_ttl = "10m"

[deposit]
[[deposit.tokens]]
symbol = "USDC"
address = "0x2791bca1f2de4661ed88a30c99a7a9449aa84174"
decimals = 6
chain_id = 1
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "monitor", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.Poll.Positions.Duration)
	assert.Equal(t, time.Minute, cfg.Poll.Balances.Duration)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL.Duration)
	require.Len(t, cfg.Deposit.Tokens, 1)
	assert.Equal(t, "USDC", cfg.Deposit.Tokens[0].Symbol)

	// File values merge on top of defaults.
	assert.Equal(t, "https://api.hyperliquid.xyz", cfg.Hyperliquid.BaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)

	require.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[wallet]
address = "0x52908400098527886E0F7030069857D2E4169EE7"
`), 0o600))

	t.Setenv("CROSSDESK_GATEWAY_API_KEY", "secret-from-env")
	t.Setenv("CROSSDESK_SERVER_PORT", "9090")
	t.Setenv("CROSSDESK_MODE", "monitor")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret-from-env", cfg.Gateway.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "monitor", cfg.Mode)
}

func TestRedactedConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.APIKey = "super-secret"
	cfg.Redis.Password = "hunter2"
	cfg.Notify.TelegramToken = "123:abc"

	redacted := RedactedConfig(&cfg)

	assert.NotContains(t, redacted.Gateway.APIKey, "super-secret")
	assert.NotContains(t, redacted.Redis.Password, "hunter2")
	assert.NotContains(t, redacted.Notify.TelegramToken, "123:abc")
	// Non-secret fields survive untouched.
	assert.Equal(t, cfg.Wallet.Address, redacted.Wallet.Address)
}
