package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies CROSSDESK_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known CROSSDESK_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Wallet ──
	setStr(&cfg.Wallet.Address, "CROSSDESK_WALLET_ADDRESS")

	// ── Venues ──
	setStr(&cfg.Hyperliquid.BaseURL, "CROSSDESK_HYPERLIQUID_BASE_URL")
	setStr(&cfg.Hyperliquid.APIKey, "CROSSDESK_HYPERLIQUID_API_KEY")
	setStr(&cfg.Orderly.BaseURL, "CROSSDESK_ORDERLY_BASE_URL")
	setStr(&cfg.Orderly.APIKey, "CROSSDESK_ORDERLY_API_KEY")
	setStr(&cfg.Polymarket.BaseURL, "CROSSDESK_POLYMARKET_BASE_URL")
	setStr(&cfg.Polymarket.APIKey, "CROSSDESK_POLYMARKET_API_KEY")
	setStr(&cfg.Gateway.BaseURL, "CROSSDESK_GATEWAY_BASE_URL")
	setStr(&cfg.Gateway.APIKey, "CROSSDESK_GATEWAY_API_KEY")

	// ── Bridge ──
	setStr(&cfg.Bridge.WidgetHost, "CROSSDESK_BRIDGE_WIDGET_HOST")
	setStr(&cfg.Bridge.AggregatorURL, "CROSSDESK_BRIDGE_AGGREGATOR_URL")
	setInt(&cfg.Bridge.DestinationChainID, "CROSSDESK_BRIDGE_DESTINATION_CHAIN_ID")

	// ── Deposit ──
	setInt(&cfg.Deposit.DestChainID, "CROSSDESK_DEPOSIT_DEST_CHAIN_ID")
	setStr(&cfg.Deposit.DestTokenAddress, "CROSSDESK_DEPOSIT_DEST_TOKEN_ADDRESS")
	setFloat64(&cfg.Deposit.SlippageTolerance, "CROSSDESK_DEPOSIT_SLIPPAGE_TOLERANCE")

	// ── Guard ──
	setFloat64(&cfg.Guard.MinimumMaticForGas, "CROSSDESK_GUARD_MINIMUM_MATIC_FOR_GAS")

	// ── Poll ──
	setDuration(&cfg.Poll.Positions, "CROSSDESK_POLL_POSITIONS")
	setDuration(&cfg.Poll.Orders, "CROSSDESK_POLL_ORDERS")
	setDuration(&cfg.Poll.Balances, "CROSSDESK_POLL_BALANCES")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "CROSSDESK_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "CROSSDESK_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "CROSSDESK_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "CROSSDESK_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "CROSSDESK_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "CROSSDESK_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "CROSSDESK_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "CROSSDESK_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "CROSSDESK_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "CROSSDESK_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "CROSSDESK_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "CROSSDESK_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "CROSSDESK_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "CROSSDESK_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "CROSSDESK_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "CROSSDESK_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.CacheTTL, "CROSSDESK_REDIS_CACHE_TTL")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "CROSSDESK_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "CROSSDESK_S3_REGION")
	setStr(&cfg.S3.Bucket, "CROSSDESK_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "CROSSDESK_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "CROSSDESK_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "CROSSDESK_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "CROSSDESK_S3_FORCE_PATH_STYLE")

	// ── Archive ──
	setDuration(&cfg.Archive.Retention, "CROSSDESK_ARCHIVE_RETENTION")
	setDuration(&cfg.Archive.Interval, "CROSSDESK_ARCHIVE_INTERVAL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "CROSSDESK_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "CROSSDESK_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "CROSSDESK_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "CROSSDESK_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "CROSSDESK_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "CROSSDESK_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "CROSSDESK_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "CROSSDESK_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "CROSSDESK_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "CROSSDESK_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "CROSSDESK_MODE")
	setStr(&cfg.LogLevel, "CROSSDESK_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
