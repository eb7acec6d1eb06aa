// Package config defines the top-level configuration for the crossdesk
// backend and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by CROSSDESK_* environment variables.
type Config struct {
	Wallet      WalletConfig      `toml:"wallet"`
	Hyperliquid HyperliquidConfig `toml:"hyperliquid"`
	Orderly     OrderlyConfig     `toml:"orderly"`
	Polymarket  PolymarketConfig  `toml:"polymarket"`
	Gateway     GatewayConfig     `toml:"gateway"`
	Bridge      BridgeConfig      `toml:"bridge"`
	Deposit     DepositConfig     `toml:"deposit"`
	Guard       GuardConfig       `toml:"guard"`
	Poll        PollConfig        `toml:"poll"`
	Postgres    PostgresConfig    `toml:"postgres"`
	Redis       RedisConfig       `toml:"redis"`
	S3          S3Config          `toml:"s3"`
	Archive     ArchiveConfig     `toml:"archive"`
	Server      ServerConfig      `toml:"server"`
	Notify      NotifyConfig      `toml:"notify"`
	Mode        string            `toml:"mode"`
	LogLevel    string            `toml:"log_level"`
}

// WalletConfig identifies the dashboard user's wallet. Address is the EVM
// address every venue fetch is scoped to; no private keys live here, custody
// is the upstream gateway's problem.
type WalletConfig struct {
	Address string `toml:"address"`
}

// HyperliquidConfig holds the Hyperliquid API endpoint and credentials.
type HyperliquidConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// OrderlyConfig holds the Orderly API endpoint and credentials.
type OrderlyConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// PolymarketConfig holds the Polymarket API endpoint and credentials.
type PolymarketConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// GatewayConfig holds the wallet gateway endpoint serving balances and
// embedded-wallet addresses.
type GatewayConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// BridgeConfig holds the bridging aggregator parameters: the widget host the
// pop-up opens on, the quote/execute API, and the fixed destination chain.
type BridgeConfig struct {
	WidgetHost         string `toml:"widget_host"`
	AggregatorURL      string `toml:"aggregator_url"`
	DestinationChainID int    `toml:"destination_chain_id"`
}

// DepositTokenConfig describes one bridgeable source token.
type DepositTokenConfig struct {
	Symbol   string `toml:"symbol"`
	Address  string `toml:"address"`
	Decimals int    `toml:"decimals"`
	ChainID  int    `toml:"chain_id"`
}

// DepositConfig fixes the destination side of every deposit quote and lists
// the accepted source tokens.
type DepositConfig struct {
	DestChainID       int                  `toml:"dest_chain_id"`
	DestTokenAddress  string               `toml:"dest_token_address"`
	SlippageTolerance float64              `toml:"slippage_tolerance"`
	Tokens            []DepositTokenConfig `toml:"tokens"`
}

// GuardConfig holds the balance guard's thresholds.
type GuardConfig struct {
	MinimumMaticForGas float64 `toml:"minimum_matic_for_gas"`
}

// PollConfig holds the independent refresh cadences. Positions and orders
// deliberately poll on separate intervals; balances poll slowest.
type PollConfig struct {
	Positions duration `toml:"positions"`
	Orders    duration `toml:"orders"`
	Balances  duration `toml:"balances"`
}

// PostgresConfig holds PostgreSQL connection parameters. Leave Host empty to
// run without persistence (history endpoints are then disabled).
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	CacheTTL   duration `toml:"cache_ttl"`
}

// S3Config holds S3-compatible object storage parameters for the history
// archiver. Leave Bucket empty to disable archiving.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ArchiveConfig holds the archiver's retention window and pass interval.
type ArchiveConfig struct {
	Retention duration `toml:"retention"`
	Interval  duration `toml:"interval"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	RateLimit   int      `toml:"rate_limit"`
	RateWindow  duration `toml:"rate_window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Hyperliquid: HyperliquidConfig{
			BaseURL: "https://api.hyperliquid.xyz",
		},
		Orderly: OrderlyConfig{
			BaseURL: "https://api.orderly.org",
		},
		Polymarket: PolymarketConfig{
			BaseURL: "https://clob.polymarket.com",
		},
		Bridge: BridgeConfig{
			WidgetHost:         "https://jumper.exchange",
			AggregatorURL:      "https://li.quest/v1",
			DestinationChainID: 137,
		},
		Deposit: DepositConfig{
			DestChainID:       137,
			DestTokenAddress:  "0x2791bca1f2de4661ed88a30c99a7a9449aa84174",
			SlippageTolerance: 0.005,
		},
		Guard: GuardConfig{
			MinimumMaticForGas: 0.01,
		},
		Poll: PollConfig{
			Positions: duration{5 * time.Second},
			Orders:    duration{5 * time.Second},
			Balances:  duration{30 * time.Second},
		},
		Postgres: PostgresConfig{
			Port:          5432,
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
			CacheTTL:   duration{5 * time.Minute},
		},
		S3: S3Config{
			Region: "us-east-1",
			UseSSL: true,
		},
		Archive: ArchiveConfig{
			Retention: duration{30 * 24 * time.Hour},
			Interval:  duration{6 * time.Hour},
		},
		Server: ServerConfig{
			Enabled:    true,
			Port:       8080,
			RateLimit:  120,
			RateWindow: duration{time.Minute},
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve":   true,
	"monitor": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, monitor)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Wallet
	if c.Wallet.Address == "" {
		errs = append(errs, "wallet: address must not be empty")
	}

	// Venue endpoints
	if c.Hyperliquid.BaseURL == "" {
		errs = append(errs, "hyperliquid: base_url must not be empty")
	}
	if c.Orderly.BaseURL == "" {
		errs = append(errs, "orderly: base_url must not be empty")
	}
	if c.Polymarket.BaseURL == "" {
		errs = append(errs, "polymarket: base_url must not be empty")
	}
	if c.Gateway.BaseURL == "" {
		errs = append(errs, "gateway: base_url must not be empty")
	}

	// Bridge
	if c.Bridge.WidgetHost == "" {
		errs = append(errs, "bridge: widget_host must not be empty")
	}
	if c.Bridge.AggregatorURL == "" {
		errs = append(errs, "bridge: aggregator_url must not be empty")
	}
	if c.Bridge.DestinationChainID <= 0 {
		errs = append(errs, "bridge: destination_chain_id must be positive")
	}

	// Deposit
	if c.Deposit.DestChainID <= 0 {
		errs = append(errs, "deposit: dest_chain_id must be positive")
	}
	if c.Deposit.DestTokenAddress == "" {
		errs = append(errs, "deposit: dest_token_address must not be empty")
	}
	if c.Deposit.SlippageTolerance <= 0 || c.Deposit.SlippageTolerance >= 1 {
		errs = append(errs, fmt.Sprintf("deposit: slippage_tolerance must be in (0, 1), got %g", c.Deposit.SlippageTolerance))
	}
	for i, tok := range c.Deposit.Tokens {
		if tok.Symbol == "" || tok.Address == "" {
			errs = append(errs, fmt.Sprintf("deposit: tokens[%d]: symbol and address are required", i))
		}
		if tok.Decimals < 0 || tok.Decimals > 36 {
			errs = append(errs, fmt.Sprintf("deposit: tokens[%d]: decimals must be 0-36, got %d", i, tok.Decimals))
		}
		if tok.ChainID <= 0 {
			errs = append(errs, fmt.Sprintf("deposit: tokens[%d]: chain_id must be positive", i))
		}
	}

	// Guard
	if c.Guard.MinimumMaticForGas <= 0 {
		errs = append(errs, "guard: minimum_matic_for_gas must be > 0")
	}

	// Poll intervals
	if c.Poll.Positions.Duration <= 0 {
		errs = append(errs, "poll: positions interval must be > 0")
	}
	if c.Poll.Orders.Duration <= 0 {
		errs = append(errs, "poll: orders interval must be > 0")
	}
	if c.Poll.Balances.Duration <= 0 {
		errs = append(errs, "poll: balances interval must be > 0")
	}

	// Postgres — only validated when persistence is enabled.
	if c.PostgresEnabled() {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 — only validated when archiving is enabled.
	if c.S3Enabled() {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty")
		}
		if c.Archive.Retention.Duration <= 0 {
			errs = append(errs, "archive: retention must be > 0")
		}
		if c.Archive.Interval.Duration <= 0 {
			errs = append(errs, "archive: interval must be > 0")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// PostgresEnabled reports whether a database connection is configured.
func (c *Config) PostgresEnabled() bool {
	return strings.TrimSpace(c.Postgres.DSN) != "" || c.Postgres.Host != ""
}

// S3Enabled reports whether the history archiver's object store is configured.
func (c *Config) S3Enabled() bool {
	return c.S3.Bucket != ""
}
