// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DiscordToken  string `mapstructure:"discord_token"`
	ApplicationID string `mapstructure:"application_id"`
	GuildID       string `mapstructure:"guild_id"`

	TradeAPIURL        string  `mapstructure:"trade_api_url"`
	TradeAPIKey        string  `mapstructure:"trade_api_key"`
	PlatformPublicKey  string  `mapstructure:"platform_public_key"`
	PlatformPercentage float64 `mapstructure:"platform_percentage"`
	ReferralPublicKey  string  `mapstructure:"referral_public_key"`
	ReferralPercentage float64 `mapstructure:"referral_percentage"`

	RPCList         []string `mapstructure:"rpc_list"`
	XRPLRPCURL      string   `mapstructure:"xrpl_rpc_url"`
	DexScreenerURL  string   `mapstructure:"dexscreener_url"`
	JupiterPriceURL string   `mapstructure:"jupiter_price_url"`

	PostgresURL   string `mapstructure:"postgres_url"`
	EncryptionKey string `mapstructure:"encryption_key"`

	SessionTTLMinutes      int `mapstructure:"session_ttl_minutes"`
	JanitorIntervalSeconds int `mapstructure:"janitor_interval_seconds"`
	RequestTimeoutSeconds  int `mapstructure:"request_timeout_seconds"`
	Retries                int `mapstructure:"retries"`

	InteractionRate  float64 `mapstructure:"interaction_rate"`
	InteractionBurst int     `mapstructure:"interaction_burst"`

	MetricsAddr  string `mapstructure:"metrics_addr"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
}

const (
	DefaultSessionTTLMinutes      = 30
	DefaultJanitorIntervalSeconds = 300
	DefaultRequestTimeoutSeconds  = 30
	DefaultRetries                = 3
	DefaultInteractionRate        = 3
	DefaultInteractionBurst       = 5
	DefaultDexScreenerURL         = "https://api.dexscreener.com/latest/dex"
	DefaultJupiterPriceURL        = "https://api.jup.ag/price/v2"
	DefaultXRPLRPCURL             = "https://s1.ripple.com:51234"
	DefaultLogFile                = "tradedesk.log"

	envPrefix = "TRADEDESK"
)

// SessionTTL is how long an untouched wizard session survives.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// JanitorInterval is how often stale sessions are swept.
func (c *Config) JanitorInterval() time.Duration {
	return time.Duration(c.JanitorIntervalSeconds) * time.Second
}

// RequestTimeout bounds every outbound HTTP call.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// LoadConfig reads path (if it exists), then .env, then TRADEDESK_* variables.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"session_ttl_minutes":      DefaultSessionTTLMinutes,
		"janitor_interval_seconds": DefaultJanitorIntervalSeconds,
		"request_timeout_seconds":  DefaultRequestTimeoutSeconds,
		"retries":                  DefaultRetries,
		"interaction_rate":         DefaultInteractionRate,
		"interaction_burst":        DefaultInteractionBurst,
		"dexscreener_url":          DefaultDexScreenerURL,
		"jupiter_price_url":        DefaultJupiterPriceURL,
		"xrpl_rpc_url":             DefaultXRPLRPCURL,
		"log_file":                 DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.DiscordToken == "" {
		return errors.New("missing discord_token in configuration")
	}
	if cfg.ApplicationID == "" {
		return errors.New("missing application_id in configuration")
	}
	if cfg.TradeAPIURL == "" {
		return errors.New("missing trade_api_url in configuration")
	}
	if err := validateURLWithCache(cfg.TradeAPIURL, "http"); err != nil {
		return fmt.Errorf("invalid trade_api_url: %w", err)
	}
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	for name, raw := range map[string]string{
		"xrpl_rpc_url":      cfg.XRPLRPCURL,
		"dexscreener_url":   cfg.DexScreenerURL,
		"jupiter_price_url": cfg.JupiterPriceURL,
	} {
		if err := validateURLWithCache(raw, "http"); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if key, err := hex.DecodeString(cfg.EncryptionKey); err != nil || len(key) != 32 {
		return errors.New("encryption_key must be 32 bytes hex-encoded")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.SessionTTLMinutes <= 0 {
		return errors.New("invalid session_ttl_minutes")
	}
	if cfg.JanitorIntervalSeconds <= 0 {
		return errors.New("invalid janitor_interval_seconds")
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		return errors.New("invalid request_timeout_seconds")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.InteractionRate <= 0 || cfg.InteractionBurst <= 0 {
		return errors.New("invalid interaction rate limit")
	}
	if cfg.PlatformPercentage < 0 || cfg.PlatformPercentage > 100 {
		return errors.New("platform_percentage must be between 0 and 100")
	}
	if cfg.ReferralPercentage < 0 || cfg.ReferralPercentage > 100 {
		return errors.New("referral_percentage must be between 0 and 100")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	overrides := map[string]*string{
		"DISCORD_TOKEN":  &cfg.DiscordToken,
		"APPLICATION_ID": &cfg.ApplicationID,
		"GUILD_ID":       &cfg.GuildID,
		"TRADE_API_URL":  &cfg.TradeAPIURL,
		"TRADE_API_KEY":  &cfg.TradeAPIKey,
		"POSTGRES_URL":   &cfg.PostgresURL,
		"ENCRYPTION_KEY": &cfg.EncryptionKey,
	}
	for key, dst := range overrides {
		if val := v.GetString(key); val != "" {
			*dst = val
		}
	}

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
}
