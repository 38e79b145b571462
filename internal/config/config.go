// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui"
)

const EnvPrefix = "AFSUI_STAKER"

type Config struct {
	Network          string   `mapstructure:"network"`
	RPCList          []string `mapstructure:"rpc_list"`
	ProtocolAPIURL   string   `mapstructure:"protocol_api_url"`
	PriceAPIURL      string   `mapstructure:"price_api_url"`
	ValidatorAddress string   `mapstructure:"validator_address"`
	KeystorePath     string   `mapstructure:"keystore_path"`
	AccountAddress   string   `mapstructure:"account_address"`
	InfoRefreshMs    int      `mapstructure:"info_refresh_ms"`
	PriceRefreshMs   int      `mapstructure:"price_refresh_ms"`
	FallbackTimeout  int      `mapstructure:"fallback_timeout_ms"`
	RequestTimeout   int      `mapstructure:"request_timeout_ms"`
	FeeReserve       float64  `mapstructure:"fee_reserve"`
	DebugLogging     bool     `mapstructure:"debug_logging"`
	LogFile          string   `mapstructure:"log_file"`
	MetricsAddr      string   `mapstructure:"metrics_addr"`
}

const (
	DefaultNetwork         = "mainnet"
	DefaultProtocolAPIURL  = "https://aftermath.finance/api"
	DefaultPriceAPIURL     = "https://api.coingecko.com/api/v3/simple/price"
	DefaultInfoRefreshMs   = 30_000
	DefaultPriceRefreshMs  = 300_000
	DefaultFallbackTimeout = 10_000
	DefaultRequestTimeout  = 10_000
	DefaultFeeReserve      = 0.5
	DefaultLogFile         = "staker.log"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"network":             DefaultNetwork,
		"protocol_api_url":    DefaultProtocolAPIURL,
		"price_api_url":       DefaultPriceAPIURL,
		"info_refresh_ms":     DefaultInfoRefreshMs,
		"price_refresh_ms":    DefaultPriceRefreshMs,
		"fallback_timeout_ms": DefaultFallbackTimeout,
		"request_timeout_ms":  DefaultRequestTimeout,
		"fee_reserve":         DefaultFeeReserve,
		"log_file":            DefaultLogFile,
	}
}

// LoadConfig reads the JSON file at path, applies defaults and environment
// overrides (prefix AFSUI_STAKER), and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	loadEnvironmentVariables(v, &cfg)

	if len(cfg.RPCList) == 0 {
		fullnode, err := sui.FullnodeURL(cfg.Network)
		if err != nil {
			return nil, err
		}
		cfg.RPCList = []string{fullnode}
	}

	return &cfg, validateConfig(&cfg)
}

// loadEnvironmentVariables handles values viper cannot map on its own,
// such as a comma separated RPC list.
func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	if envRPCList := v.GetString("RPC_LIST"); envRPCList != "" {
		var clean []string
		for _, rpc := range strings.Split(envRPCList, ",") {
			if rpc = strings.TrimSpace(rpc); rpc != "" {
				clean = append(clean, rpc)
			}
		}
		if len(clean) > 0 {
			cfg.RPCList = clean
		}
	}
	if keystore := v.GetString("KEYSTORE_PATH"); keystore != "" {
		cfg.KeystorePath = keystore
	}
	cfg.KeystorePath = expandHome(cfg.KeystorePath)
}

// expandHome resolves a leading ~/ the way the Sui CLI config paths are written.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func validateConfig(cfg *Config) error {
	if _, err := sui.FullnodeURL(cfg.Network); err != nil {
		return err
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURL(rpcURL, "http"); err != nil {
			return fmt.Errorf("invalid rpc_list entry %q: %w", rpcURL, err)
		}
	}
	if err := validateURL(cfg.ProtocolAPIURL, "http"); err != nil {
		return fmt.Errorf("invalid protocol_api_url: %w", err)
	}
	if err := validateURL(cfg.PriceAPIURL, "http"); err != nil {
		return fmt.Errorf("invalid price_api_url: %w", err)
	}
	if cfg.ValidatorAddress == "" {
		return errors.New("missing validator_address in configuration")
	}
	if !addressPattern.MatchString(cfg.ValidatorAddress) {
		return errors.New("validator_address must be 0x followed by 64 hex characters")
	}
	if cfg.AccountAddress != "" && !addressPattern.MatchString(cfg.AccountAddress) {
		return errors.New("account_address must be 0x followed by 64 hex characters")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.InfoRefreshMs <= 0 {
		return errors.New("invalid info_refresh_ms")
	}
	if cfg.PriceRefreshMs <= 0 {
		return errors.New("invalid price_refresh_ms")
	}
	if cfg.FallbackTimeout <= 0 {
		return errors.New("invalid fallback_timeout_ms")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if cfg.FeeReserve < 0 {
		return errors.New("invalid fee_reserve")
	}
	return nil
}

func validateURL(rawURL string, scheme string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, scheme) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	return nil
}

// RequireKeystore reports an error when signing is requested without a keystore.
func (c *Config) RequireKeystore() error {
	if c.KeystorePath == "" {
		return errors.New("keystore_path is required to sign transactions")
	}
	return nil
}

func (c *Config) InfoRefreshInterval() time.Duration {
	return time.Duration(c.InfoRefreshMs) * time.Millisecond
}

func (c *Config) PriceRefreshInterval() time.Duration {
	return time.Duration(c.PriceRefreshMs) * time.Millisecond
}

func (c *Config) FallbackTimeoutDuration() time.Duration {
	return time.Duration(c.FallbackTimeout) * time.Millisecond
}

func (c *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Millisecond
}
