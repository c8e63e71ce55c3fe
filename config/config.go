package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	SwapDelay       time.Duration
	SwapTimeout     time.Duration
	FailureRate     float64
	DefaultFrom     string
	DefaultTo       string
	DefaultSlippage decimal.Decimal
	SameTokenPolicy string
	WalletAddress   string
	WalletReject    bool
	ServerAddr      string
	LogLevel        string
}

// Load reads configuration from environment variables and an optional config
// file. An explicit path must exist; otherwise .mock-swap.yaml is looked up in
// $HOME and the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".mock-swap")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}

	// Set default values
	v.SetDefault("swap.delay", "2s")
	v.SetDefault("swap.timeout", "30s")
	v.SetDefault("swap.failure_rate", 0.0)
	v.SetDefault("session.default_from", "ETH")
	v.SetDefault("session.default_to", "USDC")
	v.SetDefault("session.default_slippage", "0.5")
	v.SetDefault("session.same_token_policy", "allow")
	v.SetDefault("wallet.address", "")
	v.SetDefault("wallet.reject", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")

	// Read from environment variables, e.g. MOCK_SWAP_SWAP_DELAY
	v.SetEnvPrefix("MOCK_SWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	slippage, err := decimal.NewFromString(v.GetString("session.default_slippage"))
	if err != nil {
		return nil, fmt.Errorf("invalid session.default_slippage '%s': %w", v.GetString("session.default_slippage"), err)
	}

	cfg := &Config{
		SwapDelay:       v.GetDuration("swap.delay"),
		SwapTimeout:     v.GetDuration("swap.timeout"),
		FailureRate:     v.GetFloat64("swap.failure_rate"),
		DefaultFrom:     strings.ToUpper(v.GetString("session.default_from")),
		DefaultTo:       strings.ToUpper(v.GetString("session.default_to")),
		DefaultSlippage: slippage,
		SameTokenPolicy: strings.ToLower(v.GetString("session.same_token_policy")),
		WalletAddress:   v.GetString("wallet.address"),
		WalletReject:    v.GetBool("wallet.reject"),
		ServerAddr:      v.GetString("server.addr"),
		LogLevel:        strings.ToLower(v.GetString("log.level")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.SwapDelay < 0 {
		return fmt.Errorf("swap.delay must not be negative, got %s", c.SwapDelay)
	}
	if c.SwapTimeout <= 0 {
		return fmt.Errorf("swap.timeout must be positive, got %s", c.SwapTimeout)
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		return fmt.Errorf("swap.failure_rate must be between 0 and 1, got %v", c.FailureRate)
	}
	if c.DefaultFrom == "" || c.DefaultTo == "" {
		return fmt.Errorf("session.default_from and session.default_to are required")
	}
	if c.DefaultSlippage.LessThan(decimal.RequireFromString("0.1")) || c.DefaultSlippage.GreaterThan(decimal.RequireFromString("5")) {
		return fmt.Errorf("session.default_slippage must be between 0.1 and 5.0, got %s", c.DefaultSlippage)
	}
	if c.SameTokenPolicy != "allow" && c.SameTokenPolicy != "reject" {
		return fmt.Errorf("session.same_token_policy must be 'allow' or 'reject', got '%s'", c.SameTokenPolicy)
	}
	if c.WalletAddress != "" && !common.IsHexAddress(c.WalletAddress) {
		return fmt.Errorf("wallet.address '%s' is not a hex address", c.WalletAddress)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// NewLogger builds the application logger writing to w
func (c *Config) NewLogger(w io.Writer) *log.Logger {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
}
