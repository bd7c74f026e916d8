package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/metachris/mev-block-analyzer/etherscan"
	"github.com/metachris/mev-block-analyzer/flashbots"
)

// Config holds the application configuration, loaded from environment variables.
type Config struct {
	APIKey       string
	EtherscanURL string
	FlashbotsURL string

	// Analysis defaults
	BlockNumber  int64
	StartIdx     int
	NumTxs       int
	ReceiptDelay time.Duration // pause between receipt requests (rate limits)

	ListenAddr string
}

const (
	DefaultBlockNumber  int64 = 21821918
	DefaultStartIdx           = 10
	DefaultNumTxs             = 5
	DefaultReceiptDelay       = 200 * time.Millisecond
	DefaultListenAddr         = ":8080"
)

// Load reads the configuration from environment variables and validates it.
// All problems are reported together.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.APIKey = os.Getenv("API_KEY")
	cfg.EtherscanURL = getEnvOrDefault("ETHERSCAN_URL", etherscan.DefaultBaseURL)
	cfg.FlashbotsURL = getEnvOrDefault("FLASHBOTS_URL", flashbots.DefaultBaseURL)
	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", DefaultListenAddr)

	blockNumber, err := parseInt("BLOCK_NUMBER", int(DefaultBlockNumber))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.BlockNumber = int64(blockNumber)

	if cfg.StartIdx, err = parseInt("START_IDX", DefaultStartIdx); err != nil {
		errs = append(errs, err)
	}

	if cfg.NumTxs, err = parseInt("NUM_TXS", DefaultNumTxs); err != nil {
		errs = append(errs, err)
	}

	if cfg.ReceiptDelay, err = parseDuration("RECEIPT_DELAY", DefaultReceiptDelay.String()); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is like Load but panics if the configuration is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func (c *Config) Validate() error {
	var errs []error

	if c.APIKey == "" {
		errs = append(errs, fmt.Errorf("API_KEY is required"))
	}

	if c.EtherscanURL == "" {
		errs = append(errs, fmt.Errorf("EtherscanURL is required"))
	}

	if c.BlockNumber < 0 {
		errs = append(errs, fmt.Errorf("BlockNumber must not be negative"))
	}

	if c.StartIdx < 0 {
		errs = append(errs, fmt.Errorf("StartIdx must not be negative"))
	}

	if c.NumTxs <= 0 {
		errs = append(errs, fmt.Errorf("NumTxs must be positive"))
	}

	if c.ReceiptDelay < 0 {
		errs = append(errs, fmt.Errorf("ReceiptDelay must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}

func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}
