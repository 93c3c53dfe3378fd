package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Fetch      FetchConfig      `yaml:"fetch" envconfig:"FETCH"`
	Calculator CalculatorConfig `yaml:"calculator" envconfig:"CALCULATOR"`
	Sentiment  SentimentConfig  `yaml:"sentiment" envconfig:"SENTIMENT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// FetchConfig contains settings for the market-data fetch clients
type FetchConfig struct {
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://data.alpaca.markets" validate:"url"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
	MaxAttempts    int           `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS" default:"3" validate:"gte=1"`
	InitialBackoff time.Duration `yaml:"initial_backoff" envconfig:"INITIAL_BACKOFF" default:"1s"`
	RequestsPerSec float64       `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC" default:"5" validate:"gt=0"`
	Burst          int           `yaml:"burst" envconfig:"BURST" default:"1" validate:"gte=1"`
}

// CalculatorConfig contains settings for the return/volatility calculator
type CalculatorConfig struct {
	// Window is the trailing number of daily returns used for the rolling
	// volatility estimate.
	Window int `yaml:"window" envconfig:"WINDOW" default:"20" validate:"gte=2"`
	// TradingDays is the annualization basis: daily volatility is scaled by
	// sqrt(TradingDays).
	TradingDays int `yaml:"trading_days" envconfig:"TRADING_DAYS" default:"252" validate:"gte=1"`
}

// SentimentConfig contains the keyword lexicon and bin thresholds for the
// rule-based sentiment scorer. These are tuning constants, not learned state.
type SentimentConfig struct {
	PositiveTerms []string `yaml:"positive_terms" envconfig:"POSITIVE_TERMS" default:"beat,growth,surge,record,gain,up,strong,bull,optimistic"`
	NegativeTerms []string `yaml:"negative_terms" envconfig:"NEGATIVE_TERMS" default:"miss,loss,decline,drop,down,weak,bear,pessimistic,layoff"`
	NegThreshold  float64  `yaml:"neg_threshold" envconfig:"NEG_THRESHOLD" default:"-0.2" validate:"lt=0"`
	PosThreshold  float64  `yaml:"pos_threshold" envconfig:"POS_THRESHOLD" default:"0.2" validate:"gt=0"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("MARKETSET", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Fetch.BaseURL == "" {
		envConfig.Fetch.BaseURL = fileConfig.Fetch.BaseURL
	}
	if envConfig.Fetch.MaxAttempts == 0 {
		envConfig.Fetch.MaxAttempts = fileConfig.Fetch.MaxAttempts
	}
	if envConfig.Calculator.Window == 0 {
		envConfig.Calculator.Window = fileConfig.Calculator.Window
	}
	if envConfig.Calculator.TradingDays == 0 {
		envConfig.Calculator.TradingDays = fileConfig.Calculator.TradingDays
	}
	if len(envConfig.Sentiment.PositiveTerms) == 0 {
		envConfig.Sentiment.PositiveTerms = fileConfig.Sentiment.PositiveTerms
	}
	if len(envConfig.Sentiment.NegativeTerms) == 0 {
		envConfig.Sentiment.NegativeTerms = fileConfig.Sentiment.NegativeTerms
	}

	return envConfig
}

// validate checks configuration values using struct tags
func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.Sentiment.NegThreshold >= c.Sentiment.PosThreshold {
		return fmt.Errorf("sentiment neg_threshold (%v) must be below pos_threshold (%v)",
			c.Sentiment.NegThreshold, c.Sentiment.PosThreshold)
	}
	return nil
}

// getConfigFilePath returns the path to the YAML config file, next to the
// executable when resolvable, falling back to the working directory.
func getConfigFilePath() string {
	exe, err := os.Executable()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(filepath.Dir(exe), "config.yaml")
}
