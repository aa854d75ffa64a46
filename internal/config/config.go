package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries every knob the orchestrator needs. It is built once in main
// and passed down explicitly; there is no package-level mutable state.
type Config struct {
	BaseURL     string `yaml:"base_url"`
	SearchQuery string `yaml:"search_query"`
	Language    string `yaml:"language"`
	DownloadDir string `yaml:"download_dir"`
	LedgerPath  string `yaml:"ledger_path"`
	RunsDSN     string `yaml:"runs_dsn"`
	UserDataDir string `yaml:"user_data_dir"`
	LogLevel    string `yaml:"log_level"`
	BatchLimit  int    `yaml:"batch_limit"`
	Headless    bool   `yaml:"headless"`

	Waits WaitConfig `yaml:"waits"`
}

// WaitConfig bounds the blocking UI waits. Each site of use declares whether
// a timeout is tolerated or escalated.
type WaitConfig struct {
	Element time.Duration `yaml:"element"`
	Spinner time.Duration `yaml:"spinner"`
	Success time.Duration `yaml:"success"`
	Drain   time.Duration `yaml:"drain"`
}

// Default returns the reference deployment settings.
func Default() Config {
	return Config{
		DownloadDir: "./downloads",
		LedgerPath:  "./progress.csv",
		RunsDSN:     "./lexharvest-runs.sqlite",
		LogLevel:    "info",
		Language:    "Dutch",
		BatchLimit:  250,
		Waits: WaitConfig{
			Element: 20 * time.Second,
			Spinner: 30 * time.Second,
			Success: 120 * time.Second,
			Drain:   120 * time.Second,
		},
	}
}

// Load builds a Config from LEXHARVEST_* environment variables over the
// defaults. A .env file in the working directory is loaded first if present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.BaseURL = getEnv("LEXHARVEST_BASE_URL", cfg.BaseURL)
	cfg.SearchQuery = getEnv("LEXHARVEST_QUERY", cfg.SearchQuery)
	cfg.Language = getEnv("LEXHARVEST_LANGUAGE", cfg.Language)
	cfg.DownloadDir = getEnv("LEXHARVEST_DOWNLOAD_DIR", cfg.DownloadDir)
	cfg.LedgerPath = getEnv("LEXHARVEST_LEDGER", cfg.LedgerPath)
	cfg.RunsDSN = getEnv("LEXHARVEST_RUNS_DSN", cfg.RunsDSN)
	cfg.UserDataDir = getEnv("LEXHARVEST_USER_DATA_DIR", cfg.UserDataDir)
	cfg.LogLevel = getEnv("LEXHARVEST_LOG_LEVEL", cfg.LogLevel)
	if v := os.Getenv("LEXHARVEST_BATCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchLimit = n
		}
	}
	if v := os.Getenv("LEXHARVEST_HEADLESS"); v != "" {
		cfg.Headless, _ = strconv.ParseBool(v)
	}
	return cfg
}

// yamlConfig mirrors Config with string durations for the wait block.
type yamlConfig struct {
	BaseURL     string `yaml:"base_url"`
	SearchQuery string `yaml:"search_query"`
	Language    string `yaml:"language"`
	DownloadDir string `yaml:"download_dir"`
	LedgerPath  string `yaml:"ledger_path"`
	RunsDSN     string `yaml:"runs_dsn"`
	UserDataDir string `yaml:"user_data_dir"`
	LogLevel    string `yaml:"log_level"`
	BatchLimit  int    `yaml:"batch_limit"`
	Headless    *bool  `yaml:"headless"`

	Waits struct {
		Element string `yaml:"element"`
		Spinner string `yaml:"spinner"`
		Success string `yaml:"success"`
		Drain   string `yaml:"drain"`
	} `yaml:"waits"`
}

// LoadFromFile merges a YAML config file over the defaults. Unset fields keep
// their default values.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()
	if yc.BaseURL != "" {
		cfg.BaseURL = yc.BaseURL
	}
	if yc.SearchQuery != "" {
		cfg.SearchQuery = yc.SearchQuery
	}
	if yc.Language != "" {
		cfg.Language = yc.Language
	}
	if yc.DownloadDir != "" {
		cfg.DownloadDir = yc.DownloadDir
	}
	if yc.LedgerPath != "" {
		cfg.LedgerPath = yc.LedgerPath
	}
	if yc.RunsDSN != "" {
		cfg.RunsDSN = yc.RunsDSN
	}
	if yc.UserDataDir != "" {
		cfg.UserDataDir = yc.UserDataDir
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}
	if yc.BatchLimit > 0 {
		cfg.BatchLimit = yc.BatchLimit
	}
	if yc.Headless != nil {
		cfg.Headless = *yc.Headless
	}

	for _, w := range []struct {
		raw string
		dst *time.Duration
		key string
	}{
		{yc.Waits.Element, &cfg.Waits.Element, "waits.element"},
		{yc.Waits.Spinner, &cfg.Waits.Spinner, "waits.spinner"},
		{yc.Waits.Success, &cfg.Waits.Success, "waits.success"},
		{yc.Waits.Drain, &cfg.Waits.Drain, "waits.drain"},
	} {
		if w.raw == "" {
			continue
		}
		d, err := time.ParseDuration(w.raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", w.key, err)
		}
		*w.dst = d
	}

	return cfg, nil
}

// Validate rejects configurations the orchestrator cannot run with.
func (c Config) Validate() error {
	if c.BatchLimit < 1 {
		return fmt.Errorf("batch_limit must be >= 1, got %d", c.BatchLimit)
	}
	if c.DownloadDir == "" {
		return fmt.Errorf("download_dir is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
