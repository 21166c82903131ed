// Package config loads syncd settings from an optional YAML file, a .env file
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrMissingCredentials = errors.New("config: CHALLONGE_USER and CHALLONGE_KEY are required")

type Config struct {
	Challonge Challonge `yaml:"challonge"`
	Syncd     Syncd     `yaml:"syncd"`
	R2        R2        `yaml:"r2"`
}

type Challonge struct {
	Username string        `yaml:"username"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Syncd struct {
	HTTPAddress     string        `yaml:"http_addr"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	// Tournaments lists watched tournaments by id or "subdomain-url" key.
	Tournaments []string `yaml:"tournaments"`
	LogFile     string   `yaml:"log_file"`
	AssetRoot   string   `yaml:"asset_root"`
}

type R2 struct {
	AccountID       string `yaml:"account_id"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
}

// Enabled reports whether R2 assets are configured.
func (r R2) Enabled() bool {
	return r.AccountID != ""
}

func defaults() Config {
	return Config{
		Challonge: Challonge{Timeout: 30 * time.Second},
		Syncd: Syncd{
			HTTPAddress:     ":8080",
			RefreshInterval: time.Minute,
		},
	}
}

// Load builds the configuration. path may be empty to skip the YAML file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Challonge.Username, "CHALLONGE_USER")
	setString(&cfg.Challonge.APIKey, "CHALLONGE_KEY")
	setString(&cfg.Challonge.BaseURL, "CHALLONGE_BASE_URL")
	setString(&cfg.Syncd.HTTPAddress, "SYNCD_HTTP_ADDR")
	setString(&cfg.Syncd.LogFile, "SYNCD_LOG_FILE")
	setString(&cfg.Syncd.AssetRoot, "SYNCD_ASSET_ROOT")
	setString(&cfg.R2.AccountID, "R2_ACCOUNT_ID")
	setString(&cfg.R2.AccessKeyID, "R2_ACCESS_KEY_ID")
	setString(&cfg.R2.SecretAccessKey, "R2_SECRET_ACCESS_KEY")
	setString(&cfg.R2.Bucket, "R2_BUCKET")

	if v := os.Getenv("SYNCD_TOURNAMENTS"); v != "" {
		cfg.Syncd.Tournaments = nil
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				cfg.Syncd.Tournaments = append(cfg.Syncd.Tournaments, item)
			}
		}
	}
	if err := setDuration(&cfg.Syncd.RefreshInterval, "SYNCD_REFRESH_INTERVAL"); err != nil {
		return err
	}
	return setDuration(&cfg.Challonge.Timeout, "CHALLONGE_TIMEOUT")
}

func (c Config) validate() error {
	if c.Challonge.Username == "" || c.Challonge.APIKey == "" {
		return ErrMissingCredentials
	}
	if c.Syncd.RefreshInterval <= 0 {
		return fmt.Errorf("config: refresh interval must be positive, got %s", c.Syncd.RefreshInterval)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
