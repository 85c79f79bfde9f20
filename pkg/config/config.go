package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const appDir = "topusers-dashboard"

type Size struct {
	Width  int `json:"width" yaml:"width" validate:"gte=0"`
	Height int `json:"height" yaml:"height" validate:"gte=0"`
}

type Endpoints struct {
	BaseURL      string `json:"base_url" yaml:"base_url" validate:"required,url"`
	ChartsPath   string `json:"charts_path" yaml:"charts_path" validate:"required,startswith=/"`
	TopUsersPath string `json:"top_users_path" yaml:"top_users_path" validate:"required,startswith=/"`
	Token        string `json:"token,omitempty" yaml:"token,omitempty"`
}

type AppConfig struct {
	Language    string    `json:"language" yaml:"language" validate:"oneof=en ru"`
	WindowSize  Size      `json:"window_size" yaml:"window_size"`
	ChartSize   Size      `json:"chart_size" yaml:"chart_size"`
	RecentFiles []string  `json:"recent_files" yaml:"recent_files"`
	Endpoints   Endpoints `json:"endpoints" yaml:"endpoints"`

	DefaultChartKind string `json:"default_chart_kind" yaml:"default_chart_kind" validate:"required"`
	DefaultTopN      string `json:"default_top_n" yaml:"default_top_n"`
	// DropStale publishes only the response of the latest issued refresh.
	DropStale bool `json:"drop_stale" yaml:"drop_stale"`

	LogLevel    string `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	Environment string `json:"environment" yaml:"environment" validate:"oneof=development production"`
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
}

func Default() *AppConfig {
	return &AppConfig{
		Language:   "en",
		WindowSize: Size{Width: 1000, Height: 700},
		ChartSize:  Size{Width: 900, Height: 500},
		Endpoints: Endpoints{
			BaseURL:      "http://localhost:3001",
			ChartsPath:   "/charts",
			TopUsersPath: "/top-users",
		},
		DefaultChartKind: "bar",
		DefaultTopN:      "5",
		LogLevel:         "info",
		Environment:      "production",
	}
}

// Dir is the per-user directory holding config files.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDir), nil
}

// LoadConfig reads the config from the user config directory.
func LoadConfig() (*AppConfig, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom layers defaults, then config.yaml or config.json found in dir,
// then DASHBOARD_* environment variables, and validates the result.
// A missing file is not an error.
func LoadFrom(dir string) (*AppConfig, error) {
	cfg := Default()

	if err := loadFile(dir, cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(dir string, cfg *AppConfig) error {
	candidates := []struct {
		name      string
		unmarshal func([]byte, any) error
	}{
		{"config.yaml", yaml.Unmarshal},
		{"config.json", json.Unmarshal},
	}

	for _, c := range candidates {
		path := filepath.Join(dir, c.name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		if err := c.unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	strs := map[string]*string{
		"DASHBOARD_BASE_URL":       &cfg.Endpoints.BaseURL,
		"DASHBOARD_CHARTS_PATH":    &cfg.Endpoints.ChartsPath,
		"DASHBOARD_TOP_USERS_PATH": &cfg.Endpoints.TopUsersPath,
		"DASHBOARD_TOKEN":          &cfg.Endpoints.Token,
		"DASHBOARD_LANGUAGE":       &cfg.Language,
		"DASHBOARD_LOG_LEVEL":      &cfg.LogLevel,
		"DASHBOARD_ENVIRONMENT":    &cfg.Environment,
		"DASHBOARD_METRICS_ADDR":   &cfg.MetricsAddr,
	}
	for key, dst := range strs {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			*dst = val
		}
	}

	if val := os.Getenv("DASHBOARD_DROP_STALE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.DropStale = b
		}
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Environment = strings.ToLower(cfg.Environment)
}

var validate = validator.New()

func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func SaveConfig(cfg *AppConfig) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return SaveTo(dir, cfg)
}

// SaveTo writes cfg into dir, as config.yaml when that file already exists
// and as config.json otherwise.
func SaveTo(dir string, cfg *AppConfig) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	yamlPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		return os.WriteFile(yamlPath, data, 0644)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}
