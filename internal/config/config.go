package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lawdesk/internal/gmail"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "LAWDESK"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Gmail  GmailConfig  `mapstructure:"gmail"`
	Store  StoreConfig  `mapstructure:"store"`
	OCR    OCRConfig    `mapstructure:"ocr"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type GmailConfig struct {
	MaxResults int64  `mapstructure:"max_results"`
	Policy     string `mapstructure:"policy"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type OCRConfig struct {
	DPI       int    `mapstructure:"dpi"`
	Pdftoppm  string `mapstructure:"pdftoppm"`
	Tesseract string `mapstructure:"tesseract"`
}

// AuthConfig locates the OAuth client secrets downloaded from the Google
// Cloud console and the credentials written by `lawdesk auth`.
type AuthConfig struct {
	ClientSecrets string `mapstructure:"client_secrets"`
	Credentials   string `mapstructure:"credentials"`
}

// Dir is the per-user configuration directory, ~/.config/lawdesk.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lawdesk"), nil
}

func DefaultConfig(dir string) Config {
	return Config{
		Server: ServerConfig{Port: 6767, GinMode: "release"},
		Log:    LogConfig{Level: "info"},
		Gmail:  GmailConfig{MaxResults: gmail.DefaultMaxResults, Policy: gmail.FailFast.String()},
		Store:  StoreConfig{Path: filepath.Join(dir, "lawdesk.db")},
		OCR:    OCRConfig{DPI: 600, Pdftoppm: "pdftoppm", Tesseract: "tesseract"},
		Auth: AuthConfig{
			ClientSecrets: filepath.Join(dir, "client_secret.json"),
			Credentials:   filepath.Join(dir, "credentials.json"),
		},
	}
}

// Load reads defaults, then the YAML file at path (config.yaml in Dir when
// empty; a missing file is fine), then LAWDESK_* environment variables.
// A .env in the working directory is loaded into the environment first.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig(dir)
	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Auth.ClientSecrets = expandHome(cfg.Auth.ClientSecrets)
	cfg.Auth.Credentials = expandHome(cfg.Auth.Credentials)
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.gin_mode", cfg.Server.GinMode)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("gmail.max_results", cfg.Gmail.MaxResults)
	v.SetDefault("gmail.policy", cfg.Gmail.Policy)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("ocr.dpi", cfg.OCR.DPI)
	v.SetDefault("ocr.pdftoppm", cfg.OCR.Pdftoppm)
	v.SetDefault("ocr.tesseract", cfg.OCR.Tesseract)
	v.SetDefault("auth.client_secrets", cfg.Auth.ClientSecrets)
	v.SetDefault("auth.credentials", cfg.Auth.Credentials)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func Validate(cfg Config) error {
	var errs []error
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", cfg.Server.Port))
	}
	if cfg.Gmail.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("gmail.max_results must be positive, got %d", cfg.Gmail.MaxResults))
	}
	if _, err := gmail.ParsePolicy(cfg.Gmail.Policy); err != nil {
		errs = append(errs, fmt.Errorf("gmail.policy: %w", err))
	}
	if cfg.OCR.DPI <= 0 {
		errs = append(errs, fmt.Errorf("ocr.dpi must be positive, got %d", cfg.OCR.DPI))
	}
	if cfg.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	return errors.Join(errs...)
}

// Policy returns the configured ingest policy. Call Validate first.
func (c Config) Policy() gmail.Policy {
	p, _ := gmail.ParsePolicy(c.Gmail.Policy)
	return p
}
