package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	ServiceProfile string `mapstructure:"service_profile"`
	ServicesFile   string `mapstructure:"services_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	AlbumAPIURL   string `mapstructure:"album_api_url"`
	SongAPIURL    string `mapstructure:"song_api_url"`
	YouTubeAPIURL string `mapstructure:"youtube_api_url"`

	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	JournalType            string        `mapstructure:"journal_type"`
	JournalPath            string        `mapstructure:"journal_path"`
	JournalTTLSeconds      int64         `mapstructure:"journal_ttl_seconds"`
	JournalCleanupSeconds  int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalTTL             time.Duration `mapstructure:"-"`
	JournalCleanupInterval time.Duration `mapstructure:"-"`
}

var keys = []string{
	"app_name",
	"app_env",
	"log_level",
	"service_profile",
	"services_file",
	"publishers_file",
	"album_api_url",
	"song_api_url",
	"youtube_api_url",
	"http_timeout_seconds",
	"journal_type",
	"journal_path",
	"journal_ttl_seconds",
	"journal_cleanup_interval_seconds",
}

// New returns a viper instance carrying defaults and environment bindings.
// Callers may layer flag overrides on top before calling Load.
func New() *viper.Viper {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "libclient")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("service_profile", "zelda")
	v.SetDefault("services_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("album_api_url", "")
	v.SetDefault("song_api_url", "")
	v.SetDefault("youtube_api_url", "")
	v.SetDefault("http_timeout_seconds", 10)
	v.SetDefault("journal_type", "bbolt")
	v.SetDefault("journal_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k, strings.ToUpper(k))
	}
	return v
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	return FromViper(New())
}

// FromViper decodes and validates configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.JournalTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if cfg.JournalCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.JournalTTL = time.Duration(cfg.JournalTTLSeconds) * time.Second
	cfg.JournalCleanupInterval = time.Duration(cfg.JournalCleanupSeconds) * time.Second

	cfg.ServiceProfile = strings.ToLower(strings.TrimSpace(cfg.ServiceProfile))
	cfg.AlbumAPIURL = strings.TrimSpace(cfg.AlbumAPIURL)
	cfg.SongAPIURL = strings.TrimSpace(cfg.SongAPIURL)
	cfg.YouTubeAPIURL = strings.TrimSpace(cfg.YouTubeAPIURL)

	return &cfg, nil
}
