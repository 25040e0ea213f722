package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the client
type Config struct {
	APIURL         string
	ProxyHeader    HeaderConfig
	RequestTimeout time.Duration
	DBPath         string
	List           ListConfig
	Globe          GlobeConfig
	Theme          ThemeConfig
	Visits         VisitsConfig
	Log            LogConfig
}

// HeaderConfig is the fixed header attached to every backend request
type HeaderConfig struct {
	Name  string
	Value string
}

// ListConfig holds the paging and timing settings shared by the list views
type ListConfig struct {
	PageSize   int
	LoadStep   int
	LoadDelay  time.Duration
	Debounce   time.Duration
	SearchSize int
}

// GlobeConfig holds globe view settings
type GlobeConfig struct {
	FetchSize int
	Step      float64
}

// ThemeConfig selects the color palette
type ThemeConfig struct {
	Dark bool
}

// VisitsConfig holds the recently-viewed collector settings
type VisitsConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	Keep          int           // visits retained by the prune task
	PruneInterval time.Duration // how often the prune task runs
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	File   string
}

// Load loads configuration from config file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/flight_atlas")
	v.AddConfigPath(".")

	if configPath := os.Getenv("FLIGHT_ATLAS_CONFIG_PATH"); configPath != "" {
		v.SetConfigFile(configPath)
	}

	// A missing config file is fine, defaults and env vars still apply.
	// The logger isn't initialized yet so nothing is logged here.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("FLIGHT_ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := fromViper(v)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("proxy_header.name", "ngrok-skip-browser-warning")
	v.SetDefault("proxy_header.value", "any value")
	v.SetDefault("request_timeout", 15)
	v.SetDefault("db_path", "flight_atlas.db")
	v.SetDefault("list.page_size", 20)
	v.SetDefault("list.load_step", 20)
	v.SetDefault("list.load_delay_ms", 500)
	v.SetDefault("list.debounce_ms", 500)
	v.SetDefault("list.search_size", 100)
	v.SetDefault("globe.fetch_size", 4600)
	v.SetDefault("globe.step", 0.005)
	v.SetDefault("theme.dark", false)
	v.SetDefault("visits.batch_size", 20)
	v.SetDefault("visits.flush_interval", 5)
	v.SetDefault("visits.keep", 200)
	v.SetDefault("visits.prune_interval", 3600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "flight_atlas.log")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		APIURL: strings.TrimSuffix(v.GetString("api_url"), "/"),
		ProxyHeader: HeaderConfig{
			Name:  v.GetString("proxy_header.name"),
			Value: v.GetString("proxy_header.value"),
		},
		RequestTimeout: time.Duration(v.GetInt("request_timeout")) * time.Second,
		DBPath:         v.GetString("db_path"),
		List: ListConfig{
			PageSize:   v.GetInt("list.page_size"),
			LoadStep:   v.GetInt("list.load_step"),
			LoadDelay:  time.Duration(v.GetInt("list.load_delay_ms")) * time.Millisecond,
			Debounce:   time.Duration(v.GetInt("list.debounce_ms")) * time.Millisecond,
			SearchSize: v.GetInt("list.search_size"),
		},
		Globe: GlobeConfig{
			FetchSize: v.GetInt("globe.fetch_size"),
			Step:      v.GetFloat64("globe.step"),
		},
		Theme: ThemeConfig{
			Dark: v.GetBool("theme.dark"),
		},
		Visits: VisitsConfig{
			BatchSize:     v.GetInt("visits.batch_size"),
			FlushInterval: time.Duration(v.GetInt("visits.flush_interval")) * time.Second,
			Keep:          v.GetInt("visits.keep"),
			PruneInterval: time.Duration(v.GetInt("visits.prune_interval")) * time.Second,
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
	}
}

// validate validates the configuration values
func validate(cfg *Config) error {
	if cfg.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	if u, err := url.Parse(cfg.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url must be an absolute URL: %q", cfg.APIURL)
	}

	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be greater than 0")
	}

	if cfg.List.PageSize <= 0 {
		return fmt.Errorf("list.page_size must be greater than 0")
	}
	if cfg.List.LoadStep <= 0 {
		return fmt.Errorf("list.load_step must be greater than 0")
	}
	if cfg.List.LoadDelay < 0 {
		return fmt.Errorf("list.load_delay_ms must not be negative")
	}
	if cfg.List.Debounce < 0 {
		return fmt.Errorf("list.debounce_ms must not be negative")
	}
	if cfg.List.SearchSize <= 0 {
		return fmt.Errorf("list.search_size must be greater than 0")
	}

	if cfg.Globe.FetchSize <= 0 {
		return fmt.Errorf("globe.fetch_size must be greater than 0")
	}
	if cfg.Globe.Step <= 0 || cfg.Globe.Step > 1 {
		return fmt.Errorf("globe.step must be in (0, 1]")
	}

	if cfg.Visits.BatchSize <= 0 {
		return fmt.Errorf("visits.batch_size must be greater than 0")
	}
	if cfg.Visits.FlushInterval <= 0 {
		return fmt.Errorf("visits.flush_interval must be greater than 0")
	}
	if cfg.Visits.Keep <= 0 {
		return fmt.Errorf("visits.keep must be greater than 0")
	}
	if cfg.Visits.PruneInterval <= 0 {
		return fmt.Errorf("visits.prune_interval must be greater than 0")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[strings.ToLower(cfg.Log.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	return nil
}
