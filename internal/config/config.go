package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the server and CLI configuration (config/config.yaml, then
// environment).
type Config struct {
	Addr           string      `mapstructure:"addr"`
	GinMode        string      `mapstructure:"gin_mode"`
	TrustedProxies []string    `mapstructure:"trusted_proxies"`
	Timezone       string      `mapstructure:"timezone"`
	DB             DBConfig    `mapstructure:"db"`
	Cache          CacheConfig `mapstructure:"cache"`
	Club           ClubConfig  `mapstructure:"club"`
	Auth           AuthConfig  `mapstructure:"auth"`
	Log            LogConfig   `mapstructure:"log"`
	Pprof          bool        `mapstructure:"pprof"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig points at the sqlite file holding the ephemeral schedule
// cache. It is kept apart from the roster database.
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

type ClubConfig struct {
	Name  string   `mapstructure:"name"`
	Teams []string `mapstructure:"teams"`
}

// AuthConfig holds the bcrypt hash of the API token. Empty disables the
// token check.
type AuthConfig struct {
	TokenHash string `mapstructure:"token_hash"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ClubNames returns the club name followed by the configured team names.
func (c Config) ClubNames() []string {
	var out []string
	if s := strings.TrimSpace(c.Club.Name); s != "" {
		out = append(out, s)
	}
	for _, t := range c.Club.Teams {
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Location resolves Timezone, falling back to Europe/Berlin.
func (c Config) Location() (*time.Location, error) {
	name := c.Timezone
	if name == "" {
		name = "Europe/Berlin"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", name, err)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("trusted_proxies", []string{"127.0.0.1", "::1"})
	v.SetDefault("timezone", "Europe/Berlin")
	v.SetDefault("db.path", "clubsched.db")
	v.SetDefault("cache.path", "clubsched-cache.db")
	v.SetDefault("club.name", "")
	v.SetDefault("club.teams", []string{})
	v.SetDefault("auth.token_hash", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("pprof", false)
}

// env names that override file values.
var envKeys = map[string]string{
	"addr":            "ADDR",
	"gin_mode":        "GIN_MODE",
	"trusted_proxies": "TRUSTED_PROXIES",
	"timezone":        "TIMEZONE",
	"db.path":         "DB_PATH",
	"cache.path":      "CACHE_PATH",
	"club.name":       "CLUB_NAME",
	"club.teams":      "CLUB_TEAMS",
	"auth.token_hash": "API_TOKEN_HASH",
	"log.level":       "LOG_LEVEL",
	"log.format":      "LOG_FORMAT",
	"pprof":           "PPROF",
}

// Load reads .env (if present), then the config file, then environment
// overrides. path may be empty: CONFIG_FILE is tried, then
// ./config/config.yaml. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// list values from the environment arrive comma-separated
	cfg.TrustedProxies = splitList(cfg.TrustedProxies)
	cfg.Club.Teams = splitList(cfg.Club.Teams)
	return &cfg, nil
}

func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// NewLogger builds the process logger from the log section.
func NewLogger(c LogConfig) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	lvl := c.Level
	if lvl == "" {
		lvl = "info"
	}
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	l.SetLevel(level)
	switch strings.ToLower(c.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("log format %q", c.Format)
	}
	return l, nil
}
