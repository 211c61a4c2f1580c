package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Backend BackendConfig
	Redis   RedisConfig
	Session SessionConfig
	Cache   CacheConfig
	Log     LogConfig
	Site    SiteConfig
}

// BackendConfig points at the admissions backend REST API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig governs admin session cookies and their redis records.
type SessionConfig struct {
	CookieName         string
	CookieSecret       string
	CookieSecure       bool
	TTL                time.Duration
	RevalidateInterval time.Duration
}

// CacheConfig tunes cached stats payloads.
type CacheConfig struct {
	Enabled        bool
	PublicStatsTTL time.Duration
	AdminStatsTTL  time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// SiteConfig carries static presentation values rendered into pages.
type SiteConfig struct {
	Name         string
	ContactEmail string
	ContactPhone string
	PageSize     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Backend = BackendConfig{
		BaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 10*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		CookieName:         v.GetString("SESSION_COOKIE_NAME"),
		CookieSecret:       v.GetString("SESSION_COOKIE_SECRET"),
		CookieSecure:       v.GetBool("SESSION_COOKIE_SECURE"),
		TTL:                parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		RevalidateInterval: parseDuration(v.GetString("SESSION_REVALIDATE_INTERVAL"), 5*time.Minute),
	}

	cfg.Cache = CacheConfig{
		Enabled:        v.GetBool("ENABLE_STATS_CACHE"),
		PublicStatsTTL: parseDuration(v.GetString("PUBLIC_STATS_CACHE_TTL"), 5*time.Minute),
		AdminStatsTTL:  parseDuration(v.GetString("ADMIN_STATS_CACHE_TTL"), time.Minute),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Site = SiteConfig{
		Name:         v.GetString("SITE_NAME"),
		ContactEmail: v.GetString("SITE_CONTACT_EMAIL"),
		ContactPhone: v.GetString("SITE_CONTACT_PHONE"),
		PageSize:     v.GetInt("DASHBOARD_PAGE_SIZE"),
	}
	if cfg.Site.PageSize <= 0 {
		cfg.Site.PageSize = 10
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:5000/api")
	v.SetDefault("BACKEND_TIMEOUT", "10s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_COOKIE_NAME", "ec_admin_session")
	v.SetDefault("SESSION_COOKIE_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_REVALIDATE_INTERVAL", "5m")

	v.SetDefault("ENABLE_STATS_CACHE", true)
	v.SetDefault("PUBLIC_STATS_CACHE_TTL", "5m")
	v.SetDefault("ADMIN_STATS_CACHE_TTL", "1m")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SITE_NAME", "Excellence College")
	v.SetDefault("SITE_CONTACT_EMAIL", "admissions@excellencecollege.edu")
	v.SetDefault("SITE_CONTACT_PHONE", "+1 (555) 123-4567")
	v.SetDefault("DASHBOARD_PAGE_SIZE", 10)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
