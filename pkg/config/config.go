package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store drivers.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream  UpstreamConfig
	Endpoints EndpointConfig
	Session   SessionConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Exports   ExportsConfig
}

// UpstreamConfig locates the tracker API.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// EndpointConfig is the single endpoint map used by every client call.
type EndpointConfig struct {
	Terms      string
	Register   string
	Login      string
	Refresh    string
	Me         string
	Activities string
	Wellness   string
	AdminUsers string
	AdminStats string
	RoleScoped string
}

// SessionConfig governs the browser session cookie and token storage.
type SessionConfig struct {
	Store        string
	CookieName   string
	CookieSecure bool
	IdleTTL      time.Duration
	DedupRefresh bool
	KeyPrefix    string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TelemetryConfig configures error reporting and tracing.
type TelemetryConfig struct {
	ServiceName  string
	SentryDSN    string
	OTLPEndpoint string
	OTLPInsecure bool
}

// ExportsConfig toggles CSV/PDF downloads.
type ExportsConfig struct {
	Enabled bool
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
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Upstream = UpstreamConfig{
		BaseURL: strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 10*time.Second),
	}
	if cfg.Upstream.BaseURL == "" {
		return nil, errors.New("UPSTREAM_BASE_URL is required")
	}

	cfg.Endpoints = EndpointConfig{
		Terms:      v.GetString("ENDPOINT_TERMS"),
		Register:   v.GetString("ENDPOINT_REGISTER"),
		Login:      v.GetString("ENDPOINT_LOGIN"),
		Refresh:    v.GetString("ENDPOINT_REFRESH"),
		Me:         v.GetString("ENDPOINT_ME"),
		Activities: v.GetString("ENDPOINT_ACTIVITIES"),
		Wellness:   v.GetString("ENDPOINT_WELLNESS"),
		AdminUsers: v.GetString("ENDPOINT_ADMIN_USERS"),
		AdminStats: v.GetString("ENDPOINT_ADMIN_STATS"),
		RoleScoped: v.GetString("ENDPOINT_ROLE_SCOPED"),
	}

	cfg.Session = SessionConfig{
		Store:        strings.ToLower(v.GetString("SESSION_STORE")),
		CookieName:   v.GetString("SESSION_COOKIE_NAME"),
		CookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
		IdleTTL:      parseDuration(v.GetString("SESSION_IDLE_TTL"), 12*time.Hour),
		DedupRefresh: v.GetBool("SESSION_DEDUP_REFRESH"),
		KeyPrefix:    v.GetString("SESSION_KEY_PREFIX"),
	}
	if cfg.Session.Store != SessionStoreMemory && cfg.Session.Store != SessionStoreRedis {
		return nil, errors.New("SESSION_STORE must be memory or redis")
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Telemetry = TelemetryConfig{
		ServiceName:  v.GetString("SERVICE_NAME"),
		SentryDSN:    v.GetString("SENTRY_DSN"),
		OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure: v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
	}

	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:8000")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")

	v.SetDefault("ENDPOINT_TERMS", "/terms/agree")
	v.SetDefault("ENDPOINT_REGISTER", "/register")
	v.SetDefault("ENDPOINT_LOGIN", "/login")
	v.SetDefault("ENDPOINT_REFRESH", "/auth/refresh")
	v.SetDefault("ENDPOINT_ME", "/auth/me")
	v.SetDefault("ENDPOINT_ACTIVITIES", "/activities")
	v.SetDefault("ENDPOINT_WELLNESS", "/wellness")
	v.SetDefault("ENDPOINT_ADMIN_USERS", "/admin/users")
	v.SetDefault("ENDPOINT_ADMIN_STATS", "/admin/stats")
	v.SetDefault("ENDPOINT_ROLE_SCOPED", "")

	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_COOKIE_NAME", "tracker_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_IDLE_TTL", "12h")
	v.SetDefault("SESSION_DEDUP_REFRESH", true)
	v.SetDefault("SESSION_KEY_PREFIX", "tracker:session:")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SERVICE_NAME", "tracker-console")
	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)

	v.SetDefault("ENABLE_EXPORTS", true)
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

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
