package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Bootstrap BootstrapConfig
}

type ServerConfig struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	Env            string        `env:"ENV" envDefault:"development"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout    time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

type DatabaseConfig struct {
	Host              string        `env:"DB_HOST" envDefault:"localhost"`
	Port              int           `env:"DB_PORT" envDefault:"5432"`
	User              string        `env:"DB_USER" envDefault:"postgres"`
	Password          string        `env:"DB_PASSWORD,required"`
	Name              string        `env:"DB_NAME" envDefault:"tiro"`
	SSLMode           string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns          int32         `env:"DB_MAX_CONNS" envDefault:"25"`
	MinConns          int32         `env:"DB_MIN_CONNS" envDefault:"5"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"5m"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"1m"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET,required"`

	// Zero keeps the built-in credential endpoint limit.
	RateLimitPerMinute   int  `env:"AUTH_RATE_LIMIT_PER_MINUTE"`
	TimingDelayBaseMs    int  `env:"AUTH_TIMING_DELAY_BASE_MS" envDefault:"500"`
	TimingDelayRandomMs  int  `env:"AUTH_TIMING_DELAY_RANDOM_MS" envDefault:"100"`
	TimingDelayOnSuccess bool `env:"AUTH_TIMING_DELAY_ON_SUCCESS" envDefault:"false"`
}

// BootstrapConfig describes the admin account created on startup when
// all three values are set.
type BootstrapConfig struct {
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

func (b BootstrapConfig) Enabled() bool {
	return b.AdminUsername != "" && b.AdminEmail != "" && b.AdminPassword != ""
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Server.AllowedOrigins = trimList(cfg.Server.AllowedOrigins)
	cfg.Server.TrustedProxies = trimList(cfg.Server.TrustedProxies)

	if err := validateJWTSecret(cfg.Auth.JWTSecret, cfg.Server.Env); err != nil {
		return nil, err
	}
	if cfg.Auth.RateLimitPerMinute < 0 {
		return nil, fmt.Errorf("AUTH_RATE_LIMIT_PER_MINUTE cannot be negative (got %d)", cfg.Auth.RateLimitPerMinute)
	}
	if cfg.Auth.TimingDelayBaseMs < 0 || cfg.Auth.TimingDelayRandomMs < 0 {
		return nil, fmt.Errorf("AUTH_TIMING_DELAY_BASE_MS and AUTH_TIMING_DELAY_RANDOM_MS cannot be negative")
	}

	return &cfg, nil
}

func (c *ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

var weakSecrets = []string{
	"secret", "test", "password", "12345", "changeme",
	"admin", "root", "default", "example",
}

func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	lower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if strings.Contains(lower, weak) && len(strings.ReplaceAll(lower, weak, "")) < 8 {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
