package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port        int      `env:"PORT" envDefault:"8080"`
	GinMode     string   `env:"GIN_MODE" envDefault:"debug"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Public base URL used to build absolute links in notifications and mail.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Auth     AuthConfig
	Media    MediaConfig   `envPrefix:"MEDIA_"`
	SMTP     SMTPConfig    `envPrefix:"SMTP_"`
	Paragon  ParagonConfig `envPrefix:"PARAGON_"`

	OTPExpiryMinutes int    `env:"OTP_EXPIRY_MINUTES" envDefault:"10"`
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TelemetryService string `env:"OTEL_SERVICE_NAME" envDefault:"pdezzy-api"`
}

func (c *Config) OTPExpiry() time.Duration {
	return time.Duration(c.OTPExpiryMinutes) * time.Minute
}

type DatabaseConfig struct {
	Host          string `env:"HOST" envDefault:"localhost"`
	Port          string `env:"PORT" envDefault:"5432"`
	Username      string `env:"USERNAME" envDefault:"postgres"`
	Password      string `env:"PASSWORD"`
	Database      string `env:"DATABASE" envDefault:"pdezzy"`
	SSLMode       string `env:"SSLMODE" envDefault:"disable"`
	AdminUser     string `env:"ADMIN_USER"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// DSN returns the keyword/value connection string the gorm postgres driver expects.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Username, d.Password, d.Database, d.Port, d.SSLMode,
	)
}

// AdminURL points at the maintenance database with the admin credentials.
func (d DatabaseConfig) AdminURL() string {
	user := d.AdminUser
	password := d.AdminPassword
	if user == "" {
		user, password = d.Username, d.Password
	}
	return fmt.Sprintf(
		"postgres://%s@%s:%s/postgres?sslmode=%s",
		url.UserPassword(user, password).String(), d.Host, d.Port, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type AuthConfig struct {
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`
}

type MediaConfig struct {
	Root string `env:"ROOT" envDefault:"media"`
	URL  string `env:"URL" envDefault:"/media/"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"noreply@pdezzy.com"`
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

type ParagonConfig struct {
	ClientID     string        `env:"CLIENT_ID"`
	ClientSecret string        `env:"CLIENT_SECRET"`
	TokenURL     string        `env:"TOKEN_URL" envDefault:"https://PrimeMLS.paragonrels.com/OData/PrimeMLS/identity/connect/token"`
	APIURL       string        `env:"API_URL" envDefault:"https://PrimeMLS.paragonrels.com/OData/PrimeMLS/DD1.7"`
	Scope        string        `env:"SCOPE" envDefault:"OData"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

func (p ParagonConfig) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// LoadDatabase reads only the DB_ settings, for tools that never serve HTTP.
func LoadDatabase() (DatabaseConfig, error) {
	var cfg DatabaseConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "DB_"}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
