package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `env:"GO_ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"3000"`
	BaseURL     string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	DBUrl       string `env:"DATABASE_URL"`
	DBHost      string `env:"POSTGRES_SERVICE_HOST" envDefault:"db"`
	DBPort      string `env:"POSTGRES_SERVICE_PORT" envDefault:"5432"`
	DBUser      string `env:"POSTGRES_USER" envDefault:"postgres"`
	DBPassword  string `env:"POSTGRES_PASSWORD"`
	DBName      string `env:"POSTGRES_DB" envDefault:"eventscape"`
	DBSSLMode   string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`

	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	Stats StatsConfig
	Email EmailConfig

	AnnouncementReleaseInterval time.Duration `env:"ANNOUNCEMENT_RELEASE_INTERVAL" envDefault:"1m"`
}

// StatsConfig controls the database change-notification bridge.
type StatsConfig struct {
	Channel              string        `env:"STATS_CHANNEL" envDefault:"stats_channel"`
	ConnectRetries       uint          `env:"STATS_CONNECT_RETRIES" envDefault:"5"`
	ConnectDelay         time.Duration `env:"STATS_CONNECT_DELAY" envDefault:"2s"`
	ReconnectMaxTries    uint          `env:"STATS_RECONNECT_MAX_TRIES" envDefault:"10"`
	ReconnectMaxInterval time.Duration `env:"STATS_RECONNECT_MAX_INTERVAL" envDefault:"30s"`
}

// EmailConfig selects and configures the outbound mail provider.
type EmailConfig struct {
	Provider              string `env:"EMAIL_PROVIDER" envDefault:"noop"`
	FromAddress           string `env:"EMAIL_FROM_ADDRESS" envDefault:"no-reply@eventscape.local"`
	FromName              string `env:"EMAIL_FROM_NAME" envDefault:"Eventscape"`
	AWSRegion             string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID        string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey    string `env:"AWS_SECRET_ACCESS_KEY"`
	SESInsecureSkipVerify bool   `env:"AWS_SES_INSECURE_SKIP_VERIFY" envDefault:"false"`
}

const developmentSessionSecret = "dev-session-secret"

// Load loads configuration from environment variables.
// Outside production a .env file is loaded first if present; in production
// we rely on the system environment only.
func Load() (*Config, error) {
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	if c.DBUrl == "" {
		c.DBUrl = c.composeDBUrl()
	}
	if c.SessionSecret == "" {
		if c.IsProduction() {
			return errors.New("SESSION_SECRET is required in production")
		}
		c.SessionSecret = developmentSessionSecret
	}
	c.Stats.Channel = strings.TrimSpace(c.Stats.Channel)
	if c.Stats.Channel == "" {
		return errors.New("STATS_CHANNEL must not be empty")
	}
	origins := c.AllowedOrigins[:0]
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.AllowedOrigins = origins
	return nil
}

func (c *Config) composeDBUrl() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   "/" + c.DBName,
	}
	if c.DBPassword != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	} else {
		u.User = url.User(c.DBUser)
	}
	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// IsProduction reports whether GO_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
