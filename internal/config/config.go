package config

import (
	"cmp"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	devJWTSecret = "shortlink-dev-secret"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Links    LinksConfig
	Redirect RedirectConfig

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Debug    bool   `env:"DEBUG"`
}

type ServerConfig struct {
	Host           string `env:"HOST" envDefault:"localhost"`
	Port           string `env:"PORT" envDefault:"8080"`
	MaxConnections int    `env:"MAX_CONNECTIONS" envDefault:"0"`
}

type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
	Path   string `env:"DB_PATH" envDefault:"shortlink.db"`
	URL    string `env:"DATABASE_URL"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
}

type LinksConfig struct {
	CodeLength int `env:"SHORT_CODE_LENGTH" envDefault:"7"`
}

// RedirectConfig holds the sources used to turn a stored path into an absolute
// redirect target. Each chain is consulted in field order.
type RedirectConfig struct {
	DefaultProtocol       string `env:"DEFAULT_PROTOCOL"`
	PublicDefaultProtocol string `env:"PUBLIC_DEFAULT_PROTOCOL"`
	DefaultDomain         string `env:"DEFAULT_DOMAIN"`
	SiteURL               string `env:"SITE_URL"`
	PublicURL             string `env:"PUBLIC_URL"`
}

// Protocol returns the first configured protocol, defaulting to https.
func (r RedirectConfig) Protocol() string {
	p := cmp.Or(r.DefaultProtocol, r.PublicDefaultProtocol, "https")
	return strings.TrimSuffix(strings.ToLower(p), "://")
}

// Domain returns the first configured domain, defaulting to a local address.
// URL-shaped values contribute only their host.
func (r RedirectConfig) Domain() string {
	for _, v := range []string{r.DefaultDomain, r.SiteURL, r.PublicURL} {
		if host := hostOf(v); host != "" {
			return host
		}
	}
	return "localhost:8080"
}

func hostOf(v string) string {
	v = strings.TrimSpace(v)
	if !strings.Contains(v, "://") {
		return strings.TrimRight(v, "/")
	}
	u, err := url.Parse(v)
	if err != nil {
		return ""
	}
	return u.Host
}

// Load reads a local .env file if present, then parses the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env file")
	}
	return parse(env.Options{})
}

// LoadFrom parses the given environment only. It ignores the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.Database.URL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for driver %q", cfg.Database.Driver)
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	if cfg.Links.CodeLength < 6 || cfg.Links.CodeLength > 8 {
		return Config{}, fmt.Errorf("SHORT_CODE_LENGTH must be between 6 and 8, got %d", cfg.Links.CodeLength)
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = devJWTSecret
		log.Warn().Msg("using development JWT secret - set JWT_SECRET for production")
	}

	return cfg, nil
}
