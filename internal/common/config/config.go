package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yaddak/yaddak/internal/common/constants"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
)

const (
	TokenModeSession = "session"
	TokenModeDigest  = "digest"
)

type Config struct {
	HTTPPort       string        `env:"HTTP_PORT" envDefault:"8000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBUser      string `env:"DB_USER"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"8050"`
	DBName      string `env:"DB_NAME" envDefault:"query"`

	// CredentialSecret keys every credential digest. The process cannot
	// start without it.
	CredentialSecret string `env:"UB_CARD_SECRET,required,notEmpty"`

	TokenMode      string        `env:"AUTH_TOKEN_MODE" envDefault:"session"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`

	SeedFile    string        `env:"SEED_FILE" envDefault:"monsters.json"`
	SeedTimeout time.Duration `env:"SEED_TIMEOUT" envDefault:"2m"`

	CircuitBreakerThreshold int32         `env:"DB_CIRCUIT_BREAKER_THRESHOLD" envDefault:"50"`
	CircuitBreakerTimeout   time.Duration `env:"DB_CIRCUIT_BREAKER_TIMEOUT" envDefault:"15s"`
	CircuitBreakerReset     time.Duration `env:"DB_CIRCUIT_BREAKER_RESET" envDefault:"10s"`

	LogDir   string `env:"LOG_DIR"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the process configuration once from the environment.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses the given variables instead of the process environment when
// environ is non-nil.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, classifyParseError(err)
	}

	if err := cfg.finalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	if c.DatabaseURL == "" {
		if c.DBUser == "" {
			return commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("DB_USER (or DATABASE_URL)"))
		}
		if c.DBPassword == "" {
			return commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("DB_PASSWORD (or DATABASE_URL)"))
		}
		c.DatabaseURL = buildDatabaseURL(c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}

	c.TokenMode = strings.ToLower(strings.TrimSpace(c.TokenMode))
	switch c.TokenMode {
	case TokenModeSession:
		if len(c.CredentialSecret) < constants.JWTSecretMinBytes {
			return commonerrors.ErrInvalidEnv.WithCause(
				fmt.Errorf("UB_CARD_SECRET must be at least %d bytes in %s token mode, got %d",
					constants.JWTSecretMinBytes, TokenModeSession, len(c.CredentialSecret)))
		}
	case TokenModeDigest:
	default:
		return commonerrors.ErrInvalidEnv.WithCause(fmt.Errorf("AUTH_TOKEN_MODE: unknown mode %q", c.TokenMode))
	}

	c.applyFallbacks()
	return nil
}

// applyFallbacks replaces blank or non-positive settings with the defaults.
func (c *Config) applyFallbacks() {
	if strings.TrimSpace(c.HTTPPort) == "" {
		c.HTTPPort = constants.DefaultHTTPPort
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = constants.DefaultRequestTimeout
	}
	if c.AccessTokenTTL <= 0 {
		c.AccessTokenTTL = constants.DefaultAccessTokenTTL
	}
	if strings.TrimSpace(c.SeedFile) == "" {
		c.SeedFile = constants.DefaultSeedFile
	}
	if c.SeedTimeout <= 0 {
		c.SeedTimeout = constants.DefaultSeedTimeout
	}
	if c.CircuitBreakerThreshold <= 0 {
		c.CircuitBreakerThreshold = constants.DefaultCircuitBreakerThreshold
	}
	if c.CircuitBreakerTimeout <= 0 {
		c.CircuitBreakerTimeout = constants.DefaultCircuitBreakerTimeout
	}
	if c.CircuitBreakerReset <= 0 {
		c.CircuitBreakerReset = constants.DefaultCircuitBreakerReset
	}
}

func buildDatabaseURL(user, password, host, port, name string) string {
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(user, password),
		Host:   host + ":" + port,
		Path:   "/" + name,
	}
	return u.String()
}

func classifyParseError(err error) error {
	var aggErr env.AggregateError
	if errors.As(err, &aggErr) {
		for _, e := range aggErr.Errors {
			var missing env.VarIsNotSetError
			var empty env.EmptyVarError
			if errors.As(e, &missing) || errors.As(e, &empty) {
				return commonerrors.ErrMissingRequiredEnv.WithCause(err)
			}
		}
	}
	return commonerrors.ErrInvalidEnv.WithCause(err)
}
