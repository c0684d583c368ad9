package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AlibekovAA/recipebook/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
)

type AuthConfig struct {
	Environment          string
	HTTPPort             string
	DatabaseURL          string
	StoreDriver          string
	AccessTokenSecret    string
	RefreshTokenSecret   string
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration
	BcryptCost           int
	TokenCleanupInterval time.Duration
	RequestTimeout       time.Duration
	LogDir               string
	LogLevel             string
}

func (c AuthConfig) IsProduction() bool {
	return c.Environment == constants.ProductionEnvironment
}

// UsesDefaultSecrets reports whether either signing key fell back to its
// built-in development value.
func (c AuthConfig) UsesDefaultSecrets() bool {
	return c.AccessTokenSecret == constants.DefaultAccessTokenSecret ||
		c.RefreshTokenSecret == constants.DefaultRefreshTokenSecret
}

func LoadAuthConfig() (AuthConfig, error) {
	env := getEnv("APP_ENV", constants.DevelopmentEnvironment)
	if env == constants.DevelopmentEnvironment {
		_ = godotenv.Load()
		env = getEnv("APP_ENV", constants.DevelopmentEnvironment)
	}

	bcryptCost, err := getIntEnv("BCRYPT_COST", constants.DefaultBcryptCost)
	if err != nil {
		return AuthConfig{}, err
	}

	cfg := AuthConfig{
		Environment:        env,
		HTTPPort:           getEnv("AUTH_HTTP_PORT", constants.DefaultAuthHTTPPort),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", constants.DefaultStoreDriver)),
		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", constants.DefaultAccessTokenSecret),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", constants.DefaultRefreshTokenSecret),
		BcryptCost:         bcryptCost,
		LogDir:             getEnv("LOG_DIR", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL, &cfg.AccessTokenTTL},
		{"REFRESH_TOKEN_TTL", constants.DefaultRefreshTokenTTL, &cfg.RefreshTokenTTL},
		{"TOKEN_CLEANUP_INTERVAL", constants.DefaultTokenCleanupPeriod, &cfg.TokenCleanupInterval},
		{"AUTH_REQUEST_TIMEOUT", constants.DefaultAuthRequestTimeout, &cfg.RequestTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = getDurationEnv(d.key, d.fallback); err != nil {
			return AuthConfig{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return AuthConfig{}, err
	}
	return cfg, nil
}

func (c AuthConfig) Validate() error {
	switch c.StoreDriver {
	case constants.DefaultStoreDriver:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL", commonerrors.ErrMissingRequiredEnv)
		}
	case constants.MemoryStoreDriver:
	default:
		return fmt.Errorf("%w: STORE_DRIVER=%q", commonerrors.ErrInvalidConfigValue, c.StoreDriver)
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("%w: access and refresh secrets must differ", commonerrors.ErrInvalidConfigValue)
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("%w: token ttl must be positive", commonerrors.ErrInvalidConfigValue)
	}

	if c.IsProduction() {
		if c.UsesDefaultSecrets() {
			return commonerrors.ErrDefaultSecretInProduction
		}
		if err := validateJWTSecret("ACCESS_TOKEN_SECRET", c.AccessTokenSecret); err != nil {
			return err
		}
		if err := validateJWTSecret("REFRESH_TOKEN_SECRET", c.RefreshTokenSecret); err != nil {
			return err
		}
	}

	return nil
}

func validateJWTSecret(key, secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: %s got %d bytes", commonerrors.ErrInvalidJWTSecret, key, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", commonerrors.ErrInvalidConfigValue, key, v)
	}
	return d, nil
}

func getIntEnv(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", commonerrors.ErrInvalidConfigValue, key, v)
	}
	return i, nil
}
