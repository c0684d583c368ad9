package config

import (
	"errors"
	"testing"
	"time"

	"github.com/AlibekovAA/recipebook/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
)

func clearAuthEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AUTH_HTTP_PORT", "DATABASE_URL", "STORE_DRIVER", "ACCESS_TOKEN_SECRET",
		"REFRESH_TOKEN_SECRET", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "BCRYPT_COST",
		"TOKEN_CLEANUP_INTERVAL", "AUTH_REQUEST_TIMEOUT", "LOG_DIR", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadAuthConfig_Defaults(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := LoadAuthConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTPPort != constants.DefaultAuthHTTPPort {
		t.Errorf("expected port %s, got %s", constants.DefaultAuthHTTPPort, cfg.HTTPPort)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("expected access ttl 15m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("expected refresh ttl 168h, got %v", cfg.RefreshTokenTTL)
	}
	if !cfg.UsesDefaultSecrets() {
		t.Error("expected default secrets to be reported")
	}
	if cfg.BcryptCost != constants.DefaultBcryptCost {
		t.Errorf("expected bcrypt cost %d, got %d", constants.DefaultBcryptCost, cfg.BcryptCost)
	}
}

func TestLoadAuthConfig_PostgresRequiresDatabaseURL(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("APP_ENV", "test")

	_, err := LoadAuthConfig()
	if !errors.Is(err, commonerrors.ErrMissingRequiredEnv) {
		t.Fatalf("expected ErrMissingRequiredEnv, got %v", err)
	}
}

func TestLoadAuthConfig_UnknownStoreDriver(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "redis")

	_, err := LoadAuthConfig()
	if !errors.Is(err, commonerrors.ErrInvalidConfigValue) {
		t.Fatalf("expected ErrInvalidConfigValue, got %v", err)
	}
}

func TestLoadAuthConfig_ProductionRejectsDefaultSecrets(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "memory")

	_, err := LoadAuthConfig()
	if !errors.Is(err, commonerrors.ErrDefaultSecretInProduction) {
		t.Fatalf("expected ErrDefaultSecretInProduction, got %v", err)
	}
}

func TestLoadAuthConfig_ProductionRejectsShortSecret(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ACCESS_TOKEN_SECRET", "short")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret-key-that-is-at-least-32-bytes")

	_, err := LoadAuthConfig()
	if !errors.Is(err, commonerrors.ErrInvalidJWTSecret) {
		t.Fatalf("expected ErrInvalidJWTSecret, got %v", err)
	}
}

func TestLoadAuthConfig_SameSecretsRejected(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ACCESS_TOKEN_SECRET", "same-secret-key-that-is-at-least-32-bytes")
	t.Setenv("REFRESH_TOKEN_SECRET", "same-secret-key-that-is-at-least-32-bytes")

	_, err := LoadAuthConfig()
	if !errors.Is(err, commonerrors.ErrInvalidConfigValue) {
		t.Fatalf("expected ErrInvalidConfigValue, got %v", err)
	}
}

func TestLoadAuthConfig_InvalidBcryptCost(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("BCRYPT_COST", "twelve")

	_, err := LoadAuthConfig()
	if !errors.Is(err, commonerrors.ErrInvalidConfigValue) {
		t.Fatalf("expected ErrInvalidConfigValue, got %v", err)
	}
}

func TestLoadAuthConfig_OverridesFromEnv(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/recipes")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")
	t.Setenv("TOKEN_CLEANUP_INTERVAL", "30m")

	cfg, err := LoadAuthConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Errorf("expected 5m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 48*time.Hour {
		t.Errorf("expected 48h, got %v", cfg.RefreshTokenTTL)
	}
	if cfg.TokenCleanupInterval != 30*time.Minute {
		t.Errorf("expected 30m cleanup interval, got %v", cfg.TokenCleanupInterval)
	}
}

func TestLoadAuthConfig_InvalidDuration(t *testing.T) {
	for _, key := range []string{"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "TOKEN_CLEANUP_INTERVAL", "AUTH_REQUEST_TIMEOUT"} {
		t.Run(key, func(t *testing.T) {
			clearAuthEnv(t)
			t.Setenv("APP_ENV", "test")
			t.Setenv("STORE_DRIVER", "memory")
			t.Setenv(key, "15")

			_, err := LoadAuthConfig()
			if !errors.Is(err, commonerrors.ErrInvalidConfigValue) {
				t.Fatalf("expected ErrInvalidConfigValue for %s=15, got %v", key, err)
			}
		})
	}
}
