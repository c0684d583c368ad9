package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	authrepo "github.com/AlibekovAA/recipebook/backend/internal/auth/repository"
	"github.com/AlibekovAA/recipebook/backend/internal/auth/service"
	"github.com/AlibekovAA/recipebook/backend/internal/auth/token"
	"github.com/AlibekovAA/recipebook/backend/internal/common/clock"
	"github.com/AlibekovAA/recipebook/backend/internal/common/config"
	"github.com/AlibekovAA/recipebook/backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/recipebook/backend/internal/common/crypto"
	"github.com/AlibekovAA/recipebook/backend/internal/common/db"
	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
	"github.com/AlibekovAA/recipebook/backend/internal/common/logger"
	userrepo "github.com/AlibekovAA/recipebook/backend/internal/user/repository"
)

// AuthApp holds the wired dependencies shared by every command.
type AuthApp struct {
	Log           *logger.Logger
	Config        config.AuthConfig
	Pool          *pgxpool.Pool
	Users         userrepo.Repository
	RefreshTokens authrepo.RefreshTokenRepository
	Auth          *service.AuthService
}

func NewAuthApp(ctx context.Context, serviceName string) (*AuthApp, error) {
	cfg, err := config.LoadAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogDir, serviceName, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.UsesDefaultSecrets() {
		log.Warn("using built-in development token secrets; set ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET")
	}

	app := &AuthApp{Log: log, Config: cfg}
	clk := clock.NewRealClock()

	switch cfg.StoreDriver {
	case constants.MemoryStoreDriver:
		log.Warn("using in-memory stores; data is lost on restart")
		app.Users = userrepo.NewMemoryRepository(clk)
		app.RefreshTokens = authrepo.NewMemoryRefreshTokenRepository(clk)
	default:
		pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
		if err != nil {
			_ = log.Close()
			return nil, err
		}
		app.Pool = pool
		app.Users = userrepo.NewPgRepository(pool)
		app.RefreshTokens = authrepo.NewPgRefreshTokenRepository(pool, clk)
	}

	hasher, err := commoncrypto.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("%w: BCRYPT_COST: %v", commonerrors.ErrInvalidConfigValue, err)
	}

	signer := token.NewSigner(token.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}, commoncrypto.NewUUIDGenerator(), clk)

	app.Auth = service.NewAuthService(service.AuthServiceDeps{
		Users:         app.Users,
		RefreshTokens: app.RefreshTokens,
		Hasher:        hasher,
		Signer:        signer,
		Clock:         clk,
		Log:           log,
	})

	return app, nil
}

// Ping checks the backing store. The in-memory driver is always reachable.
func (a *AuthApp) Ping(ctx context.Context) error {
	if a.Pool == nil {
		return nil
	}
	return a.Pool.Ping(ctx)
}

func (a *AuthApp) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
	_ = a.Log.Close()
}
