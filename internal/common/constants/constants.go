package constants

import "time"

const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 64
	PasswordMinLength  = 1
	PasswordMaxLength  = 72
	JWTSecretMinLength = 32

	DefaultBcryptCost = 12

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultAuthHTTPPort        = "8081"
	DefaultAuthRequestTimeout  = 5 * time.Second
	DefaultAccessTokenTTL      = 15 * time.Minute
	DefaultRefreshTokenTTL     = 7 * 24 * time.Hour
	DefaultTokenCleanupPeriod  = 1 * time.Hour
	DefaultAccessTokenSecret   = "recipebook-dev-access-secret-change-me"
	DefaultRefreshTokenSecret  = "recipebook-dev-refresh-secret-change-me"
	DefaultApplicationName     = "recipebook"
	DefaultStoreDriver         = "postgres"
	MemoryStoreDriver          = "memory"
	ProductionEnvironment      = "production"
	DevelopmentEnvironment     = "dev"
	BearerPrefix               = "Bearer "
	AuthorizationHeader        = "Authorization"
	TraceIDHeader              = "X-Trace-ID"
	HealthPath                 = "/health"
	MetricsPath                = "/metrics"
	ContentSecurityPolicyValue = "default-src 'self'; frame-ancestors 'none';"

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
