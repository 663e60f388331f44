package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App            AppConfig
	DB             DBConfig
	Redis          RedisConfig
	JWT            JWTConfig
	FeatureFlags   FeatureFlagsConfig
	Session        SessionConfig
	PromoRateLimit PromoRateLimitConfig
	Media          MediaConfig
	Stripe         StripeConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CAPSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"CAPSHOP_APP_PORT" required:"true"`
	PublicURL    string `envconfig:"CAPSHOP_PUBLIC_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"CAPSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAPSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CAPSHOP_DB_DSN"`
	Driver string `envconfig:"CAPSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CAPSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"CAPSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CAPSHOP_DB_USER"`
	LegacyPassword string `envconfig:"CAPSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"CAPSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"CAPSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAPSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAPSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAPSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAPSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CAPSHOP_REDIS_URL"`
	Address      string        `envconfig:"CAPSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"CAPSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAPSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAPSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAPSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAPSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAPSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAPSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
	// Namespace prefixes every key so several shop environments can share one Redis.
	Namespace string `envconfig:"CAPSHOP_REDIS_NAMESPACE" default:"capshop"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"CAPSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CAPSHOP_JWT_ISSUER" default:"capshop"`
	ExpirationMinutes int    `envconfig:"CAPSHOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CAPSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CAPSHOP_AUTO_MIGRATE" default:"false"`
}

type SessionConfig struct {
	CookieName    string        `envconfig:"CAPSHOP_SESSION_COOKIE" default:"capshop_session"`
	IdleTTL       time.Duration `envconfig:"CAPSHOP_SESSION_IDLE_TTL" default:"12h"`
	SweepInterval time.Duration `envconfig:"CAPSHOP_SESSION_SWEEP_INTERVAL" default:"10m"`
	SecureCookie  bool          `envconfig:"CAPSHOP_SESSION_SECURE_COOKIE" default:"true"`
}

type PromoRateLimitConfig struct {
	Window  time.Duration `envconfig:"CAPSHOP_PROMO_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit int           `envconfig:"CAPSHOP_PROMO_RATE_LIMIT_IP_LIMIT" default:"20"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"CAPSHOP_MAX_UPLOAD_MB" default:"5"`
}

// MaxUploadBytes returns the upload limit in bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type StripeConfig struct {
	APIKey           string   `envconfig:"CAPSHOP_STRIPE_API_KEY"`
	Secret           string   `envconfig:"CAPSHOP_STRIPE_SECRET"`
	Env              string   `envconfig:"CAPSHOP_STRIPE_ENV" default:"test"`
	Currency         string   `envconfig:"CAPSHOP_STRIPE_CURRENCY" default:"usd"`
	AllowedCountries []string `envconfig:"CAPSHOP_STRIPE_ALLOWED_COUNTRIES" default:"US,CA,GB,AU"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = defaultSQLiteDSN
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
