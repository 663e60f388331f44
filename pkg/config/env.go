package config

const EnvPrefix = "CAPSHOP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:capshop.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv    = "CAPSHOP_APP_ENV"
	EnvPort      = "CAPSHOP_APP_PORT"
	EnvPublicURL = "CAPSHOP_PUBLIC_URL"

	EnvDBDSN    = "CAPSHOP_DB_DSN"
	EnvDBDriver = "CAPSHOP_DB_DRIVER"
	EnvDBHost   = "CAPSHOP_DB_HOST"
	EnvDBUser   = "CAPSHOP_DB_USER"
	EnvDBName   = "CAPSHOP_DB_NAME"

	EnvUseSQLite = "CAPSHOP_USE_SQLITE"
	EnvRedisURL  = "CAPSHOP_REDIS_URL"

	EnvJWTSecret = "CAPSHOP_JWT_SECRET"
	EnvJWTIssuer = "CAPSHOP_JWT_ISSUER"

	EnvStripeAPIKey    = "CAPSHOP_STRIPE_API_KEY"
	EnvStripeSecret    = "CAPSHOP_STRIPE_SECRET"
	EnvStripeCountries = "CAPSHOP_STRIPE_ALLOWED_COUNTRIES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
