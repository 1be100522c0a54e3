package config

const (
	EnvPrefix = "SALON"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "SALON_APP_ENV"
	EnvPort     = "SALON_APP_PORT"
	EnvLogLevel = "SALON_LOG_LEVEL"

	EnvDBDriver = "SALON_DB_DRIVER"
	EnvDBDSN    = "SALON_DB_DSN"
	EnvDBHost   = "SALON_DB_HOST"
	EnvDBUser   = "SALON_DB_USER"
	EnvDBName   = "SALON_DB_NAME"

	EnvRedisURL = "SALON_REDIS_URL"

	EnvSessionSecret = "SALON_SESSION_SECRET"

	EnvCheckoutPassword     = "SALON_CHECKOUT_PASSWORD"
	EnvCheckoutPasswordHash = "SALON_CHECKOUT_PASSWORD_HASH"

	EnvVATRate      = "SALON_VAT_RATE"
	EnvProfitMargin = "SALON_PROFIT_MARGIN"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSQLiteDSN = "file:salon.db?_foreign_keys=on"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
