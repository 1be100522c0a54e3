package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App               AppConfig
	DB                DBConfig
	Retry             RetryConfig
	Redis             RedisConfig
	Session           SessionConfig
	Checkout          CheckoutConfig
	Pricing           PricingConfig
	CheckoutRateLimit CheckoutRateLimitConfig
	HTTP              HTTPConfig
	Password          PasswordConfig
	FeatureFlags      FeatureFlagsConfig
	CartExpiry        CartExpiryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SALON_APP_ENV" required:"true"`
	Port         string `envconfig:"SALON_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SALON_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SALON_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"SALON_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"SALON_DB_DSN"`

	LegacyHost     string `envconfig:"SALON_DB_HOST"`
	LegacyPort     int    `envconfig:"SALON_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SALON_DB_USER"`
	LegacyPassword string `envconfig:"SALON_DB_PASSWORD"`
	LegacyName     string `envconfig:"SALON_DB_NAME"`
	LegacySSLMode  string `envconfig:"SALON_DB_SSLMODE" default:"require"`

	MaxOpenConns    int           `envconfig:"SALON_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SALON_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SALON_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SALON_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"SALON_DB_SLOW_QUERY" default:"500ms"`
}

// IsSQLite reports whether the local file-backed store is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

// IsPostgres reports whether the hosted Postgres store is selected.
func (db DBConfig) IsPostgres() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverPostgres)
}

// RetryConfig bounds how often a failed store round-trip is attempted.
type RetryConfig struct {
	MaxAttempts uint          `envconfig:"SALON_STORE_RETRY_ATTEMPTS" default:"2"`
	Delay       time.Duration `envconfig:"SALON_STORE_RETRY_DELAY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SALON_REDIS_URL"`
	Address      string        `envconfig:"SALON_REDIS_ADDR"`
	Password     string        `envconfig:"SALON_REDIS_PASSWORD"`
	DB           int           `envconfig:"SALON_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SALON_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SALON_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SALON_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SALON_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SALON_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type SessionConfig struct {
	Secret       string        `envconfig:"SALON_SESSION_SECRET" required:"true"`
	Issuer       string        `envconfig:"SALON_SESSION_ISSUER" default:"salon-retail"`
	TTL          time.Duration `envconfig:"SALON_SESSION_TTL" default:"720h"`
	CookieName   string        `envconfig:"SALON_SESSION_COOKIE_NAME" default:"salon_session"`
	CookieSecure bool          `envconfig:"SALON_SESSION_COOKIE_SECURE" default:"false"`
}

// CheckoutConfig holds the shared operator secret that gates sale confirmation.
// PasswordHash takes precedence when both are set.
type CheckoutConfig struct {
	Password     string `envconfig:"SALON_CHECKOUT_PASSWORD"`
	PasswordHash string `envconfig:"SALON_CHECKOUT_PASSWORD_HASH"`
}

func (c CheckoutConfig) validate() error {
	if strings.TrimSpace(c.Password) == "" && strings.TrimSpace(c.PasswordHash) == "" {
		return fmt.Errorf("either %s or %s is required", EnvCheckoutPassword, EnvCheckoutPasswordHash)
	}
	return nil
}

type PricingConfig struct {
	VATRate      float64 `envconfig:"SALON_VAT_RATE" default:"0.255"`
	ProfitMargin float64 `envconfig:"SALON_PROFIT_MARGIN" default:"0.5"`
}

// VAT returns the system VAT rate as a decimal fraction.
func (p PricingConfig) VAT() decimal.Decimal {
	return decimal.NewFromFloat(p.VATRate)
}

// Margin returns the default profit margin applied to new catalog entries.
func (p PricingConfig) Margin() decimal.Decimal {
	return decimal.NewFromFloat(p.ProfitMargin)
}

func (p PricingConfig) validate() error {
	if p.VATRate < 0 {
		return fmt.Errorf("%s must be non-negative", EnvVATRate)
	}
	if p.ProfitMargin < 0 {
		return fmt.Errorf("%s must be non-negative", EnvProfitMargin)
	}
	return nil
}

type CheckoutRateLimitConfig struct {
	Window       time.Duration `envconfig:"SALON_CHECKOUT_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit      int           `envconfig:"SALON_CHECKOUT_RATE_LIMIT_IP_LIMIT" default:"20"`
	SessionLimit int           `envconfig:"SALON_CHECKOUT_RATE_LIMIT_SESSION_LIMIT" default:"5"`
}

type HTTPConfig struct {
	RequestsPerMinute int           `envconfig:"SALON_HTTP_RATE_LIMIT" default:"120"`
	ReadTimeout       time.Duration `envconfig:"SALON_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout      time.Duration `envconfig:"SALON_HTTP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout   time.Duration `envconfig:"SALON_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SALON_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SALON_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SALON_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SALON_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SALON_ARGON_KEY_LEN" default:"32"`
}

// CartExpiryConfig drives the sweeper that removes carts of expired sessions.
// A zero IdleAfter falls back to the session TTL.
type CartExpiryConfig struct {
	Interval  time.Duration `envconfig:"SALON_CART_EXPIRY_INTERVAL" default:"1h"`
	IdleAfter time.Duration `envconfig:"SALON_CART_EXPIRY_IDLE_AFTER"`
}

// Cutoff returns how long a line may sit untouched before it is removed.
func (c CartExpiryConfig) Cutoff(session SessionConfig) time.Duration {
	if c.IdleAfter > 0 {
		return c.IdleAfter
	}
	return session.TTL
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SALON_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	switch {
	case db.IsSQLite():
		if db.DSN == "" {
			db.DSN = defaultSQLiteDSN
		}
		return nil
	case db.IsPostgres():
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvDBDriver, DriverSQLite, DriverPostgres, db.Driver)
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
