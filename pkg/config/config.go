package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "BREWHAUS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error text).
const (
	EnvAppEnv   = "BREWHAUS_APP_ENV"
	EnvPort     = "BREWHAUS_APP_PORT"
	EnvDBDSN    = "BREWHAUS_DB_DSN"
	EnvDBHost   = "BREWHAUS_DB_HOST"
	EnvDBUser   = "BREWHAUS_DB_USER"
	EnvDBName   = "BREWHAUS_DB_NAME"
	EnvRedisURL = "BREWHAUS_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Checkout     CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BREWHAUS_APP_ENV" required:"true"`
	Port         string `envconfig:"BREWHAUS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BREWHAUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BREWHAUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BREWHAUS_DB_DSN"`
	Driver string `envconfig:"BREWHAUS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BREWHAUS_DB_HOST"`
	LegacyPort     int    `envconfig:"BREWHAUS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BREWHAUS_DB_USER"`
	LegacyPassword string `envconfig:"BREWHAUS_DB_PASSWORD"`
	LegacyName     string `envconfig:"BREWHAUS_DB_NAME"`
	LegacySSLMode  string `envconfig:"BREWHAUS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BREWHAUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BREWHAUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BREWHAUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BREWHAUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BREWHAUS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BREWHAUS_REDIS_ADDR"`
	Password     string        `envconfig:"BREWHAUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"BREWHAUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BREWHAUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BREWHAUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BREWHAUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BREWHAUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BREWHAUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BREWHAUS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BREWHAUS_AUTO_MIGRATE" default:"false"`
}

type CheckoutConfig struct {
	// IdempotencyTTL bounds how long a replayed checkout submission returns
	// the stored response instead of creating a second order.
	IdempotencyTTL time.Duration `envconfig:"BREWHAUS_CHECKOUT_IDEMPOTENCY_TTL" default:"168h"`
}

func (db *DBConfig) ensureDSN() error {
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
