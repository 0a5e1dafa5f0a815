package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TECHSHOP_DB_DSN"
	EnvDBHost = "TECHSHOP_DB_HOST"
	EnvDBUser = "TECHSHOP_DB_USER"
	EnvDBName = "TECHSHOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	JWT          JWTConfig
	Orders       OrdersConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TECHSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"TECHSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TECHSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TECHSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TECHSHOP_DB_DSN"`
	Driver string `envconfig:"TECHSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TECHSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"TECHSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TECHSHOP_DB_USER"`
	LegacyPassword string `envconfig:"TECHSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"TECHSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"TECHSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TECHSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TECHSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TECHSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TECHSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TECHSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TECHSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TECHSHOP_JWT_EXPIRATION_MINUTES" default:"720"`
}

// OrdersConfig carries order pricing policy treated as fixed input.
type OrdersConfig struct {
	TaxRate        float64 `envconfig:"TECHSHOP_ORDER_TAX_RATE" default:"0.10"`
	TxMaxAttempts  int     `envconfig:"TECHSHOP_ORDER_TX_MAX_ATTEMPTS" default:"3"`
	SequenceDigits int     `envconfig:"TECHSHOP_ORDER_SEQUENCE_DIGITS" default:"4"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TECHSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TECHSHOP_AUTO_MIGRATE" default:"false"`
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
