package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	// EnvPrefix is empty because every variable carries the MERCALINE_ prefix
	// in its envconfig tag already.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Payments     PaymentsConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"MERCALINE_APP_ENV" default:"dev"`
	Port         string `envconfig:"MERCALINE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MERCALINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MERCALINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MERCALINE_DB_DSN"`
	Driver string `envconfig:"MERCALINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MERCALINE_DB_HOST"`
	LegacyPort     int    `envconfig:"MERCALINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MERCALINE_DB_USER"`
	LegacyPassword string `envconfig:"MERCALINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MERCALINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MERCALINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MERCALINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERCALINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERCALINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERCALINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("database configuration incomplete: set MERCALINE_DB_DSN or host/user/name")
	}
	userInfo := url.User(d.LegacyUser)
	if d.LegacyPassword != "" {
		userInfo = url.UserPassword(d.LegacyUser, d.LegacyPassword)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:     d.LegacyName,
		RawQuery: url.Values{"sslmode": []string{d.LegacySSLMode}}.Encode(),
	}
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"MERCALINE_REDIS_URL"`
	Address      string        `envconfig:"MERCALINE_REDIS_ADDR"`
	Password     string        `envconfig:"MERCALINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERCALINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERCALINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERCALINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERCALINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERCALINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERCALINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PaymentsConfig holds the tuning knobs of the payment core.
type PaymentsConfig struct {
	// ThreeDSThreshold is the amount above which card payments require a
	// 3-D Secure challenge before authorization.
	ThreeDSThreshold decimal.Decimal `envconfig:"MERCALINE_PAYMENTS_3DS_THRESHOLD" default:"500"`
	// Provider names the simulated external provider recorded on intents.
	Provider string `envconfig:"MERCALINE_PAYMENTS_PROVIDER" default:"simupay"`
	// PendingTTL bounds how long an intent may sit awaiting 3-D Secure
	// confirmation before the expiry job fails it.
	PendingTTL time.Duration `envconfig:"MERCALINE_PAYMENTS_PENDING_TTL" default:"30m"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"MERCALINE_CRON_INTERVAL" default:"5m"`
	LockKey  string        `envconfig:"MERCALINE_CRON_LOCK_KEY" default:"cron:payments"`
	LockTTL  time.Duration `envconfig:"MERCALINE_CRON_LOCK_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MERCALINE_AUTO_MIGRATE" default:"false"`
}
