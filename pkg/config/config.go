package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the portal reads.
	EnvPrefix = "icd"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Tenant        TenantConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ICD_APP_ENV" default:"dev"`
	Port         string `envconfig:"ICD_APP_PORT" default:"5001"`
	LogLevel     string `envconfig:"ICD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ICD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig selects the backing store. The default is an in-memory SQLite
// database: all portal state lives in process memory and is lost on restart,
// which matches the deployment this system replaces. Point Driver at
// postgres with a DSN to keep state across restarts.
type DBConfig struct {
	Driver string `envconfig:"ICD_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"ICD_DB_DSN" default:"file::memory:?cache=shared"`

	MaxOpenConns    int           `envconfig:"ICD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ICD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ICD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ICD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate() error {
	switch db.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
	if db.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	return nil
}

// RedisConfig is optional; when URL and Address are both empty, features
// that need redis (login rate limiting) are disabled.
type RedisConfig struct {
	URL          string        `envconfig:"ICD_REDIS_URL"`
	Address      string        `envconfig:"ICD_REDIS_ADDR"`
	Password     string        `envconfig:"ICD_REDIS_PASSWORD"`
	DB           int           `envconfig:"ICD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ICD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ICD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ICD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ICD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ICD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"ICD_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ICD_JWT_ISSUER" default:"icd-connect"`
	ExpirationMinutes int    `envconfig:"ICD_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ICD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ICD_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ICD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ICD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ICD_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"ICD_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"ICD_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"ICD_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// TenantConfig seeds the default organization on first boot.
type TenantConfig struct {
	DefaultName   string `envconfig:"ICD_TENANT_DEFAULT_NAME" default:"ICD Connect"`
	DefaultDomain string `envconfig:"ICD_TENANT_DEFAULT_DOMAIN" default:"localhost"`
}
