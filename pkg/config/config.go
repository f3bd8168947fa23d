package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Inventory     InventoryConfig
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
	Env          string `envconfig:"HUBSTOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"HUBSTOCK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"HUBSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HUBSTOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"HUBSTOCK_DB_DSN"`
	SQLitePath string `envconfig:"HUBSTOCK_DB_SQLITE_PATH" default:"hubstock.db"`

	Host     string `envconfig:"HUBSTOCK_DB_HOST"`
	Port     int    `envconfig:"HUBSTOCK_DB_PORT" default:"5432"`
	User     string `envconfig:"HUBSTOCK_DB_USER"`
	Password string `envconfig:"HUBSTOCK_DB_PASSWORD"`
	Name     string `envconfig:"HUBSTOCK_DB_NAME"`
	SSLMode  string `envconfig:"HUBSTOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HUBSTOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HUBSTOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HUBSTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HUBSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HUBSTOCK_REDIS_URL"`
	Address      string        `envconfig:"HUBSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"HUBSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"HUBSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HUBSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HUBSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HUBSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HUBSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HUBSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"HUBSTOCK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"HUBSTOCK_JWT_ISSUER" default:"hubstock"`
	ExpirationMinutes      int    `envconfig:"HUBSTOCK_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"HUBSTOCK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HUBSTOCK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HUBSTOCK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HUBSTOCK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HUBSTOCK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HUBSTOCK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"HUBSTOCK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"HUBSTOCK_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"HUBSTOCK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HUBSTOCK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HUBSTOCK_AUTO_MIGRATE" default:"false"`
}

type InventoryConfig struct {
	LowStockThreshold int `envconfig:"HUBSTOCK_LOW_STOCK_THRESHOLD" default:"10"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		if db.SQLitePath == "" {
			return fmt.Errorf("%s is required when sqlite is enabled", EnvDBSQLitePath)
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
