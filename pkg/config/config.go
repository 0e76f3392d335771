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
	ERP           ERPConfig
	Labels        LabelConfig
	Sync          SyncConfig
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
	Env          string `envconfig:"WMS_APP_ENV" required:"true"`
	Port         string `envconfig:"WMS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WMS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WMS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WMS_DB_DSN"`
	Driver string `envconfig:"WMS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WMS_DB_HOST"`
	LegacyPort     int    `envconfig:"WMS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WMS_DB_USER"`
	LegacyPassword string `envconfig:"WMS_DB_PASSWORD"`
	LegacyName     string `envconfig:"WMS_DB_NAME"`
	LegacySSLMode  string `envconfig:"WMS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WMS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WMS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WMS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WMS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WMS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WMS_REDIS_ADDR"`
	Password     string        `envconfig:"WMS_REDIS_PASSWORD"`
	DB           int           `envconfig:"WMS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WMS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WMS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WMS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WMS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WMS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WMS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WMS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WMS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"WMS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WMS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WMS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WMS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WMS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WMS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"WMS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"WMS_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"WMS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WMS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WMS_AUTO_MIGRATE" default:"false"`
}

// ERPConfig holds the Service Layer connection settings. When any of the
// required fields is empty the client runs in offline mode and document
// posting is rejected with a dependency error.
type ERPConfig struct {
	ServerURL     string        `envconfig:"WMS_ERP_SERVER"`
	Username      string        `envconfig:"WMS_ERP_USERNAME"`
	Password      string        `envconfig:"WMS_ERP_PASSWORD"`
	CompanyDB     string        `envconfig:"WMS_ERP_COMPANY_DB"`
	Timeout       time.Duration `envconfig:"WMS_ERP_TIMEOUT" default:"30s"`
	PageSize      int           `envconfig:"WMS_ERP_PAGE_SIZE" default:"100"`
	SkipVerifyTLS bool          `envconfig:"WMS_ERP_SKIP_VERIFY_TLS" default:"false"`
}

// Configured reports whether every field needed for a Service Layer session is present.
func (e ERPConfig) Configured() bool {
	return e.ServerURL != "" && e.Username != "" && e.Password != "" && e.CompanyDB != ""
}

type LabelConfig struct {
	BarcodePrefix string `envconfig:"WMS_LABEL_BARCODE_PREFIX" default:"WMS"`
	HistoryLimit  int    `envconfig:"WMS_LABEL_HISTORY_LIMIT" default:"50"`
}

type SyncConfig struct {
	Interval    time.Duration `envconfig:"WMS_SYNC_INTERVAL" default:"30m"`
	LockTTL     time.Duration `envconfig:"WMS_SYNC_LOCK_TTL" default:"10m"`
	MetricsPort string        `envconfig:"WMS_SYNC_METRICS_PORT" default:"9091"`
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
