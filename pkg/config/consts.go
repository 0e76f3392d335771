package config

// EnvPrefix is the envconfig prefix shared by every variable below.
const EnvPrefix = "WMS"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error messages).
const (
	EnvAppEnv    = "WMS_APP_ENV"
	EnvPort      = "WMS_APP_PORT"
	EnvDBDSN     = "WMS_DB_DSN"
	EnvDBHost    = "WMS_DB_HOST"
	EnvDBUser    = "WMS_DB_USER"
	EnvDBName    = "WMS_DB_NAME"
	EnvRedisURL  = "WMS_REDIS_URL"
	EnvJWTSecret = "WMS_JWT_SECRET"
	EnvJWTIssuer = "WMS_JWT_ISSUER"
	EnvJWTExpMin = "WMS_JWT_EXPIRATION_MINUTES"
	EnvERPServer = "WMS_ERP_SERVER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
