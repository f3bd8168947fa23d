package config

const (
	// EnvPrefix is the envconfig prefix shared by every variable.
	EnvPrefix = "hubstock"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "HUBSTOCK_APP_ENV"
	EnvJWTSecret = "HUBSTOCK_JWT_SECRET"

	EnvDBDSN        = "HUBSTOCK_DB_DSN"
	EnvDBHost       = "HUBSTOCK_DB_HOST"
	EnvDBUser       = "HUBSTOCK_DB_USER"
	EnvDBName       = "HUBSTOCK_DB_NAME"
	EnvDBSQLitePath = "HUBSTOCK_DB_SQLITE_PATH"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
