package config

// EnvPrefix is the envconfig prefix shared by every variable.
const EnvPrefix = "gestoria"

// App environments.
const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error
// messages).
const (
	EnvAppEnv   = "GESTORIA_APP_ENV"
	EnvPort     = "GESTORIA_APP_PORT"
	EnvDBDSN    = "GESTORIA_DB_DSN"
	EnvDBHost   = "GESTORIA_DB_HOST"
	EnvDBUser   = "GESTORIA_DB_USER"
	EnvDBName   = "GESTORIA_DB_NAME"
	EnvRedisURL = "GESTORIA_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
