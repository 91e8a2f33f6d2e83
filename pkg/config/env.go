package config

// EnvPrefix namespaces every configuration variable.
const EnvPrefix = "SKYLUXSE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv        = "SKYLUXSE_APP_ENV"
	EnvPort          = "SKYLUXSE_APP_PORT"
	EnvDBDSN         = "SKYLUXSE_DB_DSN"
	EnvDBHost        = "SKYLUXSE_DB_HOST"
	EnvDBUser        = "SKYLUXSE_DB_USER"
	EnvDBName        = "SKYLUXSE_DB_NAME"
	EnvRedisURL      = "SKYLUXSE_REDIS_URL"
	EnvWebhookSecret = "SKYLUXSE_CRM_WEBHOOK_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
