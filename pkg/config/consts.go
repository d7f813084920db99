package config

const EnvPrefix = "SMARTINV"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "SMARTINV_APP_ENV"
	EnvPort     = "SMARTINV_APP_PORT"
	EnvLogLevel = "SMARTINV_LOG_LEVEL"

	EnvDBDSN  = "SMARTINV_DB_DSN"
	EnvDBHost = "SMARTINV_DB_HOST"
	EnvDBUser = "SMARTINV_DB_USER"
	EnvDBName = "SMARTINV_DB_NAME"

	EnvRedisURL = "SMARTINV_REDIS_URL"

	EnvJWTSecret  = "SMARTINV_JWT_SECRET"
	EnvJWTIssuer  = "SMARTINV_JWT_ISSUER"
	EnvJWTExpMins = "SMARTINV_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "SMARTINV_GCP_PROJECT_ID"

	EnvPubSubDomainTopic = "SMARTINV_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "SMARTINV_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
