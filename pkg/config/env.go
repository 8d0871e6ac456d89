package config

const EnvPrefix = "PAWFINDERZ"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "PAWFINDERZ_APP_ENV"
	EnvPort      = "PAWFINDERZ_APP_PORT"
	EnvDBDSN     = "PAWFINDERZ_DB_DSN"
	EnvDBHost    = "PAWFINDERZ_DB_HOST"
	EnvDBUser    = "PAWFINDERZ_DB_USER"
	EnvDBName    = "PAWFINDERZ_DB_NAME"
	EnvRedisURL  = "PAWFINDERZ_REDIS_URL"
	EnvJWTSecret = "PAWFINDERZ_JWT_SECRET"
	EnvJWTIssuer = "PAWFINDERZ_JWT_ISSUER"
	EnvJWTExp    = "PAWFINDERZ_JWT_EXPIRATION_MINUTES"
	EnvGCSBucket = "PAWFINDERZ_GCS_BUCKET_NAME"
	EnvUploadMB  = "PAWFINDERZ_MAX_UPLOAD_MB"
	EnvDebounce  = "PAWFINDERZ_PET_VIEW_DEBOUNCE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
