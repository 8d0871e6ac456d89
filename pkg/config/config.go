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
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Upload        UploadConfig
	Pets          PetsConfig
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
	Env             string        `envconfig:"PAWFINDERZ_APP_ENV" required:"true"`
	Port            string        `envconfig:"PAWFINDERZ_APP_PORT" required:"true"`
	LogLevel        string        `envconfig:"PAWFINDERZ_LOG_LEVEL" default:"info"`
	LogWarnStack    bool          `envconfig:"PAWFINDERZ_LOG_WARN_STACK" default:"false"`
	ReadTimeout     time.Duration `envconfig:"PAWFINDERZ_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"PAWFINDERZ_HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"PAWFINDERZ_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"PAWFINDERZ_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"PAWFINDERZ_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN string `envconfig:"PAWFINDERZ_DB_DSN"`

	LegacyHost     string `envconfig:"PAWFINDERZ_DB_HOST"`
	LegacyPort     int    `envconfig:"PAWFINDERZ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PAWFINDERZ_DB_USER"`
	LegacyPassword string `envconfig:"PAWFINDERZ_DB_PASSWORD"`
	LegacyName     string `envconfig:"PAWFINDERZ_DB_NAME"`
	LegacySSLMode  string `envconfig:"PAWFINDERZ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PAWFINDERZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PAWFINDERZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PAWFINDERZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PAWFINDERZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PAWFINDERZ_REDIS_URL"`
	Address      string        `envconfig:"PAWFINDERZ_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"PAWFINDERZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"PAWFINDERZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PAWFINDERZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PAWFINDERZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PAWFINDERZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PAWFINDERZ_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"PAWFINDERZ_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PAWFINDERZ_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PAWFINDERZ_JWT_ISSUER" default:"pawfinderz"`
	ExpirationMinutes      int    `envconfig:"PAWFINDERZ_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"PAWFINDERZ_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PAWFINDERZ_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PAWFINDERZ_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PAWFINDERZ_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PAWFINDERZ_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PAWFINDERZ_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PAWFINDERZ_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PAWFINDERZ_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PAWFINDERZ_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PAWFINDERZ_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PAWFINDERZ_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PAWFINDERZ_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// RateLimitConfig drives the per-client token bucket applied to the API surface.
type RateLimitConfig struct {
	RPS       float64       `envconfig:"PAWFINDERZ_RATE_LIMIT_RPS" default:"20"`
	Burst     int           `envconfig:"PAWFINDERZ_RATE_LIMIT_BURST" default:"40"`
	ClientTTL time.Duration `envconfig:"PAWFINDERZ_RATE_LIMIT_CLIENT_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PAWFINDERZ_AUTO_MIGRATE" default:"false"`
	Uploads     bool `envconfig:"PAWFINDERZ_FEATURE_UPLOADS" default:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PAWFINDERZ_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PAWFINDERZ_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PAWFINDERZ_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"PAWFINDERZ_GCS_BUCKET_NAME"`
	PublicBaseURL string `envconfig:"PAWFINDERZ_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	ObjectPrefix  string `envconfig:"PAWFINDERZ_GCS_OBJECT_PREFIX" default:"uploads"`
}

type UploadConfig struct {
	MaxUploadMB int `envconfig:"PAWFINDERZ_MAX_UPLOAD_MB" default:"5"`
}

// MaxBytes converts the configured limit to bytes.
func (u UploadConfig) MaxBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(u.MaxUploadMB) << 20
}

type PetsConfig struct {
	ViewDebounceWindow time.Duration `envconfig:"PAWFINDERZ_PET_VIEW_DEBOUNCE" default:"5s"`
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
