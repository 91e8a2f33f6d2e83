package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Webhook      WebhookConfig
	FeatureFlags FeatureFlagsConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	Accounting   AccountingConfig
	Telegram     TelegramConfig
	SMTP         SMTPConfig
	RateLimit    RateLimitConfig
	ServiceAuth  ServiceAuthConfig
	Media        MediaConfig
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
	Env          string `envconfig:"SKYLUXSE_APP_ENV" required:"true"`
	Port         string `envconfig:"SKYLUXSE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SKYLUXSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SKYLUXSE_LOG_WARN_STACK" default:"false"`

	ReadTimeout    time.Duration `envconfig:"SKYLUXSE_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"SKYLUXSE_HTTP_WRITE_TIMEOUT" default:"30s"`
	RequestTimeout time.Duration `envconfig:"SKYLUXSE_HTTP_REQUEST_TIMEOUT" default:"30s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SKYLUXSE_DB_DSN"`
	Driver string `envconfig:"SKYLUXSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SKYLUXSE_DB_HOST"`
	LegacyPort     int    `envconfig:"SKYLUXSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SKYLUXSE_DB_USER"`
	LegacyPassword string `envconfig:"SKYLUXSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SKYLUXSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SKYLUXSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SKYLUXSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SKYLUXSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SKYLUXSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SKYLUXSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SKYLUXSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SKYLUXSE_REDIS_ADDR"`
	Password     string        `envconfig:"SKYLUXSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SKYLUXSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SKYLUXSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SKYLUXSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SKYLUXSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SKYLUXSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SKYLUXSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// WebhookConfig drives the CRM webhook receiver: signature verification,
// payload ceiling, and the extractor rules for the non-uniform payload shapes
// the CRM sends (direct fields vs custom-field arrays).
type WebhookConfig struct {
	Secret          string `envconfig:"SKYLUXSE_CRM_WEBHOOK_SECRET" required:"true"`
	SignatureHeader string `envconfig:"SKYLUXSE_CRM_SIGNATURE_HEADER" default:"X-Crm-Signature"`
	MaxBodyBytes    int64  `envconfig:"SKYLUXSE_CRM_MAX_BODY_BYTES" default:"262144"`

	StatusFieldID    string `envconfig:"SKYLUXSE_CRM_STATUS_FIELD_ID"`
	StatusFieldCode  string `envconfig:"SKYLUXSE_CRM_STATUS_FIELD_CODE" default:"booking_status"`
	VehicleFieldID   string `envconfig:"SKYLUXSE_CRM_VEHICLE_FIELD_ID"`
	VehicleFieldCode string `envconfig:"SKYLUXSE_CRM_VEHICLE_FIELD_CODE" default:"vehicle_ref"`

	// Pipeline stages that mean "not yet confirmed"; events carrying one of
	// these are logged and deferred without touching the booking.
	ExcludedStages []string `envconfig:"SKYLUXSE_CRM_EXCLUDED_STAGES" default:"142,143"`
}

type FeatureFlagsConfig struct {
	// StatusSyncEnabled gates whether translated CRM stages actually mutate
	// booking lifecycle state or only log intent (staged rollout).
	StatusSyncEnabled bool `envconfig:"SKYLUXSE_FEATURE_STATUS_SYNC" default:"false"`

	UseSQLite   bool `envconfig:"SKYLUXSE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SKYLUXSE_AUTO_MIGRATE" default:"false"`
}

type OutboxConfig struct {
	BatchSize        int `envconfig:"SKYLUXSE_OUTBOX_BATCH_SIZE" default:"50"`
	MaxAttempts      int `envconfig:"SKYLUXSE_OUTBOX_MAX_ATTEMPTS" default:"5"`
	RetryBaseSeconds int `envconfig:"SKYLUXSE_OUTBOX_RETRY_BASE_SECONDS" default:"60"`
	PollIntervalMS   int `envconfig:"SKYLUXSE_OUTBOX_POLL_MS" default:"500"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"SKYLUXSE_CRON_INTERVAL" default:"24h"`
	OutboxRetentionDays int           `envconfig:"SKYLUXSE_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
	IngestRetentionDays int           `envconfig:"SKYLUXSE_CRON_INGEST_RETENTION_DAYS" default:"90"`
}

// RetryBase returns the configured base interval for linear backoff.
func (o OutboxConfig) RetryBase() time.Duration {
	if o.RetryBaseSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(o.RetryBaseSeconds) * time.Second
}

type AccountingConfig struct {
	BaseURL          string        `envconfig:"SKYLUXSE_ACCOUNTING_BASE_URL"`
	APIKey           string        `envconfig:"SKYLUXSE_ACCOUNTING_API_KEY"`
	Timeout          time.Duration `envconfig:"SKYLUXSE_ACCOUNTING_TIMEOUT" default:"10s"`
	TransportRetries int           `envconfig:"SKYLUXSE_ACCOUNTING_TRANSPORT_RETRIES" default:"2"`
	VATRate          string        `envconfig:"SKYLUXSE_ACCOUNTING_VAT_RATE" default:"0.05"`
}

type TelegramConfig struct {
	BotToken string `envconfig:"SKYLUXSE_TELEGRAM_BOT_TOKEN"`
	ChatID   string `envconfig:"SKYLUXSE_TELEGRAM_CHAT_ID"`
	BaseURL  string `envconfig:"SKYLUXSE_TELEGRAM_BASE_URL" default:"https://api.telegram.org"`
}

type SMTPConfig struct {
	Host     string `envconfig:"SKYLUXSE_SMTP_HOST"`
	Port     int    `envconfig:"SKYLUXSE_SMTP_PORT" default:"587"`
	Username string `envconfig:"SKYLUXSE_SMTP_USERNAME"`
	Password string `envconfig:"SKYLUXSE_SMTP_PASSWORD"`
	From     string `envconfig:"SKYLUXSE_SMTP_FROM"`
	OpsInbox string `envconfig:"SKYLUXSE_SMTP_OPS_INBOX"`
}

type RateLimitConfig struct {
	WebhookWindow  time.Duration `envconfig:"SKYLUXSE_RATE_LIMIT_WEBHOOK_WINDOW" default:"1m"`
	WebhookIPLimit int           `envconfig:"SKYLUXSE_RATE_LIMIT_WEBHOOK_IP_LIMIT" default:"120"`
}

// ServiceAuthConfig protects internal operational endpoints (the outbox
// dispatch trigger) with a shared-secret JWT issued to the scheduler.
type ServiceAuthConfig struct {
	JWTSecret string `envconfig:"SKYLUXSE_SERVICE_JWT_SECRET"`
	Issuer    string `envconfig:"SKYLUXSE_SERVICE_JWT_ISSUER" default:"skyluxse-scheduler"`
}

type MediaConfig struct {
	BaseURL    string        `envconfig:"SKYLUXSE_MEDIA_BASE_URL"`
	SigningKey string        `envconfig:"SKYLUXSE_MEDIA_SIGNING_KEY"`
	URLTTL     time.Duration `envconfig:"SKYLUXSE_MEDIA_URL_TTL" default:"24h"`
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
