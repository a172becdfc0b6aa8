package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Reminder ReminderConfig `yaml:"reminder"`
	Notifier NotifierConfig `yaml:"notifier"`
	Insight  InsightConfig  `yaml:"insight"`
	Calendar CalendarConfig `yaml:"calendar"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`

	RateLimitPerMinute int `yaml:"rate_limit_per_minute" env:"SERVER_RATE_LIMIT_PER_MINUTE" env-default:"120"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds JWT validation settings. Token issuance lives in the
// auth service; this backend only validates access tokens.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"medremind"`
}

// ReminderConfig holds dose materialization and scanning parameters.
type ReminderConfig struct {
	HorizonDays    int           `yaml:"horizon_days"    env:"REMINDER_HORIZON_DAYS"    env-default:"7"`
	ScanInterval   time.Duration `yaml:"scan_interval"   env:"REMINDER_SCAN_INTERVAL"   env-default:"1m"`
	Lookahead      time.Duration `yaml:"lookahead"       env:"REMINDER_LOOKAHEAD"       env-default:"15m"`
	MissedGrace    time.Duration `yaml:"missed_grace"    env:"REMINDER_MISSED_GRACE"    env-default:"1h"`
	SnoozeDuration time.Duration `yaml:"snooze_duration" env:"REMINDER_SNOOZE_DURATION" env-default:"10m"`
	TopUpInterval  time.Duration `yaml:"topup_interval"  env:"REMINDER_TOPUP_INTERVAL"  env-default:"1h"`
	ScanBatchSize  int           `yaml:"scan_batch_size" env:"REMINDER_SCAN_BATCH_SIZE" env-default:"500"`
}

// NotifierConfig holds outbound notification dispatch settings.
type NotifierConfig struct {
	WebhookURL      string        `yaml:"webhook_url"      env:"NOTIFIER_WEBHOOK_URL"`
	DispatchTimeout time.Duration `yaml:"dispatch_timeout" env:"NOTIFIER_DISPATCH_TIMEOUT" env-default:"5s"`
}

// InsightConfig holds risk-scoring collaborator settings.
type InsightConfig struct {
	ScorerURL      string        `yaml:"scorer_url"      env:"INSIGHT_SCORER_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"INSIGHT_REQUEST_TIMEOUT" env-default:"10s"`
	HistoryDays    int           `yaml:"history_days"    env:"INSIGHT_HISTORY_DAYS"    env-default:"14"`
}

// CalendarConfig holds calendar-sync settings. An empty sync URL disables
// outbound sync entirely.
type CalendarConfig struct {
	SyncURL     string        `yaml:"sync_url"     env:"CALENDAR_SYNC_URL"`
	SyncTimeout time.Duration `yaml:"sync_timeout" env:"CALENDAR_SYNC_TIMEOUT" env-default:"5s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
