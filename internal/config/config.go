package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Billing   BillingConfig
	Backup    BackupConfig
	Upload    UploadConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// DatabaseConfig covers both the default SQLite deployment and the
// optional PostgreSQL one. Driver selects which set of fields applies.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres"
	Driver string
	// Path is the SQLite database file (sqlite driver only)
	Path string
	// BusyTimeoutMS is the SQLite busy timeout in milliseconds
	BusyTimeoutMS int

	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

type AuthConfig struct {
	// JWTSecret signs access tokens. Must be overridden outside development.
	JWTSecret string
	// TokenTTLMinutes is the access token lifetime
	TokenTTLMinutes int
	// BootstrapAdminPassword seeds the initial admin account on first run
	BootstrapAdminPassword string
}

type BillingConfig struct {
	// DefaultVATRate is applied to items created without an explicit rate
	DefaultVATRate float64
	// WorkOrderPrefix and InvoicePrefix are the document number prefixes
	WorkOrderPrefix string
	InvoicePrefix   string
}

type BackupConfig struct {
	// Enabled controls the scheduled backup job (sqlite driver only)
	Enabled bool
	// Dir is the directory backups are written to
	Dir string
	// Schedule is a cron expression for the backup job
	Schedule string
	// MaxBackups is how many backup files are retained, oldest pruned first
	MaxBackups int
}

type UploadConfig struct {
	// Dir is the root directory photo attachments are stored under
	Dir string
	// MaxPhotoSizeMB caps a single uploaded photo
	MaxPhotoSizeMB int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	WhitelistPaths    []string
}

// ConnectionString builds the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// SQLiteDSN builds the SQLite DSN. _txlock=immediate makes write
// transactions take the write lock up front so concurrent number
// allocation serializes instead of failing with SQLITE_BUSY.
func (d *DatabaseConfig) SQLiteDSN() string {
	return fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate",
		d.Path, d.BusyTimeoutMS)
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// TokenTTL returns the access token lifetime as duration
func (a *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}

	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Garage API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults - SQLite file next to the binary, Postgres optional
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./garage.db")
	v.SetDefault("database.busyTimeoutMS", 5000)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "garage")
	v.SetDefault("database.user", "garage_user")
	v.SetDefault("database.password", "garage_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Auth defaults - the secret default is for development only
	v.SetDefault("auth.jwtSecret", "dev-secret-change-me")
	v.SetDefault("auth.tokenTTLMinutes", 480)
	v.SetDefault("auth.bootstrapAdminPassword", "admin123")

	// Billing defaults
	v.SetDefault("billing.defaultVATRate", 20.0)
	v.SetDefault("billing.workOrderPrefix", "IS")
	v.SetDefault("billing.invoicePrefix", "FTR")

	// Backup defaults - daily at 03:00, keep a month of backups
	v.SetDefault("backup.enabled", true)
	v.SetDefault("backup.dir", "./backups")
	v.SetDefault("backup.schedule", "0 3 * * *")
	v.SetDefault("backup.maxBackups", 30)

	// Upload defaults
	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.maxPhotoSizeMB", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db"})
}
