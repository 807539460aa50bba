package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Storage       StorageConfig
	Session       SessionConfig
	SMTP          SMTPConfig
	Geocoding     GeocodingConfig
	ReCAPTCHA     ReCAPTCHAConfig
	EventTriggers EventTriggersConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
	Cache         CacheConfig
	Profiles      ProfilesConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
	AppEnv  string
	// BaseURL is the public site used in email links
	BaseURL        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
	// StatementTimeoutMs is applied per connection; 0 leaves the server default
	StatementTimeoutMs int
}

type StorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	PublicBaseURL   string
}

// Enabled reports whether object storage credentials are configured
func (s StorageConfig) Enabled() bool {
	return s.AccessKeyID != "" && s.SecretAccessKey != "" && s.BucketName != ""
}

type SessionConfig struct {
	JWTSecret       string
	JWTIssuer       string
	SessionTTLHours int
	CookieDomain    string
	CookieSecure    bool
}

type SMTPConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	From               string
	FromName           string
	SendTimeoutSeconds int
}

type GeocodingConfig struct {
	APIKey  string
	BaseURL string
	Region  string
}

type ReCAPTCHAConfig struct {
	SecretKey string
}

type EventTriggersConfig struct {
	ProfileCreatedTriggerURL string
	ReviewCreatedTriggerURL  string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

type CacheConfig struct {
	DirectoryTTLSeconds int
}

type ProfilesConfig struct {
	SlugMaxAttempts   int
	MaxGuideImages    int
	MaxExplorerImages int
	BcryptCost        int
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := fromViper(v)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://explore.pe")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://explore.pe,https://www.explore.pe")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_STATEMENT_TIMEOUT_MS", 5000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_BE_SERVICE_NAME", "explorepe-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "explorepe")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "explorepe-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)
	v.SetDefault("DIRECTORY_CACHE_TTL", 300)

	// Session defaults
	v.SetDefault("JWT_ISSUER", "explorepe-api")
	v.SetDefault("SESSION_TTL_HOURS", 720)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)

	// Mail defaults
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("SMTP_FROM_NAME", "Explore.pe - No Reply")
	v.SetDefault("EMAIL_SEND_TIMEOUT_SECONDS", 10)

	v.SetDefault("GEOCODING_REGION", "pe")

	// Profile rules
	v.SetDefault("SLUG_MAX_ATTEMPTS", 100)
	v.SetDefault("MAX_GUIDE_IMAGES", 20)
	v.SetDefault("MAX_EXPLORER_IMAGES", 50)
	v.SetDefault("BCRYPT_COST", 12)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL:                v.GetString("DATABASE_URL"),
			MaxConns:           v.GetInt32("DB_MAX_CONNS"),
			MinConns:           v.GetInt32("DB_MIN_CONNS"),
			StatementTimeoutMs: v.GetInt("DB_STATEMENT_TIMEOUT_MS"),
		},
		Storage: StorageConfig{
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			Region:          v.GetString("STORAGE_REGION"),
			PublicBaseURL:   v.GetString("STORAGE_PUBLIC_BASE_URL"),
		},
		Session: SessionConfig{
			JWTSecret:       v.GetString("JWT_SECRET"),
			JWTIssuer:       v.GetString("JWT_ISSUER"),
			SessionTTLHours: v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain:    v.GetString("COOKIE_DOMAIN"),
			CookieSecure:    v.GetBool("COOKIE_SECURE"),
		},
		SMTP: SMTPConfig{
			Host:               v.GetString("SMTP_HOST"),
			Port:               v.GetString("SMTP_PORT"),
			User:               v.GetString("SMTP_USER"),
			Password:           v.GetString("SMTP_PASS"),
			From:               v.GetString("SMTP_FROM"),
			FromName:           v.GetString("SMTP_FROM_NAME"),
			SendTimeoutSeconds: v.GetInt("EMAIL_SEND_TIMEOUT_SECONDS"),
		},
		Geocoding: GeocodingConfig{
			APIKey:  v.GetString("GOOGLE_MAPS_API_KEY"),
			BaseURL: v.GetString("GEOCODING_BASE_URL"),
			Region:  v.GetString("GEOCODING_REGION"),
		},
		ReCAPTCHA: ReCAPTCHAConfig{
			SecretKey: v.GetString("RECAPTCHA_SECRET_KEY"),
		},
		EventTriggers: EventTriggersConfig{
			ProfileCreatedTriggerURL: v.GetString("PROFILE_CREATED_TRIGGER_URL"),
			ReviewCreatedTriggerURL:  v.GetString("REVIEW_CREATED_TRIGGER_URL"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
		Cache: CacheConfig{
			DirectoryTTLSeconds: v.GetInt("DIRECTORY_CACHE_TTL"),
		},
		Profiles: ProfilesConfig{
			SlugMaxAttempts:   v.GetInt("SLUG_MAX_ATTEMPTS"),
			MaxGuideImages:    v.GetInt("MAX_GUIDE_IMAGES"),
			MaxExplorerImages: v.GetInt("MAX_EXPLORER_IMAGES"),
			BcryptCost:        v.GetInt("BCRYPT_COST"),
		},
	}
}

// splitList parses a comma-separated list, dropping blanks
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Session.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Profiles.SlugMaxAttempts <= 0 {
		return fmt.Errorf("SLUG_MAX_ATTEMPTS must be positive")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
