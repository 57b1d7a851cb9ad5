package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Archive   ArchiveConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
	Profiling ProfilingConfig
	Theme     ThemeConfig
	Wizard    WizardConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	DisableSwagger   bool // hides /swagger/*
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// ArchiveConfig holds the submission archive database settings
type ArchiveConfig struct {
	Enabled         bool
	Driver          string // sqlite or postgres
	SQLitePath      string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string // silent, error, warn, info
	SlowThreshold   time.Duration
	MigrationsPath  string // empty uses the migrations bundled in the binary
}

// StorageConfig holds S3-compatible document storage settings
type StorageConfig struct {
	Enabled       bool
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	UsePathStyle  bool
	KeyPrefix     string
	MaxUploadSize int64
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool
	ExportInterval    time.Duration
}

// ProfilingConfig holds Pyroscope continuous profiling configuration
type ProfilingConfig struct {
	Enabled              bool
	ServerAddress        string // e.g. "http://pyroscope:4040"
	ApplicationName      string
	BasicAuthUser        string
	BasicAuthPassword    string
	ProfileTypes         []string // cpu, alloc_space, inuse_space, goroutines, mutex_count, ...
	SpanProfiles         bool     // link CPU profiles to trace spans; needs telemetry
	MutexProfileFraction int
	BlockProfileRate     int
}

// ThemeConfig is the presentation theme handed to the wizard front end.
// The wizard core never reads it.
type ThemeConfig struct {
	AppTitle        string `json:"app_title"`
	PrimaryColor    string `json:"primary_color"`
	AccentColor     string `json:"accent_color"`
	BackgroundColor string `json:"background_color"`
	FontFamily      string `json:"font_family"`
	LogoURL         string `json:"logo_url,omitempty"`
}

// WizardConfig holds intake session settings
type WizardConfig struct {
	SessionTTL    time.Duration // idle sessions older than this are dropped
	SweepInterval time.Duration
	MaxSessions   int
	RecordIDs     string // sequence or uuid
	Locale        string // BCP 47 tag used to format totals
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with INTAKE_ prefix (e.g., INTAKE_ARCHIVE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/agricred")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return fromViper(v)
}

// LoadFile loads configuration from an explicit file, still honouring
// INTAKE_ environment overrides
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			DisableSwagger:   v.GetBool("http.disable_swagger"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Archive: ArchiveConfig{
			Enabled:         v.GetBool("archive.enabled"),
			Driver:          v.GetString("archive.driver"),
			SQLitePath:      v.GetString("archive.sqlite_path"),
			Host:            v.GetString("archive.host"),
			Port:            v.GetInt("archive.port"),
			User:            v.GetString("archive.user"),
			Password:        v.GetString("archive.password"),
			DBName:          v.GetString("archive.dbname"),
			SSLMode:         v.GetString("archive.sslmode"),
			MaxOpenConns:    v.GetInt("archive.max_open_conns"),
			MaxIdleConns:    v.GetInt("archive.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("archive.conn_max_lifetime"),
			LogLevel:        v.GetString("archive.log_level"),
			SlowThreshold:   v.GetDuration("archive.slow_threshold"),
			MigrationsPath:  v.GetString("archive.migrations_path"),
		},
		Storage: StorageConfig{
			Enabled:       v.GetBool("storage.enabled"),
			Endpoint:      v.GetString("storage.endpoint"),
			Region:        v.GetString("storage.region"),
			Bucket:        v.GetString("storage.bucket"),
			AccessKey:     v.GetString("storage.access_key"),
			SecretKey:     v.GetString("storage.secret_key"),
			UseSSL:        v.GetBool("storage.use_ssl"),
			UsePathStyle:  v.GetBool("storage.use_path_style"),
			KeyPrefix:     v.GetString("storage.key_prefix"),
			MaxUploadSize: v.GetInt64("storage.max_upload_size"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
		},
		Profiling: ProfilingConfig{
			Enabled:              v.GetBool("profiling.enabled"),
			ServerAddress:        v.GetString("profiling.server_address"),
			ApplicationName:      v.GetString("profiling.application_name"),
			BasicAuthUser:        v.GetString("profiling.basic_auth_user"),
			BasicAuthPassword:    v.GetString("profiling.basic_auth_password"),
			ProfileTypes:         v.GetStringSlice("profiling.profile_types"),
			SpanProfiles:         v.GetBool("profiling.span_profiles"),
			MutexProfileFraction: v.GetInt("profiling.mutex_profile_fraction"),
			BlockProfileRate:     v.GetInt("profiling.block_profile_rate"),
		},
		Theme: ThemeConfig{
			AppTitle:        v.GetString("theme.app_title"),
			PrimaryColor:    v.GetString("theme.primary_color"),
			AccentColor:     v.GetString("theme.accent_color"),
			BackgroundColor: v.GetString("theme.background_color"),
			FontFamily:      v.GetString("theme.font_family"),
			LogoURL:         v.GetString("theme.logo_url"),
		},
		Wizard: WizardConfig{
			SessionTTL:    v.GetDuration("wizard.session_ttl"),
			SweepInterval: v.GetDuration("wizard.sweep_interval"),
			MaxSessions:   v.GetInt("wizard.max_sessions"),
			RecordIDs:     v.GetString("wizard.record_ids"),
			Locale:        v.GetString("wizard.locale"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "agricred-intake"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 12 << 20
	}
	// An empty origin list blocks cross-origin requests until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID", "X-User-ID"}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Archive.Driver == "" {
		cfg.Archive.Driver = "sqlite"
	}
	if cfg.Archive.SQLitePath == "" {
		cfg.Archive.SQLitePath = "intake.db"
	}
	if cfg.Archive.Host == "" {
		cfg.Archive.Host = "localhost"
	}
	if cfg.Archive.Port == 0 {
		cfg.Archive.Port = 5432
	}
	if cfg.Archive.User == "" {
		cfg.Archive.User = "postgres"
	}
	if cfg.Archive.DBName == "" {
		cfg.Archive.DBName = "agricred"
	}
	if cfg.Archive.SSLMode == "" {
		cfg.Archive.SSLMode = "disable"
	}
	if cfg.Archive.MaxOpenConns == 0 {
		cfg.Archive.MaxOpenConns = 10
	}
	if cfg.Archive.MaxIdleConns == 0 {
		cfg.Archive.MaxIdleConns = 2
	}
	if cfg.Archive.ConnMaxLifetime == 0 {
		cfg.Archive.ConnMaxLifetime = time.Hour
	}
	if cfg.Archive.LogLevel == "" {
		cfg.Archive.LogLevel = "warn"
	}
	if cfg.Archive.SlowThreshold == 0 {
		cfg.Archive.SlowThreshold = 200 * time.Millisecond
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "ap-south-1"
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "proofs"
	}
	if cfg.Storage.MaxUploadSize == 0 {
		cfg.Storage.MaxUploadSize = 10 << 20
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 60 * time.Second
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}

	if cfg.Profiling.ApplicationName == "" {
		cfg.Profiling.ApplicationName = cfg.App.Name
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}
	}

	if cfg.Theme.AppTitle == "" {
		cfg.Theme.AppTitle = "AgriCred"
	}
	if cfg.Theme.PrimaryColor == "" {
		cfg.Theme.PrimaryColor = "#16a34a"
	}
	if cfg.Theme.AccentColor == "" {
		cfg.Theme.AccentColor = "#15803d"
	}
	if cfg.Theme.BackgroundColor == "" {
		cfg.Theme.BackgroundColor = "#f0fdf4"
	}
	if cfg.Theme.FontFamily == "" {
		cfg.Theme.FontFamily = "Inter, sans-serif"
	}

	if cfg.Wizard.SessionTTL == 0 {
		cfg.Wizard.SessionTTL = 2 * time.Hour
	}
	if cfg.Wizard.SweepInterval == 0 {
		cfg.Wizard.SweepInterval = 5 * time.Minute
	}
	if cfg.Wizard.MaxSessions == 0 {
		cfg.Wizard.MaxSessions = 10000
	}
	if cfg.Wizard.RecordIDs == "" {
		cfg.Wizard.RecordIDs = "sequence"
	}
	if cfg.Wizard.Locale == "" {
		cfg.Wizard.Locale = "en-IN"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Archive.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("archive.driver must be sqlite or postgres, got %q", c.Archive.Driver)
	}
	if c.Archive.MaxOpenConns <= 0 {
		return fmt.Errorf("archive.max_open_conns must be positive")
	}
	if c.Archive.MaxIdleConns > c.Archive.MaxOpenConns {
		return fmt.Errorf("archive.max_idle_conns (%d) cannot exceed archive.max_open_conns (%d)",
			c.Archive.MaxIdleConns, c.Archive.MaxOpenConns)
	}

	if c.Storage.Enabled {
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when storage is enabled")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("storage.access_key and storage.secret_key are required when storage is enabled")
		}
	}

	switch c.Wizard.RecordIDs {
	case "sequence", "uuid":
	default:
		return fmt.Errorf("wizard.record_ids must be sequence or uuid, got %q", c.Wizard.RecordIDs)
	}
	if c.Wizard.SessionTTL < 0 {
		return fmt.Errorf("wizard.session_ttl cannot be negative")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.Profiling.Enabled && c.Profiling.ServerAddress == "" {
		return fmt.Errorf("profiling.server_address is required when profiling is enabled")
	}
	if c.Profiling.SpanProfiles && !c.Telemetry.Enabled {
		return fmt.Errorf("profiling.span_profiles requires telemetry.enabled")
	}

	if c.App.Env == "production" {
		if c.Archive.Driver == "postgres" && c.Archive.Password == "" {
			return fmt.Errorf("archive.password is required in production")
		}
		if c.Archive.Driver == "postgres" && c.Archive.SSLMode == "disable" {
			return fmt.Errorf("archive.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}
	return nil
}

// DSN returns the postgres connection string with properly escaped values
func (a *ArchiveConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(a.User, a.Password),
		Host:   fmt.Sprintf("%s:%d", a.Host, a.Port),
		Path:   a.DBName,
	}
	q := u.Query()
	q.Set("sslmode", a.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
