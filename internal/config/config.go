package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	Fetcher   FetcherConfig
	Parser    ParserConfig
	Reconcile ReconcileConfig
	S3        S3Config
	DB        DBConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// FetcherConfig holds document download settings.
type FetcherConfig struct {
	TimeoutSecs       int    `mapstructure:"timeout_secs"`
	MaxFileSizeMB     int64  `mapstructure:"max_file_size_mb"`
	MaxImageDimension int    `mapstructure:"max_image_dimension"`
	UserAgent         string `mapstructure:"user_agent"`
}

// MaxBytes returns the download size limit in bytes.
func (f *FetcherConfig) MaxBytes() int64 {
	return f.MaxFileSizeMB * 1024 * 1024
}

// ParserProviderConfig holds settings for a single LLM extraction provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds LLM extraction settings with multi-provider support.
type ParserConfig struct {
	// Legacy flat fields (single provider)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &ParserProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		MaxRetries:   p.MaxRetries,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *ParserConfig) TertiaryConfig() *ParserProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// ReconcileConfig holds deduplication and cross-check settings.
type ReconcileConfig struct {
	// PageTypePriority is a comma-separated list, highest priority first.
	PageTypePriority string  `mapstructure:"page_type_priority"`
	TotalTolerance   float64 `mapstructure:"total_tolerance"`
}

// S3Config holds settings for archiving documents and results.
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// DBConfig holds PostgreSQL settings for the extraction audit log.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Load reads configuration from environment variables with the RECON_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring unreadable .env file: %v", err)
	}

	v := viper.New()
	v.SetEnvPrefix("RECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", "*")

	// Fetcher defaults
	v.SetDefault("fetcher.timeout_secs", 60)
	v.SetDefault("fetcher.max_file_size_mb", 25)
	v.SetDefault("fetcher.max_image_dimension", 2400)
	v.SetDefault("fetcher.user_agent", "billrecon/1.0")

	// Parser defaults (legacy flat)
	v.SetDefault("parser.provider", "gemini")
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "gemini-2.0-flash")
	v.SetDefault("parser.max_retries", 2)
	v.SetDefault("parser.timeout_secs", 180)

	// Parser primary/secondary/tertiary defaults
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("parser."+tier+".provider", "")
		v.SetDefault("parser."+tier+".api_key", "")
		v.SetDefault("parser."+tier+".default_model", "")
		v.SetDefault("parser."+tier+".max_retries", 2)
		v.SetDefault("parser."+tier+".timeout_secs", 180)
	}

	// Reconcile defaults
	v.SetDefault("reconcile.page_type_priority", "Final Bill,Bill Detail,Pharmacy")
	v.SetDefault("reconcile.total_tolerance", 1.0)

	// S3 archive defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "billrecon-archive")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.prefix", "extractions")

	// DB audit defaults
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "billrecon")
	v.SetDefault("db.password", "billrecon_secret")
	v.SetDefault("db.name", "billrecon_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// Bind environment variables explicitly for nested keys
	for _, key := range v.AllKeys() {
		env := "RECON_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if RECON_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("RECON_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Fetcher = FetcherConfig{
		TimeoutSecs:       v.GetInt("fetcher.timeout_secs"),
		MaxFileSizeMB:     v.GetInt64("fetcher.max_file_size_mb"),
		MaxImageDimension: v.GetInt("fetcher.max_image_dimension"),
		UserAgent:         v.GetString("fetcher.user_agent"),
	}

	cfg.Parser = ParserConfig{
		Provider:     v.GetString("parser.provider"),
		APIKey:       v.GetString("parser.api_key"),
		DefaultModel: v.GetString("parser.default_model"),
		MaxRetries:   v.GetInt("parser.max_retries"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
		Primary:      providerConfig(v, "primary"),
		Secondary:    providerConfig(v, "secondary"),
		Tertiary:     providerConfig(v, "tertiary"),
	}

	cfg.Reconcile = ReconcileConfig{
		PageTypePriority: v.GetString("reconcile.page_type_priority"),
		TotalTolerance:   v.GetFloat64("reconcile.total_tolerance"),
	}

	cfg.S3 = S3Config{
		Enabled:   v.GetBool("s3.enabled"),
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Prefix:    v.GetString("s3.prefix"),
	}

	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}

	if cfg.Fetcher.MaxFileSizeMB <= 0 {
		return nil, fmt.Errorf("fetcher.max_file_size_mb must be positive, got %d", cfg.Fetcher.MaxFileSizeMB)
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, tier string) ParserProviderConfig {
	prefix := "parser." + tier + "."
	return ParserProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		MaxRetries:   v.GetInt(prefix + "max_retries"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}

// splitList parses a comma-separated string, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
