package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "NOTARIA"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	JWT      JWTConfig
	S3       S3Config
	AI       AIConfig
	Catalog  CatalogConfig
	Pipeline PipelineConfig
	Worker   WorkerConfig
	CORS     CORSConfig
	Email    EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`

	// MaxLifetime recycles pooled connections; zero keeps them forever.
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// DSN returns the PostgreSQL connection URL. Credentials are escaped, so
// passwords may contain reserved characters.
func (d *DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// JWTConfig holds the shared secret used to verify bearer tokens issued by
// the identity service.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	Issuer            string        `mapstructure:"issuer"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// ProviderConfig holds settings for a single AI completion provider.
// A provider without an API key is not configured.
type ProviderConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	Endpoint    string `mapstructure:"endpoint"`
}

// Configured reports whether the provider can be constructed.
func (p ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

// AIConfig holds provider selection and call settings.
type AIConfig struct {
	DefaultProvider string `mapstructure:"default_provider"`
	MaxTokens       int    `mapstructure:"max_tokens"`
	AnalyzeImages   bool   `mapstructure:"analyze_images"`
	FallbackEnabled bool   `mapstructure:"fallback_enabled"`

	Claude ProviderConfig `mapstructure:"claude"`
	Gemini ProviderConfig `mapstructure:"gemini"`
	OpenAI ProviderConfig `mapstructure:"openai"`
}

// ProviderFor returns the settings of the named provider.
func (a AIConfig) ProviderFor(name string) ProviderConfig {
	switch name {
	case "claude":
		return a.Claude
	case "gemini":
		return a.Gemini
	case "openai":
		return a.OpenAI
	default:
		return ProviderConfig{}
	}
}

// Timeout returns the HTTP client timeout, defaulting to two minutes.
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(p.TimeoutSecs) * time.Second
}

// CatalogConfig points at optional overrides for the built-in case types
// and templates.
type CatalogConfig struct {
	CaseTypesPath string `mapstructure:"case_types_path"`
	TemplatesDir  string `mapstructure:"templates_dir"`
}

// PipelineConfig bounds the background pipeline stages.
type PipelineConfig struct {
	ExtractionTimeoutSecs int `mapstructure:"extraction_timeout_secs"`
	GenerationTimeoutSecs int `mapstructure:"generation_timeout_secs"`
}

// ExtractionTimeout returns the background extraction deadline.
func (p PipelineConfig) ExtractionTimeout() time.Duration {
	return time.Duration(p.ExtractionTimeoutSecs) * time.Second
}

// GenerationTimeout bounds one synchronous generation or edit.
func (p PipelineConfig) GenerationTimeout() time.Duration {
	return time.Duration(p.GenerationTimeoutSecs) * time.Second
}

// WorkerConfig holds stale-stage worker settings.
type WorkerConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	StaleAfterSecs   int `mapstructure:"stale_after_secs"`
	BatchSize        int `mapstructure:"batch_size"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// Load reads configuration from environment variables with the NOTARIA_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "notaria")
	v.SetDefault("db.password", "notaria_secret")
	v.SetDefault("db.name", "notaria_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.max_lifetime", 30*time.Minute)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "notaria")
	v.SetDefault("jwt.access_expiry", "15m")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "notaria-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)

	// AI defaults
	v.SetDefault("ai.default_provider", "claude")
	v.SetDefault("ai.max_tokens", 8192)
	v.SetDefault("ai.analyze_images", false)
	v.SetDefault("ai.fallback_enabled", false)
	for _, p := range []struct{ name, model string }{
		{"claude", "claude-sonnet-4-20250514"},
		{"gemini", "gemini-2.0-flash"},
		{"openai", "gpt-4o"},
	} {
		v.SetDefault("ai."+p.name+".api_key", "")
		v.SetDefault("ai."+p.name+".model", p.model)
		v.SetDefault("ai."+p.name+".timeout_secs", 120)
		v.SetDefault("ai."+p.name+".endpoint", "")
	}

	// Catalog defaults (empty = built-in)
	v.SetDefault("catalog.case_types_path", "")
	v.SetDefault("catalog.templates_dir", "")

	// Pipeline defaults
	v.SetDefault("pipeline.extraction_timeout_secs", 300)
	v.SetDefault("pipeline.generation_timeout_secs", 180)

	// Worker defaults
	v.SetDefault("worker.poll_interval_secs", 60)
	v.SetDefault("worker.stale_after_secs", 900)
	v.SetDefault("worker.batch_size", 50)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@notaria.mx")
	v.SetDefault("email.from_name", "Notaría")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Bind environment variables explicitly for nested keys
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key, envName(key))
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if NOTARIA_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv(envName("server.port")) == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),

		MaxLifetime: v.GetDuration("db.max_lifetime"),
	}
	cfg.JWT = JWTConfig{
		Secret:            v.GetString("jwt.secret"),
		Issuer:            v.GetString("jwt.issuer"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}

	cfg.AI = AIConfig{
		DefaultProvider: strings.ToLower(v.GetString("ai.default_provider")),
		MaxTokens:       v.GetInt("ai.max_tokens"),
		AnalyzeImages:   v.GetBool("ai.analyze_images"),
		FallbackEnabled: v.GetBool("ai.fallback_enabled"),
		Claude:          providerConfig(v, "claude"),
		Gemini:          providerConfig(v, "gemini"),
		OpenAI:          providerConfig(v, "openai"),
	}

	cfg.Catalog = CatalogConfig{
		CaseTypesPath: v.GetString("catalog.case_types_path"),
		TemplatesDir:  v.GetString("catalog.templates_dir"),
	}
	cfg.Pipeline = PipelineConfig{
		ExtractionTimeoutSecs: v.GetInt("pipeline.extraction_timeout_secs"),
		GenerationTimeoutSecs: v.GetInt("pipeline.generation_timeout_secs"),
	}
	cfg.Worker = WorkerConfig{
		PollIntervalSecs: v.GetInt("worker.poll_interval_secs"),
		StaleAfterSecs:   v.GetInt("worker.stale_after_secs"),
		BatchSize:        v.GetInt("worker.batch_size"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func providerConfig(v *viper.Viper, name string) ProviderConfig {
	prefix := "ai." + name + "."
	return ProviderConfig{
		APIKey:      v.GetString(prefix + "api_key"),
		Model:       v.GetString(prefix + "model"),
		TimeoutSecs: v.GetInt(prefix + "timeout_secs"),
		Endpoint:    v.GetString(prefix + "endpoint"),
	}
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (c *Config) validate() error {
	switch c.AI.DefaultProvider {
	case "claude", "gemini", "openai":
	default:
		return fmt.Errorf("config: unknown ai.default_provider %q", c.AI.DefaultProvider)
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("config: ai.max_tokens must be positive")
	}
	if c.Pipeline.ExtractionTimeoutSecs <= 0 {
		return fmt.Errorf("config: pipeline.extraction_timeout_secs must be positive")
	}
	return nil
}
