package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "INSIGHT"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Payments  PaymentsConfig  `yaml:"payments" envconfig:"PAYMENTS"`
	History   HistoryConfig   `yaml:"history" envconfig:"HISTORY"`
	Database  DatabaseConfig  `yaml:"database" envconfig:"DATABASE"`
	Sheets    SheetsConfig    `yaml:"sheets" envconfig:"SHEETS"`
	Renderer  RendererConfig  `yaml:"renderer" envconfig:"RENDERER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"45s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"40"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/insightd.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// AnalysisConfig bounds a single upload analysis.
type AnalysisConfig struct {
	Timeout        time.Duration `yaml:"timeout" envconfig:"ANALYSIS_TIMEOUT" default:"25s"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"20971520"`
	SessionTTL     time.Duration `yaml:"session_ttl" envconfig:"SESSION_TTL" default:"2h"`
	CSVBOM         bool          `yaml:"csv_bom" envconfig:"CSV_BOM" default:"false"`
}

// StorageConfig points at the Supabase storage bucket receiving artifacts.
// Storage is optional; Enabled reports whether it is configured.
type StorageConfig struct {
	URL               string `yaml:"url" envconfig:"SUPABASE_URL"`
	ServiceRoleKey    string `yaml:"service_role_key" envconfig:"SUPABASE_SERVICE_ROLE_KEY"`
	Bucket            string `yaml:"bucket" envconfig:"SUPABASE_BUCKET"`
	SignedURLTTLSecs  int    `yaml:"signed_url_ttl_seconds" envconfig:"SUPABASE_SIGNED_URL_TTL_SECONDS" default:"7200"`
	ClientTimeoutSecs int    `yaml:"client_timeout_seconds" envconfig:"STORAGE_CLIENT_TIMEOUT_SECONDS" default:"25"`
}

// Enabled reports whether all storage credentials are present.
func (s StorageConfig) Enabled() bool {
	return s.URL != "" && s.ServiceRoleKey != "" && s.Bucket != ""
}

// SignedURLTTL returns the signed upload URL lifetime.
func (s StorageConfig) SignedURLTTL() time.Duration {
	return time.Duration(s.SignedURLTTLSecs) * time.Second
}

// ClientTimeout bounds one storage call.
func (s StorageConfig) ClientTimeout() time.Duration {
	return time.Duration(s.ClientTimeoutSecs) * time.Second
}

// PaymentsConfig configures the Stripe checkout flow.
type PaymentsConfig struct {
	SecretKey   string `yaml:"secret_key" envconfig:"STRIPE_SECRET_KEY"`
	APIBase     string `yaml:"api_base" envconfig:"STRIPE_API_BASE" default:"https://api.stripe.com"`
	AmountCents int64  `yaml:"amount_cents" envconfig:"PRICE_CENTS" default:"500"`
	Currency    string `yaml:"currency" envconfig:"CURRENCY" default:"usd"`
	ProductName string `yaml:"product_name" envconfig:"PRODUCT_NAME" default:"Single Upload Analysis"`
}

// Enabled reports whether a Stripe secret key is configured.
func (p PaymentsConfig) Enabled() bool {
	return p.SecretKey != ""
}

// HistoryConfig holds the Basic-auth credentials guarding history export.
// PasswordHash, when set, is a bcrypt hash and takes precedence over Password.
type HistoryConfig struct {
	Username     string `yaml:"username" envconfig:"HISTORY_USERNAME"`
	Password     string `yaml:"password" envconfig:"HISTORY_PASSWORD"`
	PasswordHash string `yaml:"password_hash" envconfig:"HISTORY_PASSWORD_HASH"`
}

// Enabled reports whether history credentials are configured.
func (h HistoryConfig) Enabled() bool {
	return h.Username != "" && (h.Password != "" || h.PasswordHash != "")
}

// DatabaseConfig selects the transaction log backend.
type DatabaseConfig struct {
	Backend string `yaml:"backend" envconfig:"TRANSACTION_LOG" default:"sqlite"`
	DSN     string `yaml:"dsn" envconfig:"SQLITE_DSN" default:"data/transactions.db"`
}

// SheetsConfig enables mirroring transaction changes to a Google Sheet.
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id" envconfig:"SHEETS_SPREADSHEET_ID"`
	Range           string `yaml:"range" envconfig:"SHEETS_RANGE" default:"History!A:J"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
}

// Enabled reports whether a spreadsheet is configured.
func (s SheetsConfig) Enabled() bool {
	return s.SpreadsheetID != ""
}

// RendererConfig controls dashboard PDF printing through headless Chrome.
type RendererConfig struct {
	PDFEnabled bool          `yaml:"pdf_enabled" envconfig:"PDF_ENABLED" default:"true"`
	ChromePath string        `yaml:"chrome_path" envconfig:"CHROME_PATH"`
	PDFTimeout time.Duration `yaml:"pdf_timeout" envconfig:"PDF_TIMEOUT" default:"20s"`
}

// TelemetryConfig controls OpenTelemetry exporters.
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" default:"insightdesk-api"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"production"`
	TraceStdout    bool    `yaml:"trace_stdout" envconfig:"TRACE_STDOUT" default:"false"`
	TraceSampling  float64 `yaml:"trace_sampling" envconfig:"TRACE_SAMPLING" default:"1"`
	MetricsEnabled bool    `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// Load loads configuration from environment variables and config file.
//
// Every field is read from INSIGHT_<SECTION>_<NAME> first and falls back to
// the bare <NAME>, so PORT, SUPABASE_URL, STRIPE_SECRET_KEY and friends work
// unprefixed.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs fills credentials and endpoints missing from the environment
// with values from the file. Env takes precedence.
func mergeConfigs(fileConfig, envConfig Config) Config {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}

	fill(&envConfig.Storage.URL, fileConfig.Storage.URL)
	fill(&envConfig.Storage.ServiceRoleKey, fileConfig.Storage.ServiceRoleKey)
	fill(&envConfig.Storage.Bucket, fileConfig.Storage.Bucket)
	fill(&envConfig.Payments.SecretKey, fileConfig.Payments.SecretKey)
	fill(&envConfig.History.Username, fileConfig.History.Username)
	fill(&envConfig.History.Password, fileConfig.History.Password)
	fill(&envConfig.History.PasswordHash, fileConfig.History.PasswordHash)
	fill(&envConfig.Sheets.SpreadsheetID, fileConfig.Sheets.SpreadsheetID)
	fill(&envConfig.Sheets.CredentialsFile, fileConfig.Sheets.CredentialsFile)
	fill(&envConfig.Renderer.ChromePath, fileConfig.Renderer.ChromePath)

	if os.Getenv(EnvPrefix+"_SERVER_PORT") == "" && os.Getenv("PORT") == "" && fileConfig.Server.Port != 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if len(fileConfig.Security.AllowedOrigins) > 0 &&
		os.Getenv(EnvPrefix+"_SECURITY_ALLOWED_ORIGINS") == "" && os.Getenv("ALLOWED_ORIGINS") == "" {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("analysis timeout must be positive")
	}

	if c.Analysis.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	origins := c.Security.AllowedOrigins[:0]
	for _, o := range c.Security.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.Security.AllowedOrigins = origins
	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	partial := c.Storage.URL != "" || c.Storage.ServiceRoleKey != "" || c.Storage.Bucket != ""
	if partial && !c.Storage.Enabled() {
		return fmt.Errorf("storage requires SUPABASE_URL, SUPABASE_SERVICE_ROLE_KEY and SUPABASE_BUCKET together")
	}
	c.Storage.URL = strings.TrimRight(c.Storage.URL, "/")

	if c.Storage.SignedURLTTLSecs <= 0 {
		return fmt.Errorf("signed url ttl must be positive")
	}

	if c.Payments.AmountCents <= 0 {
		return fmt.Errorf("payment amount must be positive")
	}

	switch c.Database.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown transaction log backend: %q", c.Database.Backend)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/insightd.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			MaxBodyBytes:    1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  45 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"*"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/insightd.log",
		},
		Analysis: AnalysisConfig{
			Timeout:        25 * time.Second,
			MaxUploadBytes: 20 << 20,
			SessionTTL:     2 * time.Hour,
		},
		Storage: StorageConfig{
			SignedURLTTLSecs:  7200,
			ClientTimeoutSecs: 25,
		},
		Payments: PaymentsConfig{
			APIBase:     "https://api.stripe.com",
			AmountCents: 500,
			Currency:    "usd",
			ProductName: "Single Upload Analysis",
		},
		Database: DatabaseConfig{
			Backend: "sqlite",
			DSN:     "data/transactions.db",
		},
		Sheets: SheetsConfig{
			Range: "History!A:J",
		},
		Renderer: RendererConfig{
			PDFEnabled: true,
			PDFTimeout: 20 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "insightdesk-api",
			Environment:    "production",
			TraceSampling:  1,
			MetricsEnabled: true,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
