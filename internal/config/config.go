// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database selection, rate limiting,
// observability and the external collaborators (AI, chain, storage, events).
//
// Collaborator settings are not validated by Load. They are checked where
// they are used, and a missing value yields an error wrapping ErrMissingConfig.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "rehab-rewards-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects the relational store.
type DBConfig struct {
	Driver string // DB_DRIVER: sqlite|postgres
	Path   string // DB_PATH (sqlite)
	URL    string // DATABASE_URL (postgres)
}

// GeminiConfig configures the generative-AI collaborator.
type GeminiConfig struct {
	APIKey     string        // GEMINI_API_KEY
	BaseURL    string        // GEMINI_BASE_URL
	TextModel  string        // GEMINI_TEXT_MODEL (video analysis)
	ImageModel string        // GEMINI_IMAGE_MODEL (achievement images)
	RetryBase  time.Duration // ANALYSIS_RETRY_BASE, first 429 backoff
}

// ChainConfig configures the mint collaborator.
type ChainConfig struct {
	RPCURL          string // CHAIN_RPC_URL; empty selects the local ledger
	ChainID         int64  // CHAIN_ID (80002 = Polygon Amoy)
	AdminPrivateKey string // ADMIN_PRIVATE_KEY (hex)
	ContractAddress string // NFT_CONTRACT_ADDRESS
	ExplorerBaseURL string // EXPLORER_BASE_URL
	TestWallet      string // TEST_WALLET_ADDRESS, recipient override for demos
	LedgerPath      string // LEDGER_PATH (goleveldb directory)
}

// AssetConfig selects where generated images are written.
type AssetConfig struct {
	Store         string // ASSET_STORE: local|s3
	Dir           string // ASSET_DIR (local)
	Bucket        string // S3_BUCKET
	S3BaseURL     string // S3_PUBLIC_BASE_URL; empty uses the bucket endpoint
	PublicBaseURL string // PUBLIC_BASE_URL, prefix of returned image URLs
}

// KafkaConfig configures the minted-event publisher. No brokers disables it.
type KafkaConfig struct {
	Brokers []string // KAFKA_BROKERS (CSV)
	Topic   string   // KAFKA_TOPIC
}

// AuthConfig configures bearer tokens.
type AuthConfig struct {
	JWTSecret string        // JWT_SECRET
	TokenTTL  time.Duration // JWT_TTL
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // mints and video analysis can take a minute
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Store
	DB DBConfig

	// Collaborators
	Gemini GeminiConfig
	Chain  ChainConfig
	Assets AssetConfig
	Kafka  KafkaConfig
	Auth   AuthConfig

	// ProvisionBucket is the time window folded into provisioning keys.
	ProvisionBucket time.Duration

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// CollabRPS and CollabBurst bound the routes that call the AI and chain
	// collaborators, per account.
	CollabRPS   float64
	CollabBurst int

	// Request bodies
	MaxBodyBytes  int64 // default cap
	MaxVideoBytes int64 // cap for /analyze-video (base64 video in JSON)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 120*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// Store
		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "app.db"),
			URL:    getenv("DATABASE_URL", ""),
		},

		// Collaborators
		Gemini: GeminiConfig{
			APIKey:     getenv("GEMINI_API_KEY", ""),
			BaseURL:    getenv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			TextModel:  getenv("GEMINI_TEXT_MODEL", "gemini-2.0-flash"),
			ImageModel: getenv("GEMINI_IMAGE_MODEL", "gemini-2.0-flash-preview-image-generation"),
			RetryBase:  getdur("ANALYSIS_RETRY_BASE", time.Second),
		},
		Chain: ChainConfig{
			RPCURL:          getenv("CHAIN_RPC_URL", ""),
			ChainID:         int64(getint("CHAIN_ID", 80002)),
			AdminPrivateKey: getenv("ADMIN_PRIVATE_KEY", ""),
			ContractAddress: getenv("NFT_CONTRACT_ADDRESS", ""),
			ExplorerBaseURL: strings.TrimRight(getenv("EXPLORER_BASE_URL", "https://amoy.polygonscan.com"), "/"),
			TestWallet:      getenv("TEST_WALLET_ADDRESS", ""),
			LedgerPath:      getenv("LEDGER_PATH", "data/ledger"),
		},
		Assets: AssetConfig{
			Store:         strings.ToLower(getenv("ASSET_STORE", "local")),
			Dir:           getenv("ASSET_DIR", "public"),
			Bucket:        getenv("S3_BUCKET", ""),
			S3BaseURL:     strings.TrimRight(getenv("S3_PUBLIC_BASE_URL", ""), "/"),
			PublicBaseURL: strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		},
		Kafka: KafkaConfig{
			Brokers: splitCSV(getenv("KAFKA_BROKERS", "")),
			Topic:   getenv("KAFKA_TOPIC", "nft.minted"),
		},
		Auth: AuthConfig{
			JWTSecret: getenv("JWT_SECRET", ""),
			TokenTTL:  getdur("JWT_TTL", 24*time.Hour),
		},
		ProvisionBucket: getdur("PROVISION_BUCKET", 10*time.Minute),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CollabRPS:   getfloat("COLLAB_RATE_RPS", 0.5),
		CollabBurst: getint("COLLAB_RATE_BURST", 3),

		// Request bodies
		MaxBodyBytes:  int64(getint("MAX_BODY_BYTES", 1<<20)),
		MaxVideoBytes: int64(getint("MAX_VIDEO_BYTES", 50<<20)),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "rehab-rewards-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return cfg, errors.New("DATABASE_URL must be set when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	switch cfg.Assets.Store {
	case "local", "s3":
	default:
		return cfg, errors.New("ASSET_STORE must be one of: local, s3")
	}
	if cfg.Gemini.RetryBase <= 0 {
		return cfg, errors.New("ANALYSIS_RETRY_BASE must be > 0")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return cfg, errors.New("JWT_TTL must be > 0")
	}
	if cfg.ProvisionBucket <= 0 {
		return cfg, errors.New("PROVISION_BUCKET must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.CollabRPS < 0 {
		return cfg, errors.New("COLLAB_RATE_RPS must be >= 0")
	}
	if cfg.CollabBurst < 1 {
		return cfg, errors.New("COLLAB_RATE_BURST must be >= 1")
	}
	if cfg.MaxBodyBytes <= 0 || cfg.MaxVideoBytes <= 0 {
		return cfg, errors.New("MAX_BODY_BYTES and MAX_VIDEO_BYTES must be > 0")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	// if cfg.APIBasePath == "" || cfg.APIBasePath[0] != '/' {
	// 	return cfg, errors.New("API_BASE_PATH must start with '/'")
	// }

	return cfg, nil
}

// ErrMissingConfig reports a collaborator setting that is empty at the point
// of use.
var ErrMissingConfig = errors.New("missing configuration")

// Missing returns an error naming setting and wrapping ErrMissingConfig.
func Missing(setting string) error {
	return fmt.Errorf("%w: %s is not set", ErrMissingConfig, setting)
}

// RequireAdminMint checks the settings needed to sign mints with the admin key.
func (c ChainConfig) RequireAdminMint() error {
	switch {
	case strings.TrimSpace(c.RPCURL) == "":
		return Missing("CHAIN_RPC_URL")
	case strings.TrimSpace(c.AdminPrivateKey) == "":
		return Missing("ADMIN_PRIVATE_KEY")
	case strings.TrimSpace(c.ContractAddress) == "":
		return Missing("NFT_CONTRACT_ADDRESS")
	}
	return nil
}

// RequireBroadcast checks the settings needed to relay a wallet-signed mint.
func (c ChainConfig) RequireBroadcast() error {
	switch {
	case strings.TrimSpace(c.RPCURL) == "":
		return Missing("CHAIN_RPC_URL")
	case strings.TrimSpace(c.ContractAddress) == "":
		return Missing("NFT_CONTRACT_ADDRESS")
	}
	return nil
}

// UseLedger reports whether mints go to the local development ledger.
func (c ChainConfig) UseLedger() bool { return strings.TrimSpace(c.RPCURL) == "" }

// TxURL returns the explorer link for a transaction hash.
func (c ChainConfig) TxURL(hash string) string { return c.ExplorerBaseURL + "/tx/" + hash }

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
