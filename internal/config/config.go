package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"graphics-server/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageBackendS3    = "s3"
	StorageBackendMinio = "minio"
	StorageBackendNone  = "none"
)

var defaultCORSOrigins = []string{
	"http://localhost:5173",
	"https://graphics.bawebtech.com",
}

// Config holds the application configuration.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING"` // empty: console in development, json elsewhere
	LogOutput   string `envconfig:"LOG_OUTPUT"`   // comma-separated, stdout when empty
	LogSampling bool   `envconfig:"LOG_SAMPLING" default:"false"`
	ServerPort  string `envconfig:"SERVER_PORT" default:"5000"`

	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"5m"`
	AutoMigrate   bool          `envconfig:"AUTO_MIGRATE" default:"true"`
	// Secret: db_password or DB_PASSWORD.
	DBPassword string `ignored:"true"`

	// Secret: jwt_secret or JWT_SECRET.
	JWTSecret string `ignored:"true"`

	CORSOrigins string `envconfig:"CORS_ORIGINS"`

	// Secret: google_api_key, GOOGLE_API_KEY or GEMINI_API_KEY. Empty disables generation.
	GoogleAPIKey            string        `ignored:"true"`
	ImageModel              string        `envconfig:"GEMINI_IMAGE_MODEL" default:"gemini-3-pro-image-preview"`
	ImageSize               string        `envconfig:"GEMINI_IMAGE_SIZE" default:"1K"`
	GenerationRatePerSec    float64       `envconfig:"GEMINI_REQUESTS_PER_SECOND" default:"2"`
	GenerationBurst         int           `envconfig:"GEMINI_REQUESTS_BURST" default:"4"`
	GenerateRateLimit       uint          `envconfig:"GENERATE_RATE_LIMIT" default:"20"`
	GenerateRateLimitWindow time.Duration `envconfig:"GENERATE_RATE_WINDOW" default:"1m"`

	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"s3"`
	AWSRegion      string `envconfig:"AWS_REGION"`
	S3Bucket       string `envconfig:"AWS_S3_BUCKET"`
	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	// Secret: minio_secret_key or MINIO_SECRET_KEY.
	MinioSecretKey string `ignored:"true"`

	CFDomain     string        `envconfig:"CF_DOMAIN"`
	CFKeyPairID  string        `envconfig:"CF_KEY_PAIR_ID"`
	SignedURLTTL time.Duration `envconfig:"SIGNED_URL_TTL" default:"10m"`
	// Secret: cf_private_key or CF_PRIVATE_KEY_PEM.
	CFPrivateKeyPEM string `ignored:"true"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	// Secret: redis_password or REDIS_PASSWORD.
	RedisPassword string `ignored:"true"`

	RabbitMQURL      string `envconfig:"RABBITMQ_URL"`
	ImageEventsQueue string `envconfig:"IMAGE_EVENTS_QUEUE" default:"graphics_image_events"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// AllowedOrigins merges the default CORS origins with CORS_ORIGINS, without duplicates.
func (c *Config) AllowedOrigins() []string {
	seen := make(map[string]struct{})
	var origins []string
	add := func(origin string) {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			return
		}
		if _, ok := seen[origin]; ok {
			return
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	for _, o := range defaultCORSOrigins {
		add(o)
	}
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		add(o)
	}
	return origins
}

// GenerationConfigured reports whether an API key for the image model is present.
func (c *Config) GenerationConfigured() bool {
	return c.GoogleAPIKey != ""
}

// SigningConfigured reports whether CloudFront signing is fully configured.
func (c *Config) SigningConfigured() bool {
	return c.CFDomain != "" && c.CFKeyPairID != "" && c.CFPrivateKeyPEM != ""
}

// LoadConfig reads an optional env file, then the environment, then secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: could not load %s: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: error checking %s: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}
	applyFallbacks(&cfg)

	var err error
	if cfg.DBPassword, err = utils.ReadSecretOrEnv("db_password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("database password: %w", err)
	}
	if cfg.JWTSecret, err = utils.ReadSecretOrEnv("jwt_secret", "JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("jwt secret: %w", err)
	}

	optional := []struct {
		target *string
		secret string
		env    []string
	}{
		{&cfg.GoogleAPIKey, "google_api_key", []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}},
		{&cfg.CFPrivateKeyPEM, "cf_private_key", []string{"CF_PRIVATE_KEY_PEM"}},
		{&cfg.MinioSecretKey, "minio_secret_key", []string{"MINIO_SECRET_KEY"}},
		{&cfg.RedisPassword, "redis_password", []string{"REDIS_PASSWORD"}},
	}
	for _, o := range optional {
		v, err := utils.ReadSecretOrEnv(o.secret, o.env...)
		if err != nil && !errors.Is(err, utils.ErrSecretNotFound) {
			return nil, err
		}
		*o.target = v
	}
	cfg.CFPrivateKeyPEM = NormalizePEM(cfg.CFPrivateKeyPEM)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFallbacks(cfg *Config) {
	if cfg.AWSRegion == "" {
		cfg.AWSRegion = os.Getenv("AWS_DEFAULT_REGION")
	}
	if cfg.S3Bucket == "" {
		cfg.S3Bucket = os.Getenv("ARGUS_S3_BUCKET")
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case StorageBackendS3, StorageBackendMinio, StorageBackendNone:
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.StorageBackend == StorageBackendMinio && c.MinioEndpoint == "" {
		return errors.New("MINIO_ENDPOINT is required when STORAGE_BACKEND=minio")
	}
	if c.SignedURLTTL <= 0 {
		return errors.New("SIGNED_URL_TTL must be positive")
	}
	return nil
}

// NormalizePEM turns a single-line PEM with literal "\n" sequences into a multi-line one.
func NormalizePEM(raw string) string {
	if strings.Contains(raw, `\n`) && !strings.Contains(raw, "\n") {
		return strings.ReplaceAll(raw, `\n`, "\n")
	}
	return raw
}
