package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret      string
	JWTExpiry      time.Duration
	JWTNeverExpire bool // explicit opt-in: issued tokens carry no exp claim

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region            string
	S3Bucket            string
	S3AccessKey         string
	S3SecretKey         string
	S3Endpoint          string        // Optional: for S3-compatible services
	S3UploadURLExpiry   time.Duration // Presigned PUT expiry - default: 1 hour
	S3DownloadURLExpiry time.Duration // Presigned GET expiry - default: 10 minutes
	S3ListMaxKeys       int32         // Max objects returned per list - default: 1000, single page
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "NimbusVault"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "5000"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/nimbusvault.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret:      envRequired("JWT_SECRET"),
		JWTExpiry:      envDuration("JWT_EXPIRY", 24*time.Hour),
		JWTNeverExpire: envBool("JWT_NEVER_EXPIRE", false),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:            envRequired("S3_REGION"),
		S3Bucket:            envRequired("S3_BUCKET"),
		S3AccessKey:         envRequired("S3_ACCESS_KEY"),
		S3SecretKey:         envRequired("S3_SECRET_KEY"),
		S3Endpoint:          envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		S3UploadURLExpiry:   envDuration("S3_UPLOAD_URL_EXPIRY", 1*time.Hour),
		S3DownloadURLExpiry: envDuration("S3_DOWNLOAD_URL_EXPIRY", 10*time.Minute),
		S3ListMaxKeys:       int32(envInt("S3_LIST_MAX_KEYS", 1000)),
	}

	// A leaked never-expiring token stays valid until the signing secret rotates.
	if cfg.JWTNeverExpire {
		slog.Warn("JWT_NEVER_EXPIRE is enabled: issued tokens never expire and cannot be revoked",
			"hint", "rotate JWT_SECRET to invalidate all outstanding tokens")
	}

	return cfg
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
