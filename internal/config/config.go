package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Catalog   CatalogConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	Schema       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// StorageConfig selects where uploaded product images go
type StorageConfig struct {
	Backend         string // "gcs" or "local"
	Bucket          string
	CredentialsFile string
	PublicBaseURL   string
	LocalDir        string
}

type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
}

type CatalogConfig struct {
	SnapshotTTL       time.Duration
	UploadConcurrency int
	MaxUploadBytes    int64
}

// IsDevelopment reports whether the server runs outside production
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

func Load() *Config {
	// .env is optional; real environment variables always win.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("REDIS_ENABLED", true)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("STORAGE_BACKEND", "local")
	viper.SetDefault("STORAGE_LOCAL_DIR", "uploads")
	viper.SetDefault("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/uploads")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW", time.Minute)
	viper.SetDefault("CATALOG_SNAPSHOT_TTL", 5*time.Minute)
	viper.SetDefault("CATALOG_UPLOAD_CONCURRENCY", 4)
	viper.SetDefault("CATALOG_MAX_UPLOAD_BYTES", 32<<20)

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			Database:     viper.GetString("DB_DATABASE"),
			Schema:       viper.GetString("DB_SCHEMA"),
			SSLMode:      viper.GetString("DB_SSLMODE"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Storage: StorageConfig{
			Backend:         strings.ToLower(viper.GetString("STORAGE_BACKEND")),
			Bucket:          viper.GetString("STORAGE_BUCKET"),
			CredentialsFile: viper.GetString("STORAGE_CREDENTIALS_FILE"),
			PublicBaseURL:   strings.TrimRight(viper.GetString("STORAGE_PUBLIC_BASE_URL"), "/"),
			LocalDir:        viper.GetString("STORAGE_LOCAL_DIR"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Catalog: CatalogConfig{
			SnapshotTTL:       viper.GetDuration("CATALOG_SNAPSHOT_TTL"),
			UploadConcurrency: viper.GetInt("CATALOG_UPLOAD_CONCURRENCY"),
			MaxUploadBytes:    viper.GetInt64("CATALOG_MAX_UPLOAD_BYTES"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
