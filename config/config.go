package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig      `envPrefix:"SERVER_"`
	Database    DatabaseConfig    `envPrefix:"DB_"`
	JWT         JWTConfig         `envPrefix:"JWT_"`
	OAuth       OAuthConfig       `envPrefix:"OAUTH_"`
	Cloudinary  CloudinaryConfig  `envPrefix:"CLOUDINARY_"`
	ObjectStore ObjectStoreConfig `envPrefix:"S3_"`
	Firebase    FirebaseConfig    `envPrefix:"FIREBASE_"`
	Admin       AdminConfig       `envPrefix:"ADMIN_"`
	RateLimit   RateLimitConfig   `envPrefix:"RATE_LIMIT_"`
}

type ServerConfig struct {
	Port           string        `env:"PORT" envDefault:"8099"`
	Env            string        `env:"ENV" envDefault:"development"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PublicURL      string        `env:"PUBLIC_URL" envDefault:"http://localhost:5173"`
}

type DatabaseConfig struct {
	DSN             string        `env:"DSN" envDefault:"digilinex:digilinex@tcp(localhost:3306)/digilinex?charset=utf8mb4&parseTime=True&loc=UTC"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

type JWTConfig struct {
	AccessSecret  string        `env:"ACCESS_SECRET" envDefault:"change-me-in-production"`
	RefreshSecret string        `env:"REFRESH_SECRET" envDefault:"change-me-refresh"`
	AccessExpiry  time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
	RefreshExpiry time.Duration `env:"REFRESH_EXPIRY" envDefault:"168h"`
	Issuer        string        `env:"ISSUER" envDefault:"digilinex"`
}

type OAuthConfig struct {
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`
}

type CloudinaryConfig struct {
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
	Folder    string `env:"FOLDER" envDefault:"digilinex"`
}

// ObjectStoreConfig points at an S3-compatible bucket holding database package files.
type ObjectStoreConfig struct {
	Endpoint     string        `env:"ENDPOINT"`
	Region       string        `env:"REGION" envDefault:"us-east-1"`
	Bucket       string        `env:"BUCKET"`
	AccessKey    string        `env:"ACCESS_KEY"`
	SecretKey    string        `env:"SECRET_KEY"`
	UsePathStyle bool          `env:"USE_PATH_STYLE" envDefault:"true"`
	PresignTTL   time.Duration `env:"PRESIGN_TTL" envDefault:"15m"`
}

type FirebaseConfig struct {
	CredentialsFile string `env:"CREDENTIALS_FILE"`
}

// AdminConfig seeds the first admin account on start.
type AdminConfig struct {
	Email    string `env:"EMAIL" envDefault:"admin@digilinex.com"`
	Username string `env:"USERNAME" envDefault:"admin"`
	Password string `env:"PASSWORD"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"RPS" envDefault:"10"`
	Burst             int     `env:"BURST" envDefault:"30"`
	AuthPerMinute     int     `env:"AUTH_PER_MINUTE" envDefault:"10"`
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if cfg.Database.DSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if cfg.IsProduction() && cfg.JWT.AccessSecret == "change-me-in-production" {
		return nil, errors.New("JWT_ACCESS_SECRET must be set in production")
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
