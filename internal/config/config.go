package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int

	ServerPort  string
	CORSOrigins []string

	JWTSecret    string
	TokenMaxAge  int // seconds
	CookieSecure bool

	// Empty disables the push pipeline.
	RedisURL    string
	PushWorkers int

	// Optional; enables push to native ios/android tokens.
	FCMProjectID   string
	FCMClientEmail string
	FCMPrivateKey  string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	DefaultAvatarKey string

	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	LogFormat string
}

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET is required")
	ErrMissingDBName    = errors.New("DB_NAME is required")
)

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found or error loading it, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("TOKEN_MAX_AGE", 15*24*60*60)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("PUSH_WORKERS", 2)
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	cfg := &Config{
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		DBSSLMode:      v.GetString("DB_SSLMODE"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),

		ServerPort:  v.GetString("SERVER_PORT"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),

		JWTSecret:    v.GetString("JWT_SECRET"),
		TokenMaxAge:  v.GetInt("TOKEN_MAX_AGE"),
		CookieSecure: v.GetBool("COOKIE_SECURE"),

		RedisURL:    v.GetString("REDIS_URL"),
		PushWorkers: v.GetInt("PUSH_WORKERS"),

		FCMProjectID:   v.GetString("FCM_PROJECT_ID"),
		FCMClientEmail: v.GetString("FCM_CLIENT_EMAIL"),
		FCMPrivateKey:  v.GetString("FCM_PRIVATE_KEY"),

		R2AccountID:       v.GetString("R2_ACCOUNT_ID"),
		R2AccessKeyID:     v.GetString("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: v.GetString("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      v.GetString("R2_BUCKET_NAME"),
		R2PublicURL:       v.GetString("R2_PUBLIC_URL"),

		DefaultAvatarKey: v.GetString("DEFAULT_AVATAR_KEY"),

		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}

	if cfg.TokenMaxAge <= 0 {
		cfg.TokenMaxAge = 15 * 24 * 60 * 60
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FCMEnabled reports whether all Firebase credentials are present.
func (c *Config) FCMEnabled() bool {
	return c.FCMProjectID != "" && c.FCMClientEmail != "" && c.FCMPrivateKey != ""
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.DBName == "" {
		return ErrMissingDBName
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
