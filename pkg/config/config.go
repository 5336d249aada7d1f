package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string

	DatabaseURL string

	JWTSecret string
	JWTExpiry int64
	JWTIssuer string

	StorageBucket          string
	StorageCredentialsPath string
	UploadURLExpiry        time.Duration
	ViewURLExpiry          time.Duration

	OpenAIApiKey string
	OpenAIModel  string

	EbayClientID     string
	EbayClientSecret string
	EbayMarketplace  string
	EbayEnv          string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string

	SSEHeartbeat time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/dormdrop?sslmode=disable"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry: getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours
		JWTIssuer: getEnv("JWT_ISSUER", "dormdrop"),

		StorageBucket:          getEnv("STORAGE_BUCKET", "dormdrop-listing-images"),
		StorageCredentialsPath: getEnv("STORAGE_CREDENTIALS_PATH", ""),
		UploadURLExpiry:        getEnvAsDuration("UPLOAD_URL_EXPIRY", 5*time.Minute),
		ViewURLExpiry:          getEnvAsDuration("VIEW_URL_EXPIRY", time.Hour),

		OpenAIApiKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		EbayClientID:     getEnv("EBAY_CLIENT_ID", ""),
		EbayClientSecret: getEnv("EBAY_CLIENT_SECRET", ""),
		EbayMarketplace:  getEnv("EBAY_MARKETPLACE_ID", "EBAY_US"),
		EbayEnv:          getEnv("EBAY_ENV", "production"),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "no-reply@dormdrop.app"),

		SSEHeartbeat: getEnvAsDuration("SSE_HEARTBEAT", 25*time.Second),
	}

	return config, nil
}

// JWTExpiryDuration converts the configured expiry seconds to a Duration.
func (c *Config) JWTExpiryDuration() time.Duration {
	return time.Duration(c.JWTExpiry) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
