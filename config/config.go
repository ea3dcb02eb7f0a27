package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AppMode       string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	JWTSecret     string
	JWTExpiryMin  int
	RedisHost     string
	RedisPort     string
	RedisPassword string

	AdminEmail        string
	AdminPasswordHash string
	CompanyEmail      string
	CompanyName       string

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SenderMail string

	Chat     ChatConfig
	Presence PresenceConfig
	Upload   UploadConfig
}

// ChatConfig holds the message-log tunables.
type ChatConfig struct {
	MaxMessageLength int
}

// PresenceConfig keeps the heartbeat interval and staleness window
// independently tunable. The defaults (20s / 60s) let a presence survive
// one to two missed beats before observers treat it as offline.
type PresenceConfig struct {
	HeartbeatInterval time.Duration
	StalenessWindow   time.Duration
	ReevalInterval    time.Duration
}

type UploadConfig struct {
	MaxBytes  int64
	Providers []S3ProviderConfig
}

// S3ProviderConfig configures one entry of the upload fallback chain.
// Providers are tried in the order they appear in UploadConfig.Providers.
type S3ProviderConfig struct {
	Name       string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	PublicBase string
	PresignTTL time.Duration
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		AppMode:       getEnv("APP_MODE", "debug"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "storefront_chat"),
		DBPort:        getEnv("DB_PORT", "5432"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		JWTExpiryMin:  getEnvAsInt("JWT_EXPIRY_MIN", 60),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		AdminEmail:        getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		CompanyEmail:      getEnv("COMPANY_EMAIL", "support@example.com"),
		CompanyName:       getEnv("COMPANY_NAME", "Storefront"),

		SMTPHost:   getEnv("SMTP_HOST", "localhost"),
		SMTPPort:   getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:   getEnv("SMTP_USER", ""),
		SMTPPass:   getEnv("SMTP_PASS", ""),
		SenderMail: getEnv("SENDER_MAIL", "no-reply@example.com"),

		Chat: ChatConfig{
			MaxMessageLength: getEnvAsInt("CHAT_MAX_MESSAGE_LENGTH", 2000),
		},
		Presence: PresenceConfig{
			HeartbeatInterval: time.Duration(getEnvAsInt("PRESENCE_HEARTBEAT_SEC", 20)) * time.Second,
			StalenessWindow:   time.Duration(getEnvAsInt("PRESENCE_STALENESS_SEC", 60)) * time.Second,
			ReevalInterval:    time.Duration(getEnvAsInt("PRESENCE_REEVAL_SEC", 5)) * time.Second,
		},
		Upload: UploadConfig{
			MaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10*1024*1024)),
		},
	}

	// Primary provider plus an optional secondary bucket tried when the
	// primary is unreachable.
	primary := S3ProviderConfig{
		Name:       getEnv("S3_NAME", "primary"),
		Region:     getEnv("S3_REGION", "us-east-1"),
		Bucket:     getEnv("S3_BUCKET", ""),
		AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		SecretKey:  getEnv("S3_SECRET_KEY", ""),
		Endpoint:   getEnv("S3_ENDPOINT", ""),
		PublicBase: getEnv("S3_PUBLIC_BASE", ""),
		PresignTTL: time.Duration(getEnvAsInt("S3_PRESIGN_TTL_MIN", 7*24*60)) * time.Minute,
	}
	cfg.Upload.Providers = append(cfg.Upload.Providers, primary)

	if fallbackBucket := getEnv("S3_FALLBACK_BUCKET", ""); fallbackBucket != "" {
		cfg.Upload.Providers = append(cfg.Upload.Providers, S3ProviderConfig{
			Name:       getEnv("S3_FALLBACK_NAME", "fallback"),
			Region:     getEnv("S3_FALLBACK_REGION", primary.Region),
			Bucket:     fallbackBucket,
			AccessKey:  getEnv("S3_FALLBACK_ACCESS_KEY", primary.AccessKey),
			SecretKey:  getEnv("S3_FALLBACK_SECRET_KEY", primary.SecretKey),
			Endpoint:   getEnv("S3_FALLBACK_ENDPOINT", ""),
			PublicBase: getEnv("S3_FALLBACK_PUBLIC_BASE", ""),
			PresignTTL: primary.PresignTTL,
		})
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
