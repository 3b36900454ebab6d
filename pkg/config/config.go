package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Payout   PayoutConfig
	SMS      SMSConfig
	Email    EmailConfig
	Workflow WorkflowConfig
	Admin    AdminConfig
	LogLevel string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret   string
	TTLHours int
}

// StorageConfig selects R2 when all credentials are present, local disk otherwise.
type StorageConfig struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicBase string
	UploadDir  string
}

func (s StorageConfig) RemoteEnabled() bool {
	return s.AccountID != "" && s.AccessKey != "" && s.SecretKey != "" && s.Bucket != ""
}

type PayoutConfig struct {
	StripeSecretKey string
	Currency        string
}

type SMSConfig struct {
	AccountSID string
	AuthToken  string
	FromPhone  string
}

func (s SMSConfig) Enabled() bool {
	return s.AccountSID != "" && s.AuthToken != "" && s.FromPhone != ""
}

type EmailConfig struct {
	ResendAPIKey string
	From         string
}

type WorkflowConfig struct {
	RequireOTPBeforeOutcome bool
}

type AdminConfig struct {
	Email    string
	Password string
}

func Load() *Config {
	godotenv.Load() // optional .env

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", "change-me"),
			TTLHours: getEnvInt("JWT_TTL_HOURS", 24),
		},
		Storage: StorageConfig{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			Bucket:     getEnv("R2_BUCKET_NAME", ""),
			PublicBase: strings.TrimRight(getEnv("DOCUMENTS_PUBLIC_BASE", ""), "/"),
			UploadDir:  getEnv("UPLOAD_DIR", "uploads"),
		},
		Payout: PayoutConfig{
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:        strings.ToLower(getEnv("PAYOUT_CURRENCY", "eur")),
		},
		SMS: SMSConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromPhone:  getEnv("TWILIO_FROM_PHONE", ""),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "EstateDeal <noreply@estatedeal.app>"),
		},
		Workflow: WorkflowConfig{
			RequireOTPBeforeOutcome: getEnvBool("REQUIRE_OTP_BEFORE_OUTCOME", false),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}
