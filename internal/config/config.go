package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	OTP       OTPConfig
	Razorpay  RazorpayConfig
	Gemini    GeminiConfig
	OAuth     OAuthConfig
	Upload    UploadConfig
	Data      DataConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Security  SecurityConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
	BaseURL     string // public base URL, used in emails and OAuth redirects
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// RedisConfig holds Redis configuration for the AI checker rate limiter
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

// SMTPConfig holds outgoing mail configuration
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Mode     string // "dev" logs mail instead of sending
}

// OTPConfig holds OTP-related configuration for email login / password reset
type OTPConfig struct {
	ExpiryMinutes     int
	RateLimit         int
	RateWindowMinutes int
}

// RazorpayConfig holds Razorpay gateway credentials
type RazorpayConfig struct {
	KeyID     string
	KeySecret string // used for order auth and signature verification, never exposed
	BaseURL   string
}

// GeminiConfig holds the AI model endpoint configuration
type GeminiConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	TimeoutSeconds int
}

// OAuthConfig holds Google OAuth credentials
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// UploadConfig holds document upload configuration
type UploadConfig struct {
	Dir         string
	MaxFileSize int64 // bytes, per file
}

// DataConfig holds paths to bundled datasets
type DataConfig struct {
	VisaRequirementsCSV string // passport-index dataset, ISO2 codes
}

// RateLimitConfig holds AI checker rate limiting configuration
type RateLimitConfig struct {
	AIWindowRequests int // requests per short window per IP
	AIWindowMinutes  int
	AIDailyRequests  int // requests per day per IP
	AIMaxBodyBytes   int64
	AITimeoutSeconds int
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost       int
	EnableRequestLog bool
	EnableAuditLog   bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			TokenExpiry: time.Duration(getEnvAsInt("JWT_TOKEN_EXPIRY_HOURS", 168)) * time.Hour,
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "Axe Visa Technology <no-reply@axevisa.com>"),
			Mode:     getEnv("SMTP_MODE", "dev"),
		},
		OTP: OTPConfig{
			ExpiryMinutes:     getEnvAsInt("OTP_EXPIRY_MINUTES", 15),
			RateLimit:         getEnvAsInt("OTP_RATE_LIMIT", 3),
			RateWindowMinutes: getEnvAsInt("OTP_RATE_WINDOW_MINUTES", 15),
		},
		Razorpay: RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
			BaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			TimeoutSeconds: getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 25),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
		Upload: UploadConfig{
			Dir:         getEnv("UPLOAD_DIR", "uploads"),
			MaxFileSize: int64(getEnvAsInt("UPLOAD_MAX_FILE_SIZE_MB", 10)) * 1024 * 1024,
		},
		Data: DataConfig{
			VisaRequirementsCSV: getEnv("VISA_REQUIREMENTS_CSV", "data/passport-index-tidy-iso2.csv"),
		},
		RateLimit: RateLimitConfig{
			AIWindowRequests: getEnvAsInt("AI_RATE_LIMIT_REQUESTS", 5),
			AIWindowMinutes:  getEnvAsInt("AI_RATE_LIMIT_WINDOW_MINUTES", 15),
			AIDailyRequests:  getEnvAsInt("AI_RATE_LIMIT_DAILY", 10),
			AIMaxBodyBytes:   int64(getEnvAsInt("AI_MAX_BODY_KB", 100)) * 1024,
			AITimeoutSeconds: getEnvAsInt("AI_REQUEST_TIMEOUT_SECONDS", 30),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:       getEnvAsInt("BCRYPT_COST", 10),
			EnableRequestLog: getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
			EnableAuditLog:   getEnvAsBool("ENABLE_AUDIT_LOGGING", true),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	// External gateways only need real credentials outside development
	if c.Server.Environment == "production" {
		if c.Razorpay.KeyID == "" || c.Razorpay.KeySecret == "" {
			return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required in production")
		}

		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required in production")
		}

		if c.SMTP.Mode == "production" {
			if c.SMTP.Host == "" || c.SMTP.Username == "" || c.SMTP.Password == "" {
				return fmt.Errorf("SMTP_HOST, SMTP_USERNAME and SMTP_PASSWORD are required for production mail")
			}
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
