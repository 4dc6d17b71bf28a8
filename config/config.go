package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	PublicURL string // base of links handed out for stored files
	JWTKey    string
	SaltRound int

	LogLevel  string
	LogFormat string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	FileURLExpiry  time.Duration

	EmailProvider   string // brevo or sendgrid
	EmailAPIKey     string // required for OTP delivery
	EmailAPIBaseURL string
	EmailSender     string
	EmailSenderName string

	OTPValidity time.Duration
}

// LoadConfig reads configuration from the environment, loading .env first when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	port := getEnv("PORT", "3000")
	cfg := &Config{
		Port:      port,
		PublicURL: strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:"+port), "/"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "nssc"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "candidate-documents"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		FileURLExpiry:  time.Duration(getEnvInt("FILE_URL_EXPIRY_MINUTES", 15)) * time.Minute,

		EmailProvider:   strings.ToLower(getEnv("EMAIL_PROVIDER", "brevo")),
		EmailAPIKey:     os.Getenv("EMAIL_API_KEY"),
		EmailAPIBaseURL: os.Getenv("EMAIL_API_BASE_URL"),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@nssc.com"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "NSSC"),

		OTPValidity: time.Duration(getEnvInt("OTP_VALIDITY_MINUTES", 10)) * time.Minute,
	}

	// Validate critical configuration
	if cfg.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if cfg.EmailAPIKey == "" {
		log.Println("Warning: EMAIL_API_KEY is not set. OTP emails will fail until it is configured.")
	}

	return cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return b
}
