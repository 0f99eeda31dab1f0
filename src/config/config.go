package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config アプリケーション設定
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	S3        S3Config
	Auth      AuthConfig
	Assistant AssistantConfig
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port string
}

// LogConfig ログ設定
type LogConfig struct {
	Level     string
	Directory string
}

// DatabaseConfig データベース設定
type DatabaseConfig struct {
	// Driver is "postgres" or "memory".
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// S3Config オブジェクトストレージ設定
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	UseSSL          bool
}

// AuthConfig 認証設定
type AuthConfig struct {
	JWTSecret    string
	JWTExpiresIn time.Duration
	Username     string
	// PasswordHash is the bcrypt hash of the single user's password.
	PasswordHash string
}

// AssistantConfig アシスタント設定
type AssistantConfig struct {
	APIKey           string
	Model            string
	BaseURL          string
	TranscribeAPIKey string
	TranscribeURL    string
	TranscribeModel  string
}

// LoadConfig 環境変数から設定を読み込み
func LoadConfig() *Config {
	// .envがあれば読み込む（なければ環境変数のみ）
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Log: LogConfig{
			Level:     getEnv("LOG_LEVEL", "info"),
			Directory: getEnv("LOG_DIRECTORY", "logs"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getIntEnv("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "ria_board"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", "http://localhost:9000"), // MinIO用のデフォルト
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", "ria-board-documents"),
			UseSSL:          getBoolEnv("S3_USE_SSL", false),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			JWTExpiresIn: getDurationEnv("JWT_EXPIRES_IN", 24*time.Hour),
			Username:     getEnv("AUTH_USERNAME", "david"),
			PasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),
		},
		Assistant: AssistantConfig{
			APIKey:           getEnv("GEMINI_API_KEY", ""),
			Model:            getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			BaseURL:          getEnv("GEMINI_BASE_URL", ""),
			TranscribeAPIKey: getEnv("OPENAI_API_KEY", ""),
			TranscribeURL:    getEnv("TRANSCRIBE_BASE_URL", ""),
			TranscribeModel:  getEnv("TRANSCRIBE_MODEL", "whisper-1"),
		},
	}
}

// getEnv 環境変数を取得（デフォルト値付き）
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv 環境変数をintで取得
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getBoolEnv 環境変数をboolで取得
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv 環境変数をtime.Durationで取得
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
