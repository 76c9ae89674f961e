package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/TurnIfCode/backend-gogo/pkg/imageingest"
	"github.com/TurnIfCode/backend-gogo/pkg/live"
	"github.com/TurnIfCode/backend-gogo/pkg/logger"
	"github.com/TurnIfCode/backend-gogo/pkg/topup"
)

const devJWTSecret = "dev-insecure-secret-change"

type Config struct {
	Port         string
	Env          string
	DSN          string
	AutoMigrate  bool
	MaxOpenConns int
	MaxIdleConns int

	JWTSecret  []byte
	JWTTTL     time.Duration
	RefreshTTL time.Duration

	LogLevel  string
	LogFormat string

	BankMode          topup.BankMode
	BankName          string
	BankAccountNumber string

	Image         imageingest.Config
	IngestWorkers int

	LivePageSize  int
	AdminPassword string
}

// loadConfig reads ./.env (if present, without overriding the environment)
// and then the process environment.
func loadConfig() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnf("failed to read .env: %v", err)
	}
	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		secret = devJWTSecret
	}
	return Config{
		Port:         getEnv("APP_PORT", "8081"),
		Env:          getEnv("APP_ENV", "development"),
		DSN:          getEnv("DB_DSN", ""),
		AutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", true),
		MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret:  []byte(secret),
		JWTTTL:     time.Duration(getEnvAsInt("JWT_TTL_HOURS", 24)) * time.Hour,
		RefreshTTL: time.Duration(getEnvAsInt("REFRESH_TTL_DAYS", 30)) * 24 * time.Hour,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		BankMode:          topup.ParseBankMode(getEnv("TOPUP_BANK_MODE", string(topup.BankModeUpload))),
		BankName:          getEnv("BANK_NAME", ""),
		BankAccountNumber: getEnv("BANK_ACCOUNT_NUMBER", ""),

		Image: imageingest.Config{
			MaxEncodedLen:   getEnvAsInt("IMAGE_MAX_ENCODED_BYTES", imageingest.MaxEncodedLen),
			ResizeThreshold: getEnvAsInt("IMAGE_RESIZE_THRESHOLD_BYTES", imageingest.ResizeThreshold),
			TargetBytes:     getEnvAsInt("IMAGE_TARGET_BYTES", imageingest.TargetBytes),
			Quality:         imageingest.JPEGQuality,
		},
		IngestWorkers: getEnvAsInt("INGEST_WORKERS", 4),

		LivePageSize:  getEnvAsInt("LIVE_PAGE_SIZE", live.DefaultPageSize),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsBool(key string, fallback bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return fallback
}
