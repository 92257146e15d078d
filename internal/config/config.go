package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	Environment   string
	LogLevel      string

	DatabaseURL string
	DataDir     string

	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	ListCacheTTLSeconds int

	CompanyName      string
	CompanyAddress   string
	CompanyPhone     string
	BankTransferInfo string
}

func Load() Config {
	// A missing .env file is not an error; env vars win either way.
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTL, err := strconv.Atoi(getEnv("LIST_CACHE_TTL_SECONDS", "30"))
	if err != nil || cacheTTL < 1 {
		cacheTTL = 30
	}

	return Config{
		Port:                getEnv("PORT", "8080"),
		AllowedOrigin:       getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		Environment:         getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DataDir:             os.Getenv("DATA_DIR"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             redisDB,
		ListCacheTTLSeconds: cacheTTL,
		CompanyName:         getEnv("COMPANY_NAME", "Kaos Polos Studio"),
		CompanyAddress:      getEnv("COMPANY_ADDRESS", "Solo, Jawa Tengah"),
		CompanyPhone:        getEnv("COMPANY_PHONE", "-"),
		BankTransferInfo:    getEnv("BANK_TRANSFER_INFO", "Transfer ke rekening toko (hubungi admin)"),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
