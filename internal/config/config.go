package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                     string
	AllowedOrigin            string
	DatabaseURL              string
	RedisAddr                string
	RedisPassword            string
	RedisDB                  int
	StatementCacheTTLSeconds int
	AuthSecret               string
	AccessTokenTTLMinutes    int
	LogLevel                 string
	LogFormat                string
	SheetSyncURL             string
	SheetSyncUsername        string
	SheetSyncPassword        string
	SheetSyncTimeoutSeconds  int
	AllowRegistration        bool
}

// Load reads the environment, after merging a .env file from the working directory when
// one exists. Variables already set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := Config{
		Port:                     getEnv("PORT", "8080"),
		AllowedOrigin:            getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:                  redisDB,
		StatementCacheTTLSeconds: positiveInt("STATEMENT_CACHE_TTL_SECONDS", 60),
		AuthSecret:               strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes:    positiveInt("ACCESS_TOKEN_TTL_MINUTES", 480),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFormat:                getEnv("LOG_FORMAT", "json"),
		SheetSyncURL:             strings.TrimSpace(os.Getenv("SHEET_SYNC_URL")),
		SheetSyncUsername:        os.Getenv("SHEET_SYNC_USERNAME"),
		SheetSyncPassword:        os.Getenv("SHEET_SYNC_PASSWORD"),
		SheetSyncTimeoutSeconds:  positiveInt("SHEET_SYNC_TIMEOUT_SECONDS", 15),
		AllowRegistration:        getBool("ALLOW_REGISTRATION", true),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func positiveInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	val, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return val
}
