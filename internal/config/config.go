package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Server налаштування
	Port     string
	Host     string
	Env      string
	LogLevel string

	// Сховище: memory або mongo
	StoreDriver string
	SeedDemo    bool

	// MongoDB налаштування
	MongoURI     string
	DatabaseName string
	MongoTimeout int

	// JWT налаштування
	JWTSecret     string
	JWTExpiration int

	// HTTP
	AllowedOrigins    []string
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Портал
	DefaultLanguage  string
	MaxUploadMB      int
	AnalyticsCron    string
	NotifyWebhookURL string
}

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

func Load() *Config {
	// Завантажуємо змінні з .env файлу
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("Не вдалося завантажити .env файл: %v", err)
	}

	config := &Config{
		Port:              getEnv("PORT", "8080"),
		Host:              getEnv("HOST", "0.0.0.0"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StoreDriver:       getEnv("STORE_DRIVER", StoreMemory),
		SeedDemo:          getEnvAsBool("SEED_DEMO", true),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:      getEnv("DATABASE_NAME", "egov_portal"),
		MongoTimeout:      getEnvAsInt("MONGO_TIMEOUT", 10),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:     getEnvAsInt("JWT_EXPIRATION", 24), // години
		AllowedOrigins:    getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitEnabled:  getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow:   time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
		DefaultLanguage:   getEnv("DEFAULT_LANGUAGE", "en"),
		MaxUploadMB:       getEnvAsInt("MAX_UPLOAD_MB", 5),
		AnalyticsCron:     getEnv("ANALYTICS_CRON", "@every 5m"),
		NotifyWebhookURL:  getEnv("NOTIFY_WEBHOOK_URL", ""),
	}

	return config
}

// IsProduction - чи запущено в production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
