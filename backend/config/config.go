package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string
	JWTSecret  string
	TokenTTL   time.Duration
	ServerPort string
	LogMode    string

	// StorageBackend selects where progress snapshots live:
	// database, file, redis or memory.
	StorageBackend string
	StorageDir     string
	RedisAddr      string
	RedisPrefix    string

	// Timezone is the IANA zone used to decide the learner's calendar day.
	Timezone string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	ttlHours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "72"))
	if err != nil || ttlHours <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS %q", os.Getenv("TOKEN_TTL_HOURS"))
	}

	cfg := &Config{
		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "learning_progress"),
		SQLitePath:     getEnv("SQLITE_PATH", "data/progress.db"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		TokenTTL:       time.Duration(ttlHours) * time.Hour,
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogMode:        getEnv("LOG_MODE", "development"),
		StorageBackend: getEnv("STORAGE_BACKEND", "database"),
		StorageDir:     getEnv("STORAGE_DIR", "data/progress"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPrefix:    getEnv("REDIS_PREFIX", "progress:"),
		Timezone:       getEnv("TIMEZONE", "UTC"),
	}

	switch cfg.StorageBackend {
	case "database", "file", "redis", "memory":
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// Location resolves Timezone, falling back to UTC when the name is unknown.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
