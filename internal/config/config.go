package config

import (
	"fmt"     // For DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort           string        // Application port
	DBDriver          string        // Database driver: mysql, postgres or sqlite
	DBUser            string        // Database user
	DBPassword        string        // Database password
	DBHost            string        // Database host
	DBPort            string        // Database port
	DBName            string        // Database name
	DBPath            string        // SQLite file path or DSN
	DBSlowThreshold   time.Duration // Queries slower than this are logged
	JWTSecret         string        // JWT secret key
	JWTTTL            time.Duration // Access token lifetime
	RedisAddr         string        // Redis server address, empty disables caching
	RedisPass         string        // Redis password
	RedisDB           int           // Redis database number
	CacheTTL          time.Duration // Lifetime of cached list pages
	PageSize          int           // Default page size for list endpoints
	IsProd            bool          // Is production environment
	TrustedProxies    []string      // Proxies gin trusts for client IPs
	SuperuserUsername string        // Superuser seeded by the migrate command
	SuperuserEmail    string        // Email of the seeded superuser
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:           envOr("APP_PORT", "8080"),
		DBDriver:          envOr("DB_DRIVER", "mysql"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBHost:            envOr("DB_HOST", "127.0.0.1"),
		DBPort:            os.Getenv("DB_PORT"),
		DBName:            os.Getenv("DB_NAME"),
		DBPath:            envOr("DB_PATH", "yamdb.sqlite3"),
		DBSlowThreshold:   time.Duration(envInt("DB_SLOW_THRESHOLD_MS", 500)) * time.Millisecond,
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTTTL:            time.Duration(envInt("JWT_TTL_HOURS", 24)) * time.Hour,
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPass:         os.Getenv("REDIS_PASS"),
		RedisDB:           envInt("REDIS_DB", 0),
		CacheTTL:          time.Duration(envInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		PageSize:          envInt("PAGE_SIZE", 10),
		IsProd:            os.Getenv("IS_PROD") == "true",
		TrustedProxies:    envList("TRUSTED_PROXIES", []string{"127.0.0.1"}),
		SuperuserUsername: os.Getenv("SUPERUSER_USERNAME"),
		SuperuserEmail:    os.Getenv("SUPERUSER_EMAIL"),
	}
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port)
	case "sqlite":
		return c.DBPath
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
