package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Browser / scraping
	Headless       bool
	MaxPages       int
	MaxWorkers     int
	RequestTimeout time.Duration
	MinDelay       time.Duration
	MaxDelay       time.Duration
	MaxRetries     int

	// Date texts on the target sites are written in the operator's local
	// time. Parsed against this zone instead of mutating the process TZ.
	Timezone string

	// Storage
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Temporary listings live this long before the purge removes them.
	ListingTTL time.Duration

	// HTTP / auth
	HTTPAddr  string
	JWTSecret string
	JWTExpiry time.Duration

	CSVPath string
}

func DefaultConfig() *Config {
	return &Config{
		Headless:       true,
		MaxPages:       50,
		MaxWorkers:     3,
		RequestTimeout: 60 * time.Second,
		MinDelay:       400 * time.Millisecond,
		MaxDelay:       1200 * time.Millisecond,
		MaxRetries:     3,
		Timezone:       "Asia/Karachi",
		DBHost:         "localhost",
		DBPort:         5432,
		DBUser:         "postgres",
		DBPassword:     "postgres",
		DBName:         "car_scraper",
		DBSSLMode:      "disable",
		ListingTTL:     48 * time.Hour,
		HTTPAddr:       ":8080",
		JWTSecret:      "change_this_secret",
		JWTExpiry:      24 * time.Hour,
		CSVPath:        "output/listings.csv",
	}
}

// Load reads .env (when present) and environment overrides on top of the
// defaults.
func Load() *Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	envStr(&cfg.Timezone, "SCRAPER_TZ")
	envStr(&cfg.DBHost, "DB_HOST")
	envInt(&cfg.DBPort, "DB_PORT")
	envStr(&cfg.DBUser, "DB_USER")
	envStr(&cfg.DBPassword, "DB_PASSWORD")
	envStr(&cfg.DBName, "DB_NAME")
	envStr(&cfg.DBSSLMode, "DB_SSLMODE")
	envStr(&cfg.HTTPAddr, "HTTP_ADDR")
	envStr(&cfg.JWTSecret, "JWT_SECRET")
	envStr(&cfg.CSVPath, "CSV_PATH")
	envInt(&cfg.MaxPages, "MAX_PAGES")
	envInt(&cfg.MaxWorkers, "MAX_WORKERS")
	envInt(&cfg.MaxRetries, "MAX_RETRIES")
	envBool(&cfg.Headless, "HEADLESS")
	envDuration(&cfg.ListingTTL, "LISTING_TTL")
	envDuration(&cfg.JWTExpiry, "JWT_EXPIRY")
	return cfg
}

// Location resolves the configured timezone, falling back to UTC when the
// zone name is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
