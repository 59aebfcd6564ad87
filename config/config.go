package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	SQLitePath    string
	AnalyticsDB   string
	SessionSecret string
	Domain        string
	DefaultLink   string
	AdminPassword string
	DataFilesDir  string
	CacheDir      string
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:          getEnv("PORT", "8080"),
		SQLitePath:    getEnv("sqlite_db", "bookmarket.db"),
		AnalyticsDB:   getEnv("analytics_db", ""),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		Domain:        getEnv("DOMAIN", "http://localhost:8080"),
		DefaultLink:   getEnv("DEFAULT_LINK", "http://example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		DataFilesDir:  getEnv("DATAFILES_DIR", "./public/datafiles"),
		CacheDir:      getEnv("CACHE_DIR", "cache"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
