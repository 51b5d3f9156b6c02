package app

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/isaac-const/upple/internal/log"
)

type Config struct {
	Addr            string
	DatabaseURL     string
	SchemaPath      string
	StorageRoot     string
	PublicBaseURL   string
	SessionLifetime time.Duration
}

func LoadConfig() Config {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	addr := getenv("ADDR", ":8080")
	dbURL := getenv("DATABASE_URL", "postgres://localhost:5432/upple?sslmode=disable")
	schema := getenv("SCHEMA_PATH", "schema.sql")
	storageRoot := getenv("STORAGE_ROOT", "./storage")
	baseURL := getenv("PUBLIC_BASE_URL", "http://localhost:8080")
	lifeHours := getenv("SESSION_LIFETIME_HOURS", "168")
	dur, err := time.ParseDuration(lifeHours + "h")
	if err != nil {
		dur = 168 * time.Hour
	}
	return Config{
		Addr:            addr,
		DatabaseURL:     dbURL,
		SchemaPath:      schema,
		StorageRoot:     storageRoot,
		PublicBaseURL:   baseURL,
		SessionLifetime: dur,
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func Must(err error) {
	if err != nil {
		log.Error.Fatal(err)
	}
}
