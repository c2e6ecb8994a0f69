package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	JWTSecret     string
	MongoURI      string
	DBName        string
	SkipAuth      bool
	Environment   string
	AppId         string
	SweepSchedule string // cron spec for the approval timeout sweep
	SyncSchedule  string // cron spec for the warehouse sync
	WarehouseDSN  string // postgres DSN for reporting sync; empty disables it
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("DB_NAME", "go-hrm"),
		SkipAuth:      getEnv("SKIP_AUTH", "false") == "true",
		Environment:   getEnv("ENVIRONMENT", "development"),
		AppId:         getEnv("APP_ID", "go-hrm"),
		SweepSchedule: getEnv("SWEEP_SCHEDULE", "* * * * *"),
		SyncSchedule:  getEnv("SYNC_SCHEDULE", "*/15 * * * *"),
		WarehouseDSN:  getEnv("WAREHOUSE_DSN", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
