package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"macrolog/models"
	"macrolog/utils"
)

type Config struct {
	Port           string
	GinMode        string
	LogMode        string
	AllowedOrigins []string
	Location       *time.Location

	DatabaseDSN string

	JWTSecret []byte
	JWTTTL    time.Duration

	OpenAIAPIKey       string
	OpenAIBaseURL      string
	FoodAssistantID    string
	OraclePollInterval time.Duration
	OracleTimeout      time.Duration

	AdviceDailyLimit   int
	PersistWorkers     int
	PersistMaxAttempts int

	RedisAddr    string
	RedisChannel string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           utils.GetEnv("PORT", "8080"),
		GinMode:        utils.GetEnv("GIN_MODE", "debug"),
		LogMode:        utils.GetEnv("LOG_MODE", "dev"),
		AllowedOrigins: utils.GetEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		DatabaseDSN: databaseDSN(),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		JWTTTL:    time.Duration(utils.GetEnvAsInt("JWT_EXPIRE_HOURS", 24)) * time.Hour,

		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		FoodAssistantID:    os.Getenv("FOOD_AI"),
		OraclePollInterval: utils.GetEnvAsDuration("ORACLE_POLL_INTERVAL", time.Second),
		OracleTimeout:      utils.GetEnvAsDuration("ORACLE_TIMEOUT", 90*time.Second),

		AdviceDailyLimit:   utils.GetEnvAsInt("ADVICE_DAILY_LIMIT", 100),
		PersistWorkers:     utils.GetEnvAsInt("PERSIST_WORKERS", 4),
		PersistMaxAttempts: utils.GetEnvAsInt("PERSIST_MAX_ATTEMPTS", 5),

		RedisAddr:    strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisChannel: utils.GetEnv("REDIS_CHANNEL", "ledger"),
	}

	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("JWT_SECRET not set")
	}
	if cfg.AdviceDailyLimit < 1 {
		return nil, fmt.Errorf("ADVICE_DAILY_LIMIT must be positive, got %d", cfg.AdviceDailyLimit)
	}

	tz := utils.GetEnv("APP_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc
	return cfg, nil
}

func databaseDSN() string {
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		utils.GetEnv("DB_HOST", "localhost"),
		utils.GetEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		utils.GetEnv("DB_NAME", "macrolog"),
		utils.GetEnv("DB_PORT", "5432"),
		utils.GetEnv("DB_SSLMODE", "disable"),
	)
}

// OpenDB connects to postgres and migrates every model.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Profile{},
		&models.NutritionDay{},
		&models.CatalogEntry{},
		&models.Credential{},
		&models.Recipe{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}
	return nil
}
