package config

import (
	"fmt"
	"os"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Object storage (S3-compatible) holding the raw reports
	ReportsBucket string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3UseSSL      bool

	// Recommendation store (Redis)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RecoKeyPrefix string

	// Run history database (optional - disabled when DBHost is empty)
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// NATS (optional - events disabled when empty)
	NATSURL string
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return &Config{
		// Server
		Port:        getEnv("PORT", "8091"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Object storage
		ReportsBucket: getEnv("REPORTS_BUCKET", "pricing-reports"),
		S3Endpoint:    getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		S3UseSSL:      getEnv("S3_USE_SSL", "false") == "true",

		// Recommendation store
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		RecoKeyPrefix: getEnv("RECO_KEY_PREFIX", "pricing_recommendations"),

		// Run history - disabled unless DB_HOST is set
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "pricing_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// NATS
		NATSURL: getEnv("NATS_URL", ""),
	}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
