package pkg

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/cinema-service/internal/config"
	"github.com/SAP-F-2025/cinema-service/internal/models"
)

// AllModels lists every table owned by the service, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Class{},
		&models.Movie{},
		&models.ScheduleEntry{},
		&models.Suggestion{},
		&models.AttendanceRecord{},
		&models.GradeReport{},
		&models.PreRegisteredEmail{},
	}
}

// InitDatabase opens the PostgreSQL connection pool and migrates the schema.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	logLevel := logger.Warn
	if !cfg.IsProduction() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseURL,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(AllModels()...); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		log.Println("Database schema migrated")
	}

	return db, nil
}

// NewRedisClient parses REDIS_URL and verifies the connection.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}
