package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	user          repositories.UserRepository
	preRegistered repositories.PreRegisteredEmailRepository
	movie         repositories.MovieRepository
	schedule      repositories.ScheduleRepository
	suggestion    repositories.SuggestionRepository
	class         repositories.ClassRepository
	attendance    repositories.AttendanceRepository
	grade         repositories.GradeRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	return newRepository(config.DB, config.RedisClient, cache.NewCacheManager(config.RedisClient))
}

func newRepository(db *gorm.DB, redisClient *redis.Client, cm *cache.CacheManager) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:            db,
		redisClient:   redisClient,
		cacheManager:  cm,
		user:          NewUserPostgreSQL(db),
		preRegistered: NewPreRegisteredEmailPostgreSQL(db),
		movie:         NewMoviePostgreSQL(db),
		schedule:      NewSchedulePostgreSQL(db),
		suggestion:    NewSuggestionPostgreSQL(db),
		class:         NewClassPostgreSQL(db),
		attendance:    NewAttendancePostgreSQL(db),
		grade:         NewGradePostgreSQL(db),
	}
}

func (r *PostgreSQLRepository) User() repositories.UserRepository { return r.user }

func (r *PostgreSQLRepository) PreRegistered() repositories.PreRegisteredEmailRepository {
	return r.preRegistered
}

func (r *PostgreSQLRepository) Movie() repositories.MovieRepository { return r.movie }

func (r *PostgreSQLRepository) Schedule() repositories.ScheduleRepository { return r.schedule }

func (r *PostgreSQLRepository) Suggestion() repositories.SuggestionRepository { return r.suggestion }

func (r *PostgreSQLRepository) Class() repositories.ClassRepository { return r.class }

func (r *PostgreSQLRepository) Attendance() repositories.AttendanceRepository { return r.attendance }

func (r *PostgreSQLRepository) Grade() repositories.GradeRepository { return r.grade }

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepository(tx, r.redisClient, r.cacheManager))
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.cacheManager.Available() {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes the database pool. The Redis client is owned by main.
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize verifies the connections and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
