package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

// ServiceDependencies holds the collaborators shared by all services.
type ServiceDependencies struct {
	Repo repositories.Repository
	// Manager owns the repository lifecycle; optional.
	Manager   repositories.RepositoryManager
	Publisher events.Publisher
	Cache     *cache.CacheManager
	Auth      AuthDependencies
	Metadata  MetadataProvider
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps      ServiceDependencies
	notifier  changeNotifier
	logger    *slog.Logger
	validator *validator.Validator

	// Service instances
	authService       AuthService
	userService       UserService
	movieService      MovieService
	scheduleService   ScheduleService
	classService      ClassService
	suggestionService SuggestionService
	attendanceService AttendanceService
	gradeService      GradeService
	statsService      StatsService
	metadataService   MetadataService
	migrationService  MigrationService
	snapshotService   SnapshotService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceDependencies, logger *slog.Logger, validator *validator.Validator) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}
	return &serviceManager{
		deps: deps,
		notifier: changeNotifier{
			publisher: deps.Publisher,
			cache:     deps.Cache,
			logger:    logger,
		},
		logger:    logger,
		validator: validator,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.initializeServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() error {
	if sm.deps.Repo == nil {
		return errors.New("repository is required")
	}
	if sm.deps.Auth.Tokens == nil {
		return errors.New("token manager is required")
	}

	repo := sm.deps.Repo

	sm.authService = NewAuthService(repo, sm.deps.Auth, sm.notifier, sm.logger, sm.validator)
	sm.logger.Info("Auth service initialized")

	sm.userService = NewUserService(repo, sm.notifier, sm.logger, sm.validator)
	sm.logger.Info("User service initialized")

	sm.movieService = NewMovieService(repo, sm.notifier, sm.logger, sm.validator)
	sm.scheduleService = NewScheduleService(repo, sm.notifier, sm.logger, sm.validator)
	sm.suggestionService = NewSuggestionService(repo, sm.notifier, sm.logger, sm.validator)
	sm.logger.Info("Movie services initialized")

	sm.classService = NewClassService(repo, sm.notifier, sm.logger, sm.validator)
	sm.attendanceService = NewAttendanceService(repo, sm.notifier, sm.logger, sm.validator)
	sm.gradeService = NewGradeService(repo, sm.notifier, sm.logger, sm.validator)
	sm.logger.Info("School services initialized")

	sm.statsService = NewStatsService(repo, sm.deps.Cache, sm.logger)

	if sm.deps.Metadata != nil {
		sm.metadataService = NewMetadataService(repo, sm.deps.Metadata, sm.notifier, sm.logger)
		sm.logger.Info("Metadata service initialized", "configured", sm.deps.Metadata.Configured())
	}

	sm.migrationService = NewMigrationService(repo, sm.notifier, sm.logger, sm.validator)
	sm.snapshotService = NewSnapshotService(repo)

	return nil
}

func (sm *serviceManager) mustInit() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.userService
}

func (sm *serviceManager) Movie() MovieService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.movieService
}

func (sm *serviceManager) Schedule() ScheduleService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.scheduleService
}

func (sm *serviceManager) Class() ClassService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.classService
}

func (sm *serviceManager) Suggestion() SuggestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.suggestionService
}

func (sm *serviceManager) Attendance() AttendanceService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.attendanceService
}

func (sm *serviceManager) Grade() GradeService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.gradeService
}

func (sm *serviceManager) Stats() StatsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.statsService
}

func (sm *serviceManager) Metadata() MetadataService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()

	if sm.metadataService != nil {
		return sm.metadataService
	}

	panic("metadata service not enabled")
}

func (sm *serviceManager) Migration() MigrationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.migrationService
}

func (sm *serviceManager) Snapshot() SnapshotService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustInit()
	return sm.snapshotService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if sm.deps.Manager != nil {
		if err := sm.deps.Manager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("repository health check failed: %w", err)
		}
		return nil
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.deps.Manager != nil {
		if err := sm.deps.Manager.Shutdown(ctx); err != nil {
			sm.logger.Error("Failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
