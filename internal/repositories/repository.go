package repositories

import "context"

// Repository aggregates the per-collection repositories
type Repository interface {
	// Accounts
	User() UserRepository
	PreRegistered() PreRegisteredEmailRepository

	// Movies and schedule
	Movie() MovieRepository
	Schedule() ScheduleRepository
	Suggestion() SuggestionRepository

	// School
	Class() ClassRepository
	Attendance() AttendanceRepository
	Grade() GradeRepository

	// WithTransaction runs fn against a repository bound to one transaction.
	// Returning an error rolls every write back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
