package repositories

import (
	"context"

	"github.com/SAP-F-2025/cinema-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role      *models.UserRole   `json:"role"`
	Status    *models.UserStatus `json:"status"`
	ClassID   *string            `json:"class_id"`
	Query     string             `json:"query"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "email", "display_name"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type MovieFilters struct {
	Status    *models.MovieStatus `json:"status"`
	KidsLiked *bool               `json:"kids_liked"`
	Query     string              `json:"query"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	SortBy    string              `json:"sort_by"` // "created_at", "title", "rating"
	SortOrder string              `json:"sort_order"`
}

type SuggestionFilters struct {
	Status *models.SuggestionStatus `json:"status"`
	UserID *string                  `json:"user_id"`
	Limit  int                      `json:"limit"`
	Offset int                      `json:"offset"`
}

// AttendanceFilters bounds are inclusive YYYY-MM-DD dates.
type AttendanceFilters struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	TeacherID *string `json:"teacher_id"`
}

type GradeFilters struct {
	Subject   *string `json:"subject"`
	Type      *string `json:"type"`
	TeacherID *string `json:"teacher_id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
}

// MovieSummary holds the movie aggregates computed by the store.
type MovieSummary struct {
	Total         int64
	ByStatus      map[string]int64
	KidsLiked     int64
	AverageRating float64
}

// ===== USER =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByLoginID(ctx context.Context, loginID string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetByCasdoorID(ctx context.Context, casdoorID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	ListByClass(ctx context.Context, classID string) ([]*models.User, error)
	// ClearClass unassigns every user of the class and returns how many changed.
	ClearClass(ctx context.Context, classID string) (int64, error)

	CountByRole(ctx context.Context) (map[string]int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountByClass(ctx context.Context) (map[string]int64, error)
}

type PreRegisteredEmailRepository interface {
	Create(ctx context.Context, entry *models.PreRegisteredEmail) error
	GetByID(ctx context.Context, id string) (*models.PreRegisteredEmail, error)
	GetByEmail(ctx context.Context, email string) (*models.PreRegisteredEmail, error)
	MarkUsed(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.PreRegisteredEmail, error)
	Delete(ctx context.Context, id string) error
}

// ===== MOVIES =====

type MovieRepository interface {
	Create(ctx context.Context, movie *models.Movie) error
	GetByID(ctx context.Context, id string) (*models.Movie, error)
	GetByTitleKey(ctx context.Context, titleKey string) (*models.Movie, error)
	Update(ctx context.Context, movie *models.Movie) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters MovieFilters) ([]*models.Movie, int64, error)
	ListWithTMDBID(ctx context.Context) ([]*models.Movie, error)

	Summary(ctx context.Context) (*MovieSummary, error)
}

type ScheduleRepository interface {
	Create(ctx context.Context, entry *models.ScheduleEntry) error
	GetByID(ctx context.Context, id string) (*models.ScheduleEntry, error)
	Update(ctx context.Context, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context) ([]*models.ScheduleEntry, error)
	ListByDay(ctx context.Context, day models.Weekday) ([]*models.ScheduleEntry, error)
	DeleteByDay(ctx context.Context, day models.Weekday) (int64, error)
	DeleteByMovie(ctx context.Context, movieID string) (int64, error)
	// SyncMovie refreshes the title and poster copied onto the movie's entries.
	SyncMovie(ctx context.Context, movieID, title, posterPath string) error
	// RemoveClass strips a class id from every entry's class list and deletes
	// entries that were shown to that class only.
	RemoveClass(ctx context.Context, classID string) (int64, error)

	CountByDay(ctx context.Context) (map[models.Weekday]int64, error)
}

type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *models.Suggestion) error
	GetByID(ctx context.Context, id string) (*models.Suggestion, error)
	UpdateStatus(ctx context.Context, id string, status models.SuggestionStatus) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters SuggestionFilters) ([]*models.Suggestion, int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// ===== SCHOOL =====

type ClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	GetByID(ctx context.Context, id string) (*models.Class, error)
	GetByNameKey(ctx context.Context, nameKey string) (*models.Class, error)
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Class, error)
}

type AttendanceRepository interface {
	// Upsert writes the record for (date, teacher), replacing existing records.
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	GetByDateAndTeacher(ctx context.Context, date, teacherID string) (*models.AttendanceRecord, error)
	ListByDate(ctx context.Context, date string) ([]*models.AttendanceRecord, error)
	List(ctx context.Context, filters AttendanceFilters) ([]*models.AttendanceRecord, error)
	Delete(ctx context.Context, id string) error
}

type GradeRepository interface {
	Create(ctx context.Context, report *models.GradeReport) error
	GetByID(ctx context.Context, id string) (*models.GradeReport, error)
	Update(ctx context.Context, report *models.GradeReport) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters GradeFilters) ([]*models.GradeReport, error)
}
