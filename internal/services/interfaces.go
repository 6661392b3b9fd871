package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/cinema-service/internal/auth"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/tmdb"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID       string
	Email        string
	Role         models.UserRole
	StudentClass string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

func (a Actor) IsStaff() bool { return a.Role.IsStaff() }

// ActorFromUser builds the actor for a loaded account.
func ActorFromUser(u *models.User) Actor {
	return Actor{UserID: u.ID, Email: u.Email, Role: u.Role, StudentClass: u.StudentClass}
}

// ===== AUTH DTOs =====

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	// Identifier is an email address or a student login id.
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password" validate:"required,max=128"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type CasdoorLoginRequest struct {
	Code  string `json:"code" validate:"required"`
	State string `json:"state"`
}

type SignInLinkRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	ContinueURL string `json:"continue_url" validate:"omitempty,url"`
}

type CompleteSignInLinkRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Token string `json:"token" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	User   *models.User    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// ===== USER DTOs =====

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,user_status"`
}

type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,user_role"`
}

type AssignClassRequest struct {
	// ClassID may be empty to unassign.
	ClassID string `json:"class_id" validate:"omitempty,max=36"`
}

type CreateStudentRequest struct {
	LoginID     string `json:"login_id" validate:"required,login_id"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
	ClassID     string `json:"class_id" validate:"omitempty,max=36"`
}

type PreRegisterRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type Preferences struct {
	Language string `json:"language" validate:"required,language"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// ===== MOVIE DTOs =====

type CreateMovieRequest struct {
	Title       string             `json:"title" validate:"required,notblank,max=255"`
	Status      models.MovieStatus `json:"status" validate:"omitempty,movie_status"`
	Rating      float64            `json:"rating" validate:"gte=0,lte=10"`
	Overview    string             `json:"overview" validate:"max=5000"`
	PosterPath  string             `json:"poster_path" validate:"max=255"`
	ReleaseDate string             `json:"release_date" validate:"omitempty,max=10"`
	TMDBID      *int64             `json:"tmdb_id" validate:"omitempty,gt=0"`
	GenreIDs    []int              `json:"genre_ids"`
	KidsLiked   bool               `json:"kidsLiked"`
}

type UpdateMovieRequest struct {
	Title       *string             `json:"title" validate:"omitempty,notblank,max=255"`
	Status      *models.MovieStatus `json:"status" validate:"omitempty,movie_status"`
	Rating      *float64            `json:"rating" validate:"omitempty,gte=0,lte=10"`
	Overview    *string             `json:"overview" validate:"omitempty,max=5000"`
	PosterPath  *string             `json:"poster_path" validate:"omitempty,max=255"`
	ReleaseDate *string             `json:"release_date" validate:"omitempty,max=10"`
	GenreIDs    *[]int              `json:"genre_ids"`
	KidsLiked   *bool               `json:"kidsLiked"`
}

type MovieListResponse struct {
	Movies []*models.Movie `json:"movies"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Size   int             `json:"size"`
}

// ===== SCHEDULE DTOs =====

type CreateScheduleEntryRequest struct {
	Day     models.Weekday `json:"day" validate:"required,weekday"`
	MovieID string         `json:"movieId" validate:"required"`
	Classes []string       `json:"classes" validate:"omitempty,dive,required"`
}

type UpdateScheduleEntryRequest struct {
	Day     *models.Weekday `json:"day" validate:"omitempty,weekday"`
	Classes *[]string       `json:"classes" validate:"omitempty,dive,required"`
}

// ===== CLASS DTOs =====

type ClassRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

// ===== SUGGESTION DTOs =====

type CreateSuggestionRequest struct {
	Title  string `json:"title" validate:"required,notblank,max=255"`
	Reason string `json:"reason" validate:"max=2000"`
}

type UpdateSuggestionStatusRequest struct {
	Status        models.SuggestionStatus `json:"status" validate:"required,suggestion_status"`
	AddToWishlist bool                    `json:"add_to_wishlist"`
}

type SuggestionListResponse struct {
	Suggestions []*models.Suggestion `json:"suggestions"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Size        int                  `json:"size"`
}

// ===== ATTENDANCE / GRADE DTOs =====

type SaveAttendanceRequest struct {
	Date    string          `json:"date" validate:"required,iso_date"`
	Records map[string]bool `json:"records" validate:"required"`
}

// DateRange bounds are inclusive YYYY-MM-DD dates; empty means open.
type DateRange struct {
	From string `form:"from" validate:"omitempty,iso_date"`
	To   string `form:"to" validate:"omitempty,iso_date"`
}

type CreateGradeReportRequest struct {
	Subject string             `json:"subject" validate:"required,notblank,max=100"`
	Type    string             `json:"type" validate:"required,notblank,max=50"`
	Scores  map[string]float64 `json:"scores" validate:"required,dive,gte=0,lte=100"`
	Date    string             `json:"date" validate:"required,iso_date"`
}

type UpdateGradeReportRequest struct {
	Subject *string             `json:"subject" validate:"omitempty,notblank,max=100"`
	Type    *string             `json:"type" validate:"omitempty,notblank,max=50"`
	Scores  *map[string]float64 `json:"scores" validate:"omitempty,dive,gte=0,lte=100"`
	Date    *string             `json:"date" validate:"omitempty,iso_date"`
}

// ===== MIGRATION DTOs =====

// LegacyMovie is a movie as stored by the old browser-only client.
type LegacyMovie struct {
	ID          *int64  `json:"id"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	Rating      float64 `json:"rating"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	GenreIDs    []int   `json:"genre_ids"`
	KidsLiked   bool    `json:"kidsLiked"`
}

// LegacyScheduleItem references a movie of the same blob by title or TMDB id.
type LegacyScheduleItem struct {
	ID      *int64   `json:"id"`
	Title   string   `json:"title"`
	Classes []string `json:"classes"`
}

type LegacyImportRequest struct {
	Movies   []LegacyMovie                           `json:"movies" validate:"dive"`
	Schedule map[models.Weekday][]LegacyScheduleItem `json:"schedule"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	LoginWithGoogle(ctx context.Context, req *GoogleLoginRequest) (*AuthResponse, error)
	CasdoorSigninURL(state string) (string, error)
	LoginWithCasdoor(ctx context.Context, req *CasdoorLoginRequest) (*AuthResponse, error)
	SendSignInLink(ctx context.Context, req *SignInLinkRequest) error
	CompleteSignInLink(ctx context.Context, req *CompleteSignInLinkRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, req *RefreshRequest) (*AuthResponse, error)
	// Authenticate resolves an access token to the current state of its account.
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

type UserService interface {
	List(ctx context.Context, filters repositories.UserFilters, page, size int) (*UserListResponse, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, req *UpdateUserStatusRequest) (*models.User, error)
	UpdateRole(ctx context.Context, actor Actor, id string, req *UpdateUserRoleRequest) (*models.User, error)
	AssignClass(ctx context.Context, id string, req *AssignClassRequest) (*models.User, error)
	CreateStudent(ctx context.Context, req *CreateStudentRequest) (*models.User, error)
	Delete(ctx context.Context, actor Actor, id string) error

	ListPreRegistered(ctx context.Context) ([]*models.PreRegisteredEmail, error)
	AddPreRegistered(ctx context.Context, req *PreRegisterRequest) (*models.PreRegisteredEmail, error)
	ImportPreRegistered(ctx context.Context, r io.Reader) (*models.ImportResult, error)
	DeletePreRegistered(ctx context.Context, id string) error

	GetPreferences(ctx context.Context, userID string) (*Preferences, error)
	UpdatePreferences(ctx context.Context, userID string, req *Preferences) (*Preferences, error)
}

type MovieService interface {
	List(ctx context.Context, filters repositories.MovieFilters, page, size int) (*MovieListResponse, error)
	GetByID(ctx context.Context, id string) (*models.Movie, error)
	Create(ctx context.Context, req *CreateMovieRequest) (*models.Movie, error)
	Update(ctx context.Context, id string, req *UpdateMovieRequest) (*models.Movie, error)
	Delete(ctx context.Context, id string) error
}

type ScheduleService interface {
	Week(ctx context.Context, actor Actor) ([]models.DaySchedule, error)
	Create(ctx context.Context, req *CreateScheduleEntryRequest) (*models.ScheduleEntry, error)
	Update(ctx context.Context, id string, req *UpdateScheduleEntryRequest) (*models.ScheduleEntry, error)
	Delete(ctx context.Context, id string) error
	ClearDay(ctx context.Context, day models.Weekday) (int64, error)
}

type ClassService interface {
	List(ctx context.Context) ([]*models.Class, error)
	Create(ctx context.Context, req *ClassRequest) (*models.Class, error)
	Rename(ctx context.Context, id string, req *ClassRequest) (*models.Class, error)
	Delete(ctx context.Context, id string) error
	Students(ctx context.Context, id string) ([]*models.User, error)
}

type SuggestionService interface {
	Create(ctx context.Context, actor Actor, req *CreateSuggestionRequest) (*models.Suggestion, error)
	List(ctx context.Context, actor Actor, status *models.SuggestionStatus, page, size int) (*SuggestionListResponse, error)
	UpdateStatus(ctx context.Context, id string, req *UpdateSuggestionStatusRequest) (*models.Suggestion, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type AttendanceService interface {
	Save(ctx context.Context, actor Actor, req *SaveAttendanceRequest) (*models.AttendanceRecord, error)
	GetByDate(ctx context.Context, date string) ([]*models.AttendanceRecord, error)
	List(ctx context.Context, rng DateRange, teacherID *string) ([]*models.AttendanceRecord, error)
	StudentHistory(ctx context.Context, studentID string, rng DateRange) ([]models.StudentAttendance, error)
	Summary(ctx context.Context, rng DateRange) ([]models.AttendanceSummary, error)
	Export(ctx context.Context, rng DateRange, w io.Writer) error
	Delete(ctx context.Context, actor Actor, id string) error
}

type GradeService interface {
	Create(ctx context.Context, actor Actor, req *CreateGradeReportRequest) (*models.GradeReport, error)
	Update(ctx context.Context, actor Actor, id string, req *UpdateGradeReportRequest) (*models.GradeReport, error)
	Delete(ctx context.Context, actor Actor, id string) error
	List(ctx context.Context, filters repositories.GradeFilters) ([]*models.GradeReport, error)
	StudentScores(ctx context.Context, studentID string) ([]models.StudentScore, error)
	Averages(ctx context.Context, filters repositories.GradeFilters) (*models.GradeAverages, error)
	Export(ctx context.Context, filters repositories.GradeFilters, w io.Writer) error
}

type StatsService interface {
	MovieStats(ctx context.Context) (*models.MovieStats, error)
	SchoolStats(ctx context.Context) (*models.SchoolStats, error)
}

type MetadataService interface {
	Search(ctx context.Context, query string, page int, language string) (*tmdb.SearchResult, error)
	Videos(ctx context.Context, tmdbID int64, language string) ([]tmdb.Video, error)
	Details(ctx context.Context, tmdbID int64, language string) (*tmdb.MovieResult, error)
	// RefreshMovies re-reads TMDB metadata for every linked movie and returns how many changed.
	RefreshMovies(ctx context.Context) (int, error)
}

type MigrationService interface {
	ImportLegacy(ctx context.Context, actor Actor, req *LegacyImportRequest) (*models.LegacyImportResult, error)
}

type SnapshotService interface {
	// Snapshot returns the full collection as visible to the actor.
	Snapshot(ctx context.Context, actor Actor, collection string) (interface{}, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Movie() MovieService
	Schedule() ScheduleService
	Class() ClassService
	Suggestion() SuggestionService
	Attendance() AttendanceService
	Grade() GradeService
	Stats() StatsService
	Metadata() MetadataService
	Migration() MigrationService
	Snapshot() SnapshotService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
