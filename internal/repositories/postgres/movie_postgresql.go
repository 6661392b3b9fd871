package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

type moviePostgreSQL struct {
	db *gorm.DB
}

func NewMoviePostgreSQL(db *gorm.DB) repositories.MovieRepository {
	return &moviePostgreSQL{db: db}
}

var movieSortColumns = map[string]string{
	"created_at":   "created_at",
	"title":        "title_key",
	"rating":       "rating",
	"release_date": "release_date",
}

// ===== BASIC CRUD OPERATIONS =====

func (r *moviePostgreSQL) Create(ctx context.Context, movie *models.Movie) error {
	return handleDBError(r.db.WithContext(ctx).Create(movie).Error, "create movie")
}

func (r *moviePostgreSQL) GetByID(ctx context.Context, id string) (*models.Movie, error) {
	var movie models.Movie
	if err := r.db.WithContext(ctx).First(&movie, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get movie by id")
	}
	return &movie, nil
}

func (r *moviePostgreSQL) GetByTitleKey(ctx context.Context, titleKey string) (*models.Movie, error) {
	var movie models.Movie
	if err := r.db.WithContext(ctx).First(&movie, "title_key = ?", titleKey).Error; err != nil {
		return nil, handleDBError(err, "get movie by title")
	}
	return &movie, nil
}

func (r *moviePostgreSQL) Update(ctx context.Context, movie *models.Movie) error {
	return handleDBError(r.db.WithContext(ctx).Save(movie).Error, "update movie")
}

func (r *moviePostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Movie{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete movie")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete movie")
	}
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *moviePostgreSQL) List(ctx context.Context, filters repositories.MovieFilters) ([]*models.Movie, int64, error) {
	var movies []*models.Movie
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Movie{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.KidsLiked != nil {
		query = query.Where("kids_liked = ?", *filters.KidsLiked)
	}
	if filters.Query != "" {
		p := likePattern(filters.Query)
		query = query.Where("title ILIKE ? OR overview ILIKE ?", p, p)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count movies")
	}

	query = applyPaginationAndSort(query, movieSortColumns, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&movies).Error; err != nil {
		return nil, 0, handleDBError(err, "list movies")
	}
	return movies, total, nil
}

func (r *moviePostgreSQL) ListWithTMDBID(ctx context.Context) ([]*models.Movie, error) {
	var movies []*models.Movie
	if err := r.db.WithContext(ctx).
		Where("tmdb_id IS NOT NULL").
		Order("created_at ASC").
		Find(&movies).Error; err != nil {
		return nil, handleDBError(err, "list movies with tmdb id")
	}
	return movies, nil
}

// ===== STATISTICS =====

func (r *moviePostgreSQL) Summary(ctx context.Context) (*repositories.MovieSummary, error) {
	db := r.db.WithContext(ctx)
	summary := &repositories.MovieSummary{}

	byStatus, err := countBy(db.Model(&models.Movie{}), "status")
	if err != nil {
		return nil, handleDBError(err, "count movies by status")
	}
	summary.ByStatus = byStatus
	for _, n := range byStatus {
		summary.Total += n
	}

	if err := db.Model(&models.Movie{}).
		Where("kids_liked = ?", true).
		Count(&summary.KidsLiked).Error; err != nil {
		return nil, handleDBError(err, "count kids liked movies")
	}

	// Unrated movies are stored with rating 0 and stay out of the average.
	if err := db.Model(&models.Movie{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("rating > 0").
		Scan(&summary.AverageRating).Error; err != nil {
		return nil, handleDBError(err, "average movie rating")
	}

	return summary, nil
}
