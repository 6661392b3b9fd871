package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

type suggestionPostgreSQL struct {
	db *gorm.DB
}

func NewSuggestionPostgreSQL(db *gorm.DB) repositories.SuggestionRepository {
	return &suggestionPostgreSQL{db: db}
}

func (r *suggestionPostgreSQL) Create(ctx context.Context, suggestion *models.Suggestion) error {
	return handleDBError(r.db.WithContext(ctx).Create(suggestion).Error, "create suggestion")
}

func (r *suggestionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Suggestion, error) {
	var suggestion models.Suggestion
	if err := r.db.WithContext(ctx).First(&suggestion, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get suggestion")
	}
	return &suggestion, nil
}

func (r *suggestionPostgreSQL) UpdateStatus(ctx context.Context, id string, status models.SuggestionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Suggestion{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return handleDBError(result.Error, "update suggestion status")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update suggestion status")
	}
	return nil
}

func (r *suggestionPostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Suggestion{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete suggestion")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete suggestion")
	}
	return nil
}

func (r *suggestionPostgreSQL) List(ctx context.Context, filters repositories.SuggestionFilters) ([]*models.Suggestion, int64, error) {
	var suggestions []*models.Suggestion
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Suggestion{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count suggestions")
	}

	query = applyPaginationAndSort(query, nil, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&suggestions).Error; err != nil {
		return nil, 0, handleDBError(err, "list suggestions")
	}
	return suggestions, total, nil
}

func (r *suggestionPostgreSQL) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := countBy(r.db.WithContext(ctx).Model(&models.Suggestion{}), "status")
	return counts, handleDBError(err, "count suggestions by status")
}
