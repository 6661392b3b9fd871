package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

type preRegisteredPostgreSQL struct {
	db *gorm.DB
}

func NewPreRegisteredEmailPostgreSQL(db *gorm.DB) repositories.PreRegisteredEmailRepository {
	return &preRegisteredPostgreSQL{db: db}
}

func (r *preRegisteredPostgreSQL) Create(ctx context.Context, entry *models.PreRegisteredEmail) error {
	return handleDBError(r.db.WithContext(ctx).Create(entry).Error, "create pre-registered email")
}

func (r *preRegisteredPostgreSQL) GetByID(ctx context.Context, id string) (*models.PreRegisteredEmail, error) {
	var entry models.PreRegisteredEmail
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get pre-registered email")
	}
	return &entry, nil
}

func (r *preRegisteredPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.PreRegisteredEmail, error) {
	var entry models.PreRegisteredEmail
	if err := r.db.WithContext(ctx).First(&entry, "email = ?", email).Error; err != nil {
		return nil, handleDBError(err, "get pre-registered email by email")
	}
	return &entry, nil
}

// MarkUsed only flips unused entries, so a second consumer sees not found.
func (r *preRegisteredPostgreSQL) MarkUsed(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PreRegisteredEmail{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if result.Error != nil {
		return handleDBError(result.Error, "mark pre-registered email used")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "mark pre-registered email used")
	}
	return nil
}

func (r *preRegisteredPostgreSQL) List(ctx context.Context) ([]*models.PreRegisteredEmail, error) {
	var entries []*models.PreRegisteredEmail
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, handleDBError(err, "list pre-registered emails")
	}
	return entries, nil
}

func (r *preRegisteredPostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.PreRegisteredEmail{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete pre-registered email")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete pre-registered email")
	}
	return nil
}
