package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

type classPostgreSQL struct {
	db *gorm.DB
}

func NewClassPostgreSQL(db *gorm.DB) repositories.ClassRepository {
	return &classPostgreSQL{db: db}
}

func (r *classPostgreSQL) Create(ctx context.Context, class *models.Class) error {
	return handleDBError(r.db.WithContext(ctx).Create(class).Error, "create class")
}

func (r *classPostgreSQL) GetByID(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).First(&class, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get class")
	}
	return &class, nil
}

func (r *classPostgreSQL) GetByNameKey(ctx context.Context, nameKey string) (*models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).First(&class, "name_key = ?", nameKey).Error; err != nil {
		return nil, handleDBError(err, "get class by name")
	}
	return &class, nil
}

func (r *classPostgreSQL) Update(ctx context.Context, class *models.Class) error {
	return handleDBError(r.db.WithContext(ctx).Save(class).Error, "update class")
}

func (r *classPostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Class{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete class")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete class")
	}
	return nil
}

func (r *classPostgreSQL) List(ctx context.Context) ([]*models.Class, error) {
	var classes []*models.Class
	if err := r.db.WithContext(ctx).Order("name_key ASC").Find(&classes).Error; err != nil {
		return nil, handleDBError(err, "list classes")
	}
	return classes, nil
}
