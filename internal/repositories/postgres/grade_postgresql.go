package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

type gradePostgreSQL struct {
	db *gorm.DB
}

func NewGradePostgreSQL(db *gorm.DB) repositories.GradeRepository {
	return &gradePostgreSQL{db: db}
}

func (r *gradePostgreSQL) Create(ctx context.Context, report *models.GradeReport) error {
	return handleDBError(r.db.WithContext(ctx).Create(report).Error, "create grade report")
}

func (r *gradePostgreSQL) GetByID(ctx context.Context, id string) (*models.GradeReport, error) {
	var report models.GradeReport
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get grade report")
	}
	return &report, nil
}

func (r *gradePostgreSQL) Update(ctx context.Context, report *models.GradeReport) error {
	return handleDBError(r.db.WithContext(ctx).Save(report).Error, "update grade report")
}

func (r *gradePostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.GradeReport{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete grade report")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete grade report")
	}
	return nil
}

func (r *gradePostgreSQL) List(ctx context.Context, filters repositories.GradeFilters) ([]*models.GradeReport, error) {
	var reports []*models.GradeReport

	query := r.db.WithContext(ctx).Model(&models.GradeReport{})
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.From != "" {
		query = query.Where("date >= ?", filters.From)
	}
	if filters.To != "" {
		query = query.Where("date <= ?", filters.To)
	}

	if err := query.Order("date ASC, created_at ASC").Find(&reports).Error; err != nil {
		return nil, handleDBError(err, "list grade reports")
	}
	return reports, nil
}
