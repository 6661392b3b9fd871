package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

type attendancePostgreSQL struct {
	db *gorm.DB
}

func NewAttendancePostgreSQL(db *gorm.DB) repositories.AttendanceRepository {
	return &attendancePostgreSQL{db: db}
}

func (r *attendancePostgreSQL) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	db := r.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "teacher_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"records", "updated_at"}),
	}).Create(record).Error
	if err != nil {
		return handleDBError(err, "upsert attendance")
	}

	// On conflict the stored row keeps its original id, so reload into a
	// fresh value; First on record would also filter by the new id.
	var stored models.AttendanceRecord
	if err := db.First(&stored, "date = ? AND teacher_id = ?", record.Date, record.TeacherID).Error; err != nil {
		return handleDBError(err, "reload attendance")
	}
	*record = stored
	return nil
}

func (r *attendancePostgreSQL) GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get attendance")
	}
	return &record, nil
}

func (r *attendancePostgreSQL) GetByDateAndTeacher(ctx context.Context, date, teacherID string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	if err := r.db.WithContext(ctx).
		First(&record, "date = ? AND teacher_id = ?", date, teacherID).Error; err != nil {
		return nil, handleDBError(err, "get attendance by date")
	}
	return &record, nil
}

func (r *attendancePostgreSQL) ListByDate(ctx context.Context, date string) ([]*models.AttendanceRecord, error) {
	var records []*models.AttendanceRecord
	if err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("teacher_id ASC").
		Find(&records).Error; err != nil {
		return nil, handleDBError(err, "list attendance by date")
	}
	return records, nil
}

func (r *attendancePostgreSQL) List(ctx context.Context, filters repositories.AttendanceFilters) ([]*models.AttendanceRecord, error) {
	var records []*models.AttendanceRecord

	query := r.db.WithContext(ctx).Model(&models.AttendanceRecord{})
	if filters.From != "" {
		query = query.Where("date >= ?", filters.From)
	}
	if filters.To != "" {
		query = query.Where("date <= ?", filters.To)
	}
	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}

	if err := query.Order("date ASC, teacher_id ASC").Find(&records).Error; err != nil {
		return nil, handleDBError(err, "list attendance")
	}
	return records, nil
}

func (r *attendancePostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.AttendanceRecord{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete attendance")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete attendance")
	}
	return nil
}
