package postgres

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

type schedulePostgreSQL struct {
	db *gorm.DB
}

func NewSchedulePostgreSQL(db *gorm.DB) repositories.ScheduleRepository {
	return &schedulePostgreSQL{db: db}
}

func (r *schedulePostgreSQL) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	return handleDBError(r.db.WithContext(ctx).Create(entry).Error, "create schedule entry")
}

func (r *schedulePostgreSQL) GetByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	var entry models.ScheduleEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get schedule entry")
	}
	return &entry, nil
}

func (r *schedulePostgreSQL) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	return handleDBError(r.db.WithContext(ctx).Save(entry).Error, "update schedule entry")
}

func (r *schedulePostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.ScheduleEntry{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete schedule entry")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete schedule entry")
	}
	return nil
}

func (r *schedulePostgreSQL) List(ctx context.Context) ([]*models.ScheduleEntry, error) {
	var entries []*models.ScheduleEntry
	if err := r.db.WithContext(ctx).Order("day ASC, title ASC").Find(&entries).Error; err != nil {
		return nil, handleDBError(err, "list schedule")
	}
	return entries, nil
}

func (r *schedulePostgreSQL) ListByDay(ctx context.Context, day models.Weekday) ([]*models.ScheduleEntry, error) {
	var entries []*models.ScheduleEntry
	if err := r.db.WithContext(ctx).Where("day = ?", day).Order("title ASC").Find(&entries).Error; err != nil {
		return nil, handleDBError(err, "list schedule by day")
	}
	return entries, nil
}

func (r *schedulePostgreSQL) DeleteByDay(ctx context.Context, day models.Weekday) (int64, error) {
	result := r.db.WithContext(ctx).Where("day = ?", day).Delete(&models.ScheduleEntry{})
	return result.RowsAffected, handleDBError(result.Error, "clear schedule day")
}

func (r *schedulePostgreSQL) DeleteByMovie(ctx context.Context, movieID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("movie_id = ?", movieID).Delete(&models.ScheduleEntry{})
	return result.RowsAffected, handleDBError(result.Error, "delete schedule entries of movie")
}

func (r *schedulePostgreSQL) SyncMovie(ctx context.Context, movieID, title, posterPath string) error {
	err := r.db.WithContext(ctx).
		Model(&models.ScheduleEntry{}).
		Where("movie_id = ?", movieID).
		Updates(map[string]interface{}{"title": title, "poster_path": posterPath}).Error
	return handleDBError(err, "sync schedule movie info")
}

func (r *schedulePostgreSQL) RemoveClass(ctx context.Context, classID string) (int64, error) {
	needle, err := json.Marshal([]string{classID})
	if err != nil {
		return 0, err
	}

	var entries []*models.ScheduleEntry
	if err := r.db.WithContext(ctx).
		Where("classes @> ?::jsonb", string(needle)).
		Find(&entries).Error; err != nil {
		return 0, handleDBError(err, "find schedule entries of class")
	}

	for _, entry := range entries {
		kept := make([]string, 0, len(entry.Classes))
		for _, c := range entry.Classes {
			if c != classID {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			if err := r.db.WithContext(ctx).Delete(entry).Error; err != nil {
				return 0, handleDBError(err, "delete schedule entry of class")
			}
			continue
		}
		entry.Classes = kept
		if err := r.db.WithContext(ctx).
			Model(entry).
			Update("classes", entry.Classes).Error; err != nil {
			return 0, handleDBError(err, "remove class from schedule entry")
		}
	}
	return int64(len(entries)), nil
}

func (r *schedulePostgreSQL) CountByDay(ctx context.Context) (map[models.Weekday]int64, error) {
	counts, err := countBy(r.db.WithContext(ctx).Model(&models.ScheduleEntry{}), "day")
	if err != nil {
		return nil, handleDBError(err, "count schedule by day")
	}
	out := make(map[models.Weekday]int64, len(counts))
	for day, n := range counts {
		out[models.Weekday(day)] = n
	}
	return out, nil
}
