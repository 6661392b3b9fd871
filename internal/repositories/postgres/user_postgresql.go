package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

type userPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &userPostgreSQL{db: db}
}

var userSortColumns = map[string]string{
	"created_at":   "created_at",
	"email":        "email",
	"display_name": "display_name",
	"role":         "role",
	"status":       "status",
}

func (r *userPostgreSQL) Create(ctx context.Context, user *models.User) error {
	return handleDBError(r.db.WithContext(ctx).Create(user).Error, "create user")
}

func (r *userPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "get user by id", "id = ?", id)
}

func (r *userPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "get user by email", "email = ?", email)
}

func (r *userPostgreSQL) GetByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	return r.first(ctx, "get user by login id", "login_id = ?", loginID)
}

func (r *userPostgreSQL) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.first(ctx, "get user by google id", "google_id = ?", googleID)
}

func (r *userPostgreSQL) GetByCasdoorID(ctx context.Context, casdoorID string) (*models.User, error) {
	return r.first(ctx, "get user by casdoor id", "casdoor_id = ?", casdoorID)
}

func (r *userPostgreSQL) first(ctx context.Context, op string, cond string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&user).Error; err != nil {
		return nil, handleDBError(err, op)
	}
	return &user, nil
}

func (r *userPostgreSQL) Update(ctx context.Context, user *models.User) error {
	return handleDBError(r.db.WithContext(ctx).Save(user).Error, "update user")
}

func (r *userPostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete user")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete user")
	}
	return nil
}

func (r *userPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ClassID != nil {
		query = query.Where("student_class = ?", *filters.ClassID)
	}
	if filters.Query != "" {
		p := likePattern(filters.Query)
		query = query.Where("email ILIKE ? OR display_name ILIKE ? OR login_id ILIKE ?", p, p, p)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	query = applyPaginationAndSort(query, userSortColumns, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}
	return users, total, nil
}

func (r *userPostgreSQL) ListByClass(ctx context.Context, classID string) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).
		Where("student_class = ?", classID).
		Order("display_name ASC, login_id ASC").
		Find(&users).Error; err != nil {
		return nil, handleDBError(err, "list users by class")
	}
	return users, nil
}

func (r *userPostgreSQL) ClearClass(ctx context.Context, classID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("student_class = ?", classID).
		Update("student_class", "")
	if result.Error != nil {
		return 0, handleDBError(result.Error, "clear user class")
	}
	return result.RowsAffected, nil
}

func (r *userPostgreSQL) CountByRole(ctx context.Context) (map[string]int64, error) {
	counts, err := countBy(r.db.WithContext(ctx).Model(&models.User{}), "role")
	return counts, handleDBError(err, "count users by role")
}

func (r *userPostgreSQL) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := countBy(r.db.WithContext(ctx).Model(&models.User{}), "status")
	return counts, handleDBError(err, "count users by status")
}

func (r *userPostgreSQL) CountByClass(ctx context.Context) (map[string]int64, error) {
	counts, err := countBy(r.db.WithContext(ctx).Model(&models.User{}).Where("student_class <> ''"), "student_class")
	return counts, handleDBError(err, "count users by class")
}
