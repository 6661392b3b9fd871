package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

// handleDBError wraps a gorm error with the failed operation and maps
// not-found and unique violations onto the repository sentinels.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s failed: %w", operation, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s failed: %w", operation, repositories.ErrDuplicate)
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

// applyPaginationAndSort orders by a whitelisted column and applies limit/offset.
// sortKeyToColumn maps API sort keys to SQL identifiers.
func applyPaginationAndSort(query *gorm.DB, sortKeyToColumn map[string]string, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	column, ok := sortKeyToColumn[sortBy]
	if !ok {
		column = "created_at"
	}

	order := "DESC"
	if sortOrder == "asc" || sortOrder == "ASC" {
		order = "ASC"
	}

	query = query.Order(fmt.Sprintf("%s %s", column, order)).Order("id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

type groupCount struct {
	Key   string
	Count int64
}

// countQuery selects row counts grouped by column.
func countQuery(query *gorm.DB, column string) *gorm.DB {
	return query.Select(column + " AS key, COUNT(*) AS count").Group(column)
}

// countBy returns row counts grouped by column.
func countBy(query *gorm.DB, column string) (map[string]int64, error) {
	var rows []groupCount
	if err := countQuery(query, column).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out, nil
}

// likePattern escapes LIKE metacharacters in user input.
func likePattern(q string) string {
	escaped := make([]rune, 0, len(q)+2)
	for _, r := range q {
		if r == '%' || r == '_' || r == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, r)
	}
	return "%" + string(escaped) + "%"
}
