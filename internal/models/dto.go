package models

import (
	"time"
)

// ===== PAGINATION =====

type PaginatedResponse struct {
	Content          interface{} `json:"content"`
	TotalElements    int64       `json:"total_elements"`
	TotalPages       int         `json:"total_pages"`
	Size             int         `json:"size"`
	Page             int         `json:"page"`
	First            bool        `json:"first"`
	Last             bool        `json:"last"`
	NumberOfElements int         `json:"number_of_elements"`
	Empty            bool        `json:"empty"`
}

// NewPaginatedResponse builds a page envelope for count items of total.
func NewPaginatedResponse(content interface{}, count int, total int64, page, size int) *PaginatedResponse {
	if size < 1 {
		size = 1
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	return &PaginatedResponse{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Size:             size,
		Page:             page,
		First:            page <= 1,
		Last:             page >= totalPages,
		NumberOfElements: count,
		Empty:            count == 0,
	}
}

// ===== SCHEDULE DTOs =====

type DaySchedule struct {
	Day     Weekday          `json:"day"`
	Entries []*ScheduleEntry `json:"entries"`
}

// ===== STATISTICS DTOs =====

type GenreCount struct {
	GenreID int `json:"genre_id"`
	Count   int `json:"count"`
}

type MovieStats struct {
	Total          int64             `json:"total"`
	ByStatus       map[string]int64  `json:"by_status"`
	KidsLiked      int64             `json:"kids_liked"`
	AverageRating  float64           `json:"average_rating"`
	TopGenres      []GenreCount      `json:"top_genres"`
	ScheduledByDay map[Weekday]int64 `json:"scheduled_by_day"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

type ClassSize struct {
	ClassID  string `json:"class_id"`
	Name     string `json:"name"`
	Students int64  `json:"students"`
}

type SchoolStats struct {
	UsersByRole        map[string]int64 `json:"users_by_role"`
	UsersByStatus      map[string]int64 `json:"users_by_status"`
	Classes            []ClassSize      `json:"classes"`
	PendingSuggestions int64            `json:"pending_suggestions"`
	GeneratedAt        time.Time        `json:"generated_at"`
}

// ===== ATTENDANCE / GRADE VIEWS =====

type StudentAttendance struct {
	Date      string `json:"date"`
	TeacherID string `json:"teacherId"`
	Present   bool   `json:"present"`
}

type AttendanceSummary struct {
	StudentID string  `json:"studentId"`
	Present   int     `json:"present"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"`
}

type StudentScore struct {
	ReportID string  `json:"reportId"`
	Subject  string  `json:"subject"`
	Type     string  `json:"type"`
	Date     string  `json:"date"`
	Score    float64 `json:"score"`
}

type GradeAverage struct {
	Key     string  `json:"key"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type GradeAverages struct {
	ByStudent []GradeAverage `json:"by_student"`
	BySubject []GradeAverage `json:"by_subject"`
}

// ===== IMPORT DTOs =====

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

type LegacyImportResult struct {
	MoviesImported   int `json:"movies_imported"`
	MoviesSkipped    int `json:"movies_skipped"`
	ScheduleImported int `json:"schedule_imported"`
	ScheduleSkipped  int `json:"schedule_skipped"`
}

// ===== VALIDATION RESPONSES =====

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

// ===== ERROR RESPONSES =====

type ErrorResponse struct {
	Error            string                    `json:"error"`
	Message          string                    `json:"message"`
	Code             string                    `json:"code"`
	Details          interface{}               `json:"details,omitempty"`
	Timestamp        time.Time                 `json:"timestamp"`
	Path             string                    `json:"path"`
	ValidationErrors []ValidationErrorResponse `json:"validation_errors,omitempty"`
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
