package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

type attendanceService struct {
	changeNotifier
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAttendanceService(repo repositories.Repository, notifier changeNotifier, logger *slog.Logger, validator *validator.Validator) AttendanceService {
	return &attendanceService{
		changeNotifier: notifier,
		repo:           repo,
		logger:         logger,
		validator:      validator,
	}
}

// Save writes the caller's attendance for a date, replacing any earlier save.
func (s *attendanceService) Save(ctx context.Context, actor Actor, req *SaveAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}
	for studentID := range req.Records {
		if strings.TrimSpace(studentID) == "" {
			return nil, fieldError("records", "student_id", "keys must be student ids", studentID)
		}
	}

	record := &models.AttendanceRecord{
		Date:      req.Date,
		TeacherID: actor.UserID,
		Records:   datatypes.NewJSONType(req.Records),
	}
	if err := s.repo.Attendance().Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save attendance: %w", err)
	}

	s.logger.Info("Attendance saved", "date", record.Date, "teacher_id", actor.UserID, "students", len(req.Records))
	s.notify(ctx, events.CollectionAttendance, events.OpReplaced, record.ID)
	return record, nil
}

func (s *attendanceService) GetByDate(ctx context.Context, date string) ([]*models.AttendanceRecord, error) {
	if err := s.validator.Var(date, "required,iso_date"); err != nil {
		return nil, validationFailed(err)
	}
	records, err := s.repo.Attendance().ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return records, nil
}

func (s *attendanceService) List(ctx context.Context, rng DateRange, teacherID *string) ([]*models.AttendanceRecord, error) {
	if err := s.validator.Validate(&rng); err != nil {
		return nil, validationFailed(err)
	}
	records, err := s.repo.Attendance().List(ctx, repositories.AttendanceFilters{
		From:      rng.From,
		To:        rng.To,
		TeacherID: teacherID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}

// StudentHistory lists every recorded day for one student, oldest first.
func (s *attendanceService) StudentHistory(ctx context.Context, studentID string, rng DateRange) ([]models.StudentAttendance, error) {
	records, err := s.List(ctx, rng, nil)
	if err != nil {
		return nil, err
	}

	history := []models.StudentAttendance{}
	for _, r := range records {
		if present, ok := r.Present(studentID); ok {
			history = append(history, models.StudentAttendance{
				Date:      r.Date,
				TeacherID: r.TeacherID,
				Present:   present,
			})
		}
	}
	return history, nil
}

// Summary counts presence per student across the range.
func (s *attendanceService) Summary(ctx context.Context, rng DateRange) ([]models.AttendanceSummary, error) {
	records, err := s.List(ctx, rng, nil)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[string]*models.AttendanceSummary)
	for _, r := range records {
		for studentID, present := range r.Records.Data() {
			sum, ok := byStudent[studentID]
			if !ok {
				sum = &models.AttendanceSummary{StudentID: studentID}
				byStudent[studentID] = sum
			}
			sum.Total++
			if present {
				sum.Present++
			}
		}
	}

	out := make([]models.AttendanceSummary, 0, len(byStudent))
	for _, sum := range byStudent {
		sum.Rate = roundTo(float64(sum.Present)/float64(sum.Total), 4)
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

// Export writes one row per student per recorded day.
func (s *attendanceService) Export(ctx context.Context, rng DateRange, w io.Writer) error {
	records, err := s.List(ctx, rng, nil)
	if err != nil {
		return err
	}
	names, err := userNames(ctx, s.repo)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attendance"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to prepare workbook: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Date", "Teacher", "Student ID", "Student", "Present"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	for _, r := range records {
		data := r.Records.Data()
		studentIDs := make([]string, 0, len(data))
		for id := range data {
			studentIDs = append(studentIDs, id)
		}
		sort.Strings(studentIDs)

		for _, studentID := range studentIDs {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			values := []interface{}{r.Date, names[r.TeacherID], studentID, names[studentID], data[studentID]}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}
	}

	return f.Write(w)
}

func (s *attendanceService) Delete(ctx context.Context, actor Actor, id string) error {
	record, err := s.repo.Attendance().GetByID(ctx, id)
	if err != nil {
		return repoError(err, ErrAttendanceNotFound, "get attendance")
	}
	if !actor.IsAdmin() && record.TeacherID != actor.UserID {
		return NewPermissionError(actor.UserID, id, "attendance", "delete", "recorded by another teacher")
	}
	if err := s.repo.Attendance().Delete(ctx, id); err != nil {
		return repoError(err, ErrAttendanceNotFound, "delete attendance")
	}
	s.notify(ctx, events.CollectionAttendance, events.OpDeleted, id)
	return nil
}

// userNames maps user ids to a printable name for exports.
func userNames(ctx context.Context, repo repositories.Repository) (map[string]string, error) {
	users, _, err := repo.User().List(ctx, repositories.UserFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		switch {
		case u.DisplayName != "":
			names[u.ID] = u.DisplayName
		case u.LoginID != "":
			names[u.ID] = u.LoginID
		default:
			names[u.ID] = u.Email
		}
	}
	return names, nil
}
