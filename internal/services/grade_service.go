package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

type gradeService struct {
	changeNotifier
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewGradeService(repo repositories.Repository, notifier changeNotifier, logger *slog.Logger, validator *validator.Validator) GradeService {
	return &gradeService{
		changeNotifier: notifier,
		repo:           repo,
		logger:         logger,
		validator:      validator,
	}
}

func (s *gradeService) Create(ctx context.Context, actor Actor, req *CreateGradeReportRequest) (*models.GradeReport, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	report := &models.GradeReport{
		Subject:   strings.TrimSpace(req.Subject),
		Type:      strings.TrimSpace(req.Type),
		TeacherID: actor.UserID,
		Scores:    datatypes.NewJSONType(req.Scores),
		Date:      req.Date,
	}
	if err := s.repo.Grade().Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create grade report: %w", err)
	}

	s.logger.Info("Grade report created", "report_id", report.ID, "subject", report.Subject, "teacher_id", actor.UserID)
	s.notify(ctx, events.CollectionGrades, events.OpCreated, report.ID)
	return report, nil
}

func (s *gradeService) Update(ctx context.Context, actor Actor, id string, req *UpdateGradeReportRequest) (*models.GradeReport, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	report, err := s.owned(ctx, actor, id, "update")
	if err != nil {
		return nil, err
	}

	if req.Subject != nil {
		report.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Type != nil {
		report.Type = strings.TrimSpace(*req.Type)
	}
	if req.Scores != nil {
		report.Scores = datatypes.NewJSONType(*req.Scores)
	}
	if req.Date != nil {
		report.Date = *req.Date
	}

	if err := s.repo.Grade().Update(ctx, report); err != nil {
		return nil, repoError(err, ErrGradeNotFound, "update grade report")
	}

	s.notify(ctx, events.CollectionGrades, events.OpUpdated, report.ID)
	return report, nil
}

func (s *gradeService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.owned(ctx, actor, id, "delete"); err != nil {
		return err
	}
	if err := s.repo.Grade().Delete(ctx, id); err != nil {
		return repoError(err, ErrGradeNotFound, "delete grade report")
	}
	s.notify(ctx, events.CollectionGrades, events.OpDeleted, id)
	return nil
}

// owned loads a report the actor may change: their own, or any for admins.
func (s *gradeService) owned(ctx context.Context, actor Actor, id, action string) (*models.GradeReport, error) {
	report, err := s.repo.Grade().GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, ErrGradeNotFound, "get grade report")
	}
	if !actor.IsAdmin() && report.TeacherID != actor.UserID {
		return nil, NewPermissionError(actor.UserID, id, "grade_report", action, "created by another teacher")
	}
	return report, nil
}

func (s *gradeService) List(ctx context.Context, filters repositories.GradeFilters) ([]*models.GradeReport, error) {
	if err := s.validator.Validate(&DateRange{From: filters.From, To: filters.To}); err != nil {
		return nil, validationFailed(err)
	}
	reports, err := s.repo.Grade().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list grade reports: %w", err)
	}
	return reports, nil
}

func (s *gradeService) StudentScores(ctx context.Context, studentID string) ([]models.StudentScore, error) {
	reports, err := s.List(ctx, repositories.GradeFilters{})
	if err != nil {
		return nil, err
	}

	scores := []models.StudentScore{}
	for _, r := range reports {
		if score, ok := r.Score(studentID); ok {
			scores = append(scores, models.StudentScore{
				ReportID: r.ID,
				Subject:  r.Subject,
				Type:     r.Type,
				Date:     r.Date,
				Score:    score,
			})
		}
	}
	return scores, nil
}

// Averages computes the mean score per student and per subject.
func (s *gradeService) Averages(ctx context.Context, filters repositories.GradeFilters) (*models.GradeAverages, error) {
	reports, err := s.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	type acc struct {
		sum   float64
		count int
	}
	byStudent := make(map[string]*acc)
	bySubject := make(map[string]*acc)
	add := func(m map[string]*acc, key string, v float64) {
		a, ok := m[key]
		if !ok {
			a = &acc{}
			m[key] = a
		}
		a.sum += v
		a.count++
	}

	for _, r := range reports {
		for studentID, score := range r.Scores.Data() {
			add(byStudent, studentID, score)
			add(bySubject, r.Subject, score)
		}
	}

	flatten := func(m map[string]*acc) []models.GradeAverage {
		out := make([]models.GradeAverage, 0, len(m))
		for key, a := range m {
			out = append(out, models.GradeAverage{
				Key:     key,
				Average: roundTo(a.sum/float64(a.count), 2),
				Count:   a.count,
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
		return out
	}

	return &models.GradeAverages{
		ByStudent: flatten(byStudent),
		BySubject: flatten(bySubject),
	}, nil
}

// Export writes one row per student and one column per report.
func (s *gradeService) Export(ctx context.Context, filters repositories.GradeFilters, w io.Writer) error {
	reports, err := s.List(ctx, filters)
	if err != nil {
		return err
	}
	names, err := userNames(ctx, s.repo)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Grades"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to prepare workbook: %w", err)
	}

	header := []interface{}{"Student ID", "Student"}
	students := make(map[string]bool)
	for _, r := range reports {
		header = append(header, fmt.Sprintf("%s %s %s", r.Subject, r.Type, r.Date))
		for id := range r.Scores.Data() {
			students[id] = true
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	ids := make([]string, 0, len(students))
	for id := range students {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for i, studentID := range ids {
		values := []interface{}{studentID, names[studentID]}
		for _, r := range reports {
			if score, ok := r.Score(studentID); ok {
				values = append(values, score)
			} else {
				values = append(values, nil)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
