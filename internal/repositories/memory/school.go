package memory

import (
	"context"
	"strings"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

type classRepo struct{ r *Repository }

func nameTaken(st *state, nameKey, exceptID string) bool {
	for id, c := range st.classes {
		if id != exceptID && c.NameKey == nameKey {
			return true
		}
	}
	return false
}

func (c classRepo) Create(ctx context.Context, class *models.Class) error {
	st, unlock := c.r.write()
	defer unlock()

	class.ID = assignID(class.ID)
	if _, exists := st.classes[class.ID]; exists || nameTaken(st, class.NameKey, "") {
		return duplicate("create class")
	}
	class.CreatedAt = c.r.now()
	st.classes[class.ID] = *class
	return nil
}

func (c classRepo) GetByID(ctx context.Context, id string) (*models.Class, error) {
	st, unlock := c.r.read()
	defer unlock()
	if class, ok := st.classes[id]; ok {
		return &class, nil
	}
	return nil, notFound("get class")
}

func (c classRepo) GetByNameKey(ctx context.Context, nameKey string) (*models.Class, error) {
	st, unlock := c.r.read()
	defer unlock()
	for _, class := range st.classes {
		if class.NameKey == nameKey {
			return &class, nil
		}
	}
	return nil, notFound("get class by name")
}

func (c classRepo) Update(ctx context.Context, class *models.Class) error {
	st, unlock := c.r.write()
	defer unlock()

	if _, ok := st.classes[class.ID]; !ok {
		return notFound("update class")
	}
	if nameTaken(st, class.NameKey, class.ID) {
		return duplicate("update class")
	}
	st.classes[class.ID] = *class
	return nil
}

func (c classRepo) Delete(ctx context.Context, id string) error {
	st, unlock := c.r.write()
	defer unlock()

	if _, ok := st.classes[id]; !ok {
		return notFound("delete class")
	}
	delete(st.classes, id)
	return nil
}

func (c classRepo) List(ctx context.Context) ([]*models.Class, error) {
	st, unlock := c.r.read()
	defer unlock()

	out := make([]*models.Class, 0, len(st.classes))
	for _, class := range st.classes {
		class := class
		out = append(out, &class)
	}
	sortItems(out, func(a, b *models.Class) int {
		return strings.Compare(a.NameKey, b.NameKey)
	}, false, func(x *models.Class) string { return x.ID })
	return out, nil
}

// ===== ATTENDANCE =====

type attendanceRepo struct{ r *Repository }

func (a attendanceRepo) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	st, unlock := a.r.write()
	defer unlock()

	now := a.r.now()
	for id, existing := range st.attendance {
		if existing.Date == record.Date && existing.TeacherID == record.TeacherID {
			record.ID = id
			record.CreatedAt = existing.CreatedAt
			record.UpdatedAt = now
			st.attendance[id] = copyAttendance(*record)
			return nil
		}
	}

	record.ID = assignID(record.ID)
	record.CreatedAt, record.UpdatedAt = now, now
	st.attendance[record.ID] = copyAttendance(*record)
	return nil
}

func (a attendanceRepo) GetByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	st, unlock := a.r.read()
	defer unlock()
	if record, ok := st.attendance[id]; ok {
		record = copyAttendance(record)
		return &record, nil
	}
	return nil, notFound("get attendance")
}

func (a attendanceRepo) GetByDateAndTeacher(ctx context.Context, date, teacherID string) (*models.AttendanceRecord, error) {
	st, unlock := a.r.read()
	defer unlock()
	for _, record := range st.attendance {
		if record.Date == date && record.TeacherID == teacherID {
			record = copyAttendance(record)
			return &record, nil
		}
	}
	return nil, notFound("get attendance by date")
}

func (a attendanceRepo) ListByDate(ctx context.Context, date string) ([]*models.AttendanceRecord, error) {
	return a.List(ctx, repositories.AttendanceFilters{From: date, To: date})
}

func (a attendanceRepo) List(ctx context.Context, filters repositories.AttendanceFilters) ([]*models.AttendanceRecord, error) {
	st, unlock := a.r.read()
	defer unlock()

	out := []*models.AttendanceRecord{}
	for _, record := range st.attendance {
		if !inDateRange(record.Date, filters.From, filters.To) {
			continue
		}
		if filters.TeacherID != nil && record.TeacherID != *filters.TeacherID {
			continue
		}
		record = copyAttendance(record)
		out = append(out, &record)
	}
	sortItems(out, func(x, y *models.AttendanceRecord) int {
		if c := strings.Compare(x.Date, y.Date); c != 0 {
			return c
		}
		return strings.Compare(x.TeacherID, y.TeacherID)
	}, false, func(x *models.AttendanceRecord) string { return x.ID })
	return out, nil
}

func (a attendanceRepo) Delete(ctx context.Context, id string) error {
	st, unlock := a.r.write()
	defer unlock()

	if _, ok := st.attendance[id]; !ok {
		return notFound("delete attendance")
	}
	delete(st.attendance, id)
	return nil
}

// ===== GRADES =====

type gradeRepo struct{ r *Repository }

func (g gradeRepo) Create(ctx context.Context, report *models.GradeReport) error {
	st, unlock := g.r.write()
	defer unlock()

	report.ID = assignID(report.ID)
	if _, exists := st.grades[report.ID]; exists {
		return duplicate("create grade report")
	}
	now := g.r.now()
	report.CreatedAt, report.UpdatedAt = now, now
	st.grades[report.ID] = copyGrade(*report)
	return nil
}

func (g gradeRepo) GetByID(ctx context.Context, id string) (*models.GradeReport, error) {
	st, unlock := g.r.read()
	defer unlock()
	if report, ok := st.grades[id]; ok {
		report = copyGrade(report)
		return &report, nil
	}
	return nil, notFound("get grade report")
}

func (g gradeRepo) Update(ctx context.Context, report *models.GradeReport) error {
	st, unlock := g.r.write()
	defer unlock()

	if _, ok := st.grades[report.ID]; !ok {
		return notFound("update grade report")
	}
	report.UpdatedAt = g.r.now()
	st.grades[report.ID] = copyGrade(*report)
	return nil
}

func (g gradeRepo) Delete(ctx context.Context, id string) error {
	st, unlock := g.r.write()
	defer unlock()

	if _, ok := st.grades[id]; !ok {
		return notFound("delete grade report")
	}
	delete(st.grades, id)
	return nil
}

func (g gradeRepo) List(ctx context.Context, filters repositories.GradeFilters) ([]*models.GradeReport, error) {
	st, unlock := g.r.read()
	defer unlock()

	out := []*models.GradeReport{}
	for _, report := range st.grades {
		if filters.Subject != nil && report.Subject != *filters.Subject {
			continue
		}
		if filters.Type != nil && report.Type != *filters.Type {
			continue
		}
		if filters.TeacherID != nil && report.TeacherID != *filters.TeacherID {
			continue
		}
		if !inDateRange(report.Date, filters.From, filters.To) {
			continue
		}
		report = copyGrade(report)
		out = append(out, &report)
	}
	sortItems(out, func(x, y *models.GradeReport) int {
		if c := strings.Compare(x.Date, y.Date); c != 0 {
			return c
		}
		return compareTime(x.CreatedAt, y.CreatedAt)
	}, false, func(x *models.GradeReport) string { return x.ID })
	return out, nil
}

// inDateRange compares YYYY-MM-DD strings; empty bounds are open.
func inDateRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}
