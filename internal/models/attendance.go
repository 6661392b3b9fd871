package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DateLayout is the calendar date format used by attendance and grades.
const DateLayout = "2006-01-02"

type AttendanceRecord struct {
	ID        string                              `json:"id" gorm:"primaryKey;size:36"`
	Date      string                              `json:"date" gorm:"not null;size:10;uniqueIndex:idx_attendance_date_teacher"`
	TeacherID string                              `json:"teacherId" gorm:"not null;size:36;uniqueIndex:idx_attendance_date_teacher"`
	Records   datatypes.JSONType[map[string]bool] `json:"records"`
	CreatedAt time.Time                           `json:"createdAt"`
	UpdatedAt time.Time                           `json:"updatedAt"`
}

func (AttendanceRecord) TableName() string {
	return "attendance"
}

func (a *AttendanceRecord) BeforeCreate(tx *gorm.DB) error {
	a.ID = newID(a.ID)
	return nil
}

// Present returns the presence flag for a student and whether it was recorded.
func (a *AttendanceRecord) Present(studentID string) (bool, bool) {
	present, ok := a.Records.Data()[studentID]
	return present, ok
}
