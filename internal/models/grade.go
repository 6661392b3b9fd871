package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GradeReport struct {
	ID        string                                 `json:"id" gorm:"primaryKey;size:36"`
	Subject   string                                 `json:"subject" gorm:"not null;size:100;index"`
	Type      string                                 `json:"type" gorm:"not null;size:50;index"`
	TeacherID string                                 `json:"teacherId" gorm:"not null;size:36;index"`
	Scores    datatypes.JSONType[map[string]float64] `json:"scores"`
	Date      string                                 `json:"date" gorm:"size:10;index"`
	CreatedAt time.Time                              `json:"createdAt"`
	UpdatedAt time.Time                              `json:"updatedAt"`
}

func (GradeReport) TableName() string {
	return "grades"
}

func (g *GradeReport) BeforeCreate(tx *gorm.DB) error {
	g.ID = newID(g.ID)
	return nil
}

// Score returns the score of a student and whether one was recorded.
func (g *GradeReport) Score(studentID string) (float64, bool) {
	score, ok := g.Scores.Data()[studentID]
	return score, ok
}
