package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Weekday string

const (
	Monday    Weekday = "Mon"
	Tuesday   Weekday = "Tue"
	Wednesday Weekday = "Wed"
	Thursday  Weekday = "Thu"
	Friday    Weekday = "Fri"
	Saturday  Weekday = "Sat"
	Sunday    Weekday = "Sun"
)

// Weekdays lists the schedule days in display order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) IsValid() bool {
	return d.Index() >= 0
}

// Index returns the position of the day in the week, or -1.
func (d Weekday) Index() int {
	for i, day := range Weekdays {
		if day == d {
			return i
		}
	}
	return -1
}

type ScheduleEntry struct {
	ID         string                      `json:"id" gorm:"primaryKey;size:36"`
	Day        Weekday                     `json:"day" gorm:"not null;size:3;index"`
	MovieID    string                      `json:"movieId" gorm:"not null;size:36;index"`
	Title      string                      `json:"title" gorm:"size:255"`
	PosterPath string                      `json:"poster_path" gorm:"size:255"`
	Classes    datatypes.JSONSlice[string] `json:"classes"`
}

func (ScheduleEntry) TableName() string {
	return "schedule"
}

func (e *ScheduleEntry) BeforeCreate(tx *gorm.DB) error {
	e.ID = newID(e.ID)
	return nil
}

// HasClass reports whether the entry is shown to the given class.
// Entries without classes are shown to everyone.
func (e *ScheduleEntry) HasClass(classID string) bool {
	if len(e.Classes) == 0 {
		return true
	}
	for _, c := range e.Classes {
		if c == classID {
			return true
		}
	}
	return false
}
