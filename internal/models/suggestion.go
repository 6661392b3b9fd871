package models

import (
	"time"

	"gorm.io/gorm"
)

type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

func (s SuggestionStatus) IsValid() bool {
	switch s {
	case SuggestionPending, SuggestionApproved, SuggestionRejected:
		return true
	}
	return false
}

type Suggestion struct {
	ID        string           `json:"id" gorm:"primaryKey;size:36"`
	Title     string           `json:"title" gorm:"not null;size:255"`
	Reason    string           `json:"reason" gorm:"type:text"`
	UserID    string           `json:"userId" gorm:"not null;size:36;index"`
	UserEmail string           `json:"userEmail" gorm:"size:255"`
	Status    SuggestionStatus `json:"status" gorm:"not null;size:20;default:pending;index"`
	CreatedAt time.Time        `json:"createdAt" gorm:"index"`
}

func (Suggestion) TableName() string {
	return "suggestions"
}

func (s *Suggestion) BeforeCreate(tx *gorm.DB) error {
	s.ID = newID(s.ID)
	return nil
}
