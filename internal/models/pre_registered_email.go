package models

import (
	"time"

	"gorm.io/gorm"
)

type PreRegisteredEmail struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" gorm:"not null;size:255;uniqueIndex"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

func (PreRegisteredEmail) TableName() string {
	return "pre_registered_emails"
}

func (p *PreRegisteredEmail) BeforeCreate(tx *gorm.DB) error {
	p.ID = newID(p.ID)
	return nil
}
