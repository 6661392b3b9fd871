package models

import (
	"time"

	"gorm.io/gorm"
)

type Class struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"not null;size:100"`
	NameKey   string    `json:"-" gorm:"not null;size:100;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Class) TableName() string {
	return "classes"
}

func (c *Class) BeforeCreate(tx *gorm.DB) error {
	c.ID = newID(c.ID)
	return nil
}
