package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
	RoleUser    UserRole = "user"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleUser:
		return true
	}
	return false
}

// IsStaff reports whether the role may manage school data.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleTeacher
}

type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
	UserStatusRejected UserStatus = "rejected"
)

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusPending, UserStatusApproved, UserStatusRejected:
		return true
	}
	return false
}

type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	Email        string     `json:"email" gorm:"size:255;uniqueIndex:idx_users_email_unique,where:email <> ''"`
	Role         UserRole   `json:"role" gorm:"not null;size:20;default:user;index"`
	Status       UserStatus `json:"status" gorm:"not null;size:20;default:pending;index"`
	StudentClass string     `json:"studentClass" gorm:"size:36;index"`
	LoginID      string     `json:"loginId" gorm:"size:64;uniqueIndex:idx_users_login_id_unique,where:login_id <> ''"`
	DisplayName  string     `json:"displayName" gorm:"size:100"`

	// Credentials and linked identities
	PasswordHash string `json:"-" gorm:"size:255"`
	GoogleID     string `json:"-" gorm:"size:255;index"`
	CasdoorID    string `json:"-" gorm:"size:255;index"`

	// Preferences
	Language       string `json:"language" gorm:"size:10;default:en"`
	LegacyMigrated bool   `json:"legacyMigrated" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.ID = newID(u.ID)
	return nil
}

// IsApproved reports whether the account may see protected views.
func (u *User) IsApproved() bool {
	return u != nil && u.Status == UserStatusApproved
}
