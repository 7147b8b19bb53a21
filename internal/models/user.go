package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// User is created on the first successful identity exchange and keyed by the
// provider subject. Role is server-controlled and never taken from a request.
type User struct {
	ID         string   `json:"id" gorm:"primaryKey;size:255"`
	ExternalID string   `json:"external_id" gorm:"uniqueIndex;not null;size:255"`
	Email      string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	FullName   string   `json:"full_name" gorm:"not null;size:100"`
	Role       UserRole `json:"role" gorm:"not null;default:student;size:20"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
