package models

import (
	"time"
)

// Identity roles
const (
	RoleUser   = "user"
	RoleHelper = "helper"
)

// Identity represents an account that can authenticate (user or helper role)
type Identity struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:'user'" json:"role"` // "user" or "helper"
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Identity model
func (Identity) TableName() string {
	return "users"
}

// ValidRole reports whether role is one an Identity can be registered with
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleHelper
}
