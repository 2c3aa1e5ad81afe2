package models

import (
	"time"
)

// Defaults applied to helpers that are created without explicit values
const (
	DefaultHelperFeeCents = 2500
	DefaultHelperRating   = 4.5
)

// Helper is a service-provider profile. IdentityID is nil for operator-seeded helpers.
type Helper struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	IdentityID      *uint     `gorm:"uniqueIndex" json:"identity_id"` // at most one helper per identity
	ServiceID       uint      `gorm:"not null;index" json:"service_id"`
	Service         Service   `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE" json:"-"`
	Name            string    `gorm:"not null" json:"name"`
	Bio             string    `json:"bio"`
	FeeCents        int       `gorm:"not null;check:fee_cents >= 0" json:"fee_cents"`
	Rating          float64   `gorm:"not null;default:4.5;check:rating >= 0 AND rating <= 5" json:"rating"`
	ExperienceYears int       `gorm:"not null;default:0" json:"experience_years"`
	Location        string    `json:"location"`
	PhotoKey        *string   `json:"-"` // nullable, S3 key of the profile photo
	PhotoURL        *string   `gorm:"-" json:"photo_url,omitempty"` // computed, presigned URL
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Helper model
func (Helper) TableName() string {
	return "helpers"
}

// HelperProfile is a Helper joined with its service name
type HelperProfile struct {
	ID              uint      `json:"id"`
	IdentityID      *uint     `json:"identity_id"`
	ServiceID       uint      `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	Name            string    `json:"name"`
	Bio             string    `json:"bio"`
	FeeCents        int       `json:"fee_cents"`
	Rating          float64   `json:"rating"`
	ExperienceYears int       `json:"experience_years"`
	Location        string    `json:"location"`
	PhotoKey        *string   `json:"-"`
	PhotoURL        *string   `gorm:"-" json:"photo_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
