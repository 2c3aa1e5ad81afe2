package models

import (
	"time"
)

// Booking statuses. The only transition is confirmed -> cancelled.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking is a scheduled engagement between an identity and a helper for a service
type Booking struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	UserEmail   string    `json:"user_email"` // snapshot taken at creation
	ServiceID   uint      `gorm:"not null;index" json:"service_id"`
	Service     Service   `gorm:"foreignKey:ServiceID;constraint:OnDelete:RESTRICT" json:"-"`
	HelperID    *uint     `gorm:"index" json:"helper_id"` // nullable, cleared when the helper is removed
	Helper      *Helper   `gorm:"foreignKey:HelperID;constraint:OnDelete:SET NULL" json:"-"`
	ScheduledAt time.Time `gorm:"not null" json:"scheduled_at"`
	Notes       *string   `json:"notes"`
	Status      string    `gorm:"not null;default:'confirmed';index" json:"status"` // confirmed, cancelled
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// BookingView is a Booking joined with service and helper display names.
// HelperName is nil when the helper was removed after booking.
type BookingView struct {
	ID          uint      `json:"id"`
	ServiceID   uint      `json:"service_id"`
	ServiceName string    `json:"service_name"`
	HelperID    *uint     `json:"helper_id"`
	HelperName  *string   `json:"helper_name"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       *string   `json:"notes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
