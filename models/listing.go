package models

import (
	"time"
)

// Listing is a job/offer posted by a helper into the public feed.
// Listings are never deleted, only deactivated.
type Listing struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HelperID    uint      `gorm:"not null;index" json:"helper_id"`
	Helper      Helper    `gorm:"foreignKey:HelperID;constraint:OnDelete:CASCADE" json:"-"`
	ServiceID   uint      `gorm:"not null;index" json:"service_id"`
	Service     Service   `gorm:"foreignKey:ServiceID;constraint:OnDelete:RESTRICT" json:"-"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	PriceCents  int       `gorm:"not null;check:price_cents > 0" json:"price_cents"`
	Location    string    `json:"location"`
	Active      bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for the Listing model
func (Listing) TableName() string {
	return "listings"
}

// ListingView is a Listing joined with its helper and service names
type ListingView struct {
	ID          uint      `json:"id"`
	HelperID    uint      `json:"helper_id"`
	HelperName  string    `json:"helper_name"`
	ServiceID   uint      `json:"service_id"`
	ServiceName string    `json:"service_name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int       `json:"price_cents"`
	Location    string    `json:"location"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}
