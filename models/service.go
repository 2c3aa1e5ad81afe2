package models

// Service is a catalog entry (Plumber, Cleaner, ...). Seeded at bootstrap and read-only afterwards.
type Service struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// ServiceDetail is a Service with the number of helpers attached to it
type ServiceDetail struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Helpers int64  `json:"helpers"`
}
