package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/homehelp/homehelp-api/models"
	"gorm.io/gorm"
)

// ListServices returns the catalog ordered by name
func (l *Ledger) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := l.db.WithContext(ctx).Order("name ASC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// GetService returns one service with the number of helpers attached to it
func (l *Ledger) GetService(ctx context.Context, id uint) (*models.ServiceDetail, error) {
	db := l.db.WithContext(ctx)

	var svc models.Service
	if err := db.First(&svc, id).Error; err != nil {
		return nil, notFoundAs(err, "Service not found")
	}

	var helpers int64
	if err := db.Model(&models.Helper{}).Where("service_id = ?", id).Count(&helpers).Error; err != nil {
		return nil, fmt.Errorf("failed to count helpers: %w", err)
	}

	return &models.ServiceDetail{ID: svc.ID, Name: svc.Name, Helpers: helpers}, nil
}

// ListHelpers returns the helpers of a service, best rated first.
// Name and id break rating ties so the order is deterministic.
func (l *Ledger) ListHelpers(ctx context.Context, serviceID uint) ([]models.HelperProfile, error) {
	db := l.db.WithContext(ctx)

	var svc models.Service
	if err := db.First(&svc, serviceID).Error; err != nil {
		return nil, notFoundAs(err, "Service not found")
	}

	helpers := make([]models.HelperProfile, 0)
	err := helperProfiles(db).
		Where("h.service_id = ?", serviceID).
		Order("h.rating DESC, h.name ASC, h.id ASC").
		Find(&helpers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list helpers: %w", err)
	}

	for i := range helpers {
		l.attachPhotoURL(ctx, &helpers[i])
	}
	return helpers, nil
}

// GetHelper returns one helper with its service name
func (l *Ledger) GetHelper(ctx context.Context, id uint) (*models.HelperProfile, error) {
	var profile models.HelperProfile
	if err := helperProfiles(l.db.WithContext(ctx)).Where("h.id = ?", id).Take(&profile).Error; err != nil {
		return nil, notFoundAs(err, "Helper not found")
	}
	l.attachPhotoURL(ctx, &profile)
	return &profile, nil
}

// MyHelper returns the helper profile owned by the caller, or nil when there is none yet
func (l *Ledger) MyHelper(ctx context.Context, caller models.VerifiedCaller) (*models.HelperProfile, error) {
	var profile models.HelperProfile
	err := helperProfiles(l.db.WithContext(ctx)).Where("h.identity_id = ?", caller.ID).Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load helper profile: %w", err)
	}
	l.attachPhotoURL(ctx, &profile)
	return &profile, nil
}

func helperProfiles(db *gorm.DB) *gorm.DB {
	return db.Table("helpers AS h").
		Select("h.id, h.identity_id, h.service_id, s.name AS service_name, h.name, h.bio, h.fee_cents, " +
			"h.rating, h.experience_years, h.location, h.photo_key, h.created_at").
		Joins("JOIN services AS s ON s.id = h.service_id")
}
