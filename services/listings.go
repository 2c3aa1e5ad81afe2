package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Feed page sizes
const (
	DefaultListingLimit = 50
	MaxListingLimit     = 100
)

// ListingInput describes a listing to post
type ListingInput struct {
	ServiceID   uint
	Title       string
	Description string
	PriceCents  int
	Location    string
}

// ListingFilter narrows the public feed
type ListingFilter struct {
	ServiceID uint
	Limit     int
}

// CreateListing posts an active listing for the caller's helper profile,
// provisioning the profile first when the caller is a helper without one.
// Provisioning and the insert share one transaction, so a listing never
// references a helper that was not written.
func (l *Ledger) CreateListing(ctx context.Context, caller models.VerifiedCaller, in ListingInput) (*models.Listing, error) {
	title := strings.TrimSpace(in.Title)
	if in.ServiceID == 0 || title == "" || in.PriceCents <= 0 {
		return nil, apperror.New(apperror.MissingFields, "Title, service and a positive price are required")
	}

	var listing models.Listing
	var provisioned bool
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireService(tx, in.ServiceID); err != nil {
			return err
		}

		helper, created, err := ensureHelper(tx, caller, in.ServiceID)
		if err != nil {
			return err
		}
		provisioned = created

		if helper.ServiceID != in.ServiceID {
			return apperror.New(apperror.InvalidReference, "Listing service must match the helper's service")
		}

		listing = models.Listing{
			HelperID:    helper.ID,
			ServiceID:   in.ServiceID,
			Title:       title,
			Description: strings.TrimSpace(in.Description),
			PriceCents:  in.PriceCents,
			Location:    strings.TrimSpace(in.Location),
			Active:      true,
		}
		return tx.Omit(clause.Associations).Create(&listing).Error
	})
	if err != nil {
		return nil, err
	}

	if provisioned {
		l.logger.InfoContext(ctx, "provisioned helper profile from listing",
			slog.Uint64("identity_id", uint64(caller.ID)),
			slog.Uint64("helper_id", uint64(listing.HelperID)),
		)
	}
	return &listing, nil
}

// ListListings returns active listings, newest first
func (l *Ledger) ListListings(ctx context.Context, filter ListingFilter) ([]models.ListingView, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListingLimit
	}
	if limit > MaxListingLimit {
		limit = MaxListingLimit
	}

	query := l.db.WithContext(ctx).Table("listings AS l").
		Select("l.id, l.helper_id, h.name AS helper_name, l.service_id, s.name AS service_name, " +
			"l.title, l.description, l.price_cents, l.location, l.active, l.created_at").
		Joins("JOIN helpers AS h ON h.id = l.helper_id").
		Joins("JOIN services AS s ON s.id = l.service_id").
		Where("l.active = ?", true)
	if filter.ServiceID != 0 {
		query = query.Where("l.service_id = ?", filter.ServiceID)
	}

	listings := make([]models.ListingView, 0)
	if err := query.Order("l.created_at DESC, l.id DESC").Limit(limit).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}
