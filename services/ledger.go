package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger owns services, helpers, listings and bookings.
// Every check-then-write runs inside a single database transaction.
type Ledger struct {
	db            *gorm.DB
	notifications *NotificationDispatcher
	images        ImageService
	logger        *slog.Logger
}

// LedgerOption customizes a Ledger
type LedgerOption func(*Ledger)

// WithNotifications sets the dispatcher used for booking notifications
func WithNotifications(d *NotificationDispatcher) LedgerOption {
	return func(l *Ledger) { l.notifications = d }
}

// WithImages enables helper profile photos backed by the given image service
func WithImages(images ImageService) LedgerOption {
	return func(l *Ledger) { l.images = images }
}

// WithLogger sets the ledger logger
func WithLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) { l.logger = logger }
}

// NewLedger creates a ledger on top of db
func NewLedger(db *gorm.DB, opts ...LedgerOption) *Ledger {
	l := &Ledger{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Migrate creates or updates the ledger tables
func (l *Ledger) Migrate() error {
	if err := l.db.AutoMigrate(&models.Service{}, &models.Helper{}, &models.Listing{}, &models.Booking{}); err != nil {
		return fmt.Errorf("failed to migrate ledger: %w", err)
	}
	return nil
}

type seedHelper struct {
	suffix   string
	bio      string
	feeCents int
	rating   float64
}

// SeedServiceNames is the catalog created on an empty database
var SeedServiceNames = []string{"Plumber", "Carpenter", "Cleaner", "Salon", "Electrician", "Painter"}

// Seed fills the catalog and the operator-seeded helpers when the tables are empty
func (l *Ledger) Seed(ctx context.Context) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var services int64
		if err := tx.Model(&models.Service{}).Count(&services).Error; err != nil {
			return err
		}
		if services == 0 {
			for _, name := range SeedServiceNames {
				svc := models.Service{Name: name}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&svc).Error; err != nil {
					return fmt.Errorf("failed to seed service %s: %w", name, err)
				}
			}
		}

		var helpers int64
		if err := tx.Model(&models.Helper{}).Count(&helpers).Error; err != nil {
			return err
		}
		if helpers > 0 {
			return nil
		}

		var catalog []models.Service
		if err := tx.Order("id").Find(&catalog).Error; err != nil {
			return err
		}
		for _, svc := range catalog {
			for _, h := range []seedHelper{
				{"Pro A", "Experienced %s with 5+ years.", 3000, 4.6},
				{"Pro B", "Certified %s specialist.", 3500, 4.8},
			} {
				helper := models.Helper{
					ServiceID: svc.ID,
					Name:      svc.Name + " " + h.suffix,
					Bio:       fmt.Sprintf(h.bio, strings.ToLower(svc.Name)),
					FeeCents:  h.feeCents,
					Rating:    h.rating,
				}
				if err := tx.Omit(clause.Associations).Create(&helper).Error; err != nil {
					return fmt.Errorf("failed to seed helper %s: %w", helper.Name, err)
				}
			}
		}
		l.logger.InfoContext(ctx, "seeded catalog", slog.Int("services", len(catalog)))
		return nil
	})
}

// requireService returns InvalidReference when the service does not exist
func requireService(tx *gorm.DB, serviceID uint) error {
	var count int64
	if err := tx.Model(&models.Service{}).Where("id = ?", serviceID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperror.New(apperror.InvalidReference, "Service not found")
	}
	return nil
}

// notFoundAs converts gorm's missing-record error into a NotFound application error
func notFoundAs(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.New(apperror.NotFound, message)
	}
	return err
}
