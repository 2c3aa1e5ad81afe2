package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HelperProfileInput is the desired state of the caller's helper profile
type HelperProfileInput struct {
	ServiceID       uint
	Name            string
	Bio             string
	FeeCents        *int // nil means the default fee
	ExperienceYears int
	Location        string
}

// helperUpsertColumns are overwritten when the caller already has a profile.
// Rating and photo are not caller-controlled.
var helperUpsertColumns = []string{"service_id", "name", "bio", "fee_cents", "experience_years", "location", "updated_at"}

// UpsertMyHelper creates the caller's helper profile or updates it in place.
// The profile is keyed by the owning identity, so a caller can never touch
// another identity's helper. The unique index on identity_id plus
// INSERT ... ON CONFLICT makes the existence check and the write one atomic step.
func (l *Ledger) UpsertMyHelper(ctx context.Context, caller models.VerifiedCaller, in HelperProfileInput) (*models.HelperProfile, error) {
	name := strings.TrimSpace(in.Name)
	if in.ServiceID == 0 || name == "" {
		return nil, apperror.New(apperror.MissingFields, "Service and name are required")
	}
	fee := models.DefaultHelperFeeCents
	if in.FeeCents != nil {
		fee = *in.FeeCents
	}
	if fee < 0 || in.ExperienceYears < 0 {
		return nil, apperror.New(apperror.InvalidInput, "Fee and experience must not be negative")
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireService(tx, in.ServiceID); err != nil {
			return err
		}

		identityID := caller.ID
		helper := models.Helper{
			IdentityID:      &identityID,
			ServiceID:       in.ServiceID,
			Name:            name,
			Bio:             strings.TrimSpace(in.Bio),
			FeeCents:        fee,
			Rating:          models.DefaultHelperRating,
			ExperienceYears: in.ExperienceYears,
			Location:        strings.TrimSpace(in.Location),
		}
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity_id"}},
			DoUpdates: clause.AssignmentColumns(helperUpsertColumns),
		}).Create(&helper).Error
	})
	if err != nil {
		return nil, err
	}

	profile, err := l.MyHelper(ctx, caller)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("helper profile for identity %d missing after upsert", caller.ID)
	}
	return profile, nil
}

// ensureHelper returns the caller's helper, provisioning one for serviceID when the
// caller holds the helper capability and has no profile yet. Must run inside tx.
func ensureHelper(tx *gorm.DB, caller models.VerifiedCaller, serviceID uint) (*models.Helper, bool, error) {
	var helper models.Helper
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("identity_id = ?", caller.ID).Take(&helper).Error
	if err == nil {
		return &helper, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if !caller.CanProvideServices() {
		return nil, false, apperror.New(apperror.Forbidden, "A helper profile is required to post listings")
	}

	identityID := caller.ID
	helper = models.Helper{
		IdentityID: &identityID,
		ServiceID:  serviceID,
		Name:       caller.DisplayName(),
		FeeCents:   models.DefaultHelperFeeCents,
		Rating:     models.DefaultHelperRating,
	}
	err = tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity_id"}},
		DoNothing: true,
	}).Create(&helper).Error
	if err != nil {
		return nil, false, err
	}

	// A concurrent request provisioned the profile first.
	if helper.ID == 0 {
		if err := tx.Where("identity_id = ?", caller.ID).Take(&helper).Error; err != nil {
			return nil, false, err
		}
		return &helper, false, nil
	}
	return &helper, true, nil
}

// UploadMyHelperPhoto stores a new profile photo for the caller's helper and
// removes the previous one.
func (l *Ledger) UploadMyHelperPhoto(ctx context.Context, caller models.VerifiedCaller, fileHeader *multipart.FileHeader) (*models.HelperProfile, error) {
	if l.images == nil {
		return nil, apperror.New(apperror.NotFound, "Photo uploads are not enabled")
	}

	var helper models.Helper
	if err := l.db.WithContext(ctx).Where("identity_id = ?", caller.ID).Take(&helper).Error; err != nil {
		return nil, notFoundAs(err, "Helper profile not found")
	}

	key, err := l.images.UploadImage(ctx, fmt.Sprintf("helpers/%d", helper.ID), fileHeader)
	if err != nil {
		return nil, err
	}

	// Update writes the new key back into helper, so keep the old one first
	previous := helper.PhotoKey
	if err := l.db.WithContext(ctx).Model(&helper).Update("photo_key", key).Error; err != nil {
		return nil, fmt.Errorf("failed to save photo key: %w", err)
	}

	if previous != nil && *previous != key {
		if err := l.images.DeleteImage(ctx, *previous); err != nil {
			l.logger.WarnContext(ctx, "failed to delete previous helper photo",
				slog.Uint64("helper_id", uint64(helper.ID)),
				slog.Any("error", err),
			)
		}
	}

	return l.MyHelper(ctx, caller)
}

// attachPhotoURL fills PhotoURL with a presigned link when the helper has a photo
func (l *Ledger) attachPhotoURL(ctx context.Context, profile *models.HelperProfile) {
	if l.images == nil || profile.PhotoKey == nil {
		return
	}
	url, err := l.images.GetImageURL(ctx, *profile.PhotoKey)
	if err != nil {
		l.logger.WarnContext(ctx, "failed to presign helper photo",
			slog.Uint64("helper_id", uint64(profile.ID)),
			slog.Any("error", err),
		)
		return
	}
	profile.PhotoURL = &url
}
