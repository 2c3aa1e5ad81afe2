package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notification events raised by the booking lifecycle
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// BookingInput describes a booking request
type BookingInput struct {
	ServiceID   uint
	HelperID    uint
	ScheduledAt time.Time
	Notes       string
}

// CreateBooking books a helper for a service on behalf of the caller.
// The helper/service check holds a share lock on the helper row until the
// insert commits, so the helper cannot be moved to another service in between.
// The confirmation is sent after commit and never affects the result.
func (l *Ledger) CreateBooking(ctx context.Context, caller models.VerifiedCaller, in BookingInput) (*models.Booking, error) {
	if in.ServiceID == 0 || in.HelperID == 0 || in.ScheduledAt.IsZero() {
		return nil, apperror.New(apperror.MissingFields, "Missing fields")
	}

	var booking models.Booking
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var helper models.Helper
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("id = ? AND service_id = ?", in.HelperID, in.ServiceID).
			Take(&helper).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(apperror.InvalidReference, "Helper not available for service")
		}
		if err != nil {
			return err
		}

		helperID := helper.ID
		booking = models.Booking{
			UserID:      caller.ID,
			UserEmail:   caller.Email,
			ServiceID:   in.ServiceID,
			HelperID:    &helperID,
			ScheduledAt: in.ScheduledAt.UTC(),
			Status:      models.BookingConfirmed,
		}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			booking.Notes = &notes
		}
		return tx.Omit(clause.Associations).Create(&booking).Error
	})
	if err != nil {
		return nil, err
	}

	l.notifications.Dispatch(Notification{
		Event:   EventBookingConfirmed,
		To:      caller.Email,
		Subject: "Booking confirmed",
		Text: fmt.Sprintf("Your booking #%d is confirmed for service %d at %s.",
			booking.ID, booking.ServiceID, booking.ScheduledAt.Format(time.RFC3339)),
	})
	return &booking, nil
}

// CancelBooking moves the caller's booking from confirmed to cancelled.
// The update is conditioned on the current status, so cancelling twice is a
// no-op that returns the already-cancelled booking. Bookings that do not exist
// or belong to someone else are NotFound.
func (l *Ledger) CancelBooking(ctx context.Context, caller models.VerifiedCaller, id uint) (*models.Booking, error) {
	var booking models.Booking
	var changed bool
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND user_id = ? AND status <> ?", id, caller.ID, models.BookingCancelled).
			Update("status", models.BookingCancelled)
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected == 1

		if err := tx.Where("id = ? AND user_id = ?", id, caller.ID).Take(&booking).Error; err != nil {
			return notFoundAs(err, "Booking not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		l.notifications.Dispatch(Notification{
			Event:   EventBookingCancelled,
			To:      caller.Email,
			Subject: "Booking cancelled",
			Text:    fmt.Sprintf("Your booking #%d has been cancelled.", booking.ID),
		})
	}
	return &booking, nil
}

// ListMyBookings returns the caller's bookings, newest first, with service and
// helper names joined at read time. HelperName is nil if the helper was removed.
func (l *Ledger) ListMyBookings(ctx context.Context, caller models.VerifiedCaller) ([]models.BookingView, error) {
	bookings := make([]models.BookingView, 0)
	err := l.db.WithContext(ctx).Table("bookings AS b").
		Select("b.id, b.service_id, s.name AS service_name, b.helper_id, h.name AS helper_name, " +
			"b.scheduled_at, b.notes, b.status, b.created_at").
		Joins("JOIN services AS s ON s.id = b.service_id").
		Joins("LEFT JOIN helpers AS h ON h.id = b.helper_id").
		Where("b.user_id = ?", caller.ID).
		Order("b.created_at DESC, b.id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}
