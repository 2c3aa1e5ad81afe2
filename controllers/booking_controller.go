package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/middleware"
	"github.com/homehelp/homehelp-api/services"
)

// CreateBookingRequest is the body of POST /bookings. scheduled_at is RFC 3339.
type CreateBookingRequest struct {
	ServiceID   uint   `json:"service_id"`
	HelperID    uint   `json:"helper_id"`
	ScheduledAt string `json:"scheduled_at"`
	Notes       string `json:"notes"`
}

// BookingController manages the caller's bookings
type BookingController struct {
	ledger *services.Ledger
}

// NewBookingController creates a booking controller
func NewBookingController(ledger *services.Ledger) *BookingController {
	return &BookingController{ledger: ledger}
}

// ListMine handles GET /bookings
func (bc *BookingController) ListMine(c *gin.Context) {
	caller, err := middleware.GetVerifiedCaller(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	bookings, err := bc.ledger.ListMyBookings(c.Request.Context(), caller)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Create handles POST /bookings
func (bc *BookingController) Create(c *gin.Context) {
	caller, err := middleware.GetVerifiedCaller(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	var req CreateBookingRequest
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}

	var scheduledAt time.Time
	if req.ScheduledAt != "" {
		scheduledAt, err = time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			apperror.Respond(c, apperror.Wrap(apperror.InvalidInput, "Invalid scheduled_at", err))
			return
		}
	}

	booking, err := bc.ledger.CreateBooking(c.Request.Context(), caller, services.BookingInput{
		ServiceID:   req.ServiceID,
		HelperID:    req.HelperID,
		ScheduledAt: scheduledAt,
		Notes:       req.Notes,
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// Cancel handles POST /bookings/:id/cancel
func (bc *BookingController) Cancel(c *gin.Context) {
	caller, err := middleware.GetVerifiedCaller(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	id, err := paramID(c, "id")
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	booking, err := bc.ledger.CancelBooking(c.Request.Context(), caller, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}
