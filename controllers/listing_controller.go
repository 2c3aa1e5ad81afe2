package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/middleware"
	"github.com/homehelp/homehelp-api/services"
)

// CreateListingRequest is the body of POST /listings
type CreateListingRequest struct {
	ServiceID   uint   `json:"service_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  int    `json:"price_cents"`
	Location    string `json:"location"`
}

// ListListingsQuery filters GET /listings
type ListListingsQuery struct {
	ServiceID uint `form:"service_id"`
	Limit     int  `form:"limit" binding:"omitempty,min=1"`
}

// ListingController serves the public listing feed
type ListingController struct {
	ledger *services.Ledger
}

// NewListingController creates a listing controller
func NewListingController(ledger *services.Ledger) *ListingController {
	return &ListingController{ledger: ledger}
}

// List handles GET /listings?service_id=&limit=
func (lc *ListingController) List(c *gin.Context) {
	var query ListListingsQuery
	if err := bindQuery(c, &query); err != nil {
		apperror.Respond(c, err)
		return
	}

	listings, err := lc.ledger.ListListings(c.Request.Context(), services.ListingFilter{
		ServiceID: query.ServiceID,
		Limit:     query.Limit,
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// Create handles POST /listings
func (lc *ListingController) Create(c *gin.Context) {
	caller, err := middleware.GetVerifiedCaller(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	var req CreateListingRequest
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}

	listing, err := lc.ledger.CreateListing(c.Request.Context(), caller, services.ListingInput{
		ServiceID:   req.ServiceID,
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Location:    req.Location,
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}
