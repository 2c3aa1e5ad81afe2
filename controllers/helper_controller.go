package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/middleware"
	"github.com/homehelp/homehelp-api/services"
)

// PhotoFormField is the multipart field carrying a helper photo
const PhotoFormField = "image"

// UpsertHelperRequest is the body of PUT /helpers/me
type UpsertHelperRequest struct {
	ServiceID       uint   `json:"service_id"`
	Name            string `json:"name"`
	Bio             string `json:"bio"`
	FeeCents        *int   `json:"fee_cents"`
	ExperienceYears int    `json:"experience_years"`
	Location        string `json:"location"`
}

// HelperController manages the caller's own helper profile
type HelperController struct {
	ledger *services.Ledger
}

// NewHelperController creates a helper controller
func NewHelperController(ledger *services.Ledger) *HelperController {
	return &HelperController{ledger: ledger}
}

// GetMine handles GET /helpers/me. The profile is null when the caller has none.
func (hc *HelperController) GetMine(c *gin.Context) {
	caller, err := middleware.GetVerifiedCaller(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	helper, err := hc.ledger.MyHelper(c.Request.Context(), caller)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"helper": helper})
}

// UpsertMine handles PUT /helpers/me
func (hc *HelperController) UpsertMine(c *gin.Context) {
	caller, err := middleware.GetVerifiedCaller(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	var req UpsertHelperRequest
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}

	helper, err := hc.ledger.UpsertMyHelper(c.Request.Context(), caller, services.HelperProfileInput{
		ServiceID:       req.ServiceID,
		Name:            req.Name,
		Bio:             req.Bio,
		FeeCents:        req.FeeCents,
		ExperienceYears: req.ExperienceYears,
		Location:        req.Location,
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"helper": helper})
}

// UploadPhoto handles PUT /helpers/me/photo (multipart, field "image")
func (hc *HelperController) UploadPhoto(c *gin.Context) {
	caller, err := middleware.GetVerifiedCaller(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	fileHeader, err := c.FormFile(PhotoFormField)
	if err != nil {
		apperror.Respond(c, apperror.Wrap(apperror.MissingFields, "No image uploaded", err))
		return
	}

	helper, err := hc.ledger.UploadMyHelperPhoto(c.Request.Context(), caller, fileHeader)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"helper": helper})
}
