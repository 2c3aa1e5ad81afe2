package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/services"
)

// CatalogController serves the read-only service catalog and helper directory
type CatalogController struct {
	ledger *services.Ledger
}

// NewCatalogController creates a catalog controller
func NewCatalogController(ledger *services.Ledger) *CatalogController {
	return &CatalogController{ledger: ledger}
}

// ListServices handles GET /services
func (cc *CatalogController) ListServices(c *gin.Context) {
	list, err := cc.ledger.ListServices(c.Request.Context())
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": list})
}

// GetService handles GET /services/:id
func (cc *CatalogController) GetService(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	detail, err := cc.ledger.GetService(c.Request.Context(), id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": detail})
}

// ListServiceHelpers handles GET /services/:id/helpers
func (cc *CatalogController) ListServiceHelpers(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	helpers, err := cc.ledger.ListHelpers(c.Request.Context(), id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"helpers": helpers})
}

// GetHelper handles GET /helpers/:id
func (cc *CatalogController) GetHelper(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	helper, err := cc.ledger.GetHelper(c.Request.Context(), id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"helper": helper})
}
