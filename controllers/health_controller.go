package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/homehelp/homehelp-api/apperror"
	"gorm.io/gorm"
)

// HealthController answers liveness and database status probes
type HealthController struct {
	db *gorm.DB
}

// NewHealthController creates a health controller. db may be nil for
// processes without a database.
func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Health handles GET /health
func (h *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DatabaseStatus handles GET /health/db - pings the database and lists its tables
func (h *HealthController) DatabaseStatus(c *gin.Context) {
	if h.db == nil {
		apperror.Respond(c, apperror.New(apperror.NotFound, "No database configured"))
		return
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		apperror.Respond(c, err)
		return
	}

	tables, err := h.db.WithContext(c.Request.Context()).Migrator().GetTables()
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"tables": tables,
	})
}
