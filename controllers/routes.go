package controllers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/homehelp/homehelp-api/middleware"
	"github.com/homehelp/homehelp-api/services"
	"gorm.io/gorm"
)

func newEngine(logger *slog.Logger, db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))

	health := NewHealthController(db)
	r.GET("/health", health.Health)
	if db != nil {
		r.GET("/health/db", health.DatabaseStatus)
	}
	return r
}

// NewBookingRouter mounts the catalog, helper, listing and booking routes.
// The photo route is only mounted when photos is true.
func NewBookingRouter(ledger *services.Ledger, db *gorm.DB, logger *slog.Logger, photos bool) *gin.Engine {
	r := newEngine(logger, db)

	catalog := NewCatalogController(ledger)
	helpers := NewHelperController(ledger)
	listings := NewListingController(ledger)
	bookings := NewBookingController(ledger)

	r.GET("/services", catalog.ListServices)
	r.GET("/services/:id", catalog.GetService)
	r.GET("/services/:id/helpers", catalog.ListServiceHelpers)

	me := r.Group("/helpers/me", middleware.RequireVerifiedCaller())
	{
		me.GET("", helpers.GetMine)
		me.PUT("", helpers.UpsertMine)
		if photos {
			me.PUT("/photo", helpers.UploadPhoto)
		}
	}
	r.GET("/helpers/:id", catalog.GetHelper)

	r.GET("/listings", listings.List)
	r.POST("/listings", middleware.RequireVerifiedCaller(), listings.Create)

	protected := r.Group("/bookings", middleware.RequireVerifiedCaller())
	{
		protected.GET("", bookings.ListMine)
		protected.POST("", bookings.Create)
		protected.POST("/:id/cancel", bookings.Cancel)
	}

	return r
}

// NewIdentityRouter mounts registration, login and profile routes
func NewIdentityRouter(identities *services.IdentityService, db *gorm.DB, logger *slog.Logger) *gin.Engine {
	r := newEngine(logger, db)

	auth := NewAuthController(identities)
	r.POST("/auth/register", auth.Register)
	r.POST("/auth/login", auth.Login)

	users := r.Group("/users", middleware.RequireVerifiedCaller())
	{
		users.GET("/me", auth.GetMe)
		users.PUT("/me", auth.UpdateMe)
	}

	return r
}

// NewNotifierRouter mounts POST /notify
func NewNotifierRouter(notifier services.Notifier, logger *slog.Logger) *gin.Engine {
	r := newEngine(logger, nil)

	notify := NewNotifyController(notifier)
	r.POST("/notify", notify.Notify)

	return r
}
