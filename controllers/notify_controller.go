package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/services"
)

// NotifyRequest is the body of POST /notify
type NotifyRequest struct {
	Event   string `json:"event"`
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// NotifyController receives notifications from the booking service
type NotifyController struct {
	notifier services.Notifier
}

// NewNotifyController creates a controller delivering through notifier
func NewNotifyController(notifier services.Notifier) *NotifyController {
	return &NotifyController{notifier: notifier}
}

// Notify handles POST /notify
func (nc *NotifyController) Notify(c *gin.Context) {
	var req NotifyRequest
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}

	err := nc.notifier.Notify(c.Request.Context(), services.Notification{
		Event:   req.Event,
		To:      req.To,
		Subject: req.Subject,
		Text:    req.Text,
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
