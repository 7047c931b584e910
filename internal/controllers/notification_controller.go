package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/services"
	"github.com/gin-gonic/gin"
)

// MailboxView is the caller's mailbox with its unread badge count
type MailboxView struct {
	Messages []models.SystemMessage `json:"messages"`
	Unread   int64                  `json:"unread"`
}

type NotificationController struct {
	service services.NotificationService
}

func NewNotificationController(service services.NotificationService) *NotificationController {
	return &NotificationController{service: service}
}

// Mailbox godoc
// @Summary Get my messages
// @Description Newest first, with the number of unread messages
// @Tags notifications
// @Produce json
// @Success 200 {object} MailboxView
// @Security BearerAuth
// @Router /api/v1/protected/notifications [get]
func (nc *NotificationController) Mailbox(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	messages, err := nc.service.Mailbox(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	unread, err := nc.service.UnreadCount(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if messages == nil {
		messages = []models.SystemMessage{}
	}
	c.JSON(http.StatusOK, MailboxView{Messages: messages, Unread: unread})
}

// MarkRead godoc
// @Summary Mark a message as read
// @Description Unknown ids are ignored
// @Tags notifications
// @Param id path string true "Message ID"
// @Success 204
// @Security BearerAuth
// @Router /api/v1/protected/notifications/{id}/read [post]
func (nc *NotificationController) MarkRead(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := nc.service.MarkRead(c.Request.Context(), actor.UserID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearAll godoc
// @Summary Delete all my messages
// @Tags notifications
// @Success 204
// @Security BearerAuth
// @Router /api/v1/protected/notifications [delete]
func (nc *NotificationController) ClearAll(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := nc.service.ClearAll(c.Request.Context(), actor.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
