package handler

import (
	"net/http"

	"digilinex/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type NotificationHandler struct {
	svc NotificationServicer
	log logrus.FieldLogger
}

func NewNotificationHandler(svc NotificationServicer, log logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{svc: svc, log: log.WithField("component", "notification_handler")}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	list, total, err := h.svc.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	unread, err := h.svc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	resp := paged(list, total, page, limit)
	resp["unread"] = unread
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.svc.MarkAllRead(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
