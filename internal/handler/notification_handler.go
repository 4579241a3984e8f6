package handler

import (
	"net/http"

	"hotspot/internal/middleware"
	"hotspot/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	svc *service.NotificationService
	log *zap.Logger
}

func NewNotificationHandler(svc *service.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, log: log.Named("notifications")}
}

// List GET /api/notifications?userId=
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}
	limit, offset := page(c)
	list, err := h.svc.ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// MarkRead PUT /api/notifications/:id/read?userId=
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListAdmin GET /api/admin/notifications
func (h *NotificationHandler) ListAdmin(c *gin.Context) {
	limit, offset := page(c)
	list, err := h.svc.ListAdmin(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// MarkAdminRead PUT /api/admin/notifications/:id/read
func (h *NotificationHandler) MarkAdminRead(c *gin.Context) {
	if err := h.svc.MarkRead(c.Request.Context(), c.Param("id"), ""); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SendManual POST /api/admin/notifications
func (h *NotificationHandler) SendManual(c *gin.Context) {
	var req service.ManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.SentBy = middleware.GetUserID(c)
	res, err := h.svc.SendManual(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if res.Admin {
		c.JSON(http.StatusOK, gin.H{"success": true, "type": "admin"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": res.Count})
}
