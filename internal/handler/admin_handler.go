package handler

import (
	"net/http"

	"hotspot/internal/middleware"
	"hotspot/internal/repository"
	"hotspot/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	auth     *service.AuthService
	payments *service.PaymentService
	tickets  *service.TicketService
	log      *zap.Logger
}

func NewAdminHandler(auth *service.AuthService, payments *service.PaymentService, tickets *service.TicketService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{auth: auth, payments: payments, tickets: tickets, log: log.Named("admin")}
}

// Login POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}
	token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ListPayments GET /api/admin/payments?status=
func (h *AdminHandler) ListPayments(c *gin.Context) {
	limit, offset := page(c)
	list, err := h.payments.List(c.Request.Context(), repository.PaymentFilter{
		Status: c.Query("status"),
		UserID: c.Query("userId"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list, "count": len(list)})
}

// DecidePayment approves or rejects a pending payment.
// PATCH /api/admin/payments/:id
func (h *AdminHandler) DecidePayment(c *gin.Context) {
	var req struct {
		Status     string `json:"status" binding:"required"`
		AdminReply string `json:"adminReply"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}
	p, err := h.payments.Decide(c.Request.Context(), c.Param("id"), req.Status, req.AdminReply)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("payment decided", zap.String("admin", middleware.GetUserID(c)), zap.String("payment_id", p.ID), zap.String("status", p.Status))
	c.JSON(http.StatusOK, gin.H{"payment": p})
}

// ListTickets GET /api/admin/support-tickets
func (h *AdminHandler) ListTickets(c *gin.Context) {
	limit, offset := page(c)
	list, err := h.tickets.List(c.Request.Context(), c.Query("userId"), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": list, "count": len(list)})
}

// UpdateTicket PATCH /api/admin/support-tickets/:id
func (h *AdminHandler) UpdateTicket(c *gin.Context) {
	var req service.UpdateTicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.AdminID = middleware.GetUserID(c)
	t, err := h.tickets.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": t})
}
