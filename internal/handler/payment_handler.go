package handler

import (
	"net/http"
	"strconv"
	"strings"

	"hotspot/internal/repository"
	"hotspot/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxReceiptBytes = 10 << 20

type PaymentHandler struct {
	svc *service.PaymentService
	log *zap.Logger
}

func NewPaymentHandler(svc *service.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, log: log.Named("payments")}
}

// Submit accepts the payment form with its receipt image.
// POST /api/payments (multipart)
func (h *PaymentHandler) Submit(c *gin.Context) {
	fh, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt file is required"})
		return
	}
	if fh.Size > maxReceiptBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt exceeds 10MB"})
		return
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt must be an image"})
		return
	}
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a number"})
		return
	}
	minutes, err := strconv.Atoi(c.PostForm("durationMinutes"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "durationMinutes must be an integer"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read receipt"})
		return
	}
	defer f.Close()

	p, err := h.svc.Submit(c.Request.Context(), service.SubmitPaymentInput{
		UserID:          c.PostForm("userId"),
		Email:           c.PostForm("email"),
		Username:        c.PostForm("username"),
		SinpeID:         c.PostForm("sinpeId"),
		PackageName:     c.PostForm("packageName"),
		Price:           price,
		DurationMinutes: minutes,
		Receipt:         f,
		ReceiptName:     fh.Filename,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "payment": p})
}

// Get returns one payment; clients poll it or listen on the websocket.
// GET /api/payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}

// ListForUser GET /api/users/:userId/payments
func (h *PaymentHandler) ListForUser(c *gin.Context) {
	limit, offset := page(c)
	list, err := h.svc.List(c.Request.Context(), repository.PaymentFilter{
		UserID: c.Param("userId"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list, "count": len(list)})
}

// ClaimToken hands out the access token of an approved payment to the
// submitter, who proves it with the claim key returned by Submit.
// GET /api/payments/:id/token (header X-Claim-Key)
func (h *PaymentHandler) ClaimToken(c *gin.Context) {
	tok, err := h.svc.ClaimToken(c.Request.Context(), c.Param("id"), c.GetHeader("X-Claim-Key"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}
