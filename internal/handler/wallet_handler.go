package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"hotspot/internal/wallet"
	"hotspot/pkg/credits"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PassGenerator produces a stored Apple Wallet pass.
type PassGenerator interface {
	Generate(ctx context.Context, userID, email string, c credits.Credits) (*wallet.ApplePass, error)
}

type WalletHandler struct {
	apple      PassGenerator
	contentDir string
	log        *zap.Logger
	now        func() time.Time
}

func NewWalletHandler(apple PassGenerator, contentDir string, log *zap.Logger) *WalletHandler {
	return &WalletHandler{apple: apple, contentDir: contentDir, log: log.Named("wallet"), now: time.Now}
}

type walletRequest struct {
	UserID    string          `json:"userId" binding:"required"`
	UserEmail string          `json:"userEmail"`
	Credits   credits.Credits `json:"credits"`
}

// ApplePass signs and stores a .pkpass and returns where to download it.
// POST /api/wallet/apple-pass
func (h *WalletHandler) ApplePass(c *gin.Context) {
	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId, userEmail and credits are required"})
		return
	}
	if !wallet.ValidUserID(req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId may only contain letters, digits, '-' and '_'"})
		return
	}
	pass, err := h.apple.Generate(c.Request.Context(), req.UserID, req.UserEmail, req.Credits)
	if errors.Is(err, wallet.ErrInvalidUserID) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid userId"})
		return
	}
	if err != nil {
		h.log.Error("apple pass failed", zap.String("user_id", req.UserID), zap.Error(err))
		msg := "No se pudo generar el pase de Apple Wallet"
		switch {
		case errors.Is(err, wallet.ErrSigning):
			msg = "No se pudo firmar el pase: revise el certificado"
		case errors.Is(err, wallet.ErrIO):
			msg = "No se pudo guardar el pase generado"
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Error generating Apple Wallet pass",
			"message": msg,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Apple Wallet pass generated successfully",
		"passUrl":  pass.URL,
		"filename": pass.Filename,
	})
}

// Card serves the Google, Samsung and generic endpoints. These return card
// data plus manual import steps; no provider API is called.
func (h *WalletHandler) Card(kind wallet.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req walletRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId, userEmail and credits are required"})
			return
		}
		card, err := wallet.BuildCard(kind, req.UserID, req.UserEmail, req.Credits, h.now())
		if err != nil {
			h.log.Error("card build failed", zap.String("kind", string(kind)), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Error generating " + kind.Label() + " card",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"message":      kind.Label() + " card data generated successfully",
			"data":         card,
			"instructions": kind.Instructions(),
		})
	}
}

// Health reports that the process is up.
// GET /health
func (h *WalletHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "WiFi Wallet Service is running",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

var passName = regexp.MustCompile(`^[A-Za-z0-9_.-]+\.pkpass$`)

// ServePass downloads a generated pass.
// GET /passes/:filename
func (h *WalletHandler) ServePass(c *gin.Context) {
	name := c.Param("filename")
	if !passName.MatchString(name) || name != filepath.Base(name) || name[0] == '.' {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pass name"})
		return
	}
	path := filepath.Join(h.contentDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pass not found"})
		return
	}
	c.Header("Content-Type", wallet.PassContentType)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.File(path)
}
