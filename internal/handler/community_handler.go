package handler

import (
	"net/http"

	"hotspot/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommunityHandler covers the user-side writes that feed the trigger engine:
// support tickets, bulletin posts and referrals.
type CommunityHandler struct {
	tickets   *service.TicketService
	posts     *service.PostService
	referrals *service.ReferralService
	log       *zap.Logger
}

func NewCommunityHandler(tickets *service.TicketService, posts *service.PostService, referrals *service.ReferralService, log *zap.Logger) *CommunityHandler {
	return &CommunityHandler{tickets: tickets, posts: posts, referrals: referrals, log: log.Named("community")}
}

// CreateTicket POST /api/support-tickets
func (h *CommunityHandler) CreateTicket(c *gin.Context) {
	var req service.CreateTicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	t, err := h.tickets.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ticket": t})
}

// ListTickets GET /api/support-tickets?userId=
func (h *CommunityHandler) ListTickets(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}
	limit, offset := page(c)
	list, err := h.tickets.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": list})
}

// CreatePost POST /api/bulletin-posts
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	var req service.CreatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := h.posts.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": p})
}

// ListPosts GET /api/bulletin-posts
func (h *CommunityHandler) ListPosts(c *gin.Context) {
	limit, offset := page(c)
	list, err := h.posts.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": list})
}

// CreateReferral POST /api/referrals
func (h *CommunityHandler) CreateReferral(c *gin.Context) {
	var req service.CreateReferralInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	r, err := h.referrals.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"referral": r})
}

// ListReferrals GET /api/referrals?referrerId=
func (h *CommunityHandler) ListReferrals(c *gin.Context) {
	referrerID := c.Query("referrerId")
	if referrerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "referrerId required"})
		return
	}
	limit, offset := page(c)
	list, err := h.referrals.ListByReferrer(c.Request.Context(), referrerID, limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrals": list, "count": len(list)})
}
