package router

import (
	"time"

	"hotspot/config"
	"hotspot/internal/auth"
	"hotspot/internal/domain"
	"hotspot/internal/events"
	"hotspot/internal/handler"
	"hotspot/internal/middleware"
	"hotspot/internal/repository"
	"hotspot/internal/service"
	"hotspot/internal/wallet"
	"hotspot/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the collaborators built in main. Pusher, Mailer and Deduper are
// optional.
type Deps struct {
	Stores *repository.Stores
	Bus    *events.Bus
	// Writes receives events from the service write paths. Nil means Bus.
	Writes   service.Publisher
	Hub      *ws.Hub
	Passes   handler.PassGenerator
	Receipts service.ReceiptUploader
	Pusher   service.Pusher
	Mailer   service.Mailer
	Deduper  service.Deduper
	Log      *zap.Logger
	// Done stops background maintenance such as rate limiter cleanup.
	Done <-chan struct{}
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Claim-Key"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}

// Setup wires services and routes. The returned handler must be run on the
// event bus for triggers to fire.
func Setup(cfg *config.Config, d Deps) (*gin.Engine, events.Handler) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	log := d.Log
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	if d.Done != nil {
		go limiter.RunCleanup(time.Minute, d.Done)
	}
	r.Use(middleware.RateLimit(limiter))

	// Services
	notifOpts := []service.NotificationOption{service.WithBroadcaster(d.Hub)}
	if d.Pusher != nil {
		notifOpts = append(notifOpts, service.WithPusher(d.Pusher))
	}
	if d.Mailer != nil {
		notifOpts = append(notifOpts, service.WithMailer(d.Mailer, cfg.Admin.Email))
	}
	notifSvc := service.NewNotificationService(d.Stores.Notifications, d.Stores.Users, log, notifOpts...)

	triggerOpts := []service.TriggerOption{service.WithPaymentFeed(d.Hub)}
	if d.Deduper != nil {
		triggerOpts = append(triggerOpts, service.WithDeduper(d.Deduper))
	}
	triggerSvc := service.NewTriggerService(notifSvc, d.Stores.Users, log, triggerOpts...)

	var writes service.Publisher = d.Bus
	if d.Writes != nil {
		writes = d.Writes
	}
	authSvc := service.NewAuthService(cfg)
	paymentSvc := service.NewPaymentService(d.Stores.Payments, d.Stores.Users, d.Receipts,
		auth.NewHotspotIssuer(&cfg.JWT), writes, log)
	ticketSvc := service.NewTicketService(d.Stores.Tickets, writes)
	postSvc := service.NewPostService(d.Stores.Posts, writes)
	referralSvc := service.NewReferralService(d.Stores.Referrals, writes)

	// Handlers
	walletHandler := handler.NewWalletHandler(d.Passes, cfg.Wallet.ContentDir, log)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, log)
	notificationHandler := handler.NewNotificationHandler(notifSvc, log)
	adminHandler := handler.NewAdminHandler(authSvc, paymentSvc, ticketSvc, log)
	communityHandler := handler.NewCommunityHandler(ticketSvc, postSvc, referralSvc, log)

	r.GET("/health", walletHandler.Health)
	r.GET("/passes/:filename", walletHandler.ServePass)
	if cfg.Wallet.ReceiptDir != "" {
		r.Static("/receipts", cfg.Wallet.ReceiptDir)
	}

	r.GET("/ws/notifications", ws.UpgradeUserWS(d.Hub, log))
	r.GET("/ws/admin", ws.UpgradeAdminWS(&cfg.JWT, d.Hub, log))

	api := r.Group("/api")
	{
		wal := api.Group("/wallet")
		wal.POST("/apple-pass", walletHandler.ApplePass)
		wal.POST("/google-pay", walletHandler.Card(wallet.KindGoogle))
		wal.POST("/samsung-pay", walletHandler.Card(wallet.KindSamsung))
		wal.POST("/generic-pass", walletHandler.Card(wallet.KindGeneric))

		api.POST("/payments", paymentHandler.Submit)
		api.GET("/payments/:id", paymentHandler.Get)
		api.GET("/payments/:id/token", paymentHandler.ClaimToken)
		api.GET("/users/:userId/payments", paymentHandler.ListForUser)

		api.GET("/notifications", notificationHandler.List)
		api.PUT("/notifications/:id/read", notificationHandler.MarkRead)

		api.POST("/support-tickets", communityHandler.CreateTicket)
		api.GET("/support-tickets", communityHandler.ListTickets)
		api.POST("/bulletin-posts", communityHandler.CreatePost)
		api.GET("/bulletin-posts", communityHandler.ListPosts)
		api.POST("/referrals", communityHandler.CreateReferral)
		api.GET("/referrals", communityHandler.ListReferrals)

		api.POST("/admin/login", adminHandler.Login)
		admin := api.Group("/admin", middleware.AuthRequired(&cfg.JWT), middleware.RequireRole(domain.RoleAdmin))
		{
			admin.GET("/payments", adminHandler.ListPayments)
			admin.PATCH("/payments/:id", adminHandler.DecidePayment)
			admin.GET("/support-tickets", adminHandler.ListTickets)
			admin.PATCH("/support-tickets/:id", adminHandler.UpdateTicket)
			admin.GET("/notifications", notificationHandler.ListAdmin)
			admin.PUT("/notifications/:id/read", notificationHandler.MarkAdminRead)
			admin.POST("/notifications", notificationHandler.SendManual)
		}
	}

	return r, triggerSvc.Handle
}
