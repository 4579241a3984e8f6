package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"hotspot/config"
	"hotspot/internal/database"
	"hotspot/internal/docstore"
	"hotspot/internal/events"
	"hotspot/internal/logger"
	"hotspot/internal/memstore"
	"hotspot/internal/repository"
	"hotspot/internal/router"
	"hotspot/internal/service"
	"hotspot/internal/wallet"
	"hotspot/internal/ws"
	"hotspot/pkg/cloudinary"
	"hotspot/pkg/mailer"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var app *firebase.App
	if cfg.Firebase.ProjectID != "" {
		app, err = database.NewFirebaseApp(ctx, &cfg.Firebase)
		if err != nil {
			if cfg.Database.Driver == config.DriverFirestore {
				zl.Fatal("firebase", zap.Error(err))
			}
			zl.Warn("firebase disabled, push notifications off", zap.Error(err))
		}
	}

	stores, fs := openStores(ctx, cfg, app, zl)
	if fs != nil {
		defer fs.Close()
	}

	bus := events.NewBus(0, zl)
	hub := ws.NewHub()
	deps := router.Deps{
		Stores:   stores,
		Bus:      bus,
		Hub:      hub,
		Passes:   wallet.NewAppleGenerator(newSigner(cfg), cfg.Wallet.ContentDir, cfg.Wallet.BaseURL),
		Receipts: newReceipts(cfg, zl),
		Log:      zl,
		Done:     ctx.Done(),
	}
	if fcm := service.NewFCMService(ctx, app, zl); fcm != nil {
		deps.Pusher = fcm
	}
	if cfg.Mail.Host != "" {
		deps.Mailer = mailer.New(cfg.Mail)
	}
	if cfg.Redis.DedupEnabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Warn("redis unreachable, dedup checks will fail open", zap.Error(err))
		}
		deps.Deduper = service.NewRedisDeduper(rdb, cfg.Redis.DedupTTL)
	}

	watch := fs != nil && cfg.Database.Watch
	if watch {
		deps.Writes = events.Discard{}
	}
	engine, handle := router.Setup(cfg, deps)

	busDone := make(chan struct{})
	go func() {
		bus.Run(ctx, handle)
		close(busDone)
	}()
	if watch {
		go docstore.NewWatcher(fs, bus, zl).Run(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		zl.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown", zap.Error(err))
	}
	select {
	case <-busDone:
	case <-shutdownCtx.Done():
		zl.Warn("event bus did not drain before timeout")
	}
	zl.Info("server stopped")
}

func openStores(ctx context.Context, cfg *config.Config, app *firebase.App, zl *zap.Logger) (*repository.Stores, *firestore.Client) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		stores, _ := memstore.New()
		return stores, nil
	case config.DriverFirestore:
		if app == nil {
			zl.Fatal("firestore driver requires FIREBASE_PROJECT_ID and credentials")
		}
		fs, err := database.NewFirestore(ctx, app)
		if err != nil {
			zl.Fatal("firestore", zap.Error(err))
		}
		return docstore.New(fs), fs
	default:
		db, err := database.NewDB(&cfg.Database)
		if err != nil {
			zl.Fatal("database", zap.Error(err))
		}
		if err := database.AutoMigrate(db); err != nil {
			zl.Fatal("migrate", zap.Error(err))
		}
		return repository.NewGormStores(db), nil
	}
}

func newSigner(cfg *config.Config) wallet.Signer {
	id := wallet.PassIdentity{TeamID: cfg.Wallet.TeamID, PassTypeID: cfg.Wallet.PassTypeID}
	if cfg.Wallet.Mock {
		return wallet.MockSigner{Identity: id}
	}
	return wallet.NewCertSigner(wallet.CertificateConfig{
		CertPath:     cfg.Wallet.CertPath,
		CertPassword: cfg.Wallet.CertPassword,
		WWDRPath:     cfg.Wallet.WWDRPath,
		TemplateDir:  cfg.Wallet.TemplateDir,
		Identity:     id,
	})
}

func newReceipts(cfg *config.Config, zl *zap.Logger) service.ReceiptUploader {
	c := cfg.Cloudinary
	if c.CloudName != "" && c.APIKey != "" {
		cloud, err := cloudinary.NewClientFromParams(c.CloudName, c.APIKey, c.APISecret, c.Folder)
		if err == nil {
			return cloud
		}
		zl.Warn("cloudinary unavailable, storing receipts on disk", zap.Error(err))
	}
	if err := os.MkdirAll(cfg.Wallet.ReceiptDir, 0o755); err != nil {
		zl.Fatal("receipt dir", zap.Error(err))
	}
	return service.NewDiskUploader(cfg.Wallet.ReceiptDir, cfg.Wallet.BaseURL)
}
