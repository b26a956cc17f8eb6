package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digilinex/config"
	"digilinex/internal/database"
	"digilinex/internal/logger"
	"digilinex/internal/metrics"
	"digilinex/internal/repository"
	"digilinex/internal/router"
	"digilinex/internal/service"
	"digilinex/internal/uow"
	"digilinex/internal/worker"
	"digilinex/internal/ws"
	"digilinex/pkg/cloudinary"
	"digilinex/pkg/objectstore"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(os.Stdout, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("migrate")
	}
	if err := database.Seed(ctx, db, cfg.Admin, log); err != nil {
		log.WithError(err).Fatal("seed")
	}

	m := metrics.New()
	hub := ws.NewHub(m)
	unit := uow.New(db)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Optional integrations
	var push service.Pusher
	if fcm := service.NewFCMService(ctx, cfg.Firebase.CredentialsFile, log); fcm != nil {
		push = fcm
		log.Info("push notifications enabled")
	} else {
		log.Info("push notifications disabled: set FIREBASE_CREDENTIALS_FILE to enable")
	}

	var cloud cloudinary.Client
	if cfg.Cloudinary.CloudName != "" {
		cloud, err = cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			log.WithError(err).Fatal("cloudinary")
		}
	}

	var files service.FileStore
	store, err := objectstore.New(ctx, objectstore.Config{
		Endpoint:     cfg.ObjectStore.Endpoint,
		Region:       cfg.ObjectStore.Region,
		Bucket:       cfg.ObjectStore.Bucket,
		AccessKey:    cfg.ObjectStore.AccessKey,
		SecretKey:    cfg.ObjectStore.SecretKey,
		UsePathStyle: cfg.ObjectStore.UsePathStyle,
		PresignTTL:   cfg.ObjectStore.PresignTTL,
	})
	if err != nil {
		log.WithError(err).Fatal("object store")
	}
	if store != nil {
		files = store
	}

	// Services
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, push, hub, log)
	referralSvc := service.NewReferralService(unit, log)
	authSvc := service.NewAuthService(&cfg.JWT, unit, referralSvc, log)
	settlementSvc := service.NewSettlementService(unit, hub, notifSvc, m, log)
	affiliateSvc := service.NewAffiliateService(unit, hub, notifSvc, m, log)
	applicantSvc := service.NewApplicantService(unit, hub, notifSvc, m, log)
	depositSvc := service.NewDepositService(unit, hub, notifSvc, log)
	catalogSvc := service.NewCatalogService(catalogRepo)
	orderSvc := service.NewOrderService(orderRepo, catalogRepo, files, hub, notifSvc, log)

	globalLimiter, authLimiter := router.NewLimiters(cfg.RateLimit)
	go globalLimiter.RunSweeper(time.Minute, ctx.Done())
	go authLimiter.RunSweeper(time.Minute, ctx.Done())

	engine := router.Setup(&router.Deps{
		Config:          cfg,
		Log:             log,
		Metrics:         m,
		Hub:             hub,
		Cloud:           cloud,
		Files:           files,
		Users:           userRepo,
		Wallets:         walletRepo,
		Catalog:         catalogRepo,
		Admin:           repository.NewAdminRepository(db),
		Settings:        settingRepo,
		Audit:           repository.NewAuditRepository(db),
		Affiliate:       repository.NewAffiliateRepository(db),
		Applicant:       repository.NewApplicantRepository(db),
		AuthSvc:         authSvc,
		SettlementSvc:   settlementSvc,
		DepositSvc:      depositSvc,
		ReferralSvc:     referralSvc,
		AffiliateSvc:    affiliateSvc,
		ApplicantSvc:    applicantSvc,
		NotificationSvc: notifSvc,
		OrderSvc:        orderSvc,
		CatalogSvc:      catalogSvc,
		GlobalLimiter:   globalLimiter,
		AuthLimiter:     authLimiter,
	})

	jobs, err := worker.New(affiliateSvc, m, time.Minute, log)
	if err != nil {
		log.WithError(err).Fatal("worker")
	}
	if err := jobs.Start(ctx); err != nil {
		log.WithError(err).Fatal("start worker")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	go func() {
		log.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if err := jobs.Shutdown(); err != nil {
		log.WithError(err).Error("worker shutdown")
	}
	log.Info("server stopped")
}
