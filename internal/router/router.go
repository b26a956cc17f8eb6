package router

import (
	"net/http"

	"digilinex/config"
	"digilinex/internal/handler"
	"digilinex/internal/metrics"
	"digilinex/internal/middleware"
	"digilinex/internal/repository"
	"digilinex/internal/service"
	"digilinex/internal/ws"
	"digilinex/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Deps is everything the HTTP layer needs. main builds it once.
type Deps struct {
	Config  *config.Config
	Log     logrus.FieldLogger
	Metrics *metrics.Metrics
	Hub     *ws.Hub
	Cloud   cloudinary.Client
	Files   service.FileStore

	Users     *repository.UserRepository
	Wallets   *repository.WalletRepository
	Catalog   *repository.CatalogRepository
	Admin     *repository.AdminRepository
	Settings  *repository.SettingRepository
	Audit     *repository.AuditRepository
	Affiliate *repository.AffiliateRepository
	Applicant *repository.ApplicantRepository

	AuthSvc         *service.AuthService
	SettlementSvc   *service.SettlementService
	DepositSvc      *service.DepositService
	ReferralSvc     *service.ReferralService
	AffiliateSvc    *service.AffiliateService
	ApplicantSvc    *service.ApplicantService
	NotificationSvc *service.NotificationService
	OrderSvc        *service.OrderService
	CatalogSvc      *service.CatalogService

	GlobalLimiter *middleware.KeyedRateLimiter
	AuthLimiter   *middleware.KeyedRateLimiter
}

// NewLimiters builds the global per-IP limiter and the stricter one for auth endpoints.
func NewLimiters(cfg config.RateLimitConfig) (global, auth *middleware.KeyedRateLimiter) {
	global = middleware.NewKeyedRateLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	auth = middleware.PerMinute(cfg.AuthPerMinute)
	return global, auth
}

func Setup(d *Deps) *gin.Engine {
	cfg := d.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	if d.GlobalLimiter != nil {
		r.Use(middleware.RateLimit(d.GlobalLimiter))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws/live", ws.ServeLive(cfg, d.Hub, d.Log))

	// Handlers
	authHandler := handler.NewAuthHandler(d.AuthSvc, d.Audit, d.Log)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(&cfg.OAuth, d.AuthSvc, d.Audit, d.Log)
	meHandler := handler.NewMeHandler(d.Users, d.Wallets, d.ReferralSvc, d.NotificationSvc, d.Log)
	walletHandler := handler.NewWalletHandler(d.Wallets, d.SettlementSvc, d.Log)
	depositHandler := handler.NewDepositHandler(d.DepositSvc, d.Log)
	purchaseHandler := handler.NewPurchaseHandler(d.SettlementSvc, d.Log)
	orderHandler := handler.NewOrderHandler(d.OrderSvc, d.Audit, d.Log)
	referralHandler := handler.NewReferralHandler(d.ReferralSvc, d.Log)
	affiliateHandler := handler.NewAffiliateHandler(d.AffiliateSvc, d.Affiliate, d.Settings, d.Log)
	applicantHandler := handler.NewApplicantHandler(d.ApplicantSvc, d.Applicant, d.Log)
	notificationHandler := handler.NewNotificationHandler(d.NotificationSvc, d.Log)
	catalogHandler := handler.NewCatalogHandler(d.CatalogSvc, d.Audit, d.Log)
	uploadHandler := handler.NewUploadHandler(d.Cloud, d.Files, d.CatalogSvc, d.Log)
	adminHandler := handler.NewAdminHandler(d.Admin, d.Users, d.Settings, d.Audit, d.SettlementSvc, d.Log)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		if d.AuthLimiter != nil {
			authGroup.Use(middleware.RateLimit(d.AuthLimiter))
		}
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/admin/login", authHandler.AdminLogin)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		// Storefront
		api.GET("/categories", catalogHandler.ListCategories)
		api.GET("/categories/:id", catalogHandler.GetCategory)
		api.GET("/packages", catalogHandler.ListPackages)
		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/products/:id", catalogHandler.GetProduct)
		api.GET("/software", catalogHandler.ListSoftware)
		api.GET("/software/:id", catalogHandler.GetSoftware)
		api.GET("/wallet-purposes", walletHandler.Purposes)
		api.GET("/commission-rates", referralHandler.CommissionRates)
		api.GET("/affiliate/program", affiliateHandler.Program)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.GetProfile)
			me.PATCH("/profile", meHandler.UpdateProfile)
			me.GET("/dashboard", meHandler.Dashboard)
			me.POST("/fcm-token", meHandler.RegisterFCMToken)

			me.GET("/wallets", walletHandler.List)
			me.GET("/wallets/transactions", walletHandler.Transactions)
			me.POST("/wallets/transfer", walletHandler.Transfer)

			me.POST("/deposits", depositHandler.Create)
			me.GET("/deposits", depositHandler.Mine)

			me.GET("/orders/:kind", orderHandler.Mine)
			me.GET("/downloads/databases/:id", orderHandler.DownloadDatabase)
			me.GET("/downloads/products/:id", orderHandler.DownloadProduct)

			me.GET("/referral-code", referralHandler.GetMyCode)
			me.PUT("/referral-code", referralHandler.UpdateMyCode)
			me.GET("/referrals", referralHandler.GetMyReferrals)
			me.GET("/referrals/stats", referralHandler.Stats)
			me.GET("/commission-rate", referralHandler.MyRate)

			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)

			me.POST("/upload/image", uploadHandler.UploadImage)
			me.POST("/upload/resume", uploadHandler.UploadResume)
		}

		purchase := api.Group("/purchase")
		purchase.Use(authMw)
		{
			purchase.POST("/products/:id", purchaseHandler.BuyProduct)
			purchase.POST("/packages/:id", purchaseHandler.BuyPackage)
			purchase.POST("/software/:id", purchaseHandler.BuySoftware)
		}

		affiliate := api.Group("/affiliate")
		affiliate.Use(authMw)
		{
			affiliate.GET("/status", affiliateHandler.Status)
			affiliate.POST("/apply", affiliateHandler.Apply)
			affiliate.POST("/trust-fee", affiliateHandler.PayTrustFee)
			affiliate.POST("/contact", affiliateHandler.SubmitContact)
		}

		work := api.Group("/work-with-us")
		work.Use(authMw)
		{
			work.POST("/applications", applicantHandler.Apply)
			work.GET("/applications", applicantHandler.Mine)
			work.POST("/applications/:id/trust-fee", applicantHandler.PayTrustFee)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/analytics", adminHandler.Analytics)
			admin.GET("/audit", adminHandler.ListAudit)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSettings)

			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.PATCH("/users/:id", adminHandler.UpdateUser)
			admin.POST("/users/:id/wallet-adjust", adminHandler.AdjustWallet)
			admin.GET("/transactions", adminHandler.ListTransactions)

			admin.GET("/deposits", depositHandler.AdminList)
			admin.POST("/deposits/:id/approve", depositHandler.Approve)
			admin.POST("/deposits/:id/reject", depositHandler.Reject)

			admin.GET("/orders/:kind", orderHandler.AdminList)
			admin.POST("/database-orders/:id/deliver", orderHandler.Deliver)

			admin.GET("/categories", catalogHandler.AdminListCategories)
			admin.POST("/categories", catalogHandler.CreateCategory)
			admin.PUT("/categories/:id", catalogHandler.UpdateCategory)
			admin.DELETE("/categories/:id", catalogHandler.DeleteCategory)
			admin.GET("/packages", catalogHandler.AdminListPackages)
			admin.POST("/packages", catalogHandler.CreatePackage)
			admin.PUT("/packages/:id", catalogHandler.UpdatePackage)
			admin.DELETE("/packages/:id", catalogHandler.DeletePackage)
			admin.POST("/packages/:id/file", uploadHandler.UploadPackageFile)
			admin.GET("/products", catalogHandler.AdminListProducts)
			admin.POST("/products", catalogHandler.CreateProduct)
			admin.PUT("/products/:id", catalogHandler.UpdateProduct)
			admin.DELETE("/products/:id", catalogHandler.DeleteProduct)
			admin.GET("/software", catalogHandler.AdminListSoftware)
			admin.POST("/software", catalogHandler.CreateSoftware)
			admin.PUT("/software/:id", catalogHandler.UpdateSoftware)
			admin.DELETE("/software/:id", catalogHandler.DeleteSoftware)
			admin.POST("/upload/image", uploadHandler.AdminUploadImage)
			admin.POST("/upload/file", uploadHandler.AdminUploadFile)

			admin.GET("/affiliates", affiliateHandler.AdminList)
			admin.GET("/affiliates/:id", affiliateHandler.AdminGet)
			admin.POST("/affiliates/:id/review", affiliateHandler.Review)
			admin.POST("/affiliates/:id/request-trust-fee", affiliateHandler.RequestTrustFee)
			admin.POST("/affiliates/:id/trust-fee-collected", affiliateHandler.MarkTrustFeeCollected)
			admin.POST("/affiliates/:id/approve", affiliateHandler.Approve)
			admin.POST("/affiliates/:id/reject", affiliateHandler.Reject)

			admin.GET("/applicants", applicantHandler.AdminList)
			admin.GET("/applicants/:id", applicantHandler.AdminGet)
			admin.PATCH("/applicants/:id/status", applicantHandler.UpdateStatus)
			admin.PATCH("/applicants/:id/notes", applicantHandler.UpdateNotes)
			admin.POST("/applicants/:id/trust-fee-collected", applicantHandler.MarkTrustFeeCollected)
		}
	}

	return r
}
