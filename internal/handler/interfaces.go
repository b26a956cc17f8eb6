package handler

import (
	"context"

	"digilinex/internal/auth"
	"digilinex/internal/domain"
	"digilinex/internal/models"
	"digilinex/internal/repository"
	"digilinex/internal/service"

	"github.com/shopspring/decimal"
)

type AuthServicer interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.User, *auth.TokenPair, error)
	Login(ctx context.Context, identifier, password string) (*models.User, *auth.TokenPair, error)
	AdminLogin(ctx context.Context, identifier, password string) (*models.User, *auth.TokenPair, error)
	LoginWithGoogle(ctx context.Context, p service.GoogleProfile, referralCode string) (*models.User, *auth.TokenPair, bool, error)
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
}

type SettlementServicer interface {
	Purchase(ctx context.Context, req service.PurchaseRequest) (*service.PurchaseResult, error)
	Transfer(ctx context.Context, userID uint, from, to, currency string, amount decimal.Decimal) ([]models.Wallet, error)
	AdjustWallet(ctx context.Context, adminID, userID uint, purpose, currency string, amount decimal.Decimal, note string) (*models.Wallet, error)
}

type WalletReader interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Wallet, error)
	ListTransactions(ctx context.Context, userID uint, txType string, page, limit int) ([]models.WalletTransaction, int64, error)
}

type DepositServicer interface {
	Create(ctx context.Context, userID uint, in service.DepositInput) (*models.Deposit, error)
	List(ctx context.Context, userID uint, status string, page, limit int) ([]models.Deposit, int64, error)
	Approve(ctx context.Context, adminID, id uint, note string) (*models.Deposit, error)
	Reject(ctx context.Context, adminID, id uint, note string) (*models.Deposit, error)
}

type ReferralServicer interface {
	GetOrCreateCode(ctx context.Context, userID uint) (*models.ReferralCode, error)
	UpdateCode(ctx context.Context, userID uint, code string) (*models.ReferralCode, error)
	ListReferrals(ctx context.Context, userID uint, page, limit int) ([]models.Referral, int64, error)
	Stats(ctx context.Context, userID uint) (*models.ReferralStats, error)
	CommissionRates() []domain.RankRate
	MyRate(ctx context.Context, userID uint) (domain.RankRate, error)
}

type AffiliateServicer interface {
	Status(ctx context.Context, userID uint) (*models.AffiliateApplication, error)
	Apply(ctx context.Context, userID uint, in service.AffiliateApply) (*models.AffiliateApplication, error)
	PayTrustFee(ctx context.Context, userID uint) (*models.AffiliateApplication, error)
	SubmitContact(ctx context.Context, userID uint, handle string) (*models.AffiliateApplication, error)
	Review(ctx context.Context, adminID, id uint) (*models.AffiliateApplication, error)
	RequestTrustFee(ctx context.Context, adminID, id uint) (*models.AffiliateApplication, error)
	MarkTrustFeeCollected(ctx context.Context, adminID, id uint) (*models.AffiliateApplication, error)
	Approve(ctx context.Context, adminID *uint, id uint) (*models.AffiliateApplication, error)
	Reject(ctx context.Context, adminID, id uint, reason string) (*models.AffiliateApplication, error)
}

type AffiliateLister interface {
	GetByID(ctx context.Context, id uint) (*models.AffiliateApplication, error)
	List(ctx context.Context, status string, page, limit int) ([]models.AffiliateApplication, int64, error)
}

type ApplicantServicer interface {
	Apply(ctx context.Context, userID uint, in service.ApplicantInput) (*models.Applicant, error)
	Mine(ctx context.Context, userID uint) ([]models.Applicant, error)
	UpdateStatus(ctx context.Context, adminID, id uint, to, notes string) (*models.Applicant, error)
	UpdateNotes(ctx context.Context, id uint, notes string) (*models.Applicant, error)
	PayTrustFee(ctx context.Context, userID, id uint) (*models.Applicant, error)
	MarkTrustFeeCollected(ctx context.Context, adminID, id uint) (*models.Applicant, error)
}

type ApplicantLister interface {
	GetByID(ctx context.Context, id uint) (*models.Applicant, error)
	List(ctx context.Context, status, search string, page, limit int) ([]models.Applicant, int64, error)
}

type NotificationServicer interface {
	List(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	RegisterToken(ctx context.Context, userID uint, token string) error
}

type OrderServicer interface {
	List(ctx context.Context, kind string, f repository.OrderFilter) (interface{}, int64, error)
	Deliver(ctx context.Context, adminID, orderID uint, key string) (*models.DatabaseOrder, error)
	DatabaseDownloadURL(ctx context.Context, userID, orderID uint) (string, error)
	ProductDownloadURL(ctx context.Context, userID, orderID uint) (string, error)
}

type CatalogServicer interface {
	Categories(ctx context.Context, activeOnly bool) ([]models.DatabaseCategory, error)
	Category(ctx context.Context, id uint) (*models.DatabaseCategory, error)
	CreateCategory(ctx context.Context, in service.CategoryInput) (*models.DatabaseCategory, error)
	UpdateCategory(ctx context.Context, id uint, in service.CategoryInput) (*models.DatabaseCategory, error)
	DeleteCategory(ctx context.Context, id uint) error

	Packages(ctx context.Context, categoryID uint, activeOnly bool) ([]models.DatabasePackage, error)
	CreatePackage(ctx context.Context, in service.PackageInput) (*models.DatabasePackage, error)
	UpdatePackage(ctx context.Context, id uint, in service.PackageInput) (*models.DatabasePackage, error)
	SetPackageFile(ctx context.Context, id uint, key string) error
	DeletePackage(ctx context.Context, id uint) error

	Products(ctx context.Context, search string, activeOnly bool, page, limit int) ([]models.DigitalProduct, int64, error)
	Product(ctx context.Context, id uint) (*models.DigitalProduct, error)
	CreateProduct(ctx context.Context, in service.ProductInput) (*models.DigitalProduct, error)
	UpdateProduct(ctx context.Context, id uint, in service.ProductInput) (*models.DigitalProduct, error)
	DeleteProduct(ctx context.Context, id uint) error

	Software(ctx context.Context, activeOnly bool) ([]models.MarketingSoftware, error)
	GetSoftware(ctx context.Context, id uint) (*models.MarketingSoftware, error)
	CreateSoftware(ctx context.Context, in service.SoftwareInput) (*models.MarketingSoftware, error)
	UpdateSoftware(ctx context.Context, id uint, in service.SoftwareInput) (*models.MarketingSoftware, error)
	DeleteSoftware(ctx context.Context, id uint) error
}

type UserReader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
}

type AdminReader interface {
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
	ListUsers(ctx context.Context, search, role string, page, limit int) ([]models.User, int64, error)
	ListTransactions(ctx context.Context, userID uint, txType string, page, limit int) ([]models.WalletTransaction, int64, error)
	UserSignupsByDay(ctx context.Context, days int) ([]repository.TimeSeriesPoint, error)
	OrdersByDay(ctx context.Context, days int) ([]repository.TimeSeriesPoint, error)
}

type SettingsRepo interface {
	GetAll(ctx context.Context) ([]models.SystemSetting, error)
	Set(ctx context.Context, key, value string, updatedBy *uint) error
}

type AuditRepo interface {
	Create(ctx context.Context, l *models.AuditLog) error
	List(ctx context.Context, action string, page, limit int) ([]models.AuditLog, int64, error)
}
