package service

import (
	"context"
	"time"

	"digilinex/internal/models"

	"github.com/shopspring/decimal"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
}

type WalletStore interface {
	Get(ctx context.Context, userID uint, purpose, currency string) (*models.Wallet, error)
	GetForUpdate(ctx context.Context, userID uint, purpose, currency string) (*models.Wallet, error)
	GetOrCreate(ctx context.Context, userID uint, purpose, currency string) (*models.Wallet, error)
	EnsureAll(ctx context.Context, userID uint) error
	ListByUser(ctx context.Context, userID uint) ([]models.Wallet, error)
	SetBalance(ctx context.Context, w *models.Wallet) error
	RecordTransaction(ctx context.Context, tx *models.WalletTransaction) error
	ListTransactions(ctx context.Context, userID uint, txType string, page, limit int) ([]models.WalletTransaction, int64, error)
}

// CatalogStore is the read side of the catalog used by settlement.
type CatalogStore interface {
	GetProduct(ctx context.Context, id uint) (*models.DigitalProduct, error)
	GetPackage(ctx context.Context, id uint) (*models.DatabasePackage, error)
	GetSoftware(ctx context.Context, id uint) (*models.MarketingSoftware, error)
}

type OrderStore interface {
	CreateProductOrder(ctx context.Context, o *models.Order) error
	CreateDatabaseOrder(ctx context.Context, o *models.DatabaseOrder) error
	CreateSoftwareOrder(ctx context.Context, o *models.SoftwareOrder) error
	GetDatabaseOrder(ctx context.Context, id uint) (*models.DatabaseOrder, error)
	MarkDelivered(ctx context.Context, id uint, key string, at time.Time) error
}

type ReferralStore interface {
	GetCodeByUser(ctx context.Context, userID uint) (*models.ReferralCode, error)
	GetCodeByCode(ctx context.Context, code string) (*models.ReferralCode, error)
	CreateCode(ctx context.Context, rc *models.ReferralCode) error
	UpdateCode(ctx context.Context, rc *models.ReferralCode) error
	CreateReferral(ctx context.Context, ref *models.Referral) error
	GetByReferredUser(ctx context.Context, userID uint) (*models.Referral, error)
	AddEarnings(ctx context.Context, referralID uint, currency string, amount decimal.Decimal) error
	CreateCommission(ctx context.Context, c *models.Commission) error
	ListByReferrer(ctx context.Context, referrerID uint, page, limit int) ([]models.Referral, int64, error)
	Stats(ctx context.Context, referrerID uint) (*models.ReferralStats, error)
}

type AffiliateStore interface {
	Create(ctx context.Context, a *models.AffiliateApplication) error
	Save(ctx context.Context, a *models.AffiliateApplication) error
	GetByID(ctx context.Context, id uint) (*models.AffiliateApplication, error)
	GetForUpdate(ctx context.Context, id uint) (*models.AffiliateApplication, error)
	GetByUser(ctx context.Context, userID uint) (*models.AffiliateApplication, error)
	ListDueForApproval(ctx context.Context, now time.Time, limit int) ([]models.AffiliateApplication, error)
}

type ApplicantStore interface {
	Create(ctx context.Context, a *models.Applicant) error
	Save(ctx context.Context, a *models.Applicant) error
	GetByID(ctx context.Context, id uint) (*models.Applicant, error)
	GetForUpdate(ctx context.Context, id uint) (*models.Applicant, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Applicant, error)
}

type DepositStore interface {
	Create(ctx context.Context, d *models.Deposit) error
	Save(ctx context.Context, d *models.Deposit) error
	GetForUpdate(ctx context.Context, id uint) (*models.Deposit, error)
	List(ctx context.Context, userID uint, status string, page, limit int) ([]models.Deposit, int64, error)
}

type SettingStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, updatedBy *uint) error
	GetAll(ctx context.Context) ([]models.SystemSetting, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
}

type AuditStore interface {
	Create(ctx context.Context, l *models.AuditLog) error
}

// Store groups the repositories a unit of work hands out. Inside Do every
// accessor is bound to the same transaction.
type Store interface {
	Users() UserStore
	Wallets() WalletStore
	Catalog() CatalogStore
	Orders() OrderStore
	Referrals() ReferralStore
	Affiliates() AffiliateStore
	Applicants() ApplicantStore
	Deposits() DepositStore
	Settings() SettingStore
	Audit() AuditStore
}

type UnitOfWork interface {
	// Store returns repositories bound to the plain connection.
	Store() Store
	// Do runs fn in one transaction. Returning an error rolls everything back.
	Do(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// Publisher pushes live events to websocket clients.
type Publisher interface {
	Publish(userID uint, eventType string, data interface{})
	PublishAdmins(eventType string, data interface{})
}

// Notifier stores an inbox notification and pushes it to the user's devices.
type Notifier interface {
	Notify(ctx context.Context, userID uint, notifType, title, body, link string, data map[string]interface{}) error
}

// Recorder receives business metrics.
type Recorder interface {
	Purchase(kind, currency, result string)
	Commission(currency string, amount decimal.Decimal)
	AffiliateTransition(to string)
	ApplicantTransition(to string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(uint, string, interface{}) {}
func (nopPublisher) PublishAdmins(string, interface{}) {}

type nopRecorder struct{}

func (nopRecorder) Purchase(string, string, string)    {}
func (nopRecorder) Commission(string, decimal.Decimal) {}
func (nopRecorder) AffiliateTransition(string)         {}
func (nopRecorder) ApplicantTransition(string)         {}
