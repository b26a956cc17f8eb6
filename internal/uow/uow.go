// Package uow binds the repositories to a gorm transaction.
package uow

import (
	"context"

	"digilinex/internal/repository"
	"digilinex/internal/service"

	"gorm.io/gorm"
)

type UOW struct {
	db    *gorm.DB
	store *store
}

func New(db *gorm.DB) *UOW {
	return &UOW{db: db, store: newStore(db)}
}

func (u *UOW) Store() service.Store {
	return u.store
}

// Do runs fn inside a transaction. The store passed to fn uses the transaction handle.
func (u *UOW) Do(ctx context.Context, fn func(ctx context.Context, s service.Store) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, newStore(tx))
	})
}

type store struct {
	users      *repository.UserRepository
	wallets    *repository.WalletRepository
	catalog    *repository.CatalogRepository
	orders     *repository.OrderRepository
	referrals  *repository.ReferralRepository
	affiliates *repository.AffiliateRepository
	applicants *repository.ApplicantRepository
	deposits   *repository.DepositRepository
	settings   *repository.SettingRepository
	audit      *repository.AuditRepository
}

func newStore(db *gorm.DB) *store {
	return &store{
		users:      repository.NewUserRepository(db),
		wallets:    repository.NewWalletRepository(db),
		catalog:    repository.NewCatalogRepository(db),
		orders:     repository.NewOrderRepository(db),
		referrals:  repository.NewReferralRepository(db),
		affiliates: repository.NewAffiliateRepository(db),
		applicants: repository.NewApplicantRepository(db),
		deposits:   repository.NewDepositRepository(db),
		settings:   repository.NewSettingRepository(db),
		audit:      repository.NewAuditRepository(db),
	}
}

func (s *store) Users() service.UserStore           { return s.users }
func (s *store) Wallets() service.WalletStore       { return s.wallets }
func (s *store) Catalog() service.CatalogStore      { return s.catalog }
func (s *store) Orders() service.OrderStore         { return s.orders }
func (s *store) Referrals() service.ReferralStore   { return s.referrals }
func (s *store) Affiliates() service.AffiliateStore { return s.affiliates }
func (s *store) Applicants() service.ApplicantStore { return s.applicants }
func (s *store) Deposits() service.DepositStore     { return s.deposits }
func (s *store) Settings() service.SettingStore     { return s.settings }
func (s *store) Audit() service.AuditStore          { return s.audit }
