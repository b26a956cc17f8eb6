package repository

import (
	"context"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Get(ctx context.Context, userID uint, purpose, currency string) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ? AND currency = ?", userID, purpose, currency).
		First(&w).Error
	if err != nil {
		return nil, wrap(err, "wallet: get")
	}
	return &w, nil
}

// GetForUpdate locks the wallet row until the surrounding transaction ends.
// Returns domain.ErrWalletNotFound when the user has no such wallet.
func (r *WalletRepository) GetForUpdate(ctx context.Context, userID uint, purpose, currency string) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND purpose = ? AND currency = ?", userID, purpose, currency).
		First(&w).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrWalletNotFound
		}
		return nil, wrap(err, "wallet: lock")
	}
	return &w, nil
}

func (r *WalletRepository) GetOrCreate(ctx context.Context, userID uint, purpose, currency string) (*models.Wallet, error) {
	w, err := r.GetForUpdate(ctx, userID, purpose, currency)
	if err == nil {
		return w, nil
	}
	if err != domain.ErrWalletNotFound {
		return nil, err
	}
	w = &models.Wallet{UserID: userID, Purpose: purpose, Currency: currency, Balance: decimal.Zero}
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return nil, wrap(err, "wallet: create")
	}
	return w, nil
}

// EnsureAll creates every purpose/currency wallet the user is missing.
func (r *WalletRepository) EnsureAll(ctx context.Context, userID uint) error {
	for _, p := range domain.Purposes {
		for _, c := range domain.Currencies {
			w := models.Wallet{UserID: userID, Purpose: p, Currency: c, Balance: decimal.Zero}
			err := r.db.WithContext(ctx).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&w).Error
			if err != nil {
				return wrap(err, "wallet: ensure")
			}
		}
	}
	return nil
}

func (r *WalletRepository) ListByUser(ctx context.Context, userID uint) ([]models.Wallet, error) {
	var list []models.Wallet
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("purpose ASC, currency ASC").Find(&list).Error
	return list, wrap(err, "wallet: list")
}

func (r *WalletRepository) SetBalance(ctx context.Context, w *models.Wallet) error {
	return wrap(r.db.WithContext(ctx).Model(w).Update("balance", w.Balance).Error, "wallet: set balance")
}

func (r *WalletRepository) RecordTransaction(ctx context.Context, tx *models.WalletTransaction) error {
	return wrap(r.db.WithContext(ctx).Create(tx).Error, "wallet: record transaction")
}

func (r *WalletRepository) ListTransactions(ctx context.Context, userID uint, txType string, page, limit int) ([]models.WalletTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.WalletTransaction{}).Where("user_id = ?", userID)
	if txType != "" {
		q = q.Where("type = ?", txType)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "wallet: count transactions")
	}
	var list []models.WalletTransaction
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset(page, limit)).Find(&list).Error
	return list, total, wrap(err, "wallet: list transactions")
}
