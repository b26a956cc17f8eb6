package repository

import (
	"context"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

func (r *ReferralRepository) GetCodeByUser(ctx context.Context, userID uint) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&rc).Error; err != nil {
		return nil, wrap(err, "referral: code by user")
	}
	return &rc, nil
}

func (r *ReferralRepository) GetCodeByCode(ctx context.Context, code string) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&rc).Error; err != nil {
		return nil, wrap(err, "referral: code lookup")
	}
	return &rc, nil
}

func (r *ReferralRepository) CreateCode(ctx context.Context, rc *models.ReferralCode) error {
	return wrap(r.db.WithContext(ctx).Create(rc).Error, "referral: create code")
}

func (r *ReferralRepository) UpdateCode(ctx context.Context, rc *models.ReferralCode) error {
	err := r.db.WithContext(ctx).Model(rc).
		Updates(map[string]interface{}{"code": rc.Code, "last_edited_at": rc.LastEditedAt}).Error
	return wrap(err, "referral: update code")
}

// CreateReferral persists a new referral relationship.
func (r *ReferralRepository) CreateReferral(ctx context.Context, ref *models.Referral) error {
	return wrap(r.db.WithContext(ctx).Create(ref).Error, "referral: create")
}

func (r *ReferralRepository) GetByReferredUser(ctx context.Context, userID uint) (*models.Referral, error) {
	var ref models.Referral
	if err := r.db.WithContext(ctx).Where("referred_user_id = ?", userID).First(&ref).Error; err != nil {
		return nil, wrap(err, "referral: by referred user")
	}
	return &ref, nil
}

// AddEarnings bumps the running commission total and purchase count of a referral.
func (r *ReferralRepository) AddEarnings(ctx context.Context, referralID uint, currency string, amount decimal.Decimal) error {
	col := "earned_usdt"
	if currency == domain.CurrencyINR {
		col = "earned_inr"
	}
	err := r.db.WithContext(ctx).Model(&models.Referral{}).
		Where("id = ?", referralID).
		UpdateColumns(map[string]interface{}{
			col:              gorm.Expr(col+" + ?", amount),
			"purchase_count": gorm.Expr("purchase_count + 1"),
		}).Error
	return wrap(err, "referral: add earnings")
}

func (r *ReferralRepository) CreateCommission(ctx context.Context, c *models.Commission) error {
	return wrap(r.db.WithContext(ctx).Create(c).Error, "referral: create commission")
}

// ListByReferrer returns referrals created by the given referrer, with the referred user preloaded.
func (r *ReferralRepository) ListByReferrer(ctx context.Context, referrerID uint, page, limit int) ([]models.Referral, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Referral{}).Where("referrer_id = ?", referrerID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "referral: count")
	}
	var list []models.Referral
	err := q.Preload("ReferredUser").
		Order("created_at DESC").
		Limit(limit).Offset(offset(page, limit)).
		Find(&list).Error
	return list, total, wrap(err, "referral: list")
}

func (r *ReferralRepository) Stats(ctx context.Context, referrerID uint) (*models.ReferralStats, error) {
	db := r.db.WithContext(ctx)
	var agg struct {
		Invited   int64
		Purchases int64
		USDT      decimal.Decimal
		INR       decimal.Decimal
	}
	err := db.Model(&models.Referral{}).
		Select("COUNT(*) AS invited, COALESCE(SUM(purchase_count), 0) AS purchases, "+
			"COALESCE(SUM(earned_usdt), 0) AS usdt, COALESCE(SUM(earned_inr), 0) AS inr").
		Where("referrer_id = ?", referrerID).
		Scan(&agg).Error
	if err != nil {
		return nil, wrap(err, "referral: stats")
	}
	var affiliates int64
	err = db.Model(&models.User{}).
		Where("referred_by_id = ? AND is_affiliate = ?", referrerID, true).
		Count(&affiliates).Error
	if err != nil {
		return nil, wrap(err, "referral: stats affiliates")
	}
	return &models.ReferralStats{
		Invited:        agg.Invited,
		Affiliates:     affiliates,
		Purchases:      agg.Purchases,
		CommissionUSDT: agg.USDT,
		CommissionINR:  agg.INR,
	}, nil
}

func (r *ReferralRepository) ListCommissions(ctx context.Context, referrerID uint, page, limit int) ([]models.Commission, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Commission{})
	if referrerID != 0 {
		q = q.Where("referrer_id = ?", referrerID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "commission: count")
	}
	var list []models.Commission
	err := q.Order("created_at DESC").Limit(limit).Offset(offset(page, limit)).Find(&list).Error
	return list, total, wrap(err, "commission: list")
}
