package repository

import (
	"context"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AffiliateRepository struct {
	db *gorm.DB
}

func NewAffiliateRepository(db *gorm.DB) *AffiliateRepository {
	return &AffiliateRepository{db: db}
}

func (r *AffiliateRepository) Create(ctx context.Context, a *models.AffiliateApplication) error {
	return wrap(r.db.WithContext(ctx).Create(a).Error, "affiliate: create")
}

func (r *AffiliateRepository) Save(ctx context.Context, a *models.AffiliateApplication) error {
	return wrap(r.db.WithContext(ctx).Omit("User").Save(a).Error, "affiliate: save")
}

func (r *AffiliateRepository) GetByID(ctx context.Context, id uint) (*models.AffiliateApplication, error) {
	var a models.AffiliateApplication
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, wrap(err, "affiliate: get")
	}
	return &a, nil
}

// GetForUpdate locks the application row until the surrounding transaction ends,
// so concurrent transitions on one application run one after the other.
func (r *AffiliateRepository) GetForUpdate(ctx context.Context, id uint) (*models.AffiliateApplication, error) {
	var a models.AffiliateApplication
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error; err != nil {
		return nil, wrap(err, "affiliate: lock")
	}
	return &a, nil
}

func (r *AffiliateRepository) GetByUser(ctx context.Context, userID uint) (*models.AffiliateApplication, error) {
	var a models.AffiliateApplication
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, wrap(err, "affiliate: get by user")
	}
	return &a, nil
}

// ListDueForApproval returns contact-collected applications whose auto-approval time has passed.
func (r *AffiliateRepository) ListDueForApproval(ctx context.Context, now time.Time, limit int) ([]models.AffiliateApplication, error) {
	var list []models.AffiliateApplication
	err := r.db.WithContext(ctx).
		Where("status = ? AND auto_approve_at IS NOT NULL AND auto_approve_at <= ?", domain.AffiliateContactCollected, now).
		Order("auto_approve_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, wrap(err, "affiliate: list due")
}

func (r *AffiliateRepository) List(ctx context.Context, status string, page, limit int) ([]models.AffiliateApplication, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.AffiliateApplication{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "affiliate: count")
	}
	var list []models.AffiliateApplication
	err := q.Preload("User").Order("updated_at DESC").Limit(limit).Offset(offset(page, limit)).Find(&list).Error
	return list, total, wrap(err, "affiliate: list")
}
