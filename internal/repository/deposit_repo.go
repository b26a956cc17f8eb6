package repository

import (
	"context"

	"digilinex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DepositRepository struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

func (r *DepositRepository) Create(ctx context.Context, d *models.Deposit) error {
	return wrap(r.db.WithContext(ctx).Create(d).Error, "deposit: create")
}

func (r *DepositRepository) Save(ctx context.Context, d *models.Deposit) error {
	return wrap(r.db.WithContext(ctx).Omit("User").Save(d).Error, "deposit: save")
}

// GetForUpdate locks the deposit so two reviewers cannot both settle it.
func (r *DepositRepository) GetForUpdate(ctx context.Context, id uint) (*models.Deposit, error) {
	var d models.Deposit
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, id).Error
	if err != nil {
		return nil, wrap(err, "deposit: lock")
	}
	return &d, nil
}

func (r *DepositRepository) List(ctx context.Context, userID uint, status string, page, limit int) ([]models.Deposit, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Deposit{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "deposit: count")
	}
	var list []models.Deposit
	err := q.Preload("User").Order("created_at DESC").Limit(limit).Offset(offset(page, limit)).Find(&list).Error
	return list, total, wrap(err, "deposit: list")
}
