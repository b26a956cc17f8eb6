package repository

import (
	"context"

	"digilinex/internal/models"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, l *models.AuditLog) error {
	return wrap(r.db.WithContext(ctx).Create(l).Error, "audit: create")
}

func (r *AuditRepository) List(ctx context.Context, action string, page, limit int) ([]models.AuditLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if action != "" {
		q = q.Where("action = ?", action)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "audit: count")
	}
	var list []models.AuditLog
	err := q.Order("created_at DESC").Limit(limit).Offset(offset(page, limit)).Find(&list).Error
	return list, total, wrap(err, "audit: list")
}
