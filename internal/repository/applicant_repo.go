package repository

import (
	"context"

	"digilinex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicantRepository struct {
	db *gorm.DB
}

func NewApplicantRepository(db *gorm.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

func (r *ApplicantRepository) Create(ctx context.Context, a *models.Applicant) error {
	return wrap(r.db.WithContext(ctx).Create(a).Error, "applicant: create")
}

func (r *ApplicantRepository) Save(ctx context.Context, a *models.Applicant) error {
	return wrap(r.db.WithContext(ctx).Save(a).Error, "applicant: save")
}

func (r *ApplicantRepository) GetByID(ctx context.Context, id uint) (*models.Applicant, error) {
	var a models.Applicant
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, wrap(err, "applicant: get")
	}
	return &a, nil
}

// GetForUpdate locks the applicant row so fee payments and status moves serialise.
func (r *ApplicantRepository) GetForUpdate(ctx context.Context, id uint) (*models.Applicant, error) {
	var a models.Applicant
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error; err != nil {
		return nil, wrap(err, "applicant: lock")
	}
	return &a, nil
}

func (r *ApplicantRepository) ListByUser(ctx context.Context, userID uint) ([]models.Applicant, error) {
	var list []models.Applicant
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, wrap(err, "applicant: list by user")
}

// List filters by status and a name/email/position search.
func (r *ApplicantRepository) List(ctx context.Context, status, search string, page, limit int) ([]models.Applicant, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Applicant{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("full_name LIKE ? OR email LIKE ? OR position LIKE ?", like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "applicant: count")
	}
	var list []models.Applicant
	err := q.Order("created_at DESC").Limit(limit).Offset(offset(page, limit)).Find(&list).Error
	return list, total, wrap(err, "applicant: list")
}
