package repository

import (
	"context"

	"digilinex/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository covers database categories/packages, digital products and marketing software.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCategories returns categories ordered for display, each with its packages.
func (r *CatalogRepository) ListCategories(ctx context.Context, activeOnly bool) ([]models.DatabaseCategory, error) {
	q := r.db.WithContext(ctx).Model(&models.DatabaseCategory{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	q = q.Preload("Packages", func(db *gorm.DB) *gorm.DB {
		if activeOnly {
			db = db.Where("is_active = ?", true)
		}
		return db.Order("sort_order ASC, id ASC")
	})
	var list []models.DatabaseCategory
	err := q.Order("sort_order ASC, id ASC").Find(&list).Error
	return list, wrap(err, "catalog: list categories")
}

func (r *CatalogRepository) GetCategory(ctx context.Context, id uint) (*models.DatabaseCategory, error) {
	var c models.DatabaseCategory
	err := r.db.WithContext(ctx).
		Preload("Packages", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		First(&c, id).Error
	if err != nil {
		return nil, wrap(err, "catalog: get category")
	}
	return &c, nil
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *models.DatabaseCategory) error {
	return wrap(r.db.WithContext(ctx).Create(c).Error, "catalog: create category")
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.updates(ctx, &models.DatabaseCategory{}, id, fields, "catalog: update category")
}

func (r *CatalogRepository) DeleteCategory(ctx context.Context, id uint) error {
	return r.delete(ctx, &models.DatabaseCategory{}, id, "catalog: delete category")
}

func (r *CatalogRepository) ListPackages(ctx context.Context, categoryID uint, activeOnly bool) ([]models.DatabasePackage, error) {
	q := r.db.WithContext(ctx).Model(&models.DatabasePackage{})
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var list []models.DatabasePackage
	err := q.Order("sort_order ASC, id ASC").Find(&list).Error
	return list, wrap(err, "catalog: list packages")
}

// GetPackage loads a package with its category.
func (r *CatalogRepository) GetPackage(ctx context.Context, id uint) (*models.DatabasePackage, error) {
	var p models.DatabasePackage
	if err := r.db.WithContext(ctx).Preload("Category").First(&p, id).Error; err != nil {
		return nil, wrap(err, "catalog: get package")
	}
	return &p, nil
}

func (r *CatalogRepository) CreatePackage(ctx context.Context, p *models.DatabasePackage) error {
	return wrap(r.db.WithContext(ctx).Create(p).Error, "catalog: create package")
}

func (r *CatalogRepository) UpdatePackage(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.updates(ctx, &models.DatabasePackage{}, id, fields, "catalog: update package")
}

func (r *CatalogRepository) DeletePackage(ctx context.Context, id uint) error {
	return r.delete(ctx, &models.DatabasePackage{}, id, "catalog: delete package")
}

func (r *CatalogRepository) ListProducts(ctx context.Context, search string, activeOnly bool, page, limit int) ([]models.DigitalProduct, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.DigitalProduct{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if search != "" {
		q = q.Where("title LIKE ?", "%"+search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "catalog: count products")
	}
	var list []models.DigitalProduct
	err := q.Order("created_at DESC").Limit(limit).Offset(offset(page, limit)).Find(&list).Error
	return list, total, wrap(err, "catalog: list products")
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id uint) (*models.DigitalProduct, error) {
	var p models.DigitalProduct
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, wrap(err, "catalog: get product")
	}
	return &p, nil
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, p *models.DigitalProduct) error {
	return wrap(r.db.WithContext(ctx).Create(p).Error, "catalog: create product")
}

func (r *CatalogRepository) UpdateProduct(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.updates(ctx, &models.DigitalProduct{}, id, fields, "catalog: update product")
}

func (r *CatalogRepository) DeleteProduct(ctx context.Context, id uint) error {
	return r.delete(ctx, &models.DigitalProduct{}, id, "catalog: delete product")
}

func (r *CatalogRepository) ListSoftware(ctx context.Context, activeOnly bool) ([]models.MarketingSoftware, error) {
	q := r.db.WithContext(ctx).Model(&models.MarketingSoftware{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var list []models.MarketingSoftware
	err := q.Order("created_at DESC").Find(&list).Error
	return list, wrap(err, "catalog: list software")
}

func (r *CatalogRepository) GetSoftware(ctx context.Context, id uint) (*models.MarketingSoftware, error) {
	var s models.MarketingSoftware
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, wrap(err, "catalog: get software")
	}
	return &s, nil
}

func (r *CatalogRepository) CreateSoftware(ctx context.Context, s *models.MarketingSoftware) error {
	return wrap(r.db.WithContext(ctx).Create(s).Error, "catalog: create software")
}

// SaveSoftware writes every column so the feature hook runs.
func (r *CatalogRepository) SaveSoftware(ctx context.Context, s *models.MarketingSoftware) error {
	return wrap(r.db.WithContext(ctx).Save(s).Error, "catalog: save software")
}

func (r *CatalogRepository) DeleteSoftware(ctx context.Context, id uint) error {
	return r.delete(ctx, &models.MarketingSoftware{}, id, "catalog: delete software")
}

// SlugExists reports whether slug is used in table, soft-deleted rows included.
func (r *CatalogRepository) SlugExists(ctx context.Context, model interface{}, slug string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(model).Where("slug = ?", slug).Count(&n).Error
	return n > 0, wrap(err, "catalog: slug lookup")
}

func (r *CatalogRepository) updates(ctx context.Context, model interface{}, id uint, fields map[string]interface{}, op string) error {
	res := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrap(res.Error, op)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, op)
	}
	return nil
}

func (r *CatalogRepository) delete(ctx context.Context, model interface{}, id uint, op string) error {
	res := r.db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return wrap(res.Error, op)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, op)
	}
	return nil
}
