package repository

import (
	"context"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CreateProductOrder(ctx context.Context, o *models.Order) error {
	return wrap(r.db.WithContext(ctx).Create(o).Error, "order: create product order")
}

func (r *OrderRepository) CreateDatabaseOrder(ctx context.Context, o *models.DatabaseOrder) error {
	return wrap(r.db.WithContext(ctx).Create(o).Error, "order: create database order")
}

func (r *OrderRepository) CreateSoftwareOrder(ctx context.Context, o *models.SoftwareOrder) error {
	return wrap(r.db.WithContext(ctx).Create(o).Error, "order: create software order")
}

func (r *OrderRepository) GetDatabaseOrder(ctx context.Context, id uint) (*models.DatabaseOrder, error) {
	var o models.DatabaseOrder
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, wrap(err, "order: get database order")
	}
	return &o, nil
}

func (r *OrderRepository) GetProductOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, wrap(err, "order: get product order")
	}
	return &o, nil
}

// MarkDelivered sets the delivery fields, the only mutable part of an order.
func (r *OrderRepository) MarkDelivered(ctx context.Context, id uint, key string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.DatabaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"delivery_status": domain.DeliveryDelivered,
			"delivery_key":    key,
			"delivered_at":    at,
		})
	if res.Error != nil {
		return wrap(res.Error, "order: mark delivered")
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "order: mark delivered")
	}
	return nil
}

// OrderFilter narrows admin and user order listings. Zero values mean "any".
type OrderFilter struct {
	UserID         uint
	DeliveryStatus string
	Page           int
	Limit          int
}

func (r *OrderRepository) ListProductOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	var list []models.Order
	total, err := r.list(ctx, &models.Order{}, f, &list)
	return list, total, wrap(err, "order: list product orders")
}

func (r *OrderRepository) ListDatabaseOrders(ctx context.Context, f OrderFilter) ([]models.DatabaseOrder, int64, error) {
	var list []models.DatabaseOrder
	total, err := r.list(ctx, &models.DatabaseOrder{}, f, &list)
	return list, total, wrap(err, "order: list database orders")
}

func (r *OrderRepository) ListSoftwareOrders(ctx context.Context, f OrderFilter) ([]models.SoftwareOrder, int64, error) {
	var list []models.SoftwareOrder
	total, err := r.list(ctx, &models.SoftwareOrder{}, f, &list)
	return list, total, wrap(err, "order: list software orders")
}

func (r *OrderRepository) list(ctx context.Context, model interface{}, f OrderFilter, out interface{}) (int64, error) {
	q := r.db.WithContext(ctx).Model(model)
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.DeliveryStatus != "" {
		q = q.Where("delivery_status = ?", f.DeliveryStatus)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(offset(f.Page, f.Limit)).Find(out).Error
	return total, err
}
