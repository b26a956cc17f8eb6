package service

import (
	"context"
	"io"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/models"
	"digilinex/internal/repository"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FileStore keeps private downloadable files.
type FileStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	PresignGet(ctx context.Context, key string) (string, error)
}

type OrderRepo interface {
	GetProductOrder(ctx context.Context, id uint) (*models.Order, error)
	GetDatabaseOrder(ctx context.Context, id uint) (*models.DatabaseOrder, error)
	MarkDelivered(ctx context.Context, id uint, key string, at time.Time) error
	ListProductOrders(ctx context.Context, f repository.OrderFilter) ([]models.Order, int64, error)
	ListDatabaseOrders(ctx context.Context, f repository.OrderFilter) ([]models.DatabaseOrder, int64, error)
	ListSoftwareOrders(ctx context.Context, f repository.OrderFilter) ([]models.SoftwareOrder, int64, error)
}

var (
	ErrNotDelivered = errors.New("order has not been delivered yet")
	ErrNoFile       = errors.New("no file attached")
)

// OrderService lists purchases and handles database order delivery and downloads.
type OrderService struct {
	orders   OrderRepo
	catalog  CatalogStore
	files    FileStore
	pub      Publisher
	notifier Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewOrderService(orders OrderRepo, catalog CatalogStore, files FileStore, pub Publisher, notifier Notifier, log logrus.FieldLogger) *OrderService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &OrderService{
		orders:   orders,
		catalog:  catalog,
		files:    files,
		pub:      pub,
		notifier: notifier,
		log:      log.WithField("component", "orders"),
		now:      time.Now,
	}
}

// List returns orders of one kind. f.UserID 0 lists all users (admin).
func (s *OrderService) List(ctx context.Context, kind string, f repository.OrderFilter) (interface{}, int64, error) {
	switch kind {
	case domain.ItemProduct:
		return s.orders.ListProductOrders(ctx, f)
	case domain.ItemDatabasePackage:
		return s.orders.ListDatabaseOrders(ctx, f)
	case domain.ItemSoftware:
		return s.orders.ListSoftwareOrders(ctx, f)
	}
	return nil, 0, errors.Wrapf(domain.ErrItemNotFound, "unknown order kind %q", kind)
}

// Deliver marks a database order delivered. An empty key falls back to the package's data file.
func (s *OrderService) Deliver(ctx context.Context, adminID, orderID uint, key string) (*models.DatabaseOrder, error) {
	o, err := s.orders.GetDatabaseOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.DeliveryStatus == domain.DeliveryDelivered {
		return nil, errors.Wrap(domain.ErrAlreadyProcessed, "order already delivered")
	}
	if key == "" {
		p, err := s.catalog.GetPackage(ctx, o.PackageID)
		if err != nil {
			return nil, err
		}
		key = p.DataFileKey
	}
	if key == "" {
		return nil, ErrNoFile
	}
	now := s.now()
	if err := s.orders.MarkDelivered(ctx, o.ID, key, now); err != nil {
		return nil, err
	}
	o.DeliveryStatus = domain.DeliveryDelivered
	o.DeliveryKey = key
	o.DeliveredAt = &now

	s.log.WithFields(logrus.Fields{"order_id": o.ID, "admin_id": adminID}).Info("database order delivered")
	s.pub.Publish(o.UserID, domain.EventOrderDelivered, o)
	if s.notifier != nil {
		err := s.notifier.Notify(ctx, o.UserID, "ORDER_DELIVERED", "Your database is ready",
			o.CategoryName+" / "+o.PackageName+" is ready to download.", "/orders",
			map[string]interface{}{"order_number": o.OrderNumber})
		if err != nil {
			s.log.WithError(err).Warn("notify failed")
		}
	}
	return o, nil
}

// DatabaseDownloadURL presigns the delivered file for the buyer.
func (s *OrderService) DatabaseDownloadURL(ctx context.Context, userID, orderID uint) (string, error) {
	o, err := s.orders.GetDatabaseOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if o.UserID != userID {
		return "", domain.ErrRecordNotFound
	}
	if o.DeliveryStatus != domain.DeliveryDelivered || o.DeliveryKey == "" {
		return "", ErrNotDelivered
	}
	if s.files == nil {
		return "", ErrNoFile
	}
	return s.files.PresignGet(ctx, o.DeliveryKey)
}

// ProductDownloadURL presigns the product file of a purchased digital product.
func (s *OrderService) ProductDownloadURL(ctx context.Context, userID, orderID uint) (string, error) {
	o, err := s.orders.GetProductOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if o.UserID != userID {
		return "", domain.ErrRecordNotFound
	}
	p, err := s.catalog.GetProduct(ctx, o.ProductID)
	if err != nil {
		return "", err
	}
	if p.FileKey == "" || s.files == nil {
		return "", ErrNoFile
	}
	return s.files.PresignGet(ctx, p.FileKey)
}
