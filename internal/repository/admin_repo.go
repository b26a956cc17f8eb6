package repository

import (
	"context"
	"sort"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalAffiliates   int64 `json:"total_affiliates"`
	ProductOrders     int64 `json:"product_orders"`
	DatabaseOrders    int64 `json:"database_orders"`
	SoftwareOrders    int64 `json:"software_orders"`
	PendingDeliveries int64 `json:"pending_deliveries"`
	PendingApplicants int64 `json:"pending_applicants"`
	PendingAffiliates int64 `json:"pending_affiliates"`
	PendingDeposits   int64 `json:"pending_deposits"`
	TotalTransactions int64 `json:"total_transactions"`

	RevenueUSDT     decimal.Decimal `json:"revenue_usdt"`
	RevenueINR      decimal.Decimal `json:"revenue_inr"`
	CommissionsUSDT decimal.Decimal `json:"commissions_usdt"`
	CommissionsINR  decimal.Decimal `json:"commissions_inr"`
}

type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	var s DashboardStats
	counts := []struct {
		dst   *int64
		model interface{}
		where []interface{}
	}{
		{&s.TotalUsers, &models.User{}, nil},
		{&s.TotalAffiliates, &models.User{}, []interface{}{"is_affiliate = ?", true}},
		{&s.ProductOrders, &models.Order{}, nil},
		{&s.DatabaseOrders, &models.DatabaseOrder{}, nil},
		{&s.SoftwareOrders, &models.SoftwareOrder{}, nil},
		{&s.PendingDeliveries, &models.DatabaseOrder{}, []interface{}{"delivery_status = ?", domain.DeliveryProcessing}},
		{&s.PendingApplicants, &models.Applicant{}, []interface{}{"status = ?", domain.ApplicantPending}},
		{&s.PendingAffiliates, &models.AffiliateApplication{}, []interface{}{"status = ?", domain.AffiliatePending}},
		{&s.PendingDeposits, &models.Deposit{}, []interface{}{"status = ?", domain.DepositPending}},
		{&s.TotalTransactions, &models.WalletTransaction{}, nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != nil {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, wrap(err, "admin: dashboard counts")
		}
	}

	var err error
	if s.RevenueUSDT, err = r.revenue(db, domain.CurrencyUSDT); err != nil {
		return nil, err
	}
	if s.RevenueINR, err = r.revenue(db, domain.CurrencyINR); err != nil {
		return nil, err
	}
	if s.CommissionsUSDT, err = r.sum(db, &models.Commission{}, domain.CurrencyUSDT); err != nil {
		return nil, err
	}
	if s.CommissionsINR, err = r.sum(db, &models.Commission{}, domain.CurrencyINR); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AdminRepository) revenue(db *gorm.DB, currency string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range []interface{}{&models.Order{}, &models.DatabaseOrder{}, &models.SoftwareOrder{}} {
		v, err := r.sum(db, m, currency)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(v)
	}
	return total, nil
}

func (r *AdminRepository) sum(db *gorm.DB, model interface{}, currency string) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := db.Model(model).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("currency = ?", currency).
		Scan(&row).Error
	return row.Total, wrap(err, "admin: sum")
}

// ListUsers returns users with search, role filter, and pagination.
func (r *AdminRepository) ListUsers(ctx context.Context, search, role string, page, limit int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("username LIKE ? OR email LIKE ? OR full_name LIKE ?", like, like, like)
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "admin: count users")
	}
	var users []models.User
	err := q.Order("created_at DESC").Limit(limit).Offset(offset(page, limit)).Find(&users).Error
	return users, total, wrap(err, "admin: list users")
}

// ListTransactions returns ledger lines with optional user and type filters.
func (r *AdminRepository) ListTransactions(ctx context.Context, userID uint, txType string, page, limit int) ([]models.WalletTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.WalletTransaction{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if txType != "" {
		q = q.Where("type = ?", txType)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "admin: count transactions")
	}
	var list []models.WalletTransaction
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset(page, limit)).Find(&list).Error
	return list, total, wrap(err, "admin: list transactions")
}

// UserSignupsByDay returns daily signup counts for the last N days.
func (r *AdminRepository) UserSignupsByDay(ctx context.Context, days int) ([]TimeSeriesPoint, error) {
	return r.perDay(ctx, &models.User{}, days)
}

// OrdersByDay returns daily digital product, database and software order counts combined.
func (r *AdminRepository) OrdersByDay(ctx context.Context, days int) ([]TimeSeriesPoint, error) {
	merged := map[string]int64{}
	var dates []string
	for _, m := range []interface{}{&models.Order{}, &models.DatabaseOrder{}, &models.SoftwareOrder{}} {
		points, err := r.perDay(ctx, m, days)
		if err != nil {
			return nil, err
		}
		for _, p := range points {
			if _, ok := merged[p.Date]; !ok {
				dates = append(dates, p.Date)
			}
			merged[p.Date] += p.Count
		}
	}
	sort.Strings(dates)
	out := make([]TimeSeriesPoint, 0, len(dates))
	for _, d := range dates {
		out = append(out, TimeSeriesPoint{Date: d, Count: merged[d]})
	}
	return out, nil
}

func (r *AdminRepository) perDay(ctx context.Context, model interface{}, days int) ([]TimeSeriesPoint, error) {
	since := time.Now().AddDate(0, 0, -days)
	var points []TimeSeriesPoint
	err := r.db.WithContext(ctx).Model(model).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&points).Error
	return points, wrap(err, "admin: per day")
}
