package service

import (
	"context"
	"fmt"
	"strings"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// CatalogRepo is the catalog persistence used by the admin screens and the storefront.
type CatalogRepo interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]models.DatabaseCategory, error)
	GetCategory(ctx context.Context, id uint) (*models.DatabaseCategory, error)
	CreateCategory(ctx context.Context, c *models.DatabaseCategory) error
	UpdateCategory(ctx context.Context, id uint, fields map[string]interface{}) error
	DeleteCategory(ctx context.Context, id uint) error

	ListPackages(ctx context.Context, categoryID uint, activeOnly bool) ([]models.DatabasePackage, error)
	GetPackage(ctx context.Context, id uint) (*models.DatabasePackage, error)
	CreatePackage(ctx context.Context, p *models.DatabasePackage) error
	UpdatePackage(ctx context.Context, id uint, fields map[string]interface{}) error
	DeletePackage(ctx context.Context, id uint) error

	ListProducts(ctx context.Context, search string, activeOnly bool, page, limit int) ([]models.DigitalProduct, int64, error)
	GetProduct(ctx context.Context, id uint) (*models.DigitalProduct, error)
	CreateProduct(ctx context.Context, p *models.DigitalProduct) error
	UpdateProduct(ctx context.Context, id uint, fields map[string]interface{}) error
	DeleteProduct(ctx context.Context, id uint) error

	ListSoftware(ctx context.Context, activeOnly bool) ([]models.MarketingSoftware, error)
	GetSoftware(ctx context.Context, id uint) (*models.MarketingSoftware, error)
	CreateSoftware(ctx context.Context, s *models.MarketingSoftware) error
	SaveSoftware(ctx context.Context, s *models.MarketingSoftware) error
	DeleteSoftware(ctx context.Context, id uint) error

	SlugExists(ctx context.Context, model interface{}, slug string) (bool, error)
}

type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

type PackageInput struct {
	CategoryID   uint            `json:"category_id" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	RecordsCount int             `json:"records_count"`
	PriceUSDT    decimal.Decimal `json:"price_usdt"`
	PriceINR     decimal.Decimal `json:"price_inr"`
	SampleURL    string          `json:"sample_url"`
	SortOrder    int             `json:"sort_order"`
	IsActive     *bool           `json:"is_active"`
}

type ProductInput struct {
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	CoverImageURL string          `json:"cover_image_url"`
	PriceUSDT     decimal.Decimal `json:"price_usdt"`
	PriceINR      decimal.Decimal `json:"price_inr"`
	FileKey       string          `json:"file_key"`
	IsActive      *bool           `json:"is_active"`
}

type SoftwareInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Features    []string        `json:"features"`
	LogoURL     string          `json:"logo_url"`
	PriceUSDT   decimal.Decimal `json:"price_usdt"`
	PriceINR    decimal.Decimal `json:"price_inr"`
	TrialDays   int             `json:"trial_days"`
	TrialTerms  string          `json:"trial_terms"`
	DownloadURL string          `json:"download_url"`
	IsActive    *bool           `json:"is_active"`
}

// CatalogService manages the marketplace catalog. Writes are last-write-wins.
type CatalogService struct {
	repo CatalogRepo
}

func NewCatalogService(repo CatalogRepo) *CatalogService {
	return &CatalogService{repo: repo}
}

// UniqueSlug slugifies name and appends a numeric suffix until the slug is free.
func (s *CatalogService) UniqueSlug(ctx context.Context, model interface{}, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "item"
	}
	candidate := base
	for n := 2; n < 50; n++ {
		taken, err := s.repo.SlugExists(ctx, model, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", fmt.Errorf("catalog: no free slug for %q", name)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func (s *CatalogService) Categories(ctx context.Context, activeOnly bool) ([]models.DatabaseCategory, error) {
	return s.repo.ListCategories(ctx, activeOnly)
}

func (s *CatalogService) Category(ctx context.Context, id uint) (*models.DatabaseCategory, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.DatabaseCategory, error) {
	sl, err := s.UniqueSlug(ctx, &models.DatabaseCategory{}, in.Name)
	if err != nil {
		return nil, err
	}
	c := &models.DatabaseCategory{
		Name:        strings.TrimSpace(in.Name),
		Slug:        sl,
		Description: in.Description,
		IconURL:     in.IconURL,
		SortOrder:   in.SortOrder,
		IsActive:    boolOr(in.IsActive, true),
	}
	return c, s.repo.CreateCategory(ctx, c)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.DatabaseCategory, error) {
	fields := map[string]interface{}{
		"name":        strings.TrimSpace(in.Name),
		"description": in.Description,
		"icon_url":    in.IconURL,
		"sort_order":  in.SortOrder,
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if err := s.repo.UpdateCategory(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetCategory(ctx, id)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *CatalogService) Packages(ctx context.Context, categoryID uint, activeOnly bool) ([]models.DatabasePackage, error) {
	return s.repo.ListPackages(ctx, categoryID, activeOnly)
}

func (s *CatalogService) CreatePackage(ctx context.Context, in PackageInput) (*models.DatabasePackage, error) {
	if _, err := s.repo.GetCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if in.PriceUSDT.IsNegative() || in.PriceINR.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	p := &models.DatabasePackage{
		CategoryID:   in.CategoryID,
		Name:         strings.TrimSpace(in.Name),
		RecordsCount: in.RecordsCount,
		PriceUSDT:    in.PriceUSDT,
		PriceINR:     in.PriceINR,
		SampleURL:    in.SampleURL,
		SortOrder:    in.SortOrder,
		IsActive:     boolOr(in.IsActive, true),
	}
	return p, s.repo.CreatePackage(ctx, p)
}

func (s *CatalogService) UpdatePackage(ctx context.Context, id uint, in PackageInput) (*models.DatabasePackage, error) {
	if in.PriceUSDT.IsNegative() || in.PriceINR.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	fields := map[string]interface{}{
		"name":          strings.TrimSpace(in.Name),
		"records_count": in.RecordsCount,
		"price_usdt":    in.PriceUSDT,
		"price_inr":     in.PriceINR,
		"sample_url":    in.SampleURL,
		"sort_order":    in.SortOrder,
	}
	if in.CategoryID != 0 {
		fields["category_id"] = in.CategoryID
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if err := s.repo.UpdatePackage(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetPackage(ctx, id)
}

// SetPackageFile records the object store key of a package's data file.
func (s *CatalogService) SetPackageFile(ctx context.Context, id uint, key string) error {
	return s.repo.UpdatePackage(ctx, id, map[string]interface{}{"data_file_key": key})
}

func (s *CatalogService) DeletePackage(ctx context.Context, id uint) error {
	return s.repo.DeletePackage(ctx, id)
}

func (s *CatalogService) Products(ctx context.Context, search string, activeOnly bool, page, limit int) ([]models.DigitalProduct, int64, error) {
	return s.repo.ListProducts(ctx, search, activeOnly, page, limit)
}

func (s *CatalogService) Product(ctx context.Context, id uint) (*models.DigitalProduct, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.DigitalProduct, error) {
	if in.PriceUSDT.IsNegative() || in.PriceINR.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	sl, err := s.UniqueSlug(ctx, &models.DigitalProduct{}, in.Title)
	if err != nil {
		return nil, err
	}
	p := &models.DigitalProduct{
		Title:         strings.TrimSpace(in.Title),
		Slug:          sl,
		Description:   in.Description,
		CoverImageURL: in.CoverImageURL,
		PriceUSDT:     in.PriceUSDT,
		PriceINR:      in.PriceINR,
		FileKey:       in.FileKey,
		IsActive:      boolOr(in.IsActive, true),
	}
	return p, s.repo.CreateProduct(ctx, p)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.DigitalProduct, error) {
	if in.PriceUSDT.IsNegative() || in.PriceINR.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	fields := map[string]interface{}{
		"title":           strings.TrimSpace(in.Title),
		"description":     in.Description,
		"cover_image_url": in.CoverImageURL,
		"price_usdt":      in.PriceUSDT,
		"price_inr":       in.PriceINR,
	}
	if in.FileKey != "" {
		fields["file_key"] = in.FileKey
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if err := s.repo.UpdateProduct(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetProduct(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *CatalogService) Software(ctx context.Context, activeOnly bool) ([]models.MarketingSoftware, error) {
	return s.repo.ListSoftware(ctx, activeOnly)
}

func (s *CatalogService) GetSoftware(ctx context.Context, id uint) (*models.MarketingSoftware, error) {
	return s.repo.GetSoftware(ctx, id)
}

func (s *CatalogService) CreateSoftware(ctx context.Context, in SoftwareInput) (*models.MarketingSoftware, error) {
	if in.PriceUSDT.IsNegative() || in.PriceINR.IsNegative() || in.TrialDays < 0 {
		return nil, domain.ErrInvalidAmount
	}
	sl, err := s.UniqueSlug(ctx, &models.MarketingSoftware{}, in.Name)
	if err != nil {
		return nil, err
	}
	sw := &models.MarketingSoftware{Slug: sl, IsActive: boolOr(in.IsActive, true)}
	applySoftware(sw, in)
	return sw, s.repo.CreateSoftware(ctx, sw)
}

func (s *CatalogService) UpdateSoftware(ctx context.Context, id uint, in SoftwareInput) (*models.MarketingSoftware, error) {
	if in.PriceUSDT.IsNegative() || in.PriceINR.IsNegative() || in.TrialDays < 0 {
		return nil, domain.ErrInvalidAmount
	}
	sw, err := s.repo.GetSoftware(ctx, id)
	if err != nil {
		return nil, err
	}
	applySoftware(sw, in)
	if in.IsActive != nil {
		sw.IsActive = *in.IsActive
	}
	return sw, s.repo.SaveSoftware(ctx, sw)
}

func applySoftware(sw *models.MarketingSoftware, in SoftwareInput) {
	sw.Name = strings.TrimSpace(in.Name)
	sw.Description = in.Description
	sw.FeatureList = in.Features
	sw.LogoURL = in.LogoURL
	sw.PriceUSDT = in.PriceUSDT
	sw.PriceINR = in.PriceINR
	sw.TrialDays = in.TrialDays
	sw.TrialTerms = in.TrialTerms
	sw.DownloadURL = in.DownloadURL
}

func (s *CatalogService) DeleteSoftware(ctx context.Context, id uint) error {
	return s.repo.DeleteSoftware(ctx, id)
}
