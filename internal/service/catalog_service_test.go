package service

import (
	"context"
	"testing"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slugRepo implements only what the slug and create paths touch.
type slugRepo struct {
	CatalogRepo
	taken    map[string]bool
	products []*models.DigitalProduct
	checked  int
}

func (r *slugRepo) SlugExists(_ context.Context, _ interface{}, s string) (bool, error) {
	r.checked++
	return r.taken[s], nil
}

func (r *slugRepo) CreateProduct(_ context.Context, p *models.DigitalProduct) error {
	r.taken[p.Slug] = true
	r.products = append(r.products, p)
	return nil
}

func (r *slugRepo) CreateCategory(_ context.Context, c *models.DatabaseCategory) error {
	r.taken[c.Slug] = true
	return nil
}

func TestUniqueSlug(t *testing.T) {
	repo := &slugRepo{taken: map[string]bool{"lead-lists": true, "lead-lists-2": true}}
	svc := NewCatalogService(repo)
	ctx := context.Background()

	s, err := svc.UniqueSlug(ctx, &models.DigitalProduct{}, "Lead Lists")
	require.NoError(t, err)
	assert.Equal(t, "lead-lists-3", s)
	assert.Equal(t, 3, repo.checked)

	s, err = svc.UniqueSlug(ctx, &models.DigitalProduct{}, "!!!")
	require.NoError(t, err)
	assert.Equal(t, "item", s)
}

func TestCreateProduct(t *testing.T) {
	repo := &slugRepo{taken: map[string]bool{}}
	svc := NewCatalogService(repo)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductInput{Title: " Cold Email Kit ", PriceUSDT: dec("19.99"), PriceINR: dec("1599")})
	require.NoError(t, err)
	assert.Equal(t, "Cold Email Kit", p.Title)
	assert.Equal(t, "cold-email-kit", p.Slug)
	assert.True(t, p.IsActive, "new products default to active")

	inactive := false
	p, err = svc.CreateProduct(ctx, ProductInput{Title: "Cold Email Kit", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "cold-email-kit-2", p.Slug)
	assert.False(t, p.IsActive)

	_, err = svc.CreateProduct(ctx, ProductInput{Title: "Broken", PriceUSDT: dec("-1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))
	assert.Len(t, repo.products, 2)
}

func TestCreateCategorySlug(t *testing.T) {
	repo := &slugRepo{taken: map[string]bool{}}
	svc := NewCatalogService(repo)

	c, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Real Estate Investors"})
	require.NoError(t, err)
	assert.Equal(t, "real-estate-investors", c.Slug)
	assert.True(t, c.IsActive)
}
