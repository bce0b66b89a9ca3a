package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/localpop/localpop-backend/pkg/db/models"
	"github.com/localpop/localpop-backend/pkg/enums"
	"github.com/localpop/localpop-backend/pkg/pagination"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT 'other',
  price TEXT NOT NULL,
  image_url TEXT,
  flagged INTEGER NOT NULL DEFAULT 0,
  flag_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	return db
}

func insertProduct(t *testing.T, repo *Repository, sellerID uuid.UUID, name string, category enums.ProductCategory, createdAt time.Time) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Name:        name,
		Description: "Made around the corner",
		Category:    category,
		Price:       decimal.RequireFromString("85.00"),
		CreatedAt:   createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func TestListPublicExcludesFlagged(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	seller := uuid.New()
	now := time.Now().UTC()

	visible := insertProduct(t, repo, seller, "Sourdough loaf", enums.ProductCategoryFood, now)
	hidden := insertProduct(t, repo, seller, "Counterfeit sneakers", enums.ProductCategoryClothing, now)
	require.NoError(t, repo.SetFlag(ctx, hidden.ID, true, ptr("counterfeit goods")))

	rows, err := repo.ListPublic(ctx, ListFilters{}, nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, visible.ID, rows[0].ID)

	// The seller still sees both listings.
	mine, err := repo.ListBySeller(ctx, seller)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestListPublicFilters(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	seller := uuid.New()
	now := time.Now().UTC()

	bread := insertProduct(t, repo, seller, "Sourdough loaf", enums.ProductCategoryFood, now)
	insertProduct(t, repo, seller, "Knitted beanie", enums.ProductCategoryClothing, now)

	food := enums.ProductCategoryFood
	rows, err := repo.ListPublic(ctx, ListFilters{Category: &food}, nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, bread.ID, rows[0].ID)

	rows, err = repo.ListPublic(ctx, ListFilters{Query: "sourdough"}, nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, bread.ID, rows[0].ID)

	rows, err = repo.ListPublic(ctx, ListFilters{Query: "pottery"}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListPublicCursorPagination(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	seller := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	oldest := insertProduct(t, repo, seller, "Oldest", enums.ProductCategoryOther, base.Add(-3*time.Hour))
	middle := insertProduct(t, repo, seller, "Middle", enums.ProductCategoryOther, base.Add(-2*time.Hour))
	newest := insertProduct(t, repo, seller, "Newest", enums.ProductCategoryOther, base.Add(-1*time.Hour))

	first, err := repo.ListPublic(ctx, ListFilters{}, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, newest.ID, first[0].ID)
	assert.Equal(t, middle.ID, first[1].ID)

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	second, err := repo.ListPublic(ctx, ListFilters{}, cursor, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, oldest.ID, second[0].ID)
}

func TestListRelatedSameCategoryOnly(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	seller := uuid.New()
	now := time.Now().UTC()

	mug := insertProduct(t, repo, seller, "Ceramic mug", enums.ProductCategoryCrafts, now)
	bowl := insertProduct(t, repo, seller, "Ceramic bowl", enums.ProductCategoryCrafts, now)
	flagged := insertProduct(t, repo, seller, "Ceramic vase", enums.ProductCategoryCrafts, now)
	insertProduct(t, repo, seller, "Sourdough loaf", enums.ProductCategoryFood, now)
	require.NoError(t, repo.SetFlag(ctx, flagged.ID, true, ptr("spam")))

	rows, err := repo.ListRelated(ctx, enums.ProductCategoryCrafts, mug.ID, relatedLimit)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, bowl.ID, rows[0].ID)
}

func TestSellerCountsIncludeFlaggedListings(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	seller := uuid.New()
	now := time.Now().UTC()

	insertProduct(t, repo, seller, "Sourdough loaf", enums.ProductCategoryFood, now)
	flagged := insertProduct(t, repo, seller, "Knockoff sneakers", enums.ProductCategoryClothing, now)
	insertProduct(t, repo, uuid.New(), "Beaded bracelet", enums.ProductCategoryCrafts, now)
	require.NoError(t, repo.SetFlag(ctx, flagged.ID, true, ptr("counterfeit")))

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	bySeller, err := repo.CountBySeller(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, int64(2), bySeller)

	flaggedCount, err := repo.CountFlaggedBySeller(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, int64(1), flaggedCount)
}

func TestSetFlagRoundTrip(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := insertProduct(t, repo, uuid.New(), "Ceramic mug", enums.ProductCategoryCrafts, time.Now().UTC())

	require.NoError(t, repo.SetFlag(ctx, product.ID, true, ptr("misleading photos")))
	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, found.Flagged)
	require.NotNil(t, found.FlagReason)
	assert.Equal(t, "misleading photos", *found.FlagReason)

	require.NoError(t, repo.SetFlag(ctx, product.ID, false, nil))
	found, err = repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, found.Flagged)
	assert.Nil(t, found.FlagReason)
}

func ptr(s string) *string {
	return &s
}
