package wishlist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/localpop/localpop-backend/pkg/db/models"
	"github.com/localpop/localpop-backend/pkg/enums"
)

// Repository encapsulates wishlist persistence. Saving the same product
// twice is a no-op via the buyer/product unique index.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a wishlist entry and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, buyerID, productID uuid.UUID) error {
	if buyerID == uuid.Nil || productID == uuid.Nil {
		return gorm.ErrInvalidValue
	}

	return r.db.WithContext(ctx).
		Exec(`INSERT INTO wishlist_items (id, buyer_id, product_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (buyer_id, product_id) DO NOTHING`,
			uuid.New(), buyerID, productID, time.Now().UTC()).
		Error
}

// CountForSeller reports how many wishlist entries point at the seller's
// products, a cheap interest signal for the analytics view.
func (r *Repository) CountForSeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("wishlist_items AS wi").
		Joins("JOIN products p ON p.id = wi.product_id").
		Where("p.seller_id = ?", sellerID).
		Count(&count).Error
	return count, err
}

// RemoveItem deletes the entry if it exists.
func (r *Repository) RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		Delete(&models.WishlistItem{}).
		Error
}

type wishlistRow struct {
	SavedAt     time.Time
	ProductID   uuid.UUID
	SellerID    uuid.UUID
	Name        string
	Description string
	Category    enums.ProductCategory
	Price       decimal.Decimal
	ImageURL    *string
	Flagged     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListItems returns the buyer's saved products, most recently saved first.
// Flagged products stay joined so the entry survives moderation, but the
// service hides them from the response.
func (r *Repository) ListItems(ctx context.Context, buyerID uuid.UUID) ([]wishlistRow, error) {
	var rows []wishlistRow
	err := r.db.WithContext(ctx).
		Table("wishlist_items AS wi").
		Select([]string{
			"wi.created_at AS saved_at",
			"p.id AS product_id",
			"p.seller_id",
			"p.name",
			"p.description",
			"p.category",
			"p.price",
			"p.image_url",
			"p.flagged",
			"p.created_at",
			"p.updated_at",
		}).
		Joins("JOIN products p ON p.id = wi.product_id").
		Where("wi.buyer_id = ?", buyerID).
		Order("wi.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
