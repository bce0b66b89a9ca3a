package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem pins a product to a buyer's wishlist.
type WishlistItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID   uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:idx_wishlist_buyer_product"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_wishlist_buyer_product"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
