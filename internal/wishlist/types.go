package wishlist

import (
	"time"

	"github.com/localpop/localpop-backend/internal/products"
)

// ItemDTO pairs a wishlisted product with the moment it was saved.
type ItemDTO struct {
	Product products.ProductDTO `json:"product"`
	SavedAt time.Time           `json:"saved_at"`
}
