package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localpop/localpop-backend/pkg/db/models"
	"github.com/localpop/localpop-backend/pkg/enums"
	"github.com/localpop/localpop-backend/pkg/pagination"
)

// ProductDTO is the listing payload returned to clients. Moderation fields
// are only populated on seller and admin reads.
type ProductDTO struct {
	ID          uuid.UUID             `json:"id"`
	SellerID    uuid.UUID             `json:"seller_id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Category    enums.ProductCategory `json:"category"`
	Price       decimal.Decimal       `json:"price"`
	ImageURL    *string               `json:"image_url,omitempty"`
	Flagged     bool                  `json:"flagged,omitempty"`
	FlagReason  *string               `json:"flag_reason,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// CreateProductInput captures a new seller listing.
type CreateProductInput struct {
	Name        string                `json:"name" validate:"required"`
	Description string                `json:"description" validate:"required"`
	Category    enums.ProductCategory `json:"category" validate:"required"`
	Price       decimal.Decimal       `json:"price" validate:"required"`
	ImageURL    *string               `json:"image_url,omitempty" validate:"omitempty,url"`
}

// UpdateProductInput carries partial listing edits; nil fields are left
// untouched.
type UpdateProductInput struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Category    *enums.ProductCategory `json:"category,omitempty"`
	Price       *decimal.Decimal       `json:"price,omitempty"`
	ImageURL    *string                `json:"image_url,omitempty" validate:"omitempty,url"`
}

// ListFilters describe the public browse knobs.
type ListFilters struct {
	Query    string
	Category *enums.ProductCategory
}

// ListInput pairs filters with cursor pagination.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ListPage is one page of listings plus the cursor for the next one.
type ListPage struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func fromModel(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Flagged:     p.Flagged,
		FlagReason:  p.FlagReason,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i]))
	}
	return out
}
