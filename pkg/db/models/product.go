package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localpop/localpop-backend/pkg/enums"
)

// Product is a seller listing. Flagged/FlagReason carry admin moderation
// state; a flagged product stays visible to its seller but is hidden from
// public browse.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID             `gorm:"column:seller_id;type:uuid;not null;index"`
	Name        string                `gorm:"column:name;not null"`
	Description string                `gorm:"column:description;not null"`
	Category    enums.ProductCategory `gorm:"column:category;type:product_category;not null;default:'other'"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	ImageURL    *string               `gorm:"column:image_url"`
	Flagged     bool                  `gorm:"column:flagged;not null;default:false"`
	FlagReason  *string               `gorm:"column:flag_reason"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
