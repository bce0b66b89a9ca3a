package stats

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localpop/localpop-backend/pkg/enums"
)

// SellerStats is the seller dashboard summary.
type SellerStats struct {
	ProductCount int64           `json:"product_count"`
	SaleCount    int64           `json:"sale_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// SellerAnalytics adds interest and moderation figures to the summary.
type SellerAnalytics struct {
	SellerStats
	WishlistCount int64 `json:"wishlist_count"`
	FlaggedCount  int64 `json:"flagged_count"`
}

// AdminStats are platform-wide counters.
type AdminStats struct {
	UserCount     int64 `json:"user_count"`
	ProductCount  int64 `json:"product_count"`
	PurchaseCount int64 `json:"purchase_count"`
}

// OverviewUser is the account projection in the admin snapshot.
type OverviewUser struct {
	ID    uuid.UUID      `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Role  enums.UserRole `json:"role"`
}

// OverviewProduct is the listing projection in the admin snapshot.
type OverviewProduct struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	SellerID uuid.UUID       `json:"seller_id"`
	Flagged  bool            `json:"flagged,omitempty"`
}

// OverviewPurchase is the purchase projection in the admin snapshot.
type OverviewPurchase struct {
	ID        uuid.UUID            `json:"id"`
	ProductID *uuid.UUID           `json:"product_id,omitempty"`
	BuyerID   uuid.UUID            `json:"buyer_id"`
	SellerID  uuid.UUID            `json:"seller_id"`
	Status    enums.PurchaseStatus `json:"status"`
}

// AdminOverview bundles the three projections for the console.
type AdminOverview struct {
	Users     []OverviewUser     `json:"users"`
	Products  []OverviewProduct  `json:"products"`
	Purchases []OverviewPurchase `json:"purchases"`
}
