package purchases

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localpop/localpop-backend/pkg/db/models"
	"github.com/localpop/localpop-backend/pkg/enums"
)

// PurchaseDTO is the purchase history payload. The payment token stays
// server-side; it exists only to correlate gateway callbacks.
type PurchaseDTO struct {
	ID          uuid.UUID            `json:"id"`
	ProductID   *uuid.UUID           `json:"product_id,omitempty"`
	BuyerID     uuid.UUID            `json:"buyer_id"`
	SellerID    uuid.UUID            `json:"seller_id"`
	ItemName    string               `json:"item_name"`
	Amount      decimal.Decimal      `json:"amount"`
	Status      enums.PurchaseStatus `json:"status"`
	PaidAt      *time.Time           `json:"paid_at,omitempty"`
	CancelledAt *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// FromModel converts a purchase row into its API shape.
func FromModel(p *models.Purchase) PurchaseDTO {
	return PurchaseDTO{
		ID:          p.ID,
		ProductID:   p.ProductID,
		BuyerID:     p.BuyerID,
		SellerID:    p.SellerID,
		ItemName:    p.ItemName,
		Amount:      p.Amount,
		Status:      p.Status,
		PaidAt:      p.PaidAt,
		CancelledAt: p.CancelledAt,
		CreatedAt:   p.CreatedAt,
	}
}

// FromModels converts purchase rows into their API shape.
func FromModels(rows []models.Purchase) []PurchaseDTO {
	out := make([]PurchaseDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
