package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localpop/localpop-backend/pkg/enums"
)

// Purchase is the record a buyer creates at checkout and the gateway settles
// asynchronously. ItemName and Amount are snapshots taken at creation so the
// record survives later product edits or deletion; Amount never changes after
// insert. PaymentToken is the random correlation token round-tripped through
// the gateway (sent as m_payment_id, echoed back in the ITN callback) and is
// the only way an inbound notification can address this row.
type Purchase struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    *uuid.UUID           `gorm:"column:product_id;type:uuid;index"`
	BuyerID      uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID     uuid.UUID            `gorm:"column:seller_id;type:uuid;not null;index"`
	ItemName     string               `gorm:"column:item_name;not null"`
	BuyerEmail   string               `gorm:"column:buyer_email;not null"`
	Amount       decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	Status       enums.PurchaseStatus `gorm:"column:status;type:purchase_status;not null;default:'Pending'"`
	PaymentToken string               `gorm:"column:payment_token;not null;unique"`
	PaidAt       *time.Time           `gorm:"column:paid_at"`
	CancelledAt  *time.Time           `gorm:"column:cancelled_at"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
