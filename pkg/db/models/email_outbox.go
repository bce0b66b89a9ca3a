package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/localpop/localpop-backend/pkg/enums"
)

// EmailOutbox is a durable email waiting for delivery. Rows are written in
// the same transaction as the state change that triggered them, then drained
// by the mail dispatcher with bounded retries.
type EmailOutbox struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseID  *uuid.UUID        `gorm:"column:purchase_id;type:uuid;index"`
	ToAddress   string            `gorm:"column:to_address;not null"`
	Subject     string            `gorm:"column:subject;not null"`
	Body        string            `gorm:"column:body;not null"`
	HTML        bool              `gorm:"column:html;not null;default:false"`
	Status      enums.EmailStatus `gorm:"column:status;type:email_status;not null;default:'pending';index"`
	Attempts    int               `gorm:"column:attempts;not null;default:0"`
	LastError   *string           `gorm:"column:last_error"`
	NextAttempt time.Time         `gorm:"column:next_attempt_at;not null;index"`
	SentAt      *time.Time        `gorm:"column:sent_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singular-domain plural-table convention explicit.
func (EmailOutbox) TableName() string {
	return "email_outbox"
}
