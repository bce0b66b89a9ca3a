package mail

import (
	"time"

	"github.com/google/uuid"

	"github.com/localpop/localpop-backend/pkg/db/models"
	"github.com/localpop/localpop-backend/pkg/enums"
)

// Message is an email handed to the outbox. PurchaseID links confirmation
// mail back to the purchase that triggered it.
type Message struct {
	PurchaseID *uuid.UUID
	To         string
	Subject    string
	Body       string
	HTML       bool
}

func (m Message) toRow(now time.Time) *models.EmailOutbox {
	return &models.EmailOutbox{
		ID:          uuid.New(),
		PurchaseID:  m.PurchaseID,
		ToAddress:   m.To,
		Subject:     m.Subject,
		Body:        m.Body,
		HTML:        m.HTML,
		Status:      enums.EmailStatusPending,
		NextAttempt: now,
	}
}
