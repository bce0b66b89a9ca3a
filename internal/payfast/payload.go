package payfast

import (
	"net/url"

	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
)

// Field names fixed by the gateway's form protocol.
const (
	FieldMerchantID    = "merchant_id"
	FieldMerchantKey   = "merchant_key"
	FieldReturnURL     = "return_url"
	FieldCancelURL     = "cancel_url"
	FieldNotifyURL     = "notify_url"
	FieldAmount        = "amount"
	FieldItemName      = "item_name"
	FieldEmailAddress  = "email_address"
	FieldMPaymentID    = "m_payment_id"
	FieldPFPaymentID   = "pf_payment_id"
	FieldPaymentStatus = "payment_status"
	FieldCustomStr1    = "custom_str1"
	FieldSignature     = "signature"
)

var knownFields = map[string]struct{}{
	FieldMerchantID:    {},
	FieldMerchantKey:   {},
	FieldReturnURL:     {},
	FieldCancelURL:     {},
	FieldNotifyURL:     {},
	FieldAmount:        {},
	FieldItemName:      {},
	FieldEmailAddress:  {},
	FieldMPaymentID:    {},
	FieldPFPaymentID:   {},
	FieldPaymentStatus: {},
	FieldCustomStr1:    {},
	FieldSignature:     {},
}

// Payload is the flat field set exchanged with the gateway. The field set is
// enumerated; arbitrary request bodies never reach the codec.
type Payload map[string]string

// FromForm converts an inbound form into a Payload. Unknown fields are
// rejected before any signature work happens.
func FromForm(form url.Values) (Payload, error) {
	payload := make(Payload, len(form))
	for key, values := range form {
		if _, ok := knownFields[key]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unexpected notification field")
		}
		if len(values) > 0 {
			payload[key] = values[0]
		}
	}
	return payload, nil
}

// CorrelationToken returns the token the gateway echoed back. m_payment_id
// is authoritative; custom_str1 is accepted for older form versions that
// carried the token there.
func (p Payload) CorrelationToken() string {
	if token := p[FieldMPaymentID]; token != "" {
		return token
	}
	return p[FieldCustomStr1]
}
