package enums

// PaymentOutcome is the payment_status value PayFast reports in its ITN
// callback. Values outside this set are acknowledged without any state
// change so future gateway statuses cannot corrupt purchases.
type PaymentOutcome string

const (
	PaymentOutcomeComplete  PaymentOutcome = "COMPLETE"
	PaymentOutcomeFailed    PaymentOutcome = "FAILED"
	PaymentOutcomeCancelled PaymentOutcome = "CANCELLED"
	PaymentOutcomePending   PaymentOutcome = "PENDING"
)

// IsNegative reports whether the outcome should cancel the purchase.
func (o PaymentOutcome) IsNegative() bool {
	return o == PaymentOutcomeFailed || o == PaymentOutcomeCancelled
}
