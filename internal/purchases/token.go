package purchases

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const paymentTokenBytes = 18

// newPaymentToken generates the random correlation token round-tripped
// through the gateway. It is generated separately from the purchase id so
// knowledge of one id reveals nothing about another purchase's token.
func newPaymentToken() (string, error) {
	bytes := make([]byte, paymentTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating payment token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
