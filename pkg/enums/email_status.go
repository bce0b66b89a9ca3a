package enums

import "fmt"

// EmailStatus tracks the delivery state of an outbox email row.
type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

var validEmailStatuses = []EmailStatus{
	EmailStatusPending,
	EmailStatusSent,
	EmailStatusFailed,
}

// IsValid reports whether the value matches the canonical email status enum.
func (s EmailStatus) IsValid() bool {
	for _, candidate := range validEmailStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseEmailStatus converts the raw string to EmailStatus.
func ParseEmailStatus(value string) (EmailStatus, error) {
	for _, candidate := range validEmailStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid email status %q", value)
}
