package domain

import (
	"fmt"
	"time"
)

// Kind is the action a confirmation code authorizes.
type Kind string

const (
	KindSubscribe   Kind = "subscription"
	KindUnsubscribe Kind = "unsubscription"
)

// DefaultConfirmationTTL is how long an issued code stays redeemable.
const DefaultConfirmationTTL = 24 * time.Hour

// ParseKind maps the wire value onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSubscribe, KindUnsubscribe:
		return k, nil
	}
	return "", fmt.Errorf("invalid type %q, must be subscription or unsubscription: %w", s, ErrBadRequest)
}

func (k Kind) String() string { return string(k) }

// Confirmation is a pending subscribe/unsubscribe request keyed by Code.
// Records are never modified after creation; redemption and expiry both remove them.
type Confirmation struct {
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	Kind      Kind      `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the record is past its validity window at now.
func (c *Confirmation) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
