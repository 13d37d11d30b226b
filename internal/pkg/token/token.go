package token

import (
	"fmt"

	"github.com/google/uuid"
)

// NewConfirmationCode returns a random version-4 UUID string (122 random bits).
// Collisions are negligible, so callers do not check for existing keys.
func NewConfirmationCode() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	return u.String(), nil
}
