package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("subscription")
	require.NoError(t, err)
	assert.Equal(t, KindSubscribe, k)

	k, err = ParseKind("unsubscription")
	require.NoError(t, err)
	assert.Equal(t, KindUnsubscribe, k)
}

func TestParseKind_Invalid(t *testing.T) {
	for _, s := range []string{"", "Subscription", "subscribe", "delete"} {
		_, err := ParseKind(s)
		require.Error(t, err, s)
		assert.True(t, errors.Is(err, ErrBadRequest))
	}
}

func TestConfirmation_Expired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := &Confirmation{CreatedAt: now, ExpiresAt: now.Add(DefaultConfirmationTTL)}

	assert.False(t, c.Expired(now))
	assert.False(t, c.Expired(c.ExpiresAt), "the expiry instant itself is still valid")
	assert.True(t, c.Expired(c.ExpiresAt.Add(time.Nanosecond)))
}
