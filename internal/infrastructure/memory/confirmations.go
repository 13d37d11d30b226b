// Package memory holds the process-local confirmation store. Records live
// for the lifetime of the process and are lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-confirm-mailer/internal/domain"
	"github.com/go-confirm-mailer/internal/pkg/token"
)

// ConfirmationStore keeps pending confirmations in a map keyed by code.
// A single mutex covers every read-modify-write, so a code is handed out by
// Redeem or reaped by Sweep exactly once.
//
// Sweep scans every live record. That is fine at the volumes a signup form
// produces; an expiry-ordered index would be needed well before memory is.
type ConfirmationStore struct {
	mu      sync.Mutex
	records map[string]domain.Confirmation
	ttl     time.Duration
	now     func() time.Time
}

// NewConfirmationStore returns an empty store. A zero ttl selects
// domain.DefaultConfirmationTTL and a nil now selects time.Now.
func NewConfirmationStore(ttl time.Duration, now func() time.Time) *ConfirmationStore {
	if ttl <= 0 {
		ttl = domain.DefaultConfirmationTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ConfirmationStore{
		records: make(map[string]domain.Confirmation),
		ttl:     ttl,
		now:     now,
	}
}

// Issue creates a record for email and kind under a fresh random code.
func (s *ConfirmationStore) Issue(_ context.Context, email string, kind domain.Kind) (*domain.Confirmation, error) {
	code, err := token.NewConfirmationCode()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c := domain.Confirmation{
		Code:      code,
		Email:     email,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.records[code] = c
	s.mu.Unlock()
	return &c, nil
}

// Redeem consumes the record for code if it is live and of the given kind.
// An expired record is removed and reported as domain.ErrExpired. A kind
// mismatch leaves the record in place.
func (s *ConfirmationStore) Redeem(_ context.Context, code string, kind domain.Kind) (*domain.Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.records[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if c.Expired(s.now()) {
		delete(s.records, code)
		return nil, domain.ErrExpired
	}
	if c.Kind != kind {
		return nil, domain.ErrKindMismatch
	}
	delete(s.records, code)
	return &c, nil
}

// Sweep removes every expired record and returns how many were removed.
func (s *ConfirmationStore) Sweep(_ context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for code, c := range s.records {
		if c.Expired(now) {
			delete(s.records, code)
			n++
		}
	}
	return n, nil
}

// List returns a snapshot of all records, oldest first, expired ones included.
func (s *ConfirmationStore) List(_ context.Context) ([]domain.Confirmation, error) {
	s.mu.Lock()
	out := make([]domain.Confirmation, 0, len(s.records))
	for _, c := range s.records {
		out = append(out, c)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Len reports the number of records currently held.
func (s *ConfirmationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
