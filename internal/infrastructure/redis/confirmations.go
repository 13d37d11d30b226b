// Package redis stores pending confirmations in Redis so several service
// instances can share them.
package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-confirm-mailer/internal/domain"
	"github.com/go-confirm-mailer/internal/pkg/token"
	goredis "github.com/redis/go-redis/v9"
)

// keyGrace keeps a record in Redis for a while after it expires so that a
// late redemption is reported as expired rather than unknown.
const keyGrace = time.Hour

// Each record is a hash with fields email, type, created_at, expires_at
// (times in Unix milliseconds).

// redeemLua atomically performs GET→validate→DEL on a record.
// KEYS[1] = record key
// ARGV[1] = expected type
// ARGV[2] = current unix millis
//
// Returns {email, type, created_at, expires_at} on success, or an error
// reply: "not_found", "expired", "kind_mismatch".
var redeemLua = goredis.NewScript(`
if redis.call('TYPE', KEYS[1]).ok ~= 'hash' then
  return {err='not_found'}
end
local v = redis.call('HMGET', KEYS[1], 'email', 'type', 'created_at', 'expires_at')
if not v[2] then
  return {err='not_found'}
end
if tonumber(ARGV[2]) > tonumber(v[4]) then
  redis.call('DEL', KEYS[1])
  return {err='expired'}
end
if v[2] ~= ARGV[1] then
  return {err='kind_mismatch'}
end
redis.call('DEL', KEYS[1])
return v
`)

// reapLua deletes KEYS[1] if it has expired at ARGV[1] (unix millis).
// Returns 1 when the record was removed, 0 otherwise. Keys that are not
// hashes belong to someone else and are left alone.
var reapLua = goredis.NewScript(`
if redis.call('TYPE', KEYS[1]).ok ~= 'hash' then
  return 0
end
local exp = redis.call('HGET', KEYS[1], 'expires_at')
if not exp then
  return 0
end
if tonumber(ARGV[1]) > tonumber(exp) then
  redis.call('DEL', KEYS[1])
  return 1
end
return 0
`)

// ConfirmationStore keeps pending confirmations in Redis hashes.
type ConfirmationStore struct {
	redis  goredis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewConfirmationStore returns a store writing under "<prefix>:<code>".
// A zero ttl selects domain.DefaultConfirmationTTL and a nil now selects time.Now.
func NewConfirmationStore(client goredis.UniversalClient, prefix string, ttl time.Duration, now func() time.Time) *ConfirmationStore {
	if prefix == "" {
		prefix = "confirm"
	}
	if ttl <= 0 {
		ttl = domain.DefaultConfirmationTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ConfirmationStore{redis: client, prefix: prefix, ttl: ttl, now: now}
}

func (s *ConfirmationStore) key(code string) string {
	return s.prefix + ":" + code
}

func (s *ConfirmationStore) Issue(ctx context.Context, email string, kind domain.Kind) (*domain.Confirmation, error) {
	code, err := token.NewConfirmationCode()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	c := &domain.Confirmation{
		Code:      code,
		Email:     email,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	key := s.key(code)
	_, err = s.redis.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.HSet(ctx, key,
			"email", c.Email,
			"type", string(c.Kind),
			"created_at", c.CreatedAt.UnixMilli(),
			"expires_at", c.ExpiresAt.UnixMilli(),
		)
		p.PExpire(ctx, key, s.ttl+keyGrace)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store confirmation: %w", err)
	}
	return c, nil
}

func (s *ConfirmationStore) Redeem(ctx context.Context, code string, kind domain.Kind) (*domain.Confirmation, error) {
	res, err := redeemLua.Run(ctx, s.redis, []string{s.key(code)}, string(kind), s.now().UnixMilli()).StringSlice()
	if err != nil {
		return nil, mapScriptError(err)
	}
	if len(res) != 4 {
		return nil, fmt.Errorf("redeem confirmation: unexpected reply length %d", len(res))
	}
	return decodeRecord(code, res[0], res[1], res[2], res[3])
}

// Sweep scans the key space under prefix and deletes expired records one key
// at a time, each in its own script so it cannot interleave with Redeem.
// Redis also drops keys on its own keyGrace after expiry.
func (s *ConfirmationStore) Sweep(ctx context.Context) (int, error) {
	nowMs := s.now().UnixMilli()
	n := 0
	iter := s.redis.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		removed, err := reapLua.Run(ctx, s.redis, []string{iter.Val()}, nowMs).Int()
		if err != nil {
			return n, fmt.Errorf("reap %s: %w", iter.Val(), err)
		}
		n += removed
	}
	if err := iter.Err(); err != nil {
		return n, fmt.Errorf("scan confirmations: %w", err)
	}
	return n, nil
}

// List returns every record under prefix, oldest first.
func (s *ConfirmationStore) List(ctx context.Context) ([]domain.Confirmation, error) {
	var out []domain.Confirmation
	iter := s.redis.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		typ, err := s.redis.Type(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", key, err)
		}
		if typ != "hash" {
			continue
		}
		h, err := s.redis.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		if len(h) == 0 {
			continue // consumed between SCAN and HGETALL
		}
		c, err := decodeRecord(key[len(s.prefix)+1:], h["email"], h["type"], h["created_at"], h["expires_at"])
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan confirmations: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func decodeRecord(code, email, kind, createdAt, expiresAt string) (*domain.Confirmation, error) {
	created, err := strconv.ParseInt(createdAt, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode created_at of %s: %w", code, err)
	}
	expires, err := strconv.ParseInt(expiresAt, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode expires_at of %s: %w", code, err)
	}
	return &domain.Confirmation{
		Code:      code,
		Email:     email,
		Kind:      domain.Kind(kind),
		CreatedAt: time.UnixMilli(created).UTC(),
		ExpiresAt: time.UnixMilli(expires).UTC(),
	}, nil
}

func mapScriptError(err error) error {
	switch err.Error() {
	case "not_found":
		return domain.ErrNotFound
	case "expired":
		return domain.ErrExpired
	case "kind_mismatch":
		return domain.ErrKindMismatch
	}
	return fmt.Errorf("redeem confirmation: %w", err)
}
