package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("confirmation code not found")
	ErrExpired      = errors.New("confirmation code has expired")
	ErrKindMismatch = errors.New("confirmation type mismatch")
	ErrBadRequest   = errors.New("bad request")
	ErrMailDelivery = errors.New("mail delivery failed")
)
