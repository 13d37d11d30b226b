package confirmation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-confirm-mailer/internal/domain"
	"github.com/go-confirm-mailer/internal/infrastructure/smtp"
	"github.com/go-confirm-mailer/internal/metrics"
	"github.com/go-confirm-mailer/internal/pkg/frontend"
)

type SendRequest struct {
	Email string `json:"email" validate:"required,email"`
	Type  string `json:"type" validate:"required,oneof=subscription unsubscription"`
}

type ConfirmRequest struct {
	Code string `json:"code" validate:"required"`
	Type string `json:"type" validate:"required,oneof=subscription unsubscription"`
}

// Store is the confirmation store the service runs on. Implementations must
// make Redeem's lookup, validation and removal a single atomic step.
type Store interface {
	Issue(ctx context.Context, email string, kind domain.Kind) (*domain.Confirmation, error)
	Redeem(ctx context.Context, code string, kind domain.Kind) (*domain.Confirmation, error)
	Sweep(ctx context.Context) (int, error)
	List(ctx context.Context) ([]domain.Confirmation, error)
}

type Service interface {
	// SendConfirmation issues a code for email and mails the confirmation
	// link built on frontendURL. A delivery failure is returned wrapped in
	// domain.ErrMailDelivery; the issued code stays redeemable.
	SendConfirmation(ctx context.Context, email string, kind domain.Kind, frontendURL string) (*domain.Confirmation, error)
	Confirm(ctx context.Context, code string, kind domain.Kind) (*domain.Confirmation, error)
	Pending(ctx context.Context) ([]domain.Confirmation, error)
}

// ServiceDeps groups the collaborators of the confirmation service.
type ServiceDeps struct {
	Store        Store
	Mailer       smtp.Mailer
	BrandingName string
}

type service struct {
	store    Store
	mailer   smtp.Mailer
	branding string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		store:    deps.Store,
		mailer:   deps.Mailer,
		branding: deps.BrandingName,
	}
}

func (s *service) SendConfirmation(ctx context.Context, email string, kind domain.Kind, frontendURL string) (*domain.Confirmation, error) {
	c, err := s.store.Issue(ctx, email, kind)
	if err != nil {
		return nil, fmt.Errorf("issue confirmation code: %w", err)
	}
	metrics.ConfirmationsIssued.WithLabelValues(kind.String()).Inc()

	subject, body, err := smtp.RenderConfirmation(kind, smtp.ConfirmationMailParams{
		Email:           email,
		ConfirmationURL: frontend.ConfirmationURL(frontendURL, c.Code, kind.String()),
		BrandingName:    s.branding,
	})
	if err != nil {
		return nil, fmt.Errorf("render %s email: %w", kind, err)
	}

	if err := s.mailer.SendEmail(email, subject, body); err != nil {
		slog.Error("failed to send confirmation email", "type", kind, "email", email, "err", err)
		return nil, fmt.Errorf("%s email to %s: %v: %w", kind, email, err, domain.ErrMailDelivery)
	}
	slog.Info("confirmation email sent", "type", kind, "email", email)
	return c, nil
}

func (s *service) Confirm(ctx context.Context, code string, kind domain.Kind) (*domain.Confirmation, error) {
	c, err := s.store.Redeem(ctx, code, kind)
	metrics.ConfirmationsRedeemed.WithLabelValues(kind.String(), redemptionResult(err)).Inc()
	if err != nil {
		return nil, err
	}
	slog.Info("confirmation redeemed", "type", c.Kind, "email", c.Email)
	return c, nil
}

func (s *service) Pending(ctx context.Context) ([]domain.Confirmation, error) {
	return s.store.List(ctx)
}

func redemptionResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultConfirmed
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, domain.ErrExpired):
		return metrics.ResultExpired
	case errors.Is(err, domain.ErrKindMismatch):
		return metrics.ResultKindMismatch
	}
	return metrics.ResultError
}
