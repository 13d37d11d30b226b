package http

import (
	"github.com/go-confirm-mailer/internal/application/confirmation"
	"github.com/go-confirm-mailer/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Store  confirmation.Store
	Mailer smtp.Mailer
}
