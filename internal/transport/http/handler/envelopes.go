package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-confirm-mailer/internal/domain"
)

// Stable error kinds returned in error_kind so clients need not parse messages.
const (
	ErrorKindBadRequest   = "bad_request"
	ErrorKindNotFound     = "not_found"
	ErrorKindExpired      = "expired"
	ErrorKindKindMismatch = "kind_mismatch"
	ErrorKindMailDelivery = "mail_delivery"
	ErrorKindInternal     = "internal"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// HealthEnvelope wraps the health-check response.
type HealthEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SendEnvelope wraps the send-confirmation response.
type SendEnvelope struct {
	Message          string `json:"message"`
	ConfirmationCode string `json:"confirmationCode"`
}

// ConfirmEnvelope wraps a successful redemption.
type ConfirmEnvelope struct {
	Message string      `json:"message"`
	Email   string      `json:"email"`
	Type    domain.Kind `json:"type"`
}

// CodeView is one entry of the debug listing.
type CodeView struct {
	domain.Confirmation
	IsExpired bool `json:"isExpired"`
}

// CodesEnvelope wraps the debug listing.
type CodesEnvelope struct {
	Codes []CodeView `json:"codes"`
}

// FrontendURLEnvelope wraps the frontend detection debug response.
type FrontendURLEnvelope struct {
	DetectedFrontendURL string            `json:"detectedFrontendUrl"`
	Source              string            `json:"source"`
	Headers             map[string]string `json:"headers"`
	FallbackURL         string            `json:"fallbackUrl"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorKind: kind})
}

// writeServiceError maps domain errors onto status codes and error kinds.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, ErrorKindBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrorKindNotFound, "Invalid or expired confirmation code")
	case errors.Is(err, domain.ErrExpired):
		writeError(w, http.StatusBadRequest, ErrorKindExpired, "Confirmation code has expired")
	case errors.Is(err, domain.ErrKindMismatch):
		writeError(w, http.StatusBadRequest, ErrorKindKindMismatch, "Type mismatch")
	case errors.Is(err, domain.ErrMailDelivery):
		writeError(w, http.StatusInternalServerError, ErrorKindMailDelivery, "Failed to send email")
	default:
		slog.Error("unhandled service error", "err", err)
		writeError(w, http.StatusInternalServerError, ErrorKindInternal, "internal server error")
	}
}

func codeViews(list []domain.Confirmation, now time.Time) []CodeView {
	out := make([]CodeView, 0, len(list))
	for _, c := range list {
		out = append(out, CodeView{Confirmation: c, IsExpired: c.Expired(now)})
	}
	return out
}
