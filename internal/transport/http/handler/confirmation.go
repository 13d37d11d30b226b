package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-confirm-mailer/internal/application/confirmation"
	"github.com/go-confirm-mailer/internal/domain"
	"github.com/go-confirm-mailer/internal/pkg/frontend"
	"github.com/go-confirm-mailer/internal/pkg/validate"
)

// ConfirmationHandler handles the send and confirm endpoints.
type ConfirmationHandler struct {
	svc      confirmation.Service
	frontend *frontend.Resolver
}

func NewConfirmationHandler(svc confirmation.Service, resolver *frontend.Resolver) *ConfirmationHandler {
	return &ConfirmationHandler{svc: svc, frontend: resolver}
}

// Send issues a code and emails the confirmation link.
func (h *ConfirmationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req confirmation.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorKindBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeServiceError(w, err)
		return
	}
	kind, err := domain.ParseKind(req.Type)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	base, _ := h.frontend.Detect(r)
	c, err := h.svc.SendConfirmation(r.Context(), req.Email, kind, base)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SendEnvelope{
		Message:          fmt.Sprintf("%s email sent successfully", kind),
		ConfirmationCode: c.Code,
	})
}

// Confirm redeems a code.
func (h *ConfirmationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmation.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorKindBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeServiceError(w, err)
		return
	}
	kind, err := domain.ParseKind(req.Type)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	c, err := h.svc.Confirm(r.Context(), req.Code, kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConfirmEnvelope{
		Message: fmt.Sprintf("%s confirmed successfully", c.Kind),
		Email:   c.Email,
		Type:    c.Kind,
	})
}
