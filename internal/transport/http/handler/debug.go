package handler

import (
	"net/http"
	"time"

	"github.com/go-confirm-mailer/internal/application/confirmation"
	"github.com/go-confirm-mailer/internal/pkg/frontend"
)

// DebugHandler exposes store contents and frontend detection. The router
// only mounts it in binaries built with the debug tag.
type DebugHandler struct {
	svc      confirmation.Service
	frontend *frontend.Resolver
	now      func() time.Time
}

func NewDebugHandler(svc confirmation.Service, resolver *frontend.Resolver) *DebugHandler {
	return &DebugHandler{svc: svc, frontend: resolver, now: time.Now}
}

func (h *DebugHandler) ListCodes(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Pending(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CodesEnvelope{Codes: codeViews(list, h.now())})
}

func (h *DebugHandler) FrontendURL(w http.ResponseWriter, r *http.Request) {
	detected, src := h.frontend.Detect(r)
	writeJSON(w, http.StatusOK, FrontendURLEnvelope{
		DetectedFrontendURL: detected,
		Source:              string(src),
		Headers: map[string]string{
			"origin":     r.Header.Get("Origin"),
			"referer":    r.Header.Get("Referer"),
			"user-agent": r.Header.Get("User-Agent"),
		},
		FallbackURL: h.frontend.Fallback(),
	})
}
