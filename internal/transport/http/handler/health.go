package handler

import "net/http"

// HealthHandler handles the liveness endpoint.
type HealthHandler struct {
	message string
}

func NewHealthHandler(brandingName string) *HealthHandler {
	if brandingName == "" {
		brandingName = "G-Weather"
	}
	return &HealthHandler{message: brandingName + " Email Service is running"}
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthEnvelope{Status: "OK", Message: h.message})
}
