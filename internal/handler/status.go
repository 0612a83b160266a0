package handler

import (
	"encoding/json"
	"net/http"

	"github.com/imposter-project/imposter-expect/internal/version"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

type statusResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Port         string `json:"port"`
	Expectations int    `json:"expectations"`
}

// handleStatus handles the /status endpoint
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:       "ok",
		Version:      version.Version,
		Port:         h.imposterConfig.ServerPort,
		Expectations: h.expectations.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
