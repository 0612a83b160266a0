package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/imposter-project/imposter-expect/internal/model"
	"github.com/imposter-project/imposter-expect/internal/requestlog"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// handleVerify checks the request log against a verification. A verification
// failure is reported with 406, distinct from a failure to read the log.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var verification model.Verification
	if len(body) > 0 {
		if err := json.Unmarshal(body, &verification); err != nil {
			writeValidationError(w, &model.ValidationError{Field: "body", Reason: err.Error()})
			return
		}
	}
	if err := verification.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	err := h.requestLog.Verify(r.Context(), &verification)
	if err == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	var verificationErr *requestlog.VerificationError
	if errors.As(err, &verificationErr) {
		logger.Infof("verification failed: %v", err)
		http.Error(w, err.Error(), http.StatusNotAcceptable)
		return
	}
	logger.Errorf("failed to verify requests: %v", err)
	http.Error(w, "Failed to read request log", http.StatusInternalServerError)
}
