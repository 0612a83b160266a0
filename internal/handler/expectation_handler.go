package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/imposter-project/imposter-expect/internal/model"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

type registerResponse struct {
	IDs []string `json:"ids"`
}

// handleExpectation registers one expectation or an array of them. The batch
// is validated as a whole before any is registered.
func (h *Handler) handleExpectation(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	expectations, err := model.DecodeExpectations(body)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	ids := make([]string, 0, len(expectations))
	for _, e := range expectations {
		id, err := h.expectations.Register(e)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		ids = append(ids, id)
	}
	logger.Infof("registered %d expectation(s)", len(ids))
	writeJSON(w, http.StatusCreated, registerResponse{IDs: ids})
}

// handleClear removes the expectations selected by the request matcher in
// the body. An empty body clears every expectation; the request log is kept.
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	criteria, err := decodeMatcher(body)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	removed := h.expectations.Clear(criteria)
	logger.Infof("cleared %d expectation(s)", removed)
	w.WriteHeader(http.StatusAccepted)
}

// handleReset removes all expectations and recorded requests.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.expectations.Reset()
	if err := h.requestLog.Clear(r.Context()); err != nil {
		logger.Errorf("failed to reset request log: %v", err)
		http.Error(w, "Failed to reset request log", http.StatusInternalServerError)
		return
	}
	logger.Infoln("reset expectations and request log")
	w.WriteHeader(http.StatusAccepted)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		return nil, true
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Errorf("failed to read request body: %v", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

// decodeMatcher accepts either {"httpRequest": {...}} or a bare request
// matcher. An empty body yields nil.
func decodeMatcher(body []byte) (*model.HttpRequest, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	var wrapper struct {
		HttpRequest *model.HttpRequest `json:"httpRequest"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, &model.ValidationError{Field: "body", Reason: err.Error()}
	}
	matcher := wrapper.HttpRequest
	if matcher == nil {
		matcher = &model.HttpRequest{}
		if err := json.Unmarshal(body, matcher); err != nil {
			return nil, &model.ValidationError{Field: "body", Reason: err.Error()}
		}
	}
	if err := (&model.Verification{HttpRequest: matcher}).Validate(); err != nil {
		return nil, err
	}
	return matcher, nil
}

func writeValidationError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		logger.Warnf("rejected admin request: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.Errorf("failed to process admin request: %v", err)
	http.Error(w, fmt.Sprintf("Failed to process request: %v", err), http.StatusInternalServerError)
}
