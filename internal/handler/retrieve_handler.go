package handler

import (
	"net/http"
	"strings"

	"github.com/imposter-project/imposter-expect/internal/exchange"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// retrievedRequest is the read-only view of a recorded request
type retrievedRequest struct {
	Method                string              `json:"method"`
	Path                  string              `json:"path"`
	URL                   string              `json:"url"`
	QueryStringParameters map[string][]string `json:"queryStringParameters,omitempty"`
	Headers               map[string][]string `json:"headers,omitempty"`
	Cookies               map[string][]string `json:"cookies,omitempty"`
	Body                  string              `json:"body,omitempty"`
	Timestamp             string              `json:"timestamp"`
}

// handleRetrieve lists recorded requests, or registered expectations when
// type=expectations, optionally filtered by a request matcher in the body.
func (h *Handler) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	criteria, err := decodeMatcher(body)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	switch strings.ToLower(r.URL.Query().Get("type")) {
	case "", "requests":
		requests, err := h.requestLog.Retrieve(r.Context(), criteria)
		if err != nil {
			logger.Errorf("failed to retrieve requests: %v", err)
			http.Error(w, "Failed to read request log", http.StatusInternalServerError)
			return
		}
		logger.Debugf("retrieved %d recorded request(s)", len(requests))
		writeJSON(w, http.StatusOK, toRetrieved(requests))
	case "expectations":
		expectations := h.expectations.List(criteria)
		logger.Debugf("retrieved %d expectation(s)", len(expectations))
		writeJSON(w, http.StatusOK, expectations)
	default:
		http.Error(w, "Unsupported retrieve type", http.StatusBadRequest)
	}
}

func toRetrieved(requests []*exchange.Request) []retrievedRequest {
	result := make([]retrievedRequest, 0, len(requests))
	for _, req := range requests {
		result = append(result, retrievedRequest{
			Method:                req.Method,
			Path:                  req.Path,
			URL:                   req.URL,
			QueryStringParameters: req.Query,
			Headers:               req.Headers,
			Cookies:               req.Cookies,
			Body:                  string(req.Body),
			Timestamp:             req.ReceivedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	return result
}
