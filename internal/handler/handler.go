package handler

import (
	"net/http"

	"github.com/imposter-project/imposter-expect/internal/config"
	"github.com/imposter-project/imposter-expect/internal/dispatch"
	"github.com/imposter-project/imposter-expect/internal/exchange"
	"github.com/imposter-project/imposter-expect/internal/expectation"
	"github.com/imposter-project/imposter-expect/internal/requestlog"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

const (
	expectationPath = "/expectation"
	verifyPath      = "/verify"
	clearPath       = "/clear"
	resetPath       = "/reset"
	retrievePath    = "/retrieve"
	statusPath      = "/status"
)

// Handler serves the admin API and passes all other traffic to the dispatcher
type Handler struct {
	expectations   *expectation.Store
	requestLog     *requestlog.Log
	dispatcher     *dispatch.Dispatcher
	imposterConfig *config.ImposterConfig
}

func NewHandler(
	expectations *expectation.Store,
	requestLog *requestlog.Log,
	dispatcher *dispatch.Dispatcher,
	imposterConfig *config.ImposterConfig,
) *Handler {
	return &Handler{
		expectations:   expectations,
		requestLog:     requestLog,
		dispatcher:     dispatcher,
		imposterConfig: imposterConfig,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.HandleRequest(w, r)
}

// HandleRequest processes incoming HTTP requests and routes them to the appropriate handler
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	if h.handleSystemEndpoint(w, r) {
		return
	}

	req, err := exchange.NewRequest(r)
	if err != nil {
		logger.Errorf("failed to read request - method:%s, path:%s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}

	responseState := h.dispatcher.Dispatch(r.Context(), req)
	responseState.WriteToResponseWriter(w)
}

// handleSystemEndpoint handles the admin API. Admin routes are PUT requests
// to exact paths; anything else is mock traffic. Admin calls are not
// recorded in the request log.
func (h *Handler) handleSystemEndpoint(w http.ResponseWriter, r *http.Request) bool {
	if !isAdminPath(r.URL.Path) {
		return false
	}
	if r.Method != http.MethodPut && !(r.Method == http.MethodOptions && h.imposterConfig.Cors != nil) {
		return false
	}
	if handleCORS(w, r, h.imposterConfig.Cors) {
		return true
	}

	switch r.URL.Path {
	case expectationPath:
		h.handleExpectation(w, r)
	case verifyPath:
		h.handleVerify(w, r)
	case clearPath:
		h.handleClear(w, r)
	case resetPath:
		h.handleReset(w, r)
	case retrievePath:
		h.handleRetrieve(w, r)
	case statusPath:
		h.handleStatus(w, r)
	}
	return true
}

func isAdminPath(path string) bool {
	switch path {
	case expectationPath, verifyPath, clearPath, resetPath, retrievePath, statusPath:
		return true
	}
	return false
}
