package handler

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/imposter-project/imposter-expect/internal/config"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

const (
	defaultMaxAge = 86400 // 24 hours
)

// handleCORS adds CORS headers to admin API responses and answers preflight
// requests. It returns true if the request has been fully handled.
func handleCORS(w http.ResponseWriter, r *http.Request, corsConfig *config.CorsConfig) bool {
	if corsConfig == nil {
		return false
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		if r.Method == http.MethodOptions {
			logger.Warnf("preflight request received without Origin header - path:%s", r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
			return true
		}
		return false
	}

	if r.Method == http.MethodOptions {
		handlePreflightRequest(w, r, corsConfig)
		return true
	}

	addCORSHeaders(w, r, corsConfig)
	return false
}

// handlePreflightRequest handles CORS preflight requests
func handlePreflightRequest(w http.ResponseWriter, r *http.Request, corsConfig *config.CorsConfig) {
	addCORSHeaders(w, r, corsConfig)

	if len(corsConfig.AllowMethods) > 0 {
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(corsConfig.AllowMethods, ", "))
	} else {
		// the admin API only accepts PUT
		w.Header().Set("Access-Control-Allow-Methods", "PUT, OPTIONS")
	}

	if len(corsConfig.AllowHeaders) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(corsConfig.AllowHeaders, ", "))
	} else if requestedHeaders := r.Header.Get("Access-Control-Request-Headers"); requestedHeaders != "" {
		w.Header().Set("Access-Control-Allow-Headers", requestedHeaders)
	}

	maxAge := defaultMaxAge
	if corsConfig.MaxAge > 0 {
		maxAge = corsConfig.MaxAge
	}
	w.Header().Set("Access-Control-Max-Age", strconv.Itoa(maxAge))

	w.WriteHeader(http.StatusNoContent)
}

// addCORSHeaders adds CORS headers to the response
func addCORSHeaders(w http.ResponseWriter, r *http.Request, corsConfig *config.CorsConfig) {
	origin := r.Header.Get("Origin")
	allowedOrigins := corsConfig.AllowOrigins

	if slices.Contains(allowedOrigins, "all") {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
	} else if slices.Contains(allowedOrigins, "*") {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else if slices.Contains(allowedOrigins, origin) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
	}

	if corsConfig.AllowCredentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
}
