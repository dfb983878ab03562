package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cvforge/internal/assist"
)

// ErrorResponse is the error payload shape for all endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeErrorResponse writes a JSON error response
func writeErrorResponse(w http.ResponseWriter, errorMsg, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: errorMsg, Message: message})
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// parseJSONRequest decodes a JSON request body into target
func parseJSONRequest(w http.ResponseWriter, r *http.Request, target any) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		writeErrorResponse(w, "Unsupported content type", "Expected application/json", http.StatusUnsupportedMediaType)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// breakerStats is implemented by providers that expose circuit
// breaker state for health reporting.
type breakerStats interface {
	GetCircuitBreakerStats() map[string]any
}

type healthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	AIModel   *assist.ModelInfo `json:"aiModel,omitempty"`
	Breakers  map[string]any    `json:"circuitBreakers,omitempty"`
}

// healthHandler reports service readiness including the assist model
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Version:   s.version,
		Timestamp: time.Now().UTC(),
	}

	if s.Assist != nil {
		timeout := s.AppConfig.Observability.HealthCheck.AIModelCheckTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		resp.AIModel = s.Assist.Provider.GetModelInfo(ctx)
		if resp.AIModel != nil && !resp.AIModel.Available {
			resp.Status = "degraded"
		}

		if bs, ok := s.Assist.Provider.(breakerStats); ok {
			resp.Breakers = bs.GetCircuitBreakerStats()
		}
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

type statsResponse struct {
	Version      string         `json:"version"`
	Screen       string         `json:"screen"`
	Score        int            `json:"score"`
	HasPriorWork bool           `json:"hasPriorWork"`
	StoreBackend string         `json:"storeBackend"`
	RateLimiter  map[string]any `json:"rateLimiter,omitempty"`
}

// statsHandler reports session and infrastructure statistics
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{
		Version:      s.version,
		Screen:       string(s.Session.Screen()),
		Score:        s.Session.Score(),
		HasPriorWork: s.Session.HasPriorWork(),
		StoreBackend: s.AppConfig.Store.Backend,
	}
	if s.RateLimiter != nil {
		resp.RateLimiter = s.RateLimiter.GetStats()
	}
	writeJSON(w, http.StatusOK, resp)
}
