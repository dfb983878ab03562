package server

import (
	"net/http"
	"strings"

	"cvforge/internal/observability"
)

// setupRoutes registers all endpoints. Health and stats are public;
// everything else goes through rate limiting, authentication and the
// request size cap.
func (s *Server) setupRoutes(mux *http.ServeMux, om *observability.ObservabilityManager) {
	rateLimit := s.rateLimitMiddleware(om)
	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return rateLimit(s.authMiddleware(s.requestSizeLimitMiddleware(h)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	mux.HandleFunc("GET /document", protect(s.getDocumentHandler))
	mux.HandleFunc("PUT /document", protect(s.putDocumentHandler))
	mux.HandleFunc("POST /document/sections/{section}/items", protect(s.addItemHandler))
	mux.HandleFunc("PATCH /document/sections/{section}/items/{id}", protect(s.updateItemHandler))
	mux.HandleFunc("DELETE /document/sections/{section}/items/{id}", protect(s.removeItemHandler))
	mux.HandleFunc("POST /document/photo", protect(s.attachPhotoHandler))
	mux.HandleFunc("DELETE /document/photo", protect(s.removePhotoHandler))

	mux.HandleFunc("GET /score", protect(s.scoreHandler))
	mux.HandleFunc("GET /render", protect(s.renderHandler(om)))
	mux.HandleFunc("GET /render/cover-letter", protect(s.renderCoverLetterHandler))

	mux.HandleFunc("POST /assist/summary", protect(s.assistSummaryHandler(om)))
	mux.HandleFunc("POST /assist/experience", protect(s.assistExperienceHandler(om)))
	mux.HandleFunc("POST /assist/skills", protect(s.assistSkillsHandler(om)))
	mux.HandleFunc("POST /assist/cover-letter", protect(s.assistCoverLetterHandler(om)))
	mux.HandleFunc("POST /assist/jobs/match", protect(s.assistMatchJobsHandler(om)))
	mux.HandleFunc("POST /assist/jobs/search", protect(s.assistSearchJobsHandler(om)))
	mux.HandleFunc("POST /assist/application-letter", protect(s.assistApplicationLetterHandler(om)))
	mux.HandleFunc("POST /assist/audit", protect(s.assistAuditHandler(om)))

	mux.HandleFunc("POST /import", protect(s.importHandler(om)))
}

// authMiddleware validates API keys when any are configured
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication if no API keys are configured
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			authHeader := r.Header.Get("Authorization")
			if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
				apiKey = after
			}
		}

		if apiKey == "" {
			s.Logger.Warn("API request without key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Authentication required", "Provide an API key via the X-API-Key header or Authorization: Bearer", http.StatusUnauthorized)
			return
		}

		if !s.APIKeys[apiKey] {
			s.Logger.Warn("API request with invalid key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "The provided API key is not valid", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// requestSizeLimitMiddleware caps request body size
func (s *Server) requestSizeLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MaxRequestSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		}
		next(w, r)
	}
}

// maskAPIKey masks an API key for safe logging
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "***"
	}
	return apiKey[:4] + "..." + apiKey[len(apiKey)-4:]
}
