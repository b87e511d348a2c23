package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/uxforge/uxforge/internal/progress"
	"github.com/uxforge/uxforge/internal/ratelimit"
)

// SetupRoutes configures all HTTP routes
func (h *Handler) SetupRoutes(progressServer *progress.Server, rateLimiter *ratelimit.Limiter, requestsPerHour int) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	// Apply rate limiting middleware to generation endpoints
	rateLimitedAPI := api.PathPrefix("").Subrouter()
	rateLimitedAPI.Use(RateLimitMiddleware(rateLimiter, requestsPerHour))

	// Generation endpoints (rate limited)
	rateLimitedAPI.HandleFunc("/chat", h.HandleChat).Methods("POST", "OPTIONS")
	rateLimitedAPI.HandleFunc("/e2b/generate", h.HandleGenerate).Methods("POST", "OPTIONS")
	rateLimitedAPI.HandleFunc("/e2b/modify/{sandboxId}", h.HandleModify).Methods("POST", "OPTIONS")

	// Conversation and document endpoints (not rate limited)
	api.HandleFunc("/chat/new", h.HandleNewChat).Methods("POST", "OPTIONS")
	api.HandleFunc("/analyze-document", h.HandleAnalyzeDocument).Methods("POST", "OPTIONS")
	api.HandleFunc("/gemini/process-document", h.HandleProcessDocument).Methods("POST", "OPTIONS")
	api.HandleFunc("/gemini/chat", h.HandleGeminiChat).Methods("POST", "OPTIONS")

	// Sandbox management (not rate limited)
	api.HandleFunc("/e2b/sandboxes", h.HandleListSandboxes).Methods("GET")
	api.HandleFunc("/e2b/sandbox/{sandboxId}", h.HandleKillSandbox).Methods("DELETE")

	// Progress stream (websocket, not rate limited)
	api.HandleFunc("/sessions/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		progressServer.HandleEvents(w, r, vars["id"])
	}).Methods("GET")

	// Health endpoint
	r.HandleFunc("/health", h.HandleHealth).Methods("GET")

	// CORS middleware
	r.Use(corsMiddleware)

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Client-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
