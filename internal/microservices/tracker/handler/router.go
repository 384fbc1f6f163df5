package handler

import (
	"net/http"

	"github.com/rs/cors"
)

// Router exposes the kitchen's read-only status API. Browsers on any
// origin may poll it, hence the permissive GET-only CORS policy.
func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/kitchen/status", h.TrackerHandler.GetStatus)
	mux.HandleFunc("GET /api/v1/kitchen/summary", h.TrackerHandler.GetSummary)
	mux.HandleFunc("GET /health", h.TrackerHandler.GetHealth)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}).Handler(mux)
}
