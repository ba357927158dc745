// internal/api/router.go
package api

import "net/http"

// NewRouter wires the sales endpoints behind the standard middleware chain.
func NewRouter(h *Handler, corsOrigin string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sales", h.GetSales)
	mux.HandleFunc("GET /api/filters", h.GetFilters)
	mux.HandleFunc("GET /health", h.Health)

	var handler http.Handler = mux
	handler = Instrument(handler)
	handler = RequestID(handler)
	handler = CORS(corsOrigin)(handler)
	return handler
}
