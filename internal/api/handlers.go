// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	apperrors "sales-browser/internal/common/errors"
	"sales-browser/internal/common/logger"
	"sales-browser/internal/common/metrics"
	"sales-browser/internal/common/observability"
	"sales-browser/internal/sales"
	"sales-browser/internal/store"
)

// Handler serves the read-only sales browsing endpoints.
type Handler struct {
	store      store.Store
	backend    string
	logger     logger.Logger
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
}

func NewHandler(st store.Store, backend string, log logger.Logger, obs *observability.Observability) *Handler {
	return &Handler{
		store:      st,
		backend:    backend,
		logger:     log,
		obs:        obs,
		errHandler: apperrors.NewErrorHandler(log),
	}
}

// GetSales handles GET /api/sales.
func (h *Handler) GetSales(w http.ResponseWriter, r *http.Request) {
	req := sales.ParseQuery(r.URL.Query())

	start := time.Now()
	result, err := h.store.Query(r.Context(), req)
	elapsed := time.Since(start)
	metrics.QueryDuration.WithLabelValues(h.backend).Observe(elapsed.Seconds())
	h.obs.RecordQueryDuration(r.Context(), elapsed, h.backend)

	if err != nil {
		metrics.QueriesTotal.WithLabelValues(h.backend, "error").Inc()
		h.obs.RecordQueryProcessed(r.Context(), h.backend, "error")
		h.errHandler.HandleRequestError(w, r, h.mapError(err))
		return
	}

	metrics.QueriesTotal.WithLabelValues(h.backend, "success").Inc()
	h.obs.RecordQueryProcessed(r.Context(), h.backend, "success")
	h.logger.Debug("Sales query served", map[string]interface{}{
		"total":    result.Total,
		"page":     result.Page,
		"pageSize": result.PageSize,
	})
	writeJSON(w, http.StatusOK, result)
}

// GetFilters handles GET /api/filters.
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.store.FilterCatalog(r.Context())
	if err != nil {
		metrics.CatalogReads.WithLabelValues("error").Inc()
		h.errHandler.HandleRequestError(w, r, h.mapError(err))
		return
	}

	metrics.CatalogReads.WithLabelValues("store").Inc()
	writeJSON(w, http.StatusOK, catalog)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"backend": h.backend,
	})
}

// mapError converts domain errors into StandardError for the response writer.
func (h *Handler) mapError(err error) error {
	if ir, ok := sales.AsInvalidRange(err); ok {
		return apperrors.NewInvalidRangeError(ir.Reasons)
	}
	if errors.Is(err, store.ErrNotReady) {
		return apperrors.NewStoreNotReadyError()
	}
	return apperrors.NewQueryExecutionFailedError(h.backend, err)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
