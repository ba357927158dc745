// internal/api/handlers_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"sales-browser/internal/common/logger"
	"sales-browser/internal/common/observability"
	"sales-browser/internal/sales"
	"sales-browser/internal/store"
)

func intPtr(v int) *int { return &v }

func seededStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore(logger.NewTestLogger(t))

	date := func(day int) *time.Time {
		d := time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
		return &d
	}
	st.Publish([]sales.Record{
		{TransactionID: "T1", CustomerName: "Alice Smith", PhoneNumber: "111222", Gender: "Female", Age: intPtr(30), CustomerRegion: "North", ProductCategory: "Electronics", Quantity: intPtr(2), Date: date(1)},
		{TransactionID: "T2", CustomerName: "Bob Jones", PhoneNumber: "333444", Gender: "Male", Age: intPtr(45), CustomerRegion: "South", ProductCategory: "Clothing", Quantity: intPtr(5), Date: date(2)},
		{TransactionID: "T3", CustomerName: "Carol White", PhoneNumber: "555666", Gender: "Female", Age: intPtr(22), CustomerRegion: "North", ProductCategory: "Clothing", Quantity: intPtr(1), Date: date(3)},
	})
	return st
}

func newTestRouter(t *testing.T, st store.Store) http.Handler {
	t.Helper()
	obs := observability.NewWithReader("test", sdkmetric.NewManualReader())
	h := NewHandler(st, "memory", logger.NewTestLogger(t), obs)
	return NewRouter(h, "*")
}

func TestGetSales(t *testing.T) {
	router := newTestRouter(t, seededStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sales?regions=North&sortBy=name&sortOrder=asc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result sales.QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Total)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "Alice Smith", result.Data[0].CustomerName)
	assert.Equal(t, "Carol White", result.Data[1].CustomerName)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 10, result.PageSize)
	assert.Equal(t, 1, result.TotalPages)
}

func TestGetSalesRecordsMeterPoints(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	obs := observability.NewWithReader("test", reader)
	h := NewHandler(seededStore(t), "memory", logger.NewTestLogger(t), obs)
	router := NewRouter(h, "*")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sales", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	processed, ok := byName["queries.processed"]
	require.True(t, ok, "query counter never received a data point")
	sum := processed.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)

	duration, ok := byName["queries.duration"]
	require.True(t, ok, "duration histogram never received a data point")
	hist := duration.Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestGetSalesInvalidRange(t *testing.T) {
	router := newTestRouter(t, seededStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sales?ageMin=50&ageMax=20", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_RANGE", body["code"])
	assert.Equal(t, []interface{}{"ageRange"}, body["reasons"])
}

func TestGetSalesStoreNotReady(t *testing.T) {
	st := store.NewMemoryStore(logger.NewTestLogger(t))
	router := newTestRouter(t, st)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sales", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "STORE_NOT_READY", body["code"])
}

func TestGetFilters(t *testing.T) {
	router := newTestRouter(t, seededStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/filters", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var catalog sales.FilterCatalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	assert.Equal(t, []string{"North", "South"}, catalog.Regions)
	assert.Equal(t, []string{"Female", "Male"}, catalog.Genders)
	assert.Equal(t, []string{"Clothing", "Electronics"}, catalog.Categories)
	require.NotNil(t, catalog.MinAge)
	assert.Equal(t, 22, *catalog.MinAge)
	require.NotNil(t, catalog.MaxAge)
	assert.Equal(t, 45, *catalog.MaxAge)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, seededStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["backend"])
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, seededStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/sales", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t, seededStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	router.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
