// internal/store/storetest/suite.go
//
// Package storetest exercises the shared query contract. Every backend must
// produce identical observable results over the same fixture set, so the
// memory store tests and the live-backend e2e tests run this one suite.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-browser/internal/sales"
	"sales-browser/internal/store"
)

func intPtr(v int) *int { return &v }

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// Fixtures is the canonical record set the suite queries against. T4 carries
// an absent age, quantity, and date to pin down absent-value semantics. T5
// shares T1's date and is listed before it, so a backend that breaks sort
// ties by insertion order instead of transactionId fails the suite.
func Fixtures() []sales.Record {
	return []sales.Record{
		{
			TransactionID: "T5", CustomerName: "Eve Adams", PhoneNumber: "555-0105",
			Gender: "Female", Age: intPtr(35), CustomerRegion: "North",
			ProductID: "P5", ProductCategory: "Electronics", Tags: []string{"vip"},
			Quantity: intPtr(3), TotalAmount: floatPtr(120.5), PaymentMethod: "Card",
			EmployeeName: "Nina", Date: datePtr(2024, 3, 1),
		},
		{
			TransactionID: "T1", CustomerName: "Alice Smith", PhoneNumber: "555-0101",
			Gender: "Female", Age: intPtr(30), CustomerRegion: "North",
			ProductID: "P1", ProductCategory: "Electronics", Tags: []string{"vip", "loyalty"},
			Quantity: intPtr(2), TotalAmount: floatPtr(199.98), PaymentMethod: "Card",
			EmployeeName: "Nina", Date: datePtr(2024, 3, 1),
		},
		{
			TransactionID: "T2", CustomerName: "Bob Jones", PhoneNumber: "555-0202",
			Gender: "Male", Age: intPtr(45), CustomerRegion: "South",
			ProductID: "P2", ProductCategory: "Clothing", Tags: []string{"loyalty"},
			Quantity: intPtr(5), TotalAmount: floatPtr(75), PaymentMethod: "Cash",
			EmployeeName: "Omar", Date: datePtr(2024, 3, 2),
		},
		{
			TransactionID: "T3", CustomerName: "Carol White", PhoneNumber: "555-0303",
			Gender: "Female", Age: intPtr(22), CustomerRegion: "North",
			ProductID: "P3", ProductCategory: "Clothing",
			Quantity: intPtr(1), TotalAmount: floatPtr(20), PaymentMethod: "Card",
			EmployeeName: "Nina", Date: datePtr(2024, 3, 3),
		},
		{
			TransactionID: "T4", CustomerName: "Dan Brown", PhoneNumber: "555-0404",
			Gender: "Male", CustomerRegion: "East",
			ProductID: "P4", ProductCategory: "Grocery", Tags: []string{"new"},
			PaymentMethod: "Wallet", EmployeeName: "Omar", RawDate: "03/2024",
		},
	}
}

func floatPtr(v float64) *float64 { return &v }

func query(t *testing.T, st store.Store, req sales.QueryRequest) *sales.QueryResult {
	t.Helper()
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}
	result, err := st.Query(context.Background(), req)
	require.NoError(t, err)
	return result
}

func ids(result *sales.QueryResult) []string {
	out := make([]string, 0, len(result.Data))
	for _, v := range result.Data {
		out = append(out, v.TransactionID)
	}
	return out
}

// Run asserts the full query contract against a store pre-loaded with
// Fixtures.
func Run(t *testing.T, st store.Store) {
	t.Run("unfiltered default sort", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{})
		assert.Equal(t, 5, result.Total)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 1, result.TotalPages)
		// date desc, T1/T5 tie broken by transactionId asc, absent date last
		assert.Equal(t, []string{"T3", "T2", "T1", "T5", "T4"}, ids(result))
	})

	t.Run("search matches name substring", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{SearchTerm: "ali"})
		assert.Equal(t, []string{"T1"}, ids(result))
	})

	t.Run("search matches phone substring", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{SearchTerm: "0202"})
		assert.Equal(t, []string{"T2"}, ids(result))
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{SearchTerm: "ALICE"})
		assert.Equal(t, []string{"T1"}, ids(result))
	})

	t.Run("search treats pattern characters literally", func(t *testing.T) {
		// "5_0" would match "5-0" under an unescaped LIKE, "a*m" would
		// match "Alice Smith" under an unescaped wildcard.
		result := query(t, st, sales.QueryRequest{SearchTerm: "5_0"})
		assert.Equal(t, 0, result.Total)
		assert.Empty(t, ids(result))

		result = query(t, st, sales.QueryRequest{SearchTerm: "a*m"})
		assert.Equal(t, 0, result.Total)
		assert.Empty(t, ids(result))
	})

	t.Run("membership is case-insensitive", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{Regions: []string{"north"}})
		assert.Equal(t, []string{"T3", "T1", "T5"}, ids(result))
	})

	t.Run("tags match any", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{Tags: []string{"VIP", "new"}})
		assert.Equal(t, []string{"T1", "T5", "T4"}, ids(result))
	})

	t.Run("filters compose with AND", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{
			Regions:    []string{"North"},
			Categories: []string{"Electronics"},
			Genders:    []string{"Female"},
		})
		assert.Equal(t, []string{"T1", "T5"}, ids(result))
	})

	t.Run("age range is inclusive and excludes absent", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{AgeMin: intPtr(22), AgeMax: intPtr(30)})
		assert.Equal(t, []string{"T3", "T1"}, ids(result))
	})

	t.Run("date range excludes absent", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{DateFrom: datePtr(2024, 3, 2)})
		assert.Equal(t, []string{"T3", "T2"}, ids(result))
	})

	t.Run("invalid range fails before scanning", func(t *testing.T) {
		_, err := st.Query(context.Background(), sales.QueryRequest{
			AgeMin: intPtr(50), AgeMax: intPtr(20),
			Page: 1, PageSize: 10,
		})
		ire, ok := sales.AsInvalidRange(err)
		require.True(t, ok)
		assert.Equal(t, []string{sales.ReasonAgeRange}, ire.Reasons)
	})

	t.Run("sort by name defaults ascending", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{SortBy: sales.SortByName})
		assert.Equal(t, []string{"T1", "T2", "T3", "T4", "T5"}, ids(result))
	})

	t.Run("sort by quantity ascending puts absent first", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{SortBy: sales.SortByQuantity, SortOrder: sales.OrderAsc})
		assert.Equal(t, []string{"T4", "T3", "T1", "T5", "T2"}, ids(result))
	})

	t.Run("sort by quantity defaults descending", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{SortBy: sales.SortByQuantity})
		assert.Equal(t, []string{"T2", "T5", "T1", "T3", "T4"}, ids(result))
	})

	t.Run("page beyond range clamps to last", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{Page: 5, PageSize: 2})
		assert.Equal(t, 5, result.Total)
		assert.Equal(t, 3, result.Page)
		assert.Equal(t, 3, result.TotalPages)
		assert.Equal(t, []string{"T4"}, ids(result))
	})

	t.Run("projection carries the raw date fallback", func(t *testing.T) {
		result := query(t, st, sales.QueryRequest{SearchTerm: "Dan"})
		require.Len(t, result.Data, 1)
		assert.Equal(t, "03/2024", result.Data[0].Date)
		assert.Nil(t, result.Data[0].Age)
	})

	t.Run("filter catalog", func(t *testing.T) {
		catalog, err := st.FilterCatalog(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"East", "North", "South"}, catalog.Regions)
		assert.Equal(t, []string{"Female", "Male"}, catalog.Genders)
		assert.Equal(t, []string{"Clothing", "Electronics", "Grocery"}, catalog.Categories)
		assert.Equal(t, []string{"loyalty", "new", "vip"}, catalog.Tags)
		assert.Equal(t, []string{"Card", "Cash", "Wallet"}, catalog.PaymentMethods)
		require.NotNil(t, catalog.MinAge)
		assert.Equal(t, 22, *catalog.MinAge)
		require.NotNil(t, catalog.MaxAge)
		assert.Equal(t, 45, *catalog.MaxAge)
		require.NotNil(t, catalog.MinDate)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), catalog.MinDate.UTC())
		require.NotNil(t, catalog.MaxDate)
		assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), catalog.MaxDate.UTC())
	})
}
