// internal/sales/params_test.go
package sales

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery_Defaults(t *testing.T) {
	req := ParseQuery(url.Values{})

	assert.Equal(t, "", req.SearchTerm)
	assert.Empty(t, req.Regions)
	assert.Empty(t, req.Tags)
	assert.Nil(t, req.AgeMin)
	assert.Nil(t, req.DateFrom)
	assert.Equal(t, SortByDate, req.SortBy)
	assert.Equal(t, "", req.SortOrder)
	assert.Equal(t, DefaultPage, req.Page)
	assert.Equal(t, DefaultPageSize, req.PageSize)
}

func TestParseQuery_Full(t *testing.T) {
	values := url.Values{
		"search":         {"  asha "},
		"regions":        {"North, South , ,East"},
		"genders":        {"Female"},
		"categories":     {"Appliances,Electronics"},
		"tags":           {"vip,loyalty"},
		"paymentMethods": {"UPI"},
		"ageMin":         {"25"},
		"ageMax":         {"35"},
		"dateFrom":       {"2024-01-01"},
		"dateTo":         {"2024-06-30"},
		"sortBy":         {"quantity"},
		"sortOrder":      {"asc"},
		"page":           {"3"},
		"pageSize":       {"25"},
	}

	req := ParseQuery(values)

	assert.Equal(t, "asha", req.SearchTerm)
	assert.Equal(t, []string{"North", "South", "East"}, req.Regions)
	assert.Equal(t, []string{"Appliances", "Electronics"}, req.Categories)
	require.NotNil(t, req.AgeMin)
	assert.Equal(t, 25, *req.AgeMin)
	require.NotNil(t, req.AgeMax)
	assert.Equal(t, 35, *req.AgeMax)
	require.NotNil(t, req.DateFrom)
	require.NotNil(t, req.DateTo)
	assert.True(t, req.DateFrom.Before(*req.DateTo))
	assert.Equal(t, SortByQuantity, req.SortBy)
	assert.Equal(t, OrderAsc, req.SortOrder)
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 25, req.PageSize)
}

func TestParseQuery_MalformedInputNeverErrors(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		check  func(t *testing.T, req QueryRequest)
	}{
		{
			name:   "invalid number becomes absent",
			values: url.Values{"ageMin": {"abc"}},
			check:  func(t *testing.T, req QueryRequest) { assert.Nil(t, req.AgeMin) },
		},
		{
			name:   "invalid date becomes absent",
			values: url.Values{"dateFrom": {"soon"}},
			check:  func(t *testing.T, req QueryRequest) { assert.Nil(t, req.DateFrom) },
		},
		{
			name:   "negative page floors to one",
			values: url.Values{"page": {"-4"}},
			check:  func(t *testing.T, req QueryRequest) { assert.Equal(t, 1, req.Page) },
		},
		{
			name:   "malformed pageSize falls back to default",
			values: url.Values{"pageSize": {"lots"}},
			check:  func(t *testing.T, req QueryRequest) { assert.Equal(t, DefaultPageSize, req.PageSize) },
		},
		{
			name:   "negative pageSize floors to one",
			values: url.Values{"pageSize": {"-10"}},
			check:  func(t *testing.T, req QueryRequest) { assert.Equal(t, 1, req.PageSize) },
		},
		{
			name:   "unknown sortBy falls back to date",
			values: url.Values{"sortBy": {"price"}},
			check:  func(t *testing.T, req QueryRequest) { assert.Equal(t, SortByDate, req.SortBy) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ParseQuery(tt.values))
		})
	}
}

func TestParseQuery_DateToCoversWholeDay(t *testing.T) {
	req := ParseQuery(url.Values{"dateTo": {"2024-06-30"}})

	require.NotNil(t, req.DateTo)
	assert.Equal(t, 23, req.DateTo.Hour())
	assert.Equal(t, 30, req.DateTo.Day())
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseList("a , b"))
	assert.Empty(t, ParseList(""))
	assert.Empty(t, ParseList(" , ,"))
}
