// internal/sales/params.go
package sales

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when pagination parameters are missing or malformed.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// ParseQuery converts raw query parameters into a QueryRequest. This performs
// type coercion only; range validity is checked by the query engine.
func ParseQuery(values url.Values) QueryRequest {
	return QueryRequest{
		SearchTerm:     strings.TrimSpace(values.Get("search")),
		Regions:        ParseList(values.Get("regions")),
		Genders:        ParseList(values.Get("genders")),
		Categories:     ParseList(values.Get("categories")),
		Tags:           ParseList(values.Get("tags")),
		PaymentMethods: ParseList(values.Get("paymentMethods")),
		AgeMin:         ParseNumber(values.Get("ageMin")),
		AgeMax:         ParseNumber(values.Get("ageMax")),
		DateFrom:       CoerceDate(values.Get("dateFrom")),
		DateTo:         parseDateTo(values.Get("dateTo")),
		SortBy:         parseSortBy(values.Get("sortBy")),
		SortOrder:      strings.TrimSpace(values.Get("sortOrder")),
		Page:           parsePositiveInt(values.Get("page"), DefaultPage),
		PageSize:       parsePositiveInt(values.Get("pageSize"), DefaultPageSize),
	}
}

// ParseList splits a comma-separated parameter, trimming entries and dropping
// empty tokens.
func ParseList(value string) []string {
	items := []string{}
	for _, piece := range strings.Split(value, ",") {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			items = append(items, piece)
		}
	}
	return items
}

// ParseNumber parses an integer parameter, returning nil on empty or invalid
// input rather than an error.
func ParseNumber(value string) *int {
	return CoerceInt(value)
}

func parseSortBy(value string) string {
	switch strings.TrimSpace(value) {
	case SortByQuantity:
		return SortByQuantity
	case SortByName:
		return SortByName
	default:
		return SortByDate
	}
}

// parseDateTo widens a bare calendar date to the end of that day so that an
// inclusive dateTo bound covers records timestamped within it.
func parseDateTo(value string) *time.Time {
	t := CoerceDate(value)
	if t == nil {
		return nil
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && len(strings.TrimSpace(value)) <= len("2006-01-02") {
		end := t.Add(24*time.Hour - time.Nanosecond)
		return &end
	}
	return t
}

// parsePositiveInt falls back on malformed input and floors negative or zero
// values to 1.
func parsePositiveInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n == 0 {
		return fallback
	}
	if n < 1 {
		return 1
	}
	return n
}
