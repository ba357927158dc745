// internal/sales/request.go
package sales

import (
	"errors"
	"strings"
	"time"
)

// Sort keys accepted by the query engine.
const (
	SortByDate     = "date"
	SortByQuantity = "quantity"
	SortByName     = "name"
)

// Sort directions. An empty SortOrder selects the key-dependent default:
// ascending for name, descending for everything else.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// InvalidRange reasons.
const (
	ReasonAgeRange  = "ageRange"
	ReasonDateRange = "dateRange"
)

// QueryRequest is one structured query against the sales store. Empty filter
// lists impose no restriction; nil bounds leave a range open.
type QueryRequest struct {
	SearchTerm     string
	Regions        []string
	Genders        []string
	Categories     []string
	Tags           []string
	PaymentMethods []string
	AgeMin         *int
	AgeMax         *int
	DateFrom       *time.Time
	DateTo         *time.Time
	SortBy         string
	SortOrder      string
	Page           int
	PageSize       int
}

// QueryResult is one page of projected records plus pagination metadata.
// Page is the effective page actually served, which may differ from the
// requested one after clamping.
type QueryResult struct {
	Data       []View `json:"data"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
}

// FilterCatalog holds the distinct values and extrema used to populate filter
// widgets. Recomputed once per store load.
type FilterCatalog struct {
	Regions        []string   `json:"regions"`
	Genders        []string   `json:"genders"`
	Categories     []string   `json:"categories"`
	Tags           []string   `json:"tags"`
	PaymentMethods []string   `json:"paymentMethods"`
	MinAge         *int       `json:"minAge"`
	MaxAge         *int       `json:"maxAge"`
	MinDate        *time.Time `json:"minDate"`
	MaxDate        *time.Time `json:"maxDate"`
}

// InvalidRangeError reports inverted min/max pairs in a request. Both range
// kinds may be reported at once.
type InvalidRangeError struct {
	Reasons []string
}

func (e *InvalidRangeError) Error() string {
	return "invalid range supplied: " + strings.Join(e.Reasons, ", ")
}

// AsInvalidRange extracts an InvalidRangeError from an error chain.
func AsInvalidRange(err error) (*InvalidRangeError, bool) {
	var ire *InvalidRangeError
	if errors.As(err, &ire) {
		return ire, true
	}
	return nil, false
}
