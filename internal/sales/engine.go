// internal/sales/engine.go
package sales

import (
	"sort"
	"strings"
)

// ValidateRanges checks the request's min/max pairs before any data is
// scanned. Both reasons may be reported at once; a valid request returns nil.
func ValidateRanges(req *QueryRequest) *InvalidRangeError {
	reasons := []string{}

	if req.AgeMin != nil && req.AgeMax != nil && *req.AgeMin > *req.AgeMax {
		reasons = append(reasons, ReasonAgeRange)
	}
	if req.DateFrom != nil && req.DateTo != nil && req.DateFrom.After(*req.DateTo) {
		reasons = append(reasons, ReasonDateRange)
	}

	if len(reasons) == 0 {
		return nil
	}
	return &InvalidRangeError{Reasons: reasons}
}

// Matches reports whether a record satisfies every active clause of the
// request. Clauses compose with AND; set-membership clauses are OR within the
// requested list.
func Matches(rec *Record, req *QueryRequest) bool {
	if req.SearchTerm != "" {
		term := strings.ToLower(req.SearchTerm)
		name := strings.ToLower(rec.CustomerName)
		phone := strings.ToLower(rec.PhoneNumber)
		if !strings.Contains(name, term) && !strings.Contains(phone, term) {
			return false
		}
	}

	if !matchesAny(rec.CustomerRegion, req.Regions) {
		return false
	}
	if !matchesAny(rec.Gender, req.Genders) {
		return false
	}
	if !matchesAny(rec.ProductCategory, req.Categories) {
		return false
	}
	if !matchesAny(rec.PaymentMethod, req.PaymentMethods) {
		return false
	}
	if !matchesAnyTag(rec.Tags, req.Tags) {
		return false
	}

	// A record with an absent age or date fails any active range bound. This
	// asymmetry with the empty-list rule is observable behavior and kept as is.
	if req.AgeMin != nil || req.AgeMax != nil {
		if rec.Age == nil {
			return false
		}
		if req.AgeMin != nil && *rec.Age < *req.AgeMin {
			return false
		}
		if req.AgeMax != nil && *rec.Age > *req.AgeMax {
			return false
		}
	}

	if req.DateFrom != nil || req.DateTo != nil {
		if rec.Date == nil {
			return false
		}
		if req.DateFrom != nil && rec.Date.Before(*req.DateFrom) {
			return false
		}
		if req.DateTo != nil && rec.Date.After(*req.DateTo) {
			return false
		}
	}

	return true
}

// matchesAny is the case-insensitive IN clause. An empty filter list imposes
// no restriction; an absent field value fails a non-empty one.
func matchesAny(value string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, candidate := range filter {
		if strings.EqualFold(value, candidate) {
			return true
		}
	}
	return false
}

// matchesAnyTag is OR across the requested tags: one case-insensitive overlap
// suffices.
func matchesAnyTag(tags []string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, want := range filter {
		for _, have := range tags {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// EffectiveOrder resolves the sort direction, applying the key-dependent
// default when none was requested: name sorts ascending, date and quantity
// descending.
func EffectiveOrder(sortBy, sortOrder string) string {
	if sortOrder == OrderAsc {
		return OrderAsc
	}
	if sortOrder == OrderDesc {
		return OrderDesc
	}
	if sortBy == SortByName {
		return OrderAsc
	}
	return OrderDesc
}

// SortRecords orders the full filtered set in place. Ties on the sort key
// break on transactionId ascending regardless of direction, so every backend
// paginates the same total order. Absent sort values order before any
// present value.
func SortRecords(records []*Record, sortBy, sortOrder string) {
	asc := EffectiveOrder(sortBy, sortOrder) == OrderAsc

	var less func(a, b *Record) bool
	switch sortBy {
	case SortByQuantity:
		less = func(a, b *Record) bool {
			return intOrZero(a.Quantity) < intOrZero(b.Quantity)
		}
	case SortByName:
		less = func(a, b *Record) bool {
			return a.CustomerName < b.CustomerName
		}
	default: // SortByDate
		less = func(a, b *Record) bool {
			return dateKey(a) < dateKey(b)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case less(a, b):
			return asc
		case less(b, a):
			return !asc
		default:
			return a.TransactionID < b.TransactionID
		}
	})
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func dateKey(r *Record) int64 {
	if r.Date == nil {
		return 0
	}
	return r.Date.UnixMilli()
}

// Paginate normalizes the requested page against the actual result count:
// totalPages is never below 1, the effective page is clamped into
// [1, totalPages], and the slice bounds are clipped to total.
func Paginate(total, page, pageSize int) (effectivePage, totalPages, start, end int) {
	if pageSize < 1 {
		pageSize = 1
	}

	totalPages = (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	effectivePage = page
	if effectivePage < 1 {
		effectivePage = 1
	}
	if effectivePage > totalPages {
		effectivePage = totalPages
	}

	start = (effectivePage - 1) * pageSize
	end = start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return effectivePage, totalPages, start, end
}

// Execute runs the full in-memory query: validate, filter, sort, paginate,
// project. The record collection must be immutable for the duration of the
// call.
func Execute(records []Record, req *QueryRequest) (*QueryResult, error) {
	if ire := ValidateRanges(req); ire != nil {
		return nil, ire
	}

	matched := []*Record{}
	for i := range records {
		if Matches(&records[i], req) {
			matched = append(matched, &records[i])
		}
	}

	SortRecords(matched, req.SortBy, req.SortOrder)

	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	effectivePage, totalPages, start, end := Paginate(len(matched), req.Page, pageSize)

	data := make([]View, 0, end-start)
	for _, rec := range matched[start:end] {
		data = append(data, Project(rec))
	}

	return &QueryResult{
		Data:       data,
		Total:      len(matched),
		Page:       effectivePage,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
