// internal/sales/catalog.go
package sales

import (
	"sort"
	"time"
)

// BuildCatalog computes the filter catalog over a record collection in one
// pass: distinct categorical values (case preserved, empties excluded),
// flattened distinct tags, and min/max extrema for age and date ignoring
// absent values. An empty collection yields the zero-value catalog.
func BuildCatalog(records []Record) FilterCatalog {
	regions := map[string]struct{}{}
	genders := map[string]struct{}{}
	categories := map[string]struct{}{}
	tags := map[string]struct{}{}
	paymentMethods := map[string]struct{}{}

	catalog := FilterCatalog{}

	for i := range records {
		rec := &records[i]

		addDistinct(regions, rec.CustomerRegion)
		addDistinct(genders, rec.Gender)
		addDistinct(categories, rec.ProductCategory)
		addDistinct(paymentMethods, rec.PaymentMethod)
		for _, tag := range rec.Tags {
			addDistinct(tags, tag)
		}

		if rec.Age != nil {
			catalog.MinAge = minInt(catalog.MinAge, *rec.Age)
			catalog.MaxAge = maxInt(catalog.MaxAge, *rec.Age)
		}
		if rec.Date != nil {
			catalog.MinDate = minDate(catalog.MinDate, *rec.Date)
			catalog.MaxDate = maxDate(catalog.MaxDate, *rec.Date)
		}
	}

	catalog.Regions = sortedKeys(regions)
	catalog.Genders = sortedKeys(genders)
	catalog.Categories = sortedKeys(categories)
	catalog.Tags = sortedKeys(tags)
	catalog.PaymentMethods = sortedKeys(paymentMethods)

	return catalog
}

func addDistinct(set map[string]struct{}, value string) {
	if value != "" {
		set[value] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func minInt(current *int, v int) *int {
	if current == nil || v < *current {
		return &v
	}
	return current
}

func maxInt(current *int, v int) *int {
	if current == nil || v > *current {
		return &v
	}
	return current
}

func minDate(current *time.Time, v time.Time) *time.Time {
	if current == nil || v.Before(*current) {
		return &v
	}
	return current
}

func maxDate(current *time.Time, v time.Time) *time.Time {
	if current == nil || v.After(*current) {
		return &v
	}
	return current
}
