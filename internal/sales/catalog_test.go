// internal/sales/catalog_test.go
package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogRecord(region, gender, category, payment string, tags []string, age *int, date *time.Time) Record {
	return Record{
		CustomerRegion:  region,
		Gender:          gender,
		ProductCategory: category,
		PaymentMethod:   payment,
		Tags:            tags,
		Age:             age,
		Date:            date,
	}
}

func TestBuildCatalog_EmptyCollection(t *testing.T) {
	catalog := BuildCatalog(nil)

	assert.Empty(t, catalog.Regions)
	assert.Empty(t, catalog.Genders)
	assert.Empty(t, catalog.Categories)
	assert.Empty(t, catalog.Tags)
	assert.Empty(t, catalog.PaymentMethods)
	assert.Nil(t, catalog.MinAge)
	assert.Nil(t, catalog.MaxAge)
	assert.Nil(t, catalog.MinDate)
	assert.Nil(t, catalog.MaxDate)
}

func TestBuildCatalog_DistinctSortedValues(t *testing.T) {
	age20, age45 := 20, 45
	d1 := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)

	records := []Record{
		catalogRecord("South", "Female", "Appliances", "UPI", []string{"vip", "loyalty"}, &age45, &d2),
		catalogRecord("North", "Male", "Electronics", "Card", []string{"loyalty"}, &age20, &d1),
		catalogRecord("South", "Female", "Appliances", "UPI", nil, nil, nil),
		catalogRecord("", "", "", "", nil, nil, nil), // empties excluded
	}

	catalog := BuildCatalog(records)

	assert.Equal(t, []string{"North", "South"}, catalog.Regions)
	assert.Equal(t, []string{"Female", "Male"}, catalog.Genders)
	assert.Equal(t, []string{"Appliances", "Electronics"}, catalog.Categories)
	assert.Equal(t, []string{"loyalty", "vip"}, catalog.Tags)
	assert.Equal(t, []string{"Card", "UPI"}, catalog.PaymentMethods)

	require.NotNil(t, catalog.MinAge)
	require.NotNil(t, catalog.MaxAge)
	assert.Equal(t, 20, *catalog.MinAge)
	assert.Equal(t, 45, *catalog.MaxAge)

	require.NotNil(t, catalog.MinDate)
	require.NotNil(t, catalog.MaxDate)
	assert.Equal(t, d1, *catalog.MinDate)
	assert.Equal(t, d2, *catalog.MaxDate)
}

func TestBuildCatalog_TagsDeduplicatedAcrossRecords(t *testing.T) {
	records := []Record{
		{Tags: []string{"vip", "loyalty"}},
		{Tags: []string{"loyalty"}},
	}

	catalog := BuildCatalog(records)

	assert.Equal(t, []string{"loyalty", "vip"}, catalog.Tags)
}
