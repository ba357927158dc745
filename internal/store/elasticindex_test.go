// internal/store/elasticindex_test.go
package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sales-browser/internal/sales"
)

func TestElasticDocument(t *testing.T) {
	age := 30
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	doc := ElasticDocument(sales.Record{
		TransactionID: "T1",
		CustomerName:  "Alice Smith",
		Age:           &age,
		Date:          &date,
		RawDate:       "2024-03-01",
		Tags:          []string{"vip"},
	})

	assert.Equal(t, "T1", doc["transactionId"])
	assert.Equal(t, "2024-03-01T00:00:00Z", doc["date"])
	assert.Equal(t, 30, doc["age"])
	assert.NotContains(t, doc, "quantity")
	// rawDate only backs up an unparsable date
	assert.NotContains(t, doc, "rawDate")
}

func TestElasticDocumentAbsentDate(t *testing.T) {
	doc := ElasticDocument(sales.Record{TransactionID: "T4", RawDate: "03/2024"})

	assert.NotContains(t, doc, "date")
	assert.Equal(t, "03/2024", doc["rawDate"])
	assert.NotContains(t, doc, "age")
}
