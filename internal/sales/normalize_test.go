// internal/sales/normalize_test.go
package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FullRow(t *testing.T) {
	raw := map[string]string{
		"transactionId":      "TXN-1001",
		"date":               "2024-03-15",
		"customerId":         "CUST-1",
		"customerName":       "  Asha Verma  ",
		"phoneNumber":        " 9876543210 ",
		"gender":             "Female",
		"age":                "34",
		"customerRegion":     "South",
		"customerType":       "Returning",
		"productId":          "PRD-9",
		"productName":        "Mixer",
		"brand":              "Prestige",
		"productCategory":    "Appliances",
		"tags":               "vip, loyalty;festive",
		"quantity":           "2",
		"pricePerUnit":       "1499.50",
		"discountPercentage": "10",
		"totalAmount":        "2999.00",
		"finalAmount":        "2699.10",
		"paymentMethod":      "UPI",
		"orderStatus":        "Delivered",
		"deliveryType":       "Home Delivery",
		"storeId":            "ST-3",
		"storeLocation":      "Chennai",
		"salespersonId":      "EMP-7",
		"employeeName":       "Ravi",
	}

	rec := Normalize(raw)

	assert.Equal(t, "TXN-1001", rec.TransactionID)
	assert.Equal(t, "Asha Verma", rec.CustomerName)
	assert.Equal(t, "9876543210", rec.PhoneNumber)
	require.NotNil(t, rec.Age)
	assert.Equal(t, 34, *rec.Age)
	require.NotNil(t, rec.Quantity)
	assert.Equal(t, 2, *rec.Quantity)
	require.NotNil(t, rec.PricePerUnit)
	assert.Equal(t, 1499.50, *rec.PricePerUnit)
	require.NotNil(t, rec.Date)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *rec.Date)
	assert.Equal(t, []string{"vip", "loyalty", "festive"}, rec.Tags)
}

func TestNormalize_MalformedFieldsDegradeToAbsent(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
		want func(t *testing.T, rec Record)
	}{
		{
			name: "invalid age",
			raw:  map[string]string{"age": "unknown"},
			want: func(t *testing.T, rec Record) { assert.Nil(t, rec.Age) },
		},
		{
			name: "empty quantity",
			raw:  map[string]string{"quantity": ""},
			want: func(t *testing.T, rec Record) { assert.Nil(t, rec.Quantity) },
		},
		{
			name: "non-finite amount",
			raw:  map[string]string{"totalAmount": "NaN"},
			want: func(t *testing.T, rec Record) { assert.Nil(t, rec.TotalAmount) },
		},
		{
			name: "unparsable date keeps raw string",
			raw:  map[string]string{"date": "not-a-date"},
			want: func(t *testing.T, rec Record) {
				assert.Nil(t, rec.Date)
				assert.Equal(t, "not-a-date", rec.RawDate)
			},
		},
		{
			name: "missing name becomes empty string",
			raw:  map[string]string{},
			want: func(t *testing.T, rec Record) {
				assert.Equal(t, "", rec.CustomerName)
				assert.Equal(t, "", rec.PhoneNumber)
			},
		},
		{
			name: "empty tags become empty list",
			raw:  map[string]string{"tags": " ; ,, "},
			want: func(t *testing.T, rec Record) { assert.Empty(t, rec.Tags) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, Normalize(tt.raw))
		})
	}
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"vip", "loyalty"}, SplitTags("vip,loyalty"))
	assert.Equal(t, []string{"vip", "loyalty"}, SplitTags("vip; loyalty"))
	assert.Equal(t, []string{"a", "b", "c"}, SplitTags(" a ,b; c"))
	assert.Empty(t, SplitTags(""))
}

func TestCoerceDate_Layouts(t *testing.T) {
	for _, value := range []string{
		"2024-03-15",
		"2024-03-15T10:30:00Z",
		"2024-03-15 10:30:00",
		"2024/03/15",
	} {
		assert.NotNil(t, CoerceDate(value), "layout should parse: %s", value)
	}
	assert.Nil(t, CoerceDate("15th of March"))
}
