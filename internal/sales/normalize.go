// internal/sales/normalize.go
package sales

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date layouts attempted in order when parsing the source date column.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
}

var tagSeparator = regexp.MustCompile(`[,;]+`)

// Normalize converts a raw string-keyed row into a typed Record. A malformed
// field degrades to absent; a row is never rejected here.
func Normalize(raw map[string]string) Record {
	rec := Record{
		TransactionID:      strings.TrimSpace(raw["transactionId"]),
		RawDate:            raw["date"],
		CustomerID:         strings.TrimSpace(raw["customerId"]),
		CustomerName:       strings.TrimSpace(raw["customerName"]),
		PhoneNumber:        strings.TrimSpace(raw["phoneNumber"]),
		Gender:             strings.TrimSpace(raw["gender"]),
		CustomerRegion:     strings.TrimSpace(raw["customerRegion"]),
		CustomerType:       strings.TrimSpace(raw["customerType"]),
		ProductID:          strings.TrimSpace(raw["productId"]),
		ProductName:        strings.TrimSpace(raw["productName"]),
		Brand:              strings.TrimSpace(raw["brand"]),
		ProductCategory:    strings.TrimSpace(raw["productCategory"]),
		PaymentMethod:      strings.TrimSpace(raw["paymentMethod"]),
		OrderStatus:        strings.TrimSpace(raw["orderStatus"]),
		DeliveryType:       strings.TrimSpace(raw["deliveryType"]),
		StoreID:            strings.TrimSpace(raw["storeId"]),
		StoreLocation:      strings.TrimSpace(raw["storeLocation"]),
		SalespersonID:      strings.TrimSpace(raw["salespersonId"]),
		EmployeeName:       strings.TrimSpace(raw["employeeName"]),
		Age:                CoerceInt(raw["age"]),
		Quantity:           CoerceInt(raw["quantity"]),
		PricePerUnit:       CoerceFloat(raw["pricePerUnit"]),
		DiscountPercentage: CoerceFloat(raw["discountPercentage"]),
		TotalAmount:        CoerceFloat(raw["totalAmount"]),
		FinalAmount:        CoerceFloat(raw["finalAmount"]),
		Date:               CoerceDate(raw["date"]),
		Tags:               SplitTags(raw["tags"]),
	}

	return rec
}

// CoerceFloat parses a decimal number, returning nil for empty or non-finite
// input.
func CoerceFloat(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	num, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return nil
	}
	return &num
}

// CoerceInt parses an integer, accepting decimal input by truncation the way
// the numeric columns in the source dataset are written.
func CoerceInt(value string) *int {
	f := CoerceFloat(value)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// CoerceDate parses a timestamp from the known layouts, returning nil when
// none match.
func CoerceDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// SplitTags splits a raw tag value on comma or semicolon, trimming each piece
// and dropping empties. The result never contains an empty string.
func SplitTags(value string) []string {
	tags := []string{}
	for _, piece := range tagSeparator.Split(value, -1) {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			tags = append(tags, piece)
		}
	}
	return tags
}
