// internal/store/elasticindex.go
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"sales-browser/internal/sales"
)

// elasticIndexBody defines the index the query layer expects: every keyword
// field used in a set-membership or search predicate carries a `.lower`
// subfield normalized to lowercase, while the original-case field serves
// sorting and catalog aggregation.
const elasticIndexBody = `{
  "settings": {
    "analysis": {
      "normalizer": {
        "lowercase_normalizer": {
          "type": "custom",
          "filter": ["lowercase"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "transactionId":   {"type": "keyword"},
      "date":            {"type": "date"},
      "rawDate":         {"type": "keyword"},
      "customerId":      {"type": "keyword"},
      "customerName":    {"type": "keyword", "fields": {"lower": {"type": "keyword", "normalizer": "lowercase_normalizer"}}},
      "phoneNumber":     {"type": "keyword", "fields": {"lower": {"type": "keyword", "normalizer": "lowercase_normalizer"}}},
      "gender":          {"type": "keyword", "fields": {"lower": {"type": "keyword", "normalizer": "lowercase_normalizer"}}},
      "age":             {"type": "integer"},
      "customerRegion":  {"type": "keyword", "fields": {"lower": {"type": "keyword", "normalizer": "lowercase_normalizer"}}},
      "customerType":    {"type": "keyword"},
      "productId":       {"type": "keyword"},
      "productName":     {"type": "keyword"},
      "brand":           {"type": "keyword"},
      "productCategory": {"type": "keyword", "fields": {"lower": {"type": "keyword", "normalizer": "lowercase_normalizer"}}},
      "tags":            {"type": "keyword", "fields": {"lower": {"type": "keyword", "normalizer": "lowercase_normalizer"}}},
      "quantity":        {"type": "integer"},
      "pricePerUnit":    {"type": "double"},
      "discountPercentage": {"type": "double"},
      "totalAmount":     {"type": "double"},
      "finalAmount":     {"type": "double"},
      "paymentMethod":   {"type": "keyword", "fields": {"lower": {"type": "keyword", "normalizer": "lowercase_normalizer"}}},
      "orderStatus":     {"type": "keyword"},
      "deliveryType":    {"type": "keyword"},
      "storeId":         {"type": "keyword"},
      "storeLocation":   {"type": "keyword"},
      "salespersonId":   {"type": "keyword"},
      "employeeName":    {"type": "keyword"}
    }
  }
}`

// EnsureElasticIndex creates the sales index when it does not exist yet.
func EnsureElasticIndex(ctx context.Context, client *elasticsearch.Client, index string) error {
	exists := esapi.IndicesExistsRequest{Index: []string{index}}
	res, err := exists.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("index exists check failed: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	create := esapi.IndicesCreateRequest{
		Index: index,
		Body:  strings.NewReader(elasticIndexBody),
	}
	res, err = create.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("index create failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index create error: %s", res.Status())
	}
	return nil
}

// ElasticDocument flattens a Record into the indexed document shape. Absent
// numeric and date values are omitted so range filters and missing-value
// sorting behave like the in-memory scan.
func ElasticDocument(rec sales.Record) map[string]interface{} {
	doc := map[string]interface{}{
		"transactionId":   rec.TransactionID,
		"customerId":      rec.CustomerID,
		"customerName":    rec.CustomerName,
		"phoneNumber":     rec.PhoneNumber,
		"gender":          rec.Gender,
		"customerRegion":  rec.CustomerRegion,
		"customerType":    rec.CustomerType,
		"productId":       rec.ProductID,
		"productName":     rec.ProductName,
		"brand":           rec.Brand,
		"productCategory": rec.ProductCategory,
		"paymentMethod":   rec.PaymentMethod,
		"orderStatus":     rec.OrderStatus,
		"deliveryType":    rec.DeliveryType,
		"storeId":         rec.StoreID,
		"storeLocation":   rec.StoreLocation,
		"salespersonId":   rec.SalespersonID,
		"employeeName":    rec.EmployeeName,
		"tags":            rec.Tags,
	}

	if rec.Date != nil {
		doc["date"] = rec.Date.UTC().Format(time.RFC3339)
	} else if rec.RawDate != "" {
		doc["rawDate"] = rec.RawDate
	}
	if rec.Age != nil {
		doc["age"] = *rec.Age
	}
	if rec.Quantity != nil {
		doc["quantity"] = *rec.Quantity
	}
	if rec.PricePerUnit != nil {
		doc["pricePerUnit"] = *rec.PricePerUnit
	}
	if rec.DiscountPercentage != nil {
		doc["discountPercentage"] = *rec.DiscountPercentage
	}
	if rec.TotalAmount != nil {
		doc["totalAmount"] = *rec.TotalAmount
	}
	if rec.FinalAmount != nil {
		doc["finalAmount"] = *rec.FinalAmount
	}

	return doc
}
