// internal/store/elastic.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"sales-browser/internal/common/logger"
	"sales-browser/internal/sales"
)

// ElasticStore answers queries through a server-side bool-query + aggregation
// pipeline. The index is pre-seeded (cmd/tools/seed-elasticsearch) with
// keyword fields carrying a `.lower` subfield for case-insensitive
// set-membership predicates.
type ElasticStore struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticStore(client *elasticsearch.Client, index string, log logger.Logger) *ElasticStore {
	return &ElasticStore{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"backend": "elasticsearch", "index": index}),
	}
}

// Query validates ranges, counts the matching set, clamps the requested page,
// and fetches exactly the effective page: one count round-trip plus one
// search, never a blind retry.
func (s *ElasticStore) Query(ctx context.Context, req sales.QueryRequest) (*sales.QueryResult, error) {
	if ire := sales.ValidateRanges(&req); ire != nil {
		return nil, ire
	}

	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = sales.DefaultPageSize
	}

	query := buildMatchQuery(&req)

	total, err := s.count(ctx, query)
	if err != nil {
		return nil, err
	}

	effectivePage, totalPages, start, _ := sales.Paginate(total, req.Page, pageSize)

	data, err := s.fetchPage(ctx, query, &req, start, pageSize)
	if err != nil {
		return nil, err
	}

	return &sales.QueryResult{
		Data:       data,
		Total:      total,
		Page:       effectivePage,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *ElasticStore) count(ctx context.Context, query map[string]interface{}) (int, error) {
	body, _ := json.Marshal(map[string]interface{}{"query": query})

	req := esapi.CountRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return 0, fmt.Errorf("count request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count request error: %s", res.Status())
	}

	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return out.Count, nil
}

func (s *ElasticStore) fetchPage(ctx context.Context, query map[string]interface{}, req *sales.QueryRequest, from, size int) ([]sales.View, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"query":   query,
		"sort":    buildSortClause(req.SortBy, req.SortOrder),
		"_source": projectionFields,
	})

	search := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &size,
	}
	res, err := search.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search request error: %s", res.Status())
	}

	var out struct {
		Hits struct {
			Hits []struct {
				Source esDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	data := make([]sales.View, 0, len(out.Hits.Hits))
	for _, hit := range out.Hits.Hits {
		data = append(data, hit.Source.view())
	}
	return data, nil
}

// projectionFields is the fixed transport projection; every backend returns
// exactly this subset. rawDate rides along to back-fill an unparsable date.
var projectionFields = []string{
	"transactionId", "date", "rawDate", "customerId", "customerName",
	"phoneNumber", "gender", "age", "productCategory", "quantity",
	"totalAmount", "customerRegion", "productId", "employeeName",
}

// esDocument mirrors the indexed document shape for the projected fields.
type esDocument struct {
	sales.View
	RawDate string `json:"rawDate"`
}

func (d esDocument) view() sales.View {
	v := d.View
	if v.Date == "" {
		v.Date = d.RawDate
	}
	return v
}

// escapeWildcardTerm neutralizes the wildcard metacharacters so the search
// term matches as a literal substring, the same as the in-memory scan.
func escapeWildcardTerm(term string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`).Replace(term)
}

// buildMatchQuery translates the request predicate into a bool query: a
// should-group of case-insensitive wildcards for the search term, terms
// filters on the lowercase keyword subfields for set membership, and range
// filters for age and date. Absent age/date values simply lack the field and
// therefore fail any active range filter, matching the in-memory scan.
func buildMatchQuery(req *sales.QueryRequest) map[string]interface{} {
	filterClauses := []interface{}{}
	mustClauses := []interface{}{}

	if req.SearchTerm != "" {
		pattern := "*" + escapeWildcardTerm(strings.ToLower(req.SearchTerm)) + "*"
		mustClauses = append(mustClauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"wildcard": map[string]interface{}{
							"customerName.lower": map[string]interface{}{"value": pattern},
						},
					},
					map[string]interface{}{
						"wildcard": map[string]interface{}{
							"phoneNumber.lower": map[string]interface{}{"value": pattern},
						},
					},
				},
				"minimum_should_match": 1,
			},
		})
	}

	appendTerms := func(field string, values []string) {
		if len(values) == 0 {
			return
		}
		lowered := make([]string, len(values))
		for i, v := range values {
			lowered[i] = strings.ToLower(v)
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{field + ".lower": lowered},
		})
	}

	appendTerms("customerRegion", req.Regions)
	appendTerms("gender", req.Genders)
	appendTerms("productCategory", req.Categories)
	appendTerms("paymentMethod", req.PaymentMethods)
	appendTerms("tags", req.Tags)

	if req.AgeMin != nil || req.AgeMax != nil {
		bounds := map[string]interface{}{}
		if req.AgeMin != nil {
			bounds["gte"] = *req.AgeMin
		}
		if req.AgeMax != nil {
			bounds["lte"] = *req.AgeMax
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"age": bounds},
		})
	}

	if req.DateFrom != nil || req.DateTo != nil {
		bounds := map[string]interface{}{}
		if req.DateFrom != nil {
			bounds["gte"] = req.DateFrom.UTC().Format(time.RFC3339)
		}
		if req.DateTo != nil {
			bounds["lte"] = req.DateTo.UTC().Format(time.RFC3339)
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"date": bounds},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": mustClauses}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	return map[string]interface{}{"bool": boolQuery}
}

// buildSortClause maps the sort key to its index field with the
// key-dependent default direction. Missing values sort as smallest, the same
// as the in-memory comparator, and a transactionId tiebreak keeps repeated
// queries deterministic.
func buildSortClause(sortBy, sortOrder string) []interface{} {
	field := "date"
	switch sortBy {
	case sales.SortByQuantity:
		field = "quantity"
	case sales.SortByName:
		field = "customerName"
	}

	order := sales.EffectiveOrder(sortBy, sortOrder)
	missing := "_last"
	if order == sales.OrderAsc {
		missing = "_first"
	}

	primary := map[string]interface{}{"order": order}
	if field != "customerName" {
		primary["missing"] = missing
	}

	return []interface{}{
		map[string]interface{}{field: primary},
		map[string]interface{}{"transactionId": map[string]interface{}{"order": "asc"}},
	}
}

// FilterCatalog runs one aggregation request: terms aggregations over the
// original-case keyword fields plus min/max over age and date.
func (s *ElasticStore) FilterCatalog(ctx context.Context) (*sales.FilterCatalog, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"size": 0,
		"aggs": map[string]interface{}{
			"regions":        termsAgg("customerRegion"),
			"genders":        termsAgg("gender"),
			"categories":     termsAgg("productCategory"),
			"tags":           termsAgg("tags"),
			"paymentMethods": termsAgg("paymentMethod"),
			"minAge":         metricAgg("min", "age"),
			"maxAge":         metricAgg("max", "age"),
			"minDate":        metricAgg("min", "date"),
			"maxDate":        metricAgg("max", "date"),
		},
	})

	search := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
	}
	res, err := search.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("catalog aggregation failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("catalog aggregation error: %s", res.Status())
	}

	var out struct {
		Aggregations struct {
			Regions        bucketAgg `json:"regions"`
			Genders        bucketAgg `json:"genders"`
			Categories     bucketAgg `json:"categories"`
			Tags           bucketAgg `json:"tags"`
			PaymentMethods bucketAgg `json:"paymentMethods"`
			MinAge         valueAgg  `json:"minAge"`
			MaxAge         valueAgg  `json:"maxAge"`
			MinDate        valueAgg  `json:"minDate"`
			MaxDate        valueAgg  `json:"maxDate"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	aggs := out.Aggregations
	catalog := &sales.FilterCatalog{
		Regions:        aggs.Regions.sortedValues(),
		Genders:        aggs.Genders.sortedValues(),
		Categories:     aggs.Categories.sortedValues(),
		Tags:           aggs.Tags.sortedValues(),
		PaymentMethods: aggs.PaymentMethods.sortedValues(),
		MinAge:         aggs.MinAge.intValue(),
		MaxAge:         aggs.MaxAge.intValue(),
		MinDate:        aggs.MinDate.timeValue(),
		MaxDate:        aggs.MaxDate.timeValue(),
	}
	return catalog, nil
}

func termsAgg(field string) map[string]interface{} {
	return map[string]interface{}{
		"terms": map[string]interface{}{
			"field": field,
			"size":  10000,
			"order": map[string]interface{}{"_key": "asc"},
		},
	}
}

func metricAgg(kind, field string) map[string]interface{} {
	return map[string]interface{}{
		kind: map[string]interface{}{"field": field},
	}
}

type bucketAgg struct {
	Buckets []struct {
		Key string `json:"key"`
	} `json:"buckets"`
}

// sortedValues returns the bucket keys; the aggregation already orders them
// ascending by key.
func (a bucketAgg) sortedValues() []string {
	values := make([]string, 0, len(a.Buckets))
	for _, b := range a.Buckets {
		if b.Key != "" {
			values = append(values, b.Key)
		}
	}
	return values
}

type valueAgg struct {
	Value *float64 `json:"value"`
}

func (a valueAgg) intValue() *int {
	if a.Value == nil {
		return nil
	}
	n := int(*a.Value)
	return &n
}

func (a valueAgg) timeValue() *time.Time {
	if a.Value == nil {
		return nil
	}
	t := time.UnixMilli(int64(*a.Value)).UTC()
	return &t
}
