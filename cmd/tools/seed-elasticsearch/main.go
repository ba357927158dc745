// cmd/tools/seed-elasticsearch/main.go
//
// Seeds the sales index from a CSV export: creates the index with the
// lowercase-normalized keyword mapping the query layer expects, validates
// every document against the record schema, and bulk-indexes in batches.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"sales-browser/internal/common/config"
	"sales-browser/internal/common/database"
	"sales-browser/internal/common/logger"
	"sales-browser/internal/store"
)

// recordSchema guards the indexed document shape. Optional fields may be
// absent but never carry the wrong type.
var recordSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"transactionId"},
	"properties": map[string]interface{}{
		"transactionId":   map[string]interface{}{"type": "string", "minLength": 1},
		"date":            map[string]interface{}{"type": "string"},
		"rawDate":         map[string]interface{}{"type": "string"},
		"customerId":      map[string]interface{}{"type": "string"},
		"customerName":    map[string]interface{}{"type": "string"},
		"phoneNumber":     map[string]interface{}{"type": "string"},
		"gender":          map[string]interface{}{"type": "string"},
		"age":             map[string]interface{}{"type": "integer", "minimum": 0},
		"customerRegion":  map[string]interface{}{"type": "string"},
		"productCategory": map[string]interface{}{"type": "string"},
		"tags":            map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"quantity":        map[string]interface{}{"type": "integer"},
		"totalAmount":     map[string]interface{}{"type": "number"},
		"paymentMethod":   map[string]interface{}{"type": "string"},
		"employeeName":    map[string]interface{}{"type": "string"},
	},
}

func main() {
	csvPath := flag.String("csv", "data/sales.csv", "Path to the sales CSV export")
	index := flag.String("index", "", "Target index (defaults to data.elasticsearch_index)")
	batchSize := flag.Int("batch", 500, "Documents per bulk request")
	recreate := flag.Bool("recreate", false, "Drop and recreate the index before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, "console")
	defer zapLog.Sync()

	if *index == "" {
		*index = cfg.Data.ElasticsearchIndex
	}

	ctx := context.Background()

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch client failed", zap.Error(err))
	}
	if err := esClient.Ping(); err != nil {
		zapLog.Fatal("elasticsearch unreachable", zap.Error(err))
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		zapLog.Fatal("cannot open csv", zap.String("path", *csvPath), zap.Error(err))
	}
	records, err := store.ReadRecords(f)
	f.Close()
	if err != nil {
		zapLog.Fatal("csv parse failed", zap.Error(err))
	}
	zapLog.Info("csv parsed", zap.Int("records", len(records)), zap.String("path", *csvPath))

	if *recreate {
		res, err := esClient.Client.Indices.Delete([]string{*index},
			esClient.Client.Indices.Delete.WithIgnoreUnavailable(true),
			esClient.Client.Indices.Delete.WithContext(ctx),
		)
		if err != nil {
			zapLog.Fatal("index delete failed", zap.Error(err))
		}
		res.Body.Close()
	}

	if err := store.EnsureElasticIndex(ctx, esClient.Client, *index); err != nil {
		zapLog.Fatal("index setup failed", zap.Error(err))
	}

	indexed, skipped := 0, 0
	batch := make([]map[string]interface{}, 0, *batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := bulkIndex(ctx, esClient, *index, batch); err != nil {
			zapLog.Fatal("bulk index failed", zap.Error(err))
		}
		indexed += len(batch)
		batch = batch[:0]
	}

	for i, rec := range records {
		if rec.TransactionID == "" {
			// Rows without an id still index; the id just cannot collide.
			rec.TransactionID = uuid.NewString()
		}

		doc := store.ElasticDocument(rec)
		if errs := validateDocument(doc); len(errs) > 0 {
			skipped++
			zapLog.Warn("skipping invalid document",
				zap.Int("row", i+2),
				zap.String("transactionId", rec.TransactionID),
				zap.Strings("errors", errs),
			)
			continue
		}

		batch = append(batch, doc)
		if len(batch) >= *batchSize {
			flush()
		}
	}
	flush()

	refresh := esapi.IndicesRefreshRequest{Index: []string{*index}}
	if res, err := refresh.Do(ctx, esClient.Client); err == nil {
		res.Body.Close()
	}

	if cfg.Cache.Enabled {
		if err := invalidateCatalogCache(ctx, cfg); err != nil {
			zapLog.Warn("catalog cache invalidation failed", zap.Error(err))
		}
	}

	zapLog.Info("seeding complete",
		zap.String("index", *index),
		zap.Int("indexed", indexed),
		zap.Int("skipped", skipped),
	)
}

func validateDocument(doc map[string]interface{}) []string {
	schemaLoader := gojsonschema.NewGoLoader(recordSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return []string{err.Error()}
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs
}

func bulkIndex(ctx context.Context, esClient *database.ElasticsearchClient, index string, docs []map[string]interface{}) error {
	var buf bytes.Buffer
	for _, doc := range docs {
		action := map[string]interface{}{
			"index": map[string]interface{}{"_id": doc["transactionId"]},
		}
		actionJSON, _ := json.Marshal(action)
		docJSON, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		buf.Write(actionJSON)
		buf.WriteByte('\n')
		buf.Write(docJSON)
		buf.WriteByte('\n')
	}

	req := esapi.BulkRequest{
		Index: index,
		Body:  strings.NewReader(buf.String()),
	}
	res, err := req.Do(ctx, esClient.Client)
	if err != nil {
		return fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk request error: %s", res.Status())
	}

	var out struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int         `json:"status"`
			Error  interface{} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if out.Errors {
		for _, item := range out.Items {
			for _, op := range item {
				if op.Status >= 300 {
					return fmt.Errorf("bulk item failed with status %d: %v", op.Status, op.Error)
				}
			}
		}
	}
	return nil
}

func invalidateCatalogCache(ctx context.Context, cfg *config.Config) error {
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return rdb.Del(timeoutCtx, "sales:filter-catalog")
}
