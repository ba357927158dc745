// internal/store/memory.go
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"sync/atomic"

	"sales-browser/internal/common/logger"
	"sales-browser/internal/sales"
)

// memorySnapshot bundles the record collection with its precomputed catalog
// so both publish atomically.
type memorySnapshot struct {
	records []sales.Record
	catalog sales.FilterCatalog
}

// MemoryStore holds the full normalized collection in memory and answers
// queries by direct scan. The collection is immutable after load, so
// concurrent read-only queries need no locking.
type MemoryStore struct {
	logger logger.Logger
	snap   atomic.Pointer[memorySnapshot]
}

// NewMemoryStore creates an unloaded in-memory store. Queries fail with
// ErrNotReady until a load completes.
func NewMemoryStore(log logger.Logger) *MemoryStore {
	return &MemoryStore{
		logger: log.WithFields(map[string]interface{}{"backend": "memory"}),
	}
}

// LoadFile reads and normalizes a delimited source file. The snapshot is
// published only when the whole source parses, so a load completes or fails
// atomically.
func (s *MemoryStore) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Err: err}
	}
	defer f.Close()

	return s.Load(f)
}

// Load reads CSV rows from r, normalizes each one, and publishes the
// resulting snapshot. A structural parse failure aborts the load with the
// offending row position; malformed individual fields never do.
func (s *MemoryStore) Load(r io.Reader) error {
	records, err := ReadRecords(r)
	if err != nil {
		return err
	}

	s.Publish(records)

	s.logger.Info("store loaded", map[string]interface{}{
		"records": len(records),
	})
	return nil
}

// ReadRecords parses a headed CSV source into normalized records. The first
// row names the columns; a structural parse failure aborts with a LoadError
// carrying the offending row position, malformed individual fields never do.
func ReadRecords(r io.Reader) ([]sales.Record, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, &LoadError{Row: 1, Err: err}
	}

	records := []sales.Record{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &LoadError{Row: parseErr.Line, Err: err}
			}
			return nil, &LoadError{Row: len(records) + 2, Err: err}
		}

		raw := make(map[string]string, len(header))
		for i, field := range header {
			if i < len(row) {
				raw[field] = row[i]
			}
		}
		records = append(records, sales.Normalize(raw))
	}

	return records, nil
}

// Publish replaces the store contents with an already-normalized collection
// and recomputes the filter catalog. Used by Load and by tests seeding
// fixtures directly.
func (s *MemoryStore) Publish(records []sales.Record) {
	s.snap.Store(&memorySnapshot{
		records: records,
		catalog: sales.BuildCatalog(records),
	})
}

// Query runs the full scan pipeline over the current snapshot.
func (s *MemoryStore) Query(_ context.Context, req sales.QueryRequest) (*sales.QueryResult, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return sales.Execute(snap.records, &req)
}

// FilterCatalog returns the catalog computed at load time.
func (s *MemoryStore) FilterCatalog(_ context.Context) (*sales.FilterCatalog, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	catalog := snap.catalog
	return &catalog, nil
}
