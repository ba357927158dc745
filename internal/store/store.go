// internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"

	"sales-browser/internal/sales"
)

// ErrNotReady is returned for queries issued before the store has completed
// its initial load. It is an explicit failure, never an empty result.
var ErrNotReady = errors.New("STORE_NOT_READY")

// Store is the read surface shared by every backend. All implementations must
// agree on predicate, sort, and pagination semantics, including InvalidRange
// detection before any data is scanned.
type Store interface {
	Query(ctx context.Context, req sales.QueryRequest) (*sales.QueryResult, error)
	FilterCatalog(ctx context.Context) (*sales.FilterCatalog, error)
}

// LoadError is a fatal ingestion failure: the source was unreadable or
// structurally malformed. Row is the 1-based position of the first structural
// failure, 0 when the source could not be opened at all.
type LoadError struct {
	Row int
	Err error
}

func (e *LoadError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("LOAD_FAILED (row %d): %v", e.Row, e.Err)
	}
	return fmt.Sprintf("LOAD_FAILED: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
