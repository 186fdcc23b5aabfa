package collector

import (
	"context"
	"time"

	"inventario-app/types"
)

// Reconciliation outcome of matching a collected tag against known assets.
// StatusDivergent is reserved; nothing assigns it yet.
const (
	StatusMatched   = "matched"
	StatusDivergent = "divergent"
	StatusNotFound  = "not_found"
)

// CollectedItem is one scan/collection event held in the local queue.
// ID and IsSynced are local-only and are stripped before the remote insert.
type CollectedItem struct {
	ID                   types.SnowflakeID `json:"id"`
	AssetID              *uint             `json:"assetId"`
	TagCode              string            `json:"tagCode"`
	CollectedAt          time.Time         `json:"collectedAt"`
	CollectorUserID      uint              `json:"collectorUserId"`
	Latitude             *float64          `json:"latitude,omitempty"`
	Longitude            *float64          `json:"longitude,omitempty"`
	ReconciliationStatus string            `json:"reconciliationStatus"`
	Note                 string            `json:"note,omitempty"`
	IsSynced             bool              `json:"isSynced"`
}

// Candidate carries every field of a CollectedItem except the ones the
// queue assigns (id, synced flag).
type Candidate struct {
	AssetID              *uint
	TagCode              string
	CollectedAt          time.Time
	CollectorUserID      uint
	Latitude             *float64
	Longitude            *float64
	ReconciliationStatus string
	Note                 string
}

// RemoteItem is the batch payload shape: a collected item without its
// local-only fields.
type RemoteItem struct {
	AssetID              *uint
	TagCode              string
	CollectedAt          time.Time
	CollectorUserID      uint
	Latitude             *float64
	Longitude            *float64
	ReconciliationStatus string
	Note                 string
}

// Asset is the slice of a known asset record the collector needs.
type Asset struct {
	ID uint
}

// AssetLookup resolves a printed tag code to a known asset. A nil asset
// with a nil error means the tag is not registered, which is a valid
// outcome, not an error.
type AssetLookup interface {
	LookupByTag(ctx context.Context, tagCode string) (*Asset, error)
}

// BulkInserter persists a finalized batch remotely, all-or-nothing.
type BulkInserter interface {
	InsertBatch(ctx context.Context, items []RemoteItem) error
}

// Clock is injected so tests control collection timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }
