/*
store.go - Persistence interfaces for assets, records and audit entries

PURPOSE:
  Defines the interface between the engine and the database. The batch
  orchestrator reads assets through AssetRepository and commits all staged
  writes for a run through TxRunner.WithTx - one transaction per batch,
  all-or-nothing for the whole run's successful assets.

APPEND-ONLY CONTRACT:
  Depreciation records and audit entries have no update or delete
  operations. Once written they are immutable history.

IMPLEMENTATIONS:
  - store/sqlite:            production SQLite store
  - depreciation/store:      in-memory store for testing/dev
*/
package depreciation

import (
	"context"
	"time"
)

// =============================================================================
// ASSET REPOSITORY
// =============================================================================

// AssetFilter optionally narrows a batch run to an include/exclude set of
// categories. Empty filter matches everything; exclude wins over include.
type AssetFilter struct {
	IncludeCategories []string
	ExcludeCategories []string
}

// Matches reports whether an asset in the given category passes the filter.
func (f AssetFilter) Matches(category string) bool {
	for _, c := range f.ExcludeCategories {
		if c == category {
			return false
		}
	}
	if len(f.IncludeCategories) == 0 {
		return true
	}
	for _, c := range f.IncludeCategories {
		if c == category {
			return true
		}
	}
	return false
}

// AssetRepository provides read access to the asset register and upserts
// outside the batch path (asset intake, profile changes).
type AssetRepository interface {
	// ListDepreciable returns the active, not-fully-depreciated assets of a
	// business unit that have a purchase price and depreciation start date
	// set, filtered by category. Order is stable (item code).
	ListDepreciable(ctx context.Context, bu BusinessUnitID, filter AssetFilter) ([]Asset, error)

	// Get returns one asset, or nil when it does not exist.
	Get(ctx context.Context, id AssetID) (*Asset, error)

	// Save upserts an asset record.
	Save(ctx context.Context, a Asset) error
}

// RecordStore provides read access to posted depreciation records.
type RecordStore interface {
	RecordsByAsset(ctx context.Context, id AssetID) ([]Record, error)
}

// =============================================================================
// UNIT OF WORK - Atomic batch persistence
// =============================================================================

// Writer is the staged-write surface available inside a transaction.
// UpdateFinancials touches only the book-value fields the engine owns;
// record and audit appends are append-only.
type Writer interface {
	UpdateFinancials(ctx context.Context, a Asset) error
	AppendRecord(ctx context.Context, r Record) error
	AppendAudit(ctx context.Context, e AuditEntry) error
}

// TxRunner executes fn within one database transaction. If fn returns an
// error the transaction is rolled back and nothing the batch staged is
// visible; otherwise it is committed.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(Writer) error) error
}

// =============================================================================
// AUDIT LOG - Who/what triggered which posting
// =============================================================================

type AuditAction string

const (
	AuditDepreciationPosted AuditAction = "depreciation_posted"
	AuditBatchRunCompleted  AuditAction = "batch_run_completed"
	AuditAssetCreated       AuditAction = "asset_created"
)

// AuditEntry records who did what when. Append-only.
type AuditEntry struct {
	ID        string
	Timestamp time.Time
	ActorID   string
	Action    AuditAction
	AssetID   AssetID
	Detail    string
}

// AuditLog stores audit entries outside the batch transaction path
// (batch entries go through Writer.AppendAudit instead).
type AuditLog interface {
	AppendAudit(ctx context.Context, e AuditEntry) error
	AuditByAsset(ctx context.Context, id AssetID) ([]AuditEntry, error)
}
