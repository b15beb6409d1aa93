// Package store provides an in-memory implementation of the persistence
// interfaces (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rdrealty/asset-engine/depreciation"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	assets  map[depreciation.AssetID]depreciation.Asset
	records map[depreciation.AssetID][]depreciation.Record
	audit   []depreciation.AuditEntry
}

func NewMemory() *Memory {
	return &Memory{
		assets:  make(map[depreciation.AssetID]depreciation.Asset),
		records: make(map[depreciation.AssetID][]depreciation.Record),
	}
}

// =============================================================================
// ASSET REPOSITORY
// =============================================================================

func (m *Memory) ListDepreciable(_ context.Context, bu depreciation.BusinessUnitID, filter depreciation.AssetFilter) ([]depreciation.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []depreciation.Asset
	for _, a := range m.assets {
		if a.BusinessUnitID != bu || !a.Active || a.FullyDepreciated {
			continue
		}
		if !a.PurchasePrice.IsPositive() || a.DepreciationStartDate.IsZero() {
			continue
		}
		if !filter.Matches(a.Category) {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ItemCode < result[j].ItemCode })
	return result, nil
}

func (m *Memory) Get(_ context.Context, id depreciation.AssetID) (*depreciation.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assets[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) Save(_ context.Context, a depreciation.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[a.ID] = a
	return nil
}

// =============================================================================
// RECORD STORE / AUDIT LOG
// =============================================================================

func (m *Memory) RecordsByAsset(_ context.Context, id depreciation.AssetID) ([]depreciation.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]depreciation.Record, len(m.records[id]))
	copy(result, m.records[id])
	return result, nil
}

func (m *Memory) AppendAudit(_ context.Context, e depreciation.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, e)
	return nil
}

func (m *Memory) AuditByAsset(_ context.Context, id depreciation.AssetID) ([]depreciation.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []depreciation.AuditEntry
	for _, e := range m.audit {
		if e.AssetID == id {
			result = append(result, e)
		}
	}
	return result, nil
}

// RecordCount returns the total number of stored depreciation records.
// Test helper.
func (m *Memory) RecordCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, recs := range m.records {
		n += len(recs)
	}
	return n
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// WithTx executes fn against a transactional view. For the memory store,
// atomicity is simulated with a snapshot + rollback on error.
func (m *Memory) WithTx(ctx context.Context, fn func(depreciation.Writer) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&txView{parent: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	assets  map[depreciation.AssetID]depreciation.Asset
	records map[depreciation.AssetID][]depreciation.Record
	audit   []depreciation.AuditEntry
}

func (m *Memory) snapshot() memorySnapshot {
	assets := make(map[depreciation.AssetID]depreciation.Asset, len(m.assets))
	for k, v := range m.assets {
		assets[k] = v
	}
	records := make(map[depreciation.AssetID][]depreciation.Record, len(m.records))
	for k, v := range m.records {
		records[k] = append([]depreciation.Record{}, v...)
	}
	return memorySnapshot{
		assets:  assets,
		records: records,
		audit:   append([]depreciation.AuditEntry{}, m.audit...),
	}
}

func (m *Memory) restore(s memorySnapshot) {
	m.assets = s.assets
	m.records = s.records
	m.audit = s.audit
}

type txView struct {
	parent *Memory
}

func (tv *txView) UpdateFinancials(_ context.Context, a depreciation.Asset) error {
	tv.parent.assets[a.ID] = a
	return nil
}

func (tv *txView) AppendRecord(_ context.Context, r depreciation.Record) error {
	tv.parent.records[r.AssetID] = append(tv.parent.records[r.AssetID], r)
	return nil
}

func (tv *txView) AppendAudit(_ context.Context, e depreciation.AuditEntry) error {
	tv.parent.audit = append(tv.parent.audit, e)
	return nil
}
