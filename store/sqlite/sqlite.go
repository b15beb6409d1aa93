/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

INTERFACES IMPLEMENTED:
  depreciation.AssetRepository: Asset register reads/upserts
  depreciation.RecordStore:     Posted depreciation records (append-only)
  depreciation.TxRunner:        Atomic batch persistence
  depreciation.AuditLog:        Audit trail (append-only)

APPEND-ONLY ENFORCEMENT:
  depreciation_records and audit_log have no UPDATE or DELETE paths.
  Corrections in the wider application happen via reversing entries.

KEY TABLES:
  assets:               Depreciable asset register (book-value state)
  depreciation_records: Immutable per-posting audit entries
  depreciation_runs:    Batch run history (status, counts, totals)
  audit_log:            Who/what triggered which change

NUMERIC STORAGE:
  Monetary values are stored as exact decimal strings (TEXT), never as
  floating binary. Rounding to two decimals happens at the API/display
  boundary, not here.

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block,
  single writer at a time.

USAGE:
  store, err := sqlite.New("./data/assets.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/rdrealty/asset-engine/depreciation"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Asset register (depreciable subset)
	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		item_code TEXT NOT NULL,
		description TEXT,
		category TEXT NOT NULL DEFAULT '',
		business_unit_id TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		purchase_price TEXT NOT NULL,
		salvage_value TEXT NOT NULL,
		current_book_value TEXT NOT NULL,
		accumulated_depreciation TEXT NOT NULL,
		method TEXT NOT NULL,
		monthly_depreciation TEXT NOT NULL DEFAULT '0',
		annual_rate_percent TEXT NOT NULL DEFAULT '0',
		depreciation_per_unit TEXT NOT NULL DEFAULT '0',
		total_expected_units TEXT NOT NULL DEFAULT '0',
		useful_life_months INTEGER NOT NULL DEFAULT 0,
		depreciation_start_date TEXT NOT NULL,
		last_depreciation_date TEXT,
		next_depreciation_date TEXT,
		fully_depreciated BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assets_business_unit
		ON assets(business_unit_id);
	CREATE INDEX IF NOT EXISTS idx_assets_category
		ON assets(category);
	-- Batch selection (hot path): active depreciable assets per unit
	CREATE INDEX IF NOT EXISTS idx_assets_depreciable
		ON assets(business_unit_id, active, fully_depreciated);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_item_code
		ON assets(business_unit_id, item_code);

	-- Depreciation records (append-only)
	CREATE TABLE IF NOT EXISTS depreciation_records (
		id TEXT PRIMARY KEY,
		asset_id TEXT NOT NULL,
		depreciation_date TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		book_value_before TEXT NOT NULL,
		book_value_after TEXT NOT NULL,
		amount TEXT NOT NULL,
		accumulated_after TEXT NOT NULL,
		method TEXT NOT NULL,
		triggered_by TEXT,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_asset
		ON depreciation_records(asset_id, depreciation_date);
	-- One posting per asset per calculation date
	CREATE UNIQUE INDEX IF NOT EXISTS idx_records_asset_date
		ON depreciation_records(asset_id, depreciation_date);

	-- Batch run history
	CREATE TABLE IF NOT EXISTS depreciation_runs (
		id TEXT PRIMARY KEY,
		business_unit_id TEXT NOT NULL,
		calculation_date TEXT NOT NULL,
		cadence TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		total_assets INTEGER DEFAULT 0,
		successful INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		fully_depreciated INTEGER DEFAULT 0,
		no_setup INTEGER DEFAULT 0,
		total_amount TEXT NOT NULL DEFAULT '0',
		triggered_by TEXT,
		error TEXT,
		started_at TEXT,
		completed_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_business_unit
		ON depreciation_runs(business_unit_id, calculation_date);
	CREATE INDEX IF NOT EXISTS idx_runs_status
		ON depreciation_runs(status);

	-- Audit log (append-only)
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		asset_id TEXT,
		detail TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_asset
		ON audit_log(asset_id);
	CREATE INDEX IF NOT EXISTS idx_audit_actor
		ON audit_log(actor_id, timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer lets the same write helpers run against *sql.DB or *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// ASSET REPOSITORY (depreciation.AssetRepository interface)
// =============================================================================

// ListDepreciable returns the active, not-fully-depreciated assets of a
// business unit that are ready for depreciation, filtered by category.
func (s *Store) ListDepreciable(ctx context.Context, bu depreciation.BusinessUnitID, filter depreciation.AssetFilter) ([]depreciation.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := assetColumns + `
		FROM assets
		WHERE business_unit_id = ?
		  AND active = TRUE
		  AND fully_depreciated = FALSE
		  AND purchase_price != ''
		  AND depreciation_start_date != ''
		ORDER BY item_code ASC
	`

	assets, err := s.queryAssets(ctx, query, string(bu))
	if err != nil {
		return nil, err
	}

	// Category include/exclude is applied in memory; the category set is
	// small and the filter semantics live in one place.
	filtered := assets[:0]
	for _, a := range assets {
		if a.PurchasePrice.IsPositive() && filter.Matches(a.Category) {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// Get returns one asset, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id depreciation.AssetID) (*depreciation.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assets, err := s.queryAssets(ctx, assetColumns+" FROM assets WHERE id = ?", string(id))
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, nil
	}
	return &assets[0], nil
}

// ListByBusinessUnit returns every asset of a business unit.
func (s *Store) ListByBusinessUnit(ctx context.Context, bu depreciation.BusinessUnitID) ([]depreciation.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAssets(ctx,
		assetColumns+" FROM assets WHERE business_unit_id = ? ORDER BY item_code ASC",
		string(bu))
}

// ListBusinessUnits returns the distinct business units present in the
// asset register. Used by the scheduler.
func (s *Store) ListBusinessUnits(ctx context.Context) ([]depreciation.BusinessUnitID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT business_unit_id FROM assets ORDER BY business_unit_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []depreciation.BusinessUnitID
	for rows.Next() {
		var bu string
		if err := rows.Scan(&bu); err != nil {
			return nil, err
		}
		units = append(units, depreciation.BusinessUnitID(bu))
	}
	return units, rows.Err()
}

// Save upserts an asset record.
func (s *Store) Save(ctx context.Context, a depreciation.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO assets
		(id, item_code, description, category, business_unit_id, active,
		 purchase_price, salvage_value, current_book_value, accumulated_depreciation,
		 method, monthly_depreciation, annual_rate_percent, depreciation_per_unit,
		 total_expected_units, useful_life_months, depreciation_start_date,
		 last_depreciation_date, next_depreciation_date, fully_depreciated,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			item_code = excluded.item_code,
			description = excluded.description,
			category = excluded.category,
			business_unit_id = excluded.business_unit_id,
			active = excluded.active,
			purchase_price = excluded.purchase_price,
			salvage_value = excluded.salvage_value,
			current_book_value = excluded.current_book_value,
			accumulated_depreciation = excluded.accumulated_depreciation,
			method = excluded.method,
			monthly_depreciation = excluded.monthly_depreciation,
			annual_rate_percent = excluded.annual_rate_percent,
			depreciation_per_unit = excluded.depreciation_per_unit,
			total_expected_units = excluded.total_expected_units,
			useful_life_months = excluded.useful_life_months,
			depreciation_start_date = excluded.depreciation_start_date,
			last_depreciation_date = excluded.last_depreciation_date,
			next_depreciation_date = excluded.next_depreciation_date,
			fully_depreciated = excluded.fully_depreciated,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.ItemCode, a.Description, a.Category, a.BusinessUnitID, a.Active,
		a.PurchasePrice.String(), a.SalvageValue.String(),
		a.CurrentBookValue.String(), a.AccumulatedDepreciation.String(),
		a.Method.Code(), a.MonthlyDepreciation.String(), a.AnnualRatePercent.String(),
		a.DepreciationPerUnit.String(), a.TotalExpectedUnits.String(), a.UsefulLifeMonths,
		formatDate(a.DepreciationStartDate),
		nullDate(a.LastDepreciationDate), nullDate(a.NextDepreciationDate),
		a.FullyDepreciated, now, now,
	)
	return err
}

const assetColumns = `
	SELECT id, item_code, description, category, business_unit_id, active,
	       purchase_price, salvage_value, current_book_value, accumulated_depreciation,
	       method, monthly_depreciation, annual_rate_percent, depreciation_per_unit,
	       total_expected_units, useful_life_months, depreciation_start_date,
	       last_depreciation_date, next_depreciation_date, fully_depreciated`

func (s *Store) queryAssets(ctx context.Context, query string, args ...any) ([]depreciation.Asset, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []depreciation.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func scanAsset(rows *sql.Rows) (depreciation.Asset, error) {
	var (
		a                  depreciation.Asset
		description        sql.NullString
		purchasePrice      string
		salvageValue       string
		currentBookValue   string
		accumulated        string
		methodCode         string
		monthly            string
		annualRate         string
		perUnit            string
		expectedUnits      string
		startDate          string
		lastDate, nextDate sql.NullString
	)

	err := rows.Scan(
		&a.ID, &a.ItemCode, &description, &a.Category, &a.BusinessUnitID, &a.Active,
		&purchasePrice, &salvageValue, &currentBookValue, &accumulated,
		&methodCode, &monthly, &annualRate, &perUnit, &expectedUnits,
		&a.UsefulLifeMonths, &startDate, &lastDate, &nextDate, &a.FullyDepreciated,
	)
	if err != nil {
		return a, fmt.Errorf("failed to scan asset: %w", err)
	}

	a.Description = description.String
	a.PurchasePrice = parseDecimal(purchasePrice)
	a.SalvageValue = parseDecimal(salvageValue)
	a.CurrentBookValue = parseDecimal(currentBookValue)
	a.AccumulatedDepreciation = parseDecimal(accumulated)
	a.MonthlyDepreciation = parseDecimal(monthly)
	a.AnnualRatePercent = parseDecimal(annualRate)
	a.DepreciationPerUnit = parseDecimal(perUnit)
	a.TotalExpectedUnits = parseDecimal(expectedUnits)
	// A method code that no longer parses is row corruption, not a
	// misconfigured asset; surfacing it keeps it distinguishable from NO_SETUP.
	a.Method, err = depreciation.ParseMethod(methodCode)
	if err != nil {
		return a, fmt.Errorf("asset %s: %w", a.ID, err)
	}
	a.DepreciationStartDate = parseDate(startDate)
	a.LastDepreciationDate = parseNullDate(lastDate)
	a.NextDepreciationDate = parseNullDate(nextDate)
	return a, nil
}

// =============================================================================
// UNIT OF WORK (depreciation.TxRunner interface)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(w depreciation.Writer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txWriter{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

type txWriter struct {
	tx *sql.Tx
}

// UpdateFinancials updates only the book-value fields the engine owns.
func (w *txWriter) UpdateFinancials(ctx context.Context, a depreciation.Asset) error {
	return updateFinancials(ctx, w.tx, a)
}

func (w *txWriter) AppendRecord(ctx context.Context, r depreciation.Record) error {
	return appendRecord(ctx, w.tx, r)
}

func (w *txWriter) AppendAudit(ctx context.Context, e depreciation.AuditEntry) error {
	return appendAudit(ctx, w.tx, e)
}

func updateFinancials(ctx context.Context, db execer, a depreciation.Asset) error {
	query := `
		UPDATE assets SET
			current_book_value = ?,
			accumulated_depreciation = ?,
			last_depreciation_date = ?,
			next_depreciation_date = ?,
			fully_depreciated = ?,
			updated_at = ?
		WHERE id = ?
	`

	res, err := db.ExecContext(ctx, query,
		a.CurrentBookValue.String(), a.AccumulatedDepreciation.String(),
		nullDate(a.LastDepreciationDate), nullDate(a.NextDepreciationDate),
		a.FullyDepreciated, time.Now().UTC().Format(time.RFC3339), a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset %s: %w", a.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("asset %s not found", a.ID)
	}
	return nil
}

func appendRecord(ctx context.Context, db execer, r depreciation.Record) error {
	query := `
		INSERT INTO depreciation_records
		(id, asset_id, depreciation_date, period_start, period_end,
		 book_value_before, book_value_after, amount, accumulated_after,
		 method, triggered_by, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, query,
		r.ID, r.AssetID, formatDate(r.DepreciationDate),
		formatDate(r.PeriodStart), formatDate(r.PeriodEnd),
		r.BookValueBefore.String(), r.BookValueAfter.String(),
		r.Amount.String(), r.AccumulatedAfter.String(),
		r.Method.Code(), nullString(r.TriggeredBy), nullString(r.Note),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append depreciation record: %w", err)
	}
	return nil
}

func appendAudit(ctx context.Context, db execer, e depreciation.AuditEntry) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO audit_log (id, timestamp, actor_id, action, asset_id, detail) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, e.Timestamp.UTC().Format(time.RFC3339), e.ActorID, string(e.Action),
		nullString(string(e.AssetID)), nullString(e.Detail),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// =============================================================================
// RECORD STORE (depreciation.RecordStore interface)
// =============================================================================

// RecordsByAsset returns an asset's posted records, chronologically.
func (s *Store) RecordsByAsset(ctx context.Context, id depreciation.AssetID) ([]depreciation.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := recordColumns + `
		FROM depreciation_records
		WHERE asset_id = ?
		ORDER BY depreciation_date ASC, created_at ASC
	`
	return s.queryRecords(ctx, query, string(id))
}

// ListRecords returns the most recent records across all assets.
func (s *Store) ListRecords(ctx context.Context, limit int) ([]depreciation.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	query := recordColumns + `
		FROM depreciation_records
		ORDER BY depreciation_date DESC, created_at DESC
		LIMIT ?
	`
	return s.queryRecords(ctx, query, limit)
}

const recordColumns = `
	SELECT id, asset_id, depreciation_date, period_start, period_end,
	       book_value_before, book_value_after, amount, accumulated_after,
	       method, triggered_by, note, created_at`

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]depreciation.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []depreciation.Record
	for rows.Next() {
		var (
			r                     depreciation.Record
			depDate, pStart, pEnd string
			before, after         string
			amount, accumulated   string
			methodCode, createdAt string
			triggeredBy, note     sql.NullString
		)
		err := rows.Scan(&r.ID, &r.AssetID, &depDate, &pStart, &pEnd,
			&before, &after, &amount, &accumulated,
			&methodCode, &triggeredBy, &note, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		r.DepreciationDate = parseDate(depDate)
		r.PeriodStart = parseDate(pStart)
		r.PeriodEnd = parseDate(pEnd)
		r.BookValueBefore = parseDecimal(before)
		r.BookValueAfter = parseDecimal(after)
		r.Amount = parseDecimal(amount)
		r.AccumulatedAfter = parseDecimal(accumulated)
		r.Method, err = depreciation.ParseMethod(methodCode)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		r.TriggeredBy = triggeredBy.String
		r.Note = note.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// AUDIT LOG (depreciation.AuditLog interface)
// =============================================================================

// AppendAudit writes an audit entry outside the batch transaction path.
func (s *Store) AppendAudit(ctx context.Context, e depreciation.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendAudit(ctx, s.db, e)
}

// AuditByAsset returns the audit trail of one asset, newest first.
func (s *Store) AuditByAsset(ctx context.Context, id depreciation.AssetID) ([]depreciation.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, timestamp, actor_id, action, asset_id, detail FROM audit_log WHERE asset_id = ? ORDER BY timestamp DESC",
		string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []depreciation.AuditEntry
	for rows.Next() {
		var (
			e               depreciation.AuditEntry
			ts, action      string
			assetID, detail sql.NullString
		)
		if err := rows.Scan(&e.ID, &ts, &e.ActorID, &action, &assetID, &detail); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(time.RFC3339, ts)
		e.Action = depreciation.AuditAction(action)
		e.AssetID = depreciation.AssetID(assetID.String)
		e.Detail = detail.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// RUN HISTORY
// =============================================================================

// RunRecord is a stored batch run summary.
type RunRecord struct {
	ID               string
	BusinessUnitID   string
	CalculationDate  time.Time
	Cadence          string
	Status           string // running, completed, failed
	TotalAssets      int
	Successful       int
	Failed           int
	FullyDepreciated int
	NoSetup          int
	TotalAmount      decimal.Decimal
	TriggeredBy      string
	Error            string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time
}

// SaveRun upserts a run record.
func (s *Store) SaveRun(ctx context.Context, r RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO depreciation_runs
		(id, business_unit_id, calculation_date, cadence, status,
		 total_assets, successful, failed, fully_depreciated, no_setup,
		 total_amount, triggered_by, error, started_at, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			total_assets = excluded.total_assets,
			successful = excluded.successful,
			failed = excluded.failed,
			fully_depreciated = excluded.fully_depreciated,
			no_setup = excluded.no_setup,
			total_amount = excluded.total_amount,
			error = excluded.error,
			completed_at = excluded.completed_at
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.BusinessUnitID, formatDate(r.CalculationDate), r.Cadence, r.Status,
		r.TotalAssets, r.Successful, r.Failed, r.FullyDepreciated, r.NoSetup,
		r.TotalAmount.String(), nullString(r.TriggeredBy), nullString(r.Error),
		nullDate(r.StartedAt), nullDate(r.CompletedAt),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListRuns returns run history, newest first, optionally filtered by
// business unit.
func (s *Store) ListRuns(ctx context.Context, bu string, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, business_unit_id, calculation_date, cadence, status,
		       total_assets, successful, failed, fully_depreciated, no_setup,
		       total_amount, triggered_by, error, started_at, completed_at, created_at
		FROM depreciation_runs
	`
	args := []any{}
	if bu != "" {
		query += " WHERE business_unit_id = ?"
		args = append(args, bu)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			r                      RunRecord
			calcDate, createdAt    string
			totalAmount            string
			triggeredBy, runErr    sql.NullString
			startedAt, completedAt sql.NullString
		)
		err := rows.Scan(&r.ID, &r.BusinessUnitID, &calcDate, &r.Cadence, &r.Status,
			&r.TotalAssets, &r.Successful, &r.Failed, &r.FullyDepreciated, &r.NoSetup,
			&totalAmount, &triggeredBy, &runErr, &startedAt, &completedAt, &createdAt)
		if err != nil {
			return nil, err
		}

		r.CalculationDate = parseDate(calcDate)
		r.TotalAmount = parseDecimal(totalAmount)
		r.TriggeredBy = triggeredBy.String
		r.Error = runErr.String
		r.StartedAt = parseNullDate(startedAt)
		r.CompletedAt = parseNullDate(completedAt)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// HasCompletedRun reports whether a completed run already exists for the
// business unit in the calendar month of calculationDate. The scheduler
// uses this to avoid double-posting a period.
func (s *Store) HasCompletedRun(ctx context.Context, bu string, calculationDate time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	monthPrefix := calculationDate.UTC().Format("2006-01")
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM depreciation_runs
		 WHERE business_unit_id = ? AND status = 'completed'
		   AND calculation_date LIKE ?`,
		bu, monthPrefix+"%",
	).Scan(&count)
	return count > 0, err
}

// =============================================================================
// DEV/TEST HELPERS
// =============================================================================

// Reset wipes all tables. Dev/demo only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"assets", "depreciation_records", "depreciation_runs", "audit_log"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(*t), Valid: true}
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseDate(v string) time.Time {
	t, _ := time.Parse(time.RFC3339, v)
	return t
}

func parseNullDate(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t := parseDate(v.String)
	return &t
}

func parseDecimal(v string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero
	}
	return d
}
