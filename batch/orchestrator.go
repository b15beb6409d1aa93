/*
orchestrator.go - Batch depreciation run

PURPOSE:
  Runs the eligibility -> calculate -> apply pipeline over every
  depreciable asset of one business unit and persists the run's writes as
  one atomic transaction.

ALGORITHM:
  1. Load active, not-fully-depreciated assets with a purchase price and
     start date set, matching the category filter.
  2. For each asset independently (optionally across a worker pool - the
     calculation steps are pure):
       - ineligible          -> SUCCESS detail, amount 0, with the reason
       - missing setup       -> NO_SETUP detail
       - zero amount + fully -> FULLY_DEPRECIATED detail
       - otherwise           -> apply updater, SUCCESS detail, stage one
                                record + one asset update + one audit entry
       - any unexpected error (including panics) -> FAILED detail; the
         batch continues
  3. Unless dry-run, commit all staged writes in one transaction.
     A commit failure is fatal for the whole run: nothing is partially
     written.
  4. Build the grouped summary and return the full result. Dry-run
     produces the identical result shape without writing anything.

CONCURRENCY:
  Only the calculation phase parallelizes; the persistence phase is one
  transaction. Concurrent runs over overlapping asset sets must be
  serialized by the caller (one run per business unit at a time).
*/
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rdrealty/asset-engine/depreciation"
)

// Orchestrator runs depreciation batches. Assets and Tx are required;
// Calc defaults to a bare calculator, Workers <= 1 means sequential.
type Orchestrator struct {
	Assets  depreciation.AssetRepository
	Tx      depreciation.TxRunner
	Calc    *depreciation.Calculator
	Workers int
	Log     zerolog.Logger

	// Now is a seam for tests; defaults to time.Now.
	Now func() time.Time
}

func NewOrchestrator(assets depreciation.AssetRepository, tx depreciation.TxRunner, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		Assets: assets,
		Tx:     tx,
		Calc:   &depreciation.Calculator{},
		Log:    log.With().Str("component", "batch").Logger(),
	}
}

// outcome pairs a per-asset detail with the writes it stages (nil for
// outcomes that post nothing).
type outcome struct {
	detail  Detail
	updated *depreciation.Asset
	record  *depreciation.Record
}

// Run executes one batch run. See the file comment for the algorithm.
func (o *Orchestrator) Run(ctx context.Context, in RunInput) (*Result, error) {
	if !in.Cadence.Valid() {
		return nil, fmt.Errorf("%w: %q", depreciation.ErrInvalidCadence, in.Cadence)
	}
	if !in.DryRun && in.Actor.ID == "" {
		return nil, depreciation.ErrActorRequired
	}

	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	calcDate := depreciation.Date(in.CalculationDate)
	if in.CalculationDate.IsZero() {
		calcDate = depreciation.Date(now().UTC())
	}

	assets, err := o.Assets.ListDepreciable(ctx, in.BusinessUnitID, in.Filter)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}

	o.Log.Info().
		Str("business_unit", string(in.BusinessUnitID)).
		Str("cadence", string(in.Cadence)).
		Time("calculation_date", calcDate).
		Bool("dry_run", in.DryRun).
		Int("assets", len(assets)).
		Msg("Starting depreciation run")

	outcomes := o.processAll(assets, in, calcDate)

	result := &Result{
		BusinessUnitID:    in.BusinessUnitID,
		CalculationDate:   calcDate,
		Cadence:           in.Cadence,
		DryRun:            in.DryRun,
		TotalAssets:       len(assets),
		TotalDepreciation: decimal.Zero,
	}

	var staged []outcome
	for _, out := range outcomes {
		result.Details = append(result.Details, out.detail)
		switch out.detail.Status {
		case StatusSuccess:
			result.Successful++
			result.TotalDepreciation = result.TotalDepreciation.Add(out.detail.Amount)
			if out.updated != nil {
				staged = append(staged, out)
			}
		case StatusFailed:
			result.Failed++
		case StatusFullyDepreciated:
			result.FullyDepreciated++
		case StatusNoSetup:
			result.NoSetup++
		}
	}

	if !in.DryRun && len(staged) > 0 {
		if err := o.persist(ctx, staged, in, now().UTC()); err != nil {
			return nil, fmt.Errorf("batch persistence failed: %w", err)
		}
	}

	result.Summary = Summarize(result.Details)

	o.Log.Info().
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("fully_depreciated", result.FullyDepreciated).
		Int("no_setup", result.NoSetup).
		Str("total", result.TotalDepreciation.StringFixed(2)).
		Bool("dry_run", in.DryRun).
		Msg("Depreciation run finished")

	return result, nil
}

// processAll evaluates every asset, fanning out across a worker pool when
// Workers > 1. Outcomes keep the input order regardless of worker timing.
func (o *Orchestrator) processAll(assets []depreciation.Asset, in RunInput, calcDate time.Time) []outcome {
	outcomes := make([]outcome, len(assets))

	workers := o.Workers
	if workers <= 1 || len(assets) <= 1 {
		for i, a := range assets {
			outcomes[i] = o.processAsset(a, in, calcDate)
		}
		return outcomes
	}
	if workers > len(assets) {
		workers = len(assets)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = o.processAsset(assets[i], in, calcDate)
			}
		}()
	}
	for i := range assets {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return outcomes
}

// processAsset runs steps eligibility -> calculate -> apply for one asset.
// Panics are contained here so a single bad asset never aborts the batch.
func (o *Orchestrator) processAsset(a depreciation.Asset, in RunInput, calcDate time.Time) (out outcome) {
	detail := Detail{
		AssetID:        a.ID,
		ItemCode:       a.ItemCode,
		Category:       a.Category,
		Method:         a.Method,
		Amount:         decimal.Zero,
		BookValueAfter: a.CurrentBookValue,
	}

	defer func() {
		if r := recover(); r != nil {
			detail.Status = StatusFailed
			detail.Error = fmt.Sprintf("panic: %v", r)
			o.Log.Error().Str("asset", string(a.ID)).Str("error", detail.Error).Msg("Asset processing panicked")
			out = outcome{detail: detail}
		}
	}()

	elig := depreciation.IsEligible(a, calcDate, in.Cadence)
	if !elig.Eligible {
		detail.Status = StatusSuccess
		detail.Reason = elig.Reason
		return outcome{detail: detail}
	}

	calc := o.Calc
	if calc == nil {
		calc = &depreciation.Calculator{}
	}

	res, err := calc.Calculate(a, calcDate, in.Cadence)
	if err != nil {
		if depreciation.IsNoSetup(err) {
			detail.Status = StatusNoSetup
			detail.Reason = err.Error()
			return outcome{detail: detail}
		}
		detail.Status = StatusFailed
		detail.Error = err.Error()
		o.Log.Warn().Str("asset", string(a.ID)).Err(err).Msg("Asset calculation failed")
		return outcome{detail: detail}
	}

	if res.Amount.IsZero() {
		if res.FullyDepreciated {
			detail.Status = StatusFullyDepreciated
			detail.Reason = depreciation.ReasonFullyDepreciated
		} else {
			detail.Status = StatusSuccess
			detail.Reason = "no depreciation due"
		}
		return outcome{detail: detail}
	}

	updated, err := depreciation.Apply(a, res, calcDate)
	if err != nil {
		detail.Status = StatusFailed
		detail.Error = err.Error()
		o.Log.Error().Str("asset", string(a.ID)).Err(err).Msg("Book value update rejected")
		return outcome{detail: detail}
	}

	record := depreciation.Record{
		ID:               uuid.NewString(),
		AssetID:          a.ID,
		DepreciationDate: calcDate,
		PeriodStart:      res.PeriodStart,
		PeriodEnd:        res.PeriodEnd,
		BookValueBefore:  res.BookValueStart,
		BookValueAfter:   res.BookValueEnd,
		Amount:           res.Amount,
		AccumulatedAfter: res.NewAccumulated,
		Method:           a.Method,
		TriggeredBy:      in.Actor.ID,
		Note:             in.Note,
	}

	detail.Status = StatusSuccess
	detail.Amount = res.Amount
	detail.BookValueAfter = res.BookValueEnd
	detail.Reason = elig.Reason
	return outcome{detail: detail, updated: &updated, record: &record}
}

// persist commits every staged write in one transaction: asset update,
// depreciation record and audit entry per successful asset, all-or-nothing
// for the whole batch.
func (o *Orchestrator) persist(ctx context.Context, staged []outcome, in RunInput, now time.Time) error {
	return o.Tx.WithTx(ctx, func(w depreciation.Writer) error {
		for _, out := range staged {
			if err := w.UpdateFinancials(ctx, *out.updated); err != nil {
				return err
			}
			rec := *out.record
			rec.CreatedAt = now
			if err := w.AppendRecord(ctx, rec); err != nil {
				return err
			}
			entry := depreciation.AuditEntry{
				ID:        uuid.NewString(),
				Timestamp: now,
				ActorID:   in.Actor.ID,
				Action:    depreciation.AuditDepreciationPosted,
				AssetID:   out.updated.ID,
				Detail: fmt.Sprintf("%s depreciation %s posted, book value %s",
					out.record.Method, out.record.Amount.StringFixed(2),
					out.record.BookValueAfter.StringFixed(2)),
			}
			if err := w.AppendAudit(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
}
