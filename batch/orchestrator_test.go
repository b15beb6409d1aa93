package batch_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdrealty/asset-engine/batch"
	"github.com/rdrealty/asset-engine/depreciation"
	"github.com/rdrealty/asset-engine/depreciation/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestOrchestrator(t *testing.T) (*batch.Orchestrator, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	orch := batch.NewOrchestrator(mem, mem, zerolog.Nop())
	return orch, mem
}

func slAsset(id, itemCode, category string, monthly int64) depreciation.Asset {
	return depreciation.Asset{
		ID:                    depreciation.AssetID(id),
		ItemCode:              itemCode,
		Category:              category,
		BusinessUnitID:        "bu-hq",
		Active:                true,
		PurchasePrice:         decimal.NewFromInt(monthly * 36),
		CurrentBookValue:      decimal.NewFromInt(monthly * 36),
		Method:                depreciation.StraightLine,
		MonthlyDepreciation:   decimal.NewFromInt(monthly),
		UsefulLifeMonths:      36,
		DepreciationStartDate: depreciation.NewDate(2025, time.January, 1),
	}
}

func runInput(dryRun bool) batch.RunInput {
	return batch.RunInput{
		BusinessUnitID:  "bu-hq",
		CalculationDate: depreciation.NewDate(2025, time.September, 1),
		Cadence:         depreciation.Monthly,
		DryRun:          dryRun,
		Actor:           batch.Actor{ID: "controller-1", Role: "controller"},
	}
}

func saveAll(t *testing.T, mem *store.Memory, assets ...depreciation.Asset) {
	t.Helper()
	for _, a := range assets {
		require.NoError(t, mem.Save(context.Background(), a))
	}
}

// =============================================================================
// COMMITTED RUNS
// =============================================================================

func TestRun_PostsRecordsAndUpdatesAssets(t *testing.T) {
	// GIVEN: Two eligible straight-line assets
	// WHEN: Running a committed monthly batch
	// THEN: Each gets one record, updated book state and an audit entry

	orch, mem := newTestOrchestrator(t)
	saveAll(t, mem, slAsset("a1", "LAP-0001", "IT Equipment", 100), slAsset("a2", "LAP-0002", "IT Equipment", 200))

	result, err := orch.Run(context.Background(), runInput(false))
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalAssets)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.True(t, result.TotalDepreciation.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 2, mem.RecordCount())

	a1, err := mem.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, a1.CurrentBookValue.Equal(decimal.NewFromInt(3500)))
	assert.True(t, a1.AccumulatedDepreciation.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, a1.LastDepreciationDate)
	assert.Equal(t, depreciation.NewDate(2025, time.September, 1), *a1.LastDepreciationDate)

	audit, err := mem.AuditByAsset(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, depreciation.AuditDepreciationPosted, audit[0].Action)
	assert.Equal(t, "controller-1", audit[0].ActorID)

	records, err := mem.RecordsByAsset(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, records[0].AccumulatedAfter.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "controller-1", records[0].TriggeredBy)
}

func TestRun_MixedOutcomes(t *testing.T) {
	// GIVEN: One healthy asset, one with no setup, one corrupt, one at the
	//        salvage floor without its flag set
	// WHEN: Running the batch
	// THEN: Every status appears once and the healthy posting still commits

	orch, mem := newTestOrchestrator(t)

	healthy := slAsset("ok", "OK-0001", "IT Equipment", 100)

	noSetup := slAsset("nosetup", "NS-0001", "Furniture", 100)
	noSetup.MonthlyDepreciation = decimal.Zero

	corrupt := slAsset("corrupt", "XX-0001", "Furniture", 100)
	corrupt.SalvageValue = decimal.NewFromInt(500)
	corrupt.CurrentBookValue = decimal.NewFromInt(400)
	corrupt.AccumulatedDepreciation = corrupt.PurchasePrice.Sub(corrupt.CurrentBookValue)

	atFloor := slAsset("floor", "FL-0001", "IT Equipment", 100)
	atFloor.SalvageValue = decimal.NewFromInt(600)
	atFloor.CurrentBookValue = decimal.NewFromInt(600)
	atFloor.AccumulatedDepreciation = atFloor.PurchasePrice.Sub(atFloor.CurrentBookValue)

	saveAll(t, mem, healthy, noSetup, corrupt, atFloor)

	result, err := orch.Run(context.Background(), runInput(false))
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalAssets)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.NoSetup)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.FullyDepreciated)

	// One bad asset never aborts the batch; the healthy one posted.
	assert.Equal(t, 1, mem.RecordCount())
	assert.True(t, result.TotalDepreciation.Equal(decimal.NewFromInt(100)))

	byID := make(map[depreciation.AssetID]batch.Detail)
	for _, d := range result.Details {
		byID[d.AssetID] = d
	}
	assert.Equal(t, batch.StatusSuccess, byID["ok"].Status)
	assert.Equal(t, batch.StatusNoSetup, byID["nosetup"].Status)
	assert.Equal(t, batch.StatusFailed, byID["corrupt"].Status)
	assert.NotEmpty(t, byID["corrupt"].Error)
	assert.Equal(t, batch.StatusFullyDepreciated, byID["floor"].Status)
}

func TestRun_IneligibleAssetIsSuccessWithZeroAmount(t *testing.T) {
	orch, mem := newTestOrchestrator(t)

	notDue := slAsset("notdue", "ND-0001", "IT Equipment", 100)
	last := depreciation.NewDate(2025, time.August, 15)
	next := depreciation.NewDate(2025, time.October, 1)
	notDue.CurrentBookValue = decimal.NewFromInt(2800)
	notDue.AccumulatedDepreciation = decimal.NewFromInt(800)
	notDue.LastDepreciationDate = &last
	notDue.NextDepreciationDate = &next

	saveAll(t, mem, notDue)

	result, err := orch.Run(context.Background(), runInput(false))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Successful)
	require.Len(t, result.Details, 1)
	assert.True(t, result.Details[0].Amount.IsZero())
	assert.Equal(t, depreciation.ReasonNotDueYet, result.Details[0].Reason)
	assert.Equal(t, 0, mem.RecordCount(), "an ineligible asset posts nothing")
}

// =============================================================================
// DRY RUN
// =============================================================================

func TestRun_DryRunWritesNothing(t *testing.T) {
	// GIVEN: Eligible assets
	// WHEN: Running with DryRun set
	// THEN: The result is fully populated but no state changes

	orch, mem := newTestOrchestrator(t)
	saveAll(t, mem, slAsset("a1", "LAP-0001", "IT Equipment", 100))

	result, err := orch.Run(context.Background(), runInput(true))
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Successful)
	assert.True(t, result.TotalDepreciation.Equal(decimal.NewFromInt(100)))

	assert.Equal(t, 0, mem.RecordCount())
	a1, err := mem.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, a1.CurrentBookValue.Equal(decimal.NewFromInt(3600)), "book value untouched by dry run")
	assert.Nil(t, a1.LastDepreciationDate)
}

func TestRun_DryRunMatchesCommittedAmounts(t *testing.T) {
	orch, mem := newTestOrchestrator(t)
	saveAll(t, mem, slAsset("a1", "LAP-0001", "IT Equipment", 100), slAsset("a2", "LAP-0002", "Vehicles", 450))

	dry, err := orch.Run(context.Background(), runInput(true))
	require.NoError(t, err)
	committed, err := orch.Run(context.Background(), runInput(false))
	require.NoError(t, err)

	assert.True(t, dry.TotalDepreciation.Equal(committed.TotalDepreciation))
	require.Equal(t, len(dry.Details), len(committed.Details))
	for i := range dry.Details {
		assert.True(t, dry.Details[i].Amount.Equal(committed.Details[i].Amount))
	}
}

// =============================================================================
// IDEMPOTENCE
// =============================================================================

func TestRun_SecondRunSameDatePostsNothing(t *testing.T) {
	// GIVEN: A committed run for September 1
	// WHEN: Running again for the same date
	// THEN: Zero additional depreciation; assets became ineligible

	orch, mem := newTestOrchestrator(t)
	saveAll(t, mem, slAsset("a1", "LAP-0001", "IT Equipment", 100))

	first, err := orch.Run(context.Background(), runInput(false))
	require.NoError(t, err)
	require.True(t, first.TotalDepreciation.Equal(decimal.NewFromInt(100)))

	second, err := orch.Run(context.Background(), runInput(false))
	require.NoError(t, err)

	assert.True(t, second.TotalDepreciation.IsZero())
	assert.Equal(t, 1, second.Successful, "ineligible is still SUCCESS with amount zero")
	assert.Equal(t, 1, mem.RecordCount(), "no second record for the same period")
}

// =============================================================================
// ATOMICITY
// =============================================================================

// failingTx simulates a storage engine whose commit always fails.
type failingTx struct{}

func (failingTx) WithTx(ctx context.Context, fn func(depreciation.Writer) error) error {
	return errors.New("disk full")
}

func TestRun_PersistenceFailureFailsWholeRun(t *testing.T) {
	mem := store.NewMemory()
	orch := batch.NewOrchestrator(mem, failingTx{}, zerolog.Nop())
	saveAll(t, mem, slAsset("a1", "LAP-0001", "IT Equipment", 100))

	_, err := orch.Run(context.Background(), runInput(false))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch persistence failed")
	assert.Equal(t, 0, mem.RecordCount())
}

func TestRun_WriterErrorRollsBackEverything(t *testing.T) {
	// The in-memory store rolls back to its snapshot when the transaction
	// callback fails part-way through.

	mem := store.NewMemory()
	calls := 0
	tx := txFunc(func(ctx context.Context, fn func(depreciation.Writer) error) error {
		calls++
		return mem.WithTx(ctx, func(w depreciation.Writer) error {
			if err := fn(w); err != nil {
				return err
			}
			return errors.New("constraint violated")
		})
	})
	orch := batch.NewOrchestrator(mem, tx, zerolog.Nop())
	saveAll(t, mem, slAsset("a1", "LAP-0001", "IT Equipment", 100), slAsset("a2", "LAP-0002", "IT Equipment", 200))

	_, err := orch.Run(context.Background(), runInput(false))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, mem.RecordCount())
	a1, getErr := mem.Get(context.Background(), "a1")
	require.NoError(t, getErr)
	assert.True(t, a1.CurrentBookValue.Equal(decimal.NewFromInt(3600)), "asset update rolled back")
}

type txFunc func(ctx context.Context, fn func(depreciation.Writer) error) error

func (f txFunc) WithTx(ctx context.Context, fn func(depreciation.Writer) error) error {
	return f(ctx, fn)
}

// =============================================================================
// INPUT VALIDATION
// =============================================================================

func TestRun_CommittedRunRequiresActor(t *testing.T) {
	orch, mem := newTestOrchestrator(t)
	saveAll(t, mem, slAsset("a1", "LAP-0001", "IT Equipment", 100))

	in := runInput(false)
	in.Actor = batch.Actor{}

	_, err := orch.Run(context.Background(), in)

	assert.ErrorIs(t, err, depreciation.ErrActorRequired)
}

func TestRun_DryRunNeedsNoActor(t *testing.T) {
	orch, mem := newTestOrchestrator(t)
	saveAll(t, mem, slAsset("a1", "LAP-0001", "IT Equipment", 100))

	in := runInput(true)
	in.Actor = batch.Actor{}

	result, err := orch.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Successful)
}

func TestRun_InvalidCadence(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	in := runInput(false)
	in.Cadence = depreciation.Cadence("WEEKLY")

	_, err := orch.Run(context.Background(), in)

	assert.ErrorIs(t, err, depreciation.ErrInvalidCadence)
}

// =============================================================================
// FILTERS AND ORDERING
// =============================================================================

func TestRun_CategoryFilter(t *testing.T) {
	orch, mem := newTestOrchestrator(t)
	saveAll(t, mem,
		slAsset("it1", "LAP-0001", "IT Equipment", 100),
		slAsset("veh1", "VAN-0001", "Vehicles", 450),
		slAsset("fur1", "CHR-0001", "Furniture", 50),
	)

	in := runInput(false)
	in.Filter = depreciation.AssetFilter{ExcludeCategories: []string{"Vehicles"}}

	result, err := orch.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalAssets)
	assert.True(t, result.TotalDepreciation.Equal(decimal.NewFromInt(150)))
}

func TestRun_WorkerPoolPreservesOrder(t *testing.T) {
	// Details come back in the repository's listing order (item code) no
	// matter how the pool schedules the work.

	orch, mem := newTestOrchestrator(t)
	orch.Workers = 8

	var codes []string
	for i := 0; i < 40; i++ {
		code := fmt.Sprintf("AST-%04d", i)
		codes = append(codes, code)
		saveAll(t, mem, slAsset(code, code, "IT Equipment", 10))
	}

	result, err := orch.Run(context.Background(), runInput(false))
	require.NoError(t, err)

	require.Len(t, result.Details, 40)
	for i, d := range result.Details {
		assert.Equal(t, codes[i], d.ItemCode)
	}
	assert.True(t, result.TotalDepreciation.Equal(decimal.NewFromInt(400)))
}
