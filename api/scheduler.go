/*
scheduler.go - Automated depreciation run scheduler

PURPOSE:
  Runs the monthly depreciation batch automatically for every business
  unit with registered assets, on a cron schedule.

DESIGN:
  - cron (robfig/cron) drives the schedule; the default expression fires
    at 02:00 on the first of each month
  - Each firing walks all business units, skips units that already have a
    completed run for the calculation month, and commits the rest
  - Scheduled runs are attributed to the "system" actor and persisted to
    run history like manual committed runs

CONFIGURATION:
  - CronExpr: cron expression (default: "0 2 1 * *")
  - Enabled:  whether the scheduler starts (default: true)

USAGE:
  sched := NewRunScheduler(store, handler, logger)
  sched.Start()
  // ... later
  sched.Stop()

SEE ALSO:
  - handlers.go: TriggerRun endpoint (manual runs)
  - batch/orchestrator.go: The run implementation
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/rdrealty/asset-engine/batch"
	"github.com/rdrealty/asset-engine/depreciation"
	"github.com/rdrealty/asset-engine/store/sqlite"
)

const defaultRunCron = "0 2 1 * *"

// SchedulerActorID attributes automated runs in records and audit entries.
const SchedulerActorID = "system"

// RunScheduler triggers monthly depreciation runs automatically.
type RunScheduler struct {
	Store    *sqlite.Store
	Handler  *Handler
	CronExpr string
	Enabled  bool
	Log      zerolog.Logger

	cron *cron.Cron
}

// NewRunScheduler creates a scheduler with the default monthly schedule.
func NewRunScheduler(store *sqlite.Store, handler *Handler, log zerolog.Logger) *RunScheduler {
	return &RunScheduler{
		Store:    store,
		Handler:  handler,
		CronExpr: defaultRunCron,
		Enabled:  true,
		Log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the cron job and begins the schedule.
func (s *RunScheduler) Start() error {
	if !s.Enabled {
		s.Log.Info().Msg("scheduler disabled, not starting")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.CronExpr, s.RunNow); err != nil {
		return err
	}
	s.cron.Start()

	s.Log.Info().Str("cron", s.CronExpr).Msg("scheduler started")
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *RunScheduler) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.Log.Info().Msg("scheduler stopped")
}

// RunNow executes the scheduled sweep immediately (also used by cron).
func (s *RunScheduler) RunNow() {
	ctx := context.Background()
	calcDate := depreciation.Date(time.Now().UTC())

	units, err := s.Store.ListBusinessUnits(ctx)
	if err != nil {
		s.Log.Error().Err(err).Msg("failed to list business units")
		return
	}

	processed := 0
	skipped := 0
	for _, unit := range units {
		done, err := s.Store.HasCompletedRun(ctx, string(unit), calcDate)
		if err != nil {
			s.Log.Error().Err(err).Str("business_unit", string(unit)).Msg("failed to check run history")
			continue
		}
		if done {
			skipped++
			continue
		}

		if err := s.runUnit(ctx, unit, calcDate); err != nil {
			s.Log.Error().Err(err).Str("business_unit", string(unit)).Msg("scheduled run failed")
			continue
		}
		processed++
	}

	if processed > 0 || skipped > 0 {
		s.Log.Info().Int("processed", processed).Int("skipped", skipped).Msg("scheduled sweep completed")
	}
}

func (s *RunScheduler) runUnit(ctx context.Context, unit depreciation.BusinessUnitID, calcDate time.Time) error {
	started := time.Now().UTC()
	in := batch.RunInput{
		BusinessUnitID:  unit,
		CalculationDate: calcDate,
		Cadence:         depreciation.Monthly,
		Actor:           batch.Actor{ID: SchedulerActorID, Role: "system"},
		Note:            "scheduled monthly run",
	}

	result, err := s.Handler.Orch.Run(ctx, in)

	completed := time.Now().UTC()
	rec := sqlite.RunRecord{
		ID:              uuid.NewString(),
		BusinessUnitID:  string(unit),
		CalculationDate: calcDate,
		Cadence:         string(in.Cadence),
		TriggeredBy:     SchedulerActorID,
		StartedAt:       &started,
		CompletedAt:     &completed,
	}
	if err != nil {
		rec.Status = "failed"
		rec.Error = err.Error()
	} else {
		rec.Status = "completed"
		rec.TotalAssets = result.TotalAssets
		rec.Successful = result.Successful
		rec.Failed = result.Failed
		rec.FullyDepreciated = result.FullyDepreciated
		rec.NoSetup = result.NoSetup
		rec.TotalAmount = result.TotalDepreciation
	}
	if saveErr := s.Store.SaveRun(ctx, rec); saveErr != nil {
		s.Log.Error().Err(saveErr).Str("business_unit", rec.BusinessUnitID).Msg("failed to save run record")
	}
	_ = s.Store.AppendAudit(ctx, depreciation.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: completed,
		ActorID:   SchedulerActorID,
		Action:    depreciation.AuditBatchRunCompleted,
		Detail: fmt.Sprintf("scheduled %s run for %s: %s",
			rec.Cadence, rec.BusinessUnitID, rec.Status),
	})

	return err
}
