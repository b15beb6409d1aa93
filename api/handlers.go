/*
handlers.go - HTTP handlers for the depreciation engine API

PURPOSE:
  Implements the REST endpoints: asset registration and lookup, batch run
  triggering (dry-run and committed), run history, depreciation records,
  projected schedules, the audit trail, and demo scenario loading.

ENDPOINTS:
  Assets:
    GET    /api/assets                    - list assets (optionally by business unit)
    POST   /api/assets                    - register an asset with a depreciation profile
    GET    /api/assets/{id}               - single asset
    GET    /api/assets/{id}/records       - posted depreciation records
    GET    /api/assets/{id}/schedule      - projected future schedule
    GET    /api/assets/{id}/audit         - audit trail

  Depreciation:
    POST   /api/depreciation/run          - trigger a batch run
    GET    /api/depreciation/runs         - persisted run history
    GET    /api/records                   - recent records across all assets

  Admin:
    GET    /api/scenarios                 - list demo scenarios
    POST   /api/scenarios/load            - load a demo scenario
    POST   /api/admin/reset               - wipe the database

AUTHORIZATION:
  Committed runs (dry_run=false) require an X-Actor-ID header and an
  X-Actor-Role of admin, controller or system. Dry runs only need the
  headers when the caller wants attribution in logs.

ERROR MAPPING:
  Domain client errors (unknown method, invalid cadence, missing setup,
  missing actor) map to 400; everything else unexpected maps to 500.

SEE ALSO:
  - dto.go: Request/response types
  - server.go: Route registration
  - batch/orchestrator.go: The run implementation behind TriggerRun
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rdrealty/asset-engine/batch"
	"github.com/rdrealty/asset-engine/depreciation"
	"github.com/rdrealty/asset-engine/factory"
	"github.com/rdrealty/asset-engine/store/sqlite"
)

// Roles allowed to commit a batch run. Dry runs are open to anyone.
var elevatedRoles = map[string]bool{
	"admin":      true,
	"controller": true,
	"system":     true,
}

// Handler holds the dependencies for all API endpoints.
type Handler struct {
	Store *sqlite.Store
	Orch  *batch.Orchestrator
	Log   zerolog.Logger
}

// NewHandler creates a handler wired to the given store.
func NewHandler(store *sqlite.Store, log zerolog.Logger) *Handler {
	orch := batch.NewOrchestrator(store, store, log)
	orch.Workers = 4
	return &Handler{
		Store: store,
		Orch:  orch,
		Log:   log.With().Str("component", "api").Logger(),
	}
}

// =============================================================================
// ASSET HANDLERS
// =============================================================================

// ListAssets returns assets, optionally scoped to one business unit.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	bu := r.URL.Query().Get("business_unit")

	var units []depreciation.BusinessUnitID
	if bu != "" {
		units = []depreciation.BusinessUnitID{depreciation.BusinessUnitID(bu)}
	} else {
		var err error
		units, err = h.Store.ListBusinessUnits(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list business units", err)
			return
		}
	}

	dtos := []AssetDTO{}
	for _, unit := range units {
		assets, err := h.Store.ListByBusinessUnit(r.Context(), unit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list assets", err)
			return
		}
		for _, a := range assets {
			dtos = append(dtos, toAssetDTO(a))
		}
	}

	writeJSON(w, http.StatusOK, dtos)
}

// CreateAsset registers a new asset with a depreciation profile.
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ItemCode == "" || req.BusinessUnitID == "" {
		writeError(w, http.StatusBadRequest, "item_code and business_unit_id are required", nil)
		return
	}

	price, err := decimal.NewFromString(req.PurchasePrice)
	if err != nil || price.IsNegative() {
		writeError(w, http.StatusBadRequest, "Invalid purchase_price", err)
		return
	}
	startDate, err := time.Parse("2006-01-02", req.DepreciationStartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid depreciation_start_date, expected YYYY-MM-DD", err)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	asset := depreciation.Asset{
		ID:                    depreciation.AssetID(id),
		ItemCode:              req.ItemCode,
		Description:           req.Description,
		Category:              req.Category,
		BusinessUnitID:        depreciation.BusinessUnitID(req.BusinessUnitID),
		Active:                true,
		PurchasePrice:         price,
		DepreciationStartDate: depreciation.Date(startDate),
	}
	if err := factory.ApplyProfile(&asset, req.Profile); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid depreciation profile", err)
		return
	}

	if err := h.Store.Save(r.Context(), asset); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save asset", err)
		return
	}

	actor := actorFromRequest(r)
	_ = h.Store.AppendAudit(r.Context(), depreciation.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		ActorID:   actor.ID,
		Action:    depreciation.AuditAssetCreated,
		AssetID:   asset.ID,
		Detail:    "asset registered with method " + asset.Method.Code(),
	})

	writeJSON(w, http.StatusCreated, toAssetDTO(asset))
}

// GetAsset returns a single asset.
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	asset, err := h.Store.Get(r.Context(), depreciation.AssetID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get asset", err)
		return
	}
	if asset == nil {
		writeError(w, http.StatusNotFound, "Asset not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toAssetDTO(*asset))
}

// GetAssetRecords returns an asset's posted depreciation records.
func (h *Handler) GetAssetRecords(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	records, err := h.Store.RecordsByAsset(r.Context(), depreciation.AssetID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	dtos := make([]RecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAssetSchedule projects an asset's future depreciation schedule.
// Query params: cadence (default MONTHLY), periods (default 60).
func (h *Handler) GetAssetSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	asset, err := h.Store.Get(r.Context(), depreciation.AssetID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get asset", err)
		return
	}
	if asset == nil {
		writeError(w, http.StatusNotFound, "Asset not found", nil)
		return
	}

	cadence := depreciation.Monthly
	if v := r.URL.Query().Get("cadence"); v != "" {
		cadence = depreciation.Cadence(v)
	}
	periods := 60
	if v := r.URL.Query().Get("periods"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			periods = n
		}
	}

	entries, err := depreciation.ProjectSchedule(*asset, cadence, periods)
	if err != nil {
		status := http.StatusInternalServerError
		if depreciation.IsClientError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Failed to project schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, toScheduleDTO(entries))
}

// GetAssetAudit returns an asset's audit trail.
func (h *Handler) GetAssetAudit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entries, err := h.Store.AuditByAsset(r.Context(), depreciation.AssetID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list audit entries", err)
		return
	}

	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toAuditDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// TriggerRun executes a batch depreciation run.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.BusinessUnitID == "" {
		writeError(w, http.StatusBadRequest, "business_unit_id is required", nil)
		return
	}

	actor := actorFromRequest(r)
	if !req.DryRun {
		if actor.ID == "" {
			writeError(w, http.StatusBadRequest, "X-Actor-ID header is required for committed runs", nil)
			return
		}
		if !elevatedRoles[actor.Role] {
			writeError(w, http.StatusForbidden, "Role not permitted to commit depreciation runs", nil)
			return
		}
	}

	in := batch.RunInput{
		BusinessUnitID: depreciation.BusinessUnitID(req.BusinessUnitID),
		Cadence:        depreciation.Monthly,
		Filter: depreciation.AssetFilter{
			IncludeCategories: req.IncludeCategories,
			ExcludeCategories: req.ExcludeCategories,
		},
		DryRun: req.DryRun,
		Actor:  actor,
		Note:   req.Note,
	}
	if req.Cadence != "" {
		in.Cadence = depreciation.Cadence(req.Cadence)
	}
	if req.CalculationDate != "" {
		d, err := time.Parse("2006-01-02", req.CalculationDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid calculation_date, expected YYYY-MM-DD", err)
			return
		}
		in.CalculationDate = depreciation.Date(d)
	}

	started := time.Now().UTC()
	result, err := h.Orch.Run(r.Context(), in)
	if err != nil {
		if !req.DryRun {
			h.saveRunRecord(r, in, nil, started, err)
		}
		status := http.StatusInternalServerError
		if depreciation.IsClientError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Depreciation run failed", err)
		return
	}

	if !req.DryRun {
		h.saveRunRecord(r, in, result, started, nil)
	}

	writeJSON(w, http.StatusOK, toRunResultDTO(result))
}

// saveRunRecord persists the run history entry for a committed run.
// History persistence is best effort; a failure here never fails the run.
func (h *Handler) saveRunRecord(r *http.Request, in batch.RunInput, result *batch.Result, started time.Time, runErr error) {
	completed := time.Now().UTC()
	rec := sqlite.RunRecord{
		ID:             uuid.NewString(),
		BusinessUnitID: string(in.BusinessUnitID),
		Cadence:        string(in.Cadence),
		TriggeredBy:    in.Actor.ID,
		StartedAt:      &started,
		CompletedAt:    &completed,
	}
	switch {
	case runErr != nil:
		rec.Status = "failed"
		rec.Error = runErr.Error()
		rec.CalculationDate = in.CalculationDate
		if rec.CalculationDate.IsZero() {
			rec.CalculationDate = depreciation.Date(started)
		}
	default:
		rec.Status = "completed"
		rec.CalculationDate = result.CalculationDate
		rec.TotalAssets = result.TotalAssets
		rec.Successful = result.Successful
		rec.Failed = result.Failed
		rec.FullyDepreciated = result.FullyDepreciated
		rec.NoSetup = result.NoSetup
		rec.TotalAmount = result.TotalDepreciation
	}
	if err := h.Store.SaveRun(r.Context(), rec); err != nil {
		h.Log.Error().Err(err).Str("business_unit", rec.BusinessUnitID).Msg("failed to save run record")
	}
	_ = h.Store.AppendAudit(r.Context(), depreciation.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: completed,
		ActorID:   in.Actor.ID,
		Action:    depreciation.AuditBatchRunCompleted,
		Detail: fmt.Sprintf("%s run for %s: %s, total %s",
			rec.Cadence, rec.BusinessUnitID, rec.Status, rec.TotalAmount.StringFixed(2)),
	})
}

// ListRuns returns the persisted run history, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	bu := r.URL.Query().Get("business_unit")
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.Store.ListRuns(r.Context(), bu, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListRecords returns recent depreciation records across all assets.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.Store.ListRecords(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	dtos := make([]RecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarioList())
}

// LoadScenario resets the database and loads a demo scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	assets, ok := scenarioAssets(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario", nil)
		return
	}

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	for _, a := range assets {
		if err := h.Store.Save(r.Context(), a); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
			return
		}
	}

	h.Log.Info().Str("scenario", req.ScenarioID).Int("assets", len(assets)).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]any{
		"scenario_id": req.ScenarioID,
		"assets":      len(assets),
	})
}

// ResetDatabase wipes all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func actorFromRequest(r *http.Request) batch.Actor {
	return batch.Actor{
		ID:   r.Header.Get("X-Actor-ID"),
		Role: r.Header.Get("X-Actor-Role"),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
