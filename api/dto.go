/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific formatting (monetary values as 2dp strings, dates as ISO)
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Asset:
    AssetDTO, CreateAssetRequest

  Run:
    RunRequest, RunResultDTO, DetailDTO, SummaryDTO, GroupTotalDTO, RunDTO

  Ledger:
    RecordDTO, AuditEntryDTO

  Schedule:
    ScheduleEntryDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

MONEY FORMATTING:
  All monetary fields are strings rounded to two decimals at this boundary.
  Internal state keeps full decimal precision; only the JSON edge rounds.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/profile.go: ProfileJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rdrealty/asset-engine/batch"
	"github.com/rdrealty/asset-engine/depreciation"
	"github.com/rdrealty/asset-engine/factory"
	"github.com/rdrealty/asset-engine/store/sqlite"
)

// =============================================================================
// ASSET TYPES
// =============================================================================

// AssetDTO represents an asset's depreciation state in API responses.
type AssetDTO struct {
	ID             string `json:"id"`
	ItemCode       string `json:"item_code"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	BusinessUnitID string `json:"business_unit_id"`
	Active         bool   `json:"active"`

	PurchasePrice           string `json:"purchase_price"`
	SalvageValue            string `json:"salvage_value"`
	CurrentBookValue        string `json:"current_book_value"`
	AccumulatedDepreciation string `json:"accumulated_depreciation"`

	Method              string `json:"method"`
	MonthlyDepreciation string `json:"monthly_depreciation,omitempty"`
	AnnualRatePercent   string `json:"annual_rate_percent,omitempty"`
	DepreciationPerUnit string `json:"depreciation_per_unit,omitempty"`
	TotalExpectedUnits  string `json:"total_expected_units,omitempty"`
	UsefulLifeMonths    int    `json:"useful_life_months,omitempty"`

	DepreciationStartDate string  `json:"depreciation_start_date"`
	LastDepreciationDate  *string `json:"last_depreciation_date,omitempty"`
	NextDepreciationDate  *string `json:"next_depreciation_date,omitempty"`
	FullyDepreciated      bool    `json:"fully_depreciated"`
}

// CreateAssetRequest registers an asset for depreciation. The profile
// follows the factory JSON schema; the purchase price and start date live
// outside the profile because they are per-asset facts, not method config.
type CreateAssetRequest struct {
	ID                    string              `json:"id,omitempty"`
	ItemCode              string              `json:"item_code"`
	Description           string              `json:"description"`
	Category              string              `json:"category"`
	BusinessUnitID        string              `json:"business_unit_id"`
	PurchasePrice         string              `json:"purchase_price"`
	DepreciationStartDate string              `json:"depreciation_start_date"` // YYYY-MM-DD
	Profile               factory.ProfileJSON `json:"profile"`
}

// =============================================================================
// RUN TYPES
// =============================================================================

// RunRequest triggers a batch depreciation run.
type RunRequest struct {
	BusinessUnitID    string   `json:"business_unit_id"`
	CalculationDate   string   `json:"calculation_date,omitempty"` // YYYY-MM-DD, default today
	Cadence           string   `json:"cadence,omitempty"`          // default MONTHLY
	IncludeCategories []string `json:"include_categories,omitempty"`
	ExcludeCategories []string `json:"exclude_categories,omitempty"`
	DryRun            bool     `json:"dry_run"`
	Note              string   `json:"note,omitempty"`
}

// DetailDTO is one asset's outcome within a run.
type DetailDTO struct {
	AssetID        string `json:"asset_id"`
	ItemCode       string `json:"item_code"`
	Category       string `json:"category"`
	Method         string `json:"method"`
	Status         string `json:"status"`
	Amount         string `json:"amount"`
	BookValueAfter string `json:"book_value_after"`
	Reason         string `json:"reason,omitempty"`
	Error          string `json:"error,omitempty"`
}

// GroupTotalDTO is one summary bucket.
type GroupTotalDTO struct {
	Key    string `json:"key"`
	Count  int    `json:"count"`
	Amount string `json:"amount"`
}

// SummaryDTO groups successful depreciation by category and method.
type SummaryDTO struct {
	ByCategory []GroupTotalDTO `json:"by_category"`
	ByMethod   []GroupTotalDTO `json:"by_method"`
}

// RunResultDTO is the full outcome of a batch run.
type RunResultDTO struct {
	BusinessUnitID   string      `json:"business_unit_id"`
	CalculationDate  string      `json:"calculation_date"`
	Cadence          string      `json:"cadence"`
	DryRun           bool        `json:"dry_run"`
	TotalAssets      int         `json:"total_assets"`
	Successful       int         `json:"successful"`
	Failed           int         `json:"failed"`
	FullyDepreciated int         `json:"fully_depreciated"`
	NoSetup          int         `json:"no_setup"`
	TotalAmount      string      `json:"total_amount"`
	Details          []DetailDTO `json:"details"`
	Summary          SummaryDTO  `json:"summary"`
}

// RunDTO is a persisted run history entry.
type RunDTO struct {
	ID               string  `json:"id"`
	BusinessUnitID   string  `json:"business_unit_id"`
	CalculationDate  string  `json:"calculation_date"`
	Cadence          string  `json:"cadence"`
	Status           string  `json:"status"`
	TotalAssets      int     `json:"total_assets"`
	Successful       int     `json:"successful"`
	Failed           int     `json:"failed"`
	FullyDepreciated int     `json:"fully_depreciated"`
	NoSetup          int     `json:"no_setup"`
	TotalAmount      string  `json:"total_amount"`
	TriggeredBy      string  `json:"triggered_by"`
	Error            string  `json:"error,omitempty"`
	StartedAt        *string `json:"started_at,omitempty"`
	CompletedAt      *string `json:"completed_at,omitempty"`
}

// =============================================================================
// LEDGER TYPES
// =============================================================================

// RecordDTO is one posted depreciation record.
type RecordDTO struct {
	ID               string `json:"id"`
	AssetID          string `json:"asset_id"`
	DepreciationDate string `json:"depreciation_date"`
	PeriodStart      string `json:"period_start"`
	PeriodEnd        string `json:"period_end"`
	BookValueBefore  string `json:"book_value_before"`
	BookValueAfter   string `json:"book_value_after"`
	Amount           string `json:"amount"`
	AccumulatedAfter string `json:"accumulated_after"`
	Method           string `json:"method"`
	TriggeredBy      string `json:"triggered_by,omitempty"`
	Note             string `json:"note,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// AuditEntryDTO is one audit log entry.
type AuditEntryDTO struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id"`
	Action    string `json:"action"`
	AssetID   string `json:"asset_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// =============================================================================
// SCHEDULE TYPES
// =============================================================================

// ScheduleEntryDTO is one projected future posting.
type ScheduleEntryDTO struct {
	Date             string `json:"date"`
	PeriodStart      string `json:"period_start"`
	PeriodEnd        string `json:"period_end"`
	Amount           string `json:"amount"`
	BookValueAfter   string `json:"book_value_after"`
	FullyDepreciated bool   `json:"fully_depreciated"`
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest loads a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func money(d decimal.Decimal) string {
	return depreciation.Round2(d).StringFixed(2)
}

func dayString(t time.Time) string {
	return t.Format("2006-01-02")
}

func dayStringPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func toAssetDTO(a depreciation.Asset) AssetDTO {
	dto := AssetDTO{
		ID:             string(a.ID),
		ItemCode:       a.ItemCode,
		Description:    a.Description,
		Category:       a.Category,
		BusinessUnitID: string(a.BusinessUnitID),
		Active:         a.Active,

		PurchasePrice:           money(a.PurchasePrice),
		SalvageValue:            money(a.SalvageValue),
		CurrentBookValue:        money(a.CurrentBookValue),
		AccumulatedDepreciation: money(a.AccumulatedDepreciation),

		Method:           a.Method.Code(),
		UsefulLifeMonths: a.UsefulLifeMonths,

		DepreciationStartDate: dayString(a.DepreciationStartDate),
		LastDepreciationDate:  dayStringPtr(a.LastDepreciationDate),
		NextDepreciationDate:  dayStringPtr(a.NextDepreciationDate),
		FullyDepreciated:      a.FullyDepreciated,
	}
	if a.MonthlyDepreciation.IsPositive() {
		dto.MonthlyDepreciation = money(a.MonthlyDepreciation)
	}
	if a.AnnualRatePercent.IsPositive() {
		dto.AnnualRatePercent = a.AnnualRatePercent.String()
	}
	if a.DepreciationPerUnit.IsPositive() {
		dto.DepreciationPerUnit = a.DepreciationPerUnit.String()
	}
	if a.TotalExpectedUnits.IsPositive() {
		dto.TotalExpectedUnits = a.TotalExpectedUnits.String()
	}
	return dto
}

func toDetailDTO(d batch.Detail) DetailDTO {
	return DetailDTO{
		AssetID:        string(d.AssetID),
		ItemCode:       d.ItemCode,
		Category:       d.Category,
		Method:         d.Method.Code(),
		Status:         string(d.Status),
		Amount:         money(d.Amount),
		BookValueAfter: money(d.BookValueAfter),
		Reason:         d.Reason,
		Error:          d.Error,
	}
}

func toSummaryDTO(s batch.Summary) SummaryDTO {
	dto := SummaryDTO{
		ByCategory: make([]GroupTotalDTO, len(s.ByCategory)),
		ByMethod:   make([]GroupTotalDTO, len(s.ByMethod)),
	}
	for i, g := range s.ByCategory {
		dto.ByCategory[i] = GroupTotalDTO{Key: g.Key, Count: g.Count, Amount: money(g.Amount)}
	}
	for i, g := range s.ByMethod {
		dto.ByMethod[i] = GroupTotalDTO{Key: g.Key, Count: g.Count, Amount: money(g.Amount)}
	}
	return dto
}

func toRunResultDTO(res *batch.Result) RunResultDTO {
	dto := RunResultDTO{
		BusinessUnitID:   string(res.BusinessUnitID),
		CalculationDate:  dayString(res.CalculationDate),
		Cadence:          string(res.Cadence),
		DryRun:           res.DryRun,
		TotalAssets:      res.TotalAssets,
		Successful:       res.Successful,
		Failed:           res.Failed,
		FullyDepreciated: res.FullyDepreciated,
		NoSetup:          res.NoSetup,
		TotalAmount:      money(res.TotalDepreciation),
		Details:          make([]DetailDTO, len(res.Details)),
		Summary:          toSummaryDTO(res.Summary),
	}
	for i, d := range res.Details {
		dto.Details[i] = toDetailDTO(d)
	}
	return dto
}

func toRunDTO(r sqlite.RunRecord) RunDTO {
	dto := RunDTO{
		ID:               r.ID,
		BusinessUnitID:   r.BusinessUnitID,
		CalculationDate:  dayString(r.CalculationDate),
		Cadence:          r.Cadence,
		Status:           r.Status,
		TotalAssets:      r.TotalAssets,
		Successful:       r.Successful,
		Failed:           r.Failed,
		FullyDepreciated: r.FullyDepreciated,
		NoSetup:          r.NoSetup,
		TotalAmount:      money(r.TotalAmount),
		TriggeredBy:      r.TriggeredBy,
		Error:            r.Error,
	}
	if r.StartedAt != nil {
		s := r.StartedAt.Format(time.RFC3339)
		dto.StartedAt = &s
	}
	if r.CompletedAt != nil {
		s := r.CompletedAt.Format(time.RFC3339)
		dto.CompletedAt = &s
	}
	return dto
}

func toRecordDTO(rec depreciation.Record) RecordDTO {
	return RecordDTO{
		ID:               rec.ID,
		AssetID:          string(rec.AssetID),
		DepreciationDate: dayString(rec.DepreciationDate),
		PeriodStart:      dayString(rec.PeriodStart),
		PeriodEnd:        dayString(rec.PeriodEnd),
		BookValueBefore:  money(rec.BookValueBefore),
		BookValueAfter:   money(rec.BookValueAfter),
		Amount:           money(rec.Amount),
		AccumulatedAfter: money(rec.AccumulatedAfter),
		Method:           rec.Method.Code(),
		TriggeredBy:      rec.TriggeredBy,
		Note:             rec.Note,
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
	}
}

func toAuditDTO(e depreciation.AuditEntry) AuditEntryDTO {
	return AuditEntryDTO{
		ID:        e.ID,
		Timestamp: e.Timestamp.Format(time.RFC3339),
		ActorID:   e.ActorID,
		Action:    string(e.Action),
		AssetID:   string(e.AssetID),
		Detail:    e.Detail,
	}
}

func toScheduleDTO(entries []depreciation.ScheduledPeriod) []ScheduleEntryDTO {
	dtos := make([]ScheduleEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = ScheduleEntryDTO{
			Date:             dayString(e.Date),
			PeriodStart:      dayString(e.PeriodStart),
			PeriodEnd:        dayString(e.PeriodEnd),
			Amount:           money(e.Amount),
			BookValueAfter:   money(e.BookValueAfter),
			FullyDepreciated: e.FullyDepreciated,
		}
	}
	return dtos
}
