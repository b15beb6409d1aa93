/*
errors.go - Centralized error types for the depreciation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is/errors.As; the batch orchestrator uses
  the predicates below to sort per-asset outcomes into the run result.

ERROR CATEGORIES:
  1. Configuration errors - asset lacks the figures its method needs (NO_SETUP)
  2. Invariant violations - book-value state would break a hard invariant
  3. Precondition violations - rejected before any asset processing begins

Ineligibility is NOT an error: an asset that is simply not due yet is a
normal zero-amount outcome, reported through the eligibility result.
*/
package depreciation

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoSetup is returned when an asset lacks the rate/amount its
	// depreciation method requires. Recorded per asset; never aborts a batch.
	ErrNoSetup = errors.New("depreciation setup missing")

	// ErrInvariantViolation is returned when applying a calculation would
	// break a book-value invariant. This is a fatal state corruption signal,
	// not a recoverable business outcome.
	ErrInvariantViolation = errors.New("book value invariant violated")

	// ErrUnknownMethod is returned when a stored method code does not map
	// to a supported Method.
	ErrUnknownMethod = errors.New("unknown depreciation method")

	// ErrInvalidCadence is returned when a run is requested with a cadence
	// outside MONTHLY/QUARTERLY/ANNUALLY.
	ErrInvalidCadence = errors.New("invalid cadence")

	// ErrActorRequired is returned when a committed (non-dry) run is
	// requested without an actor identity for audit attribution.
	ErrActorRequired = errors.New("actor identity required for committed run")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NoSetupError reports which asset is missing its method configuration.
type NoSetupError struct {
	AssetID AssetID
	Method  Method
}

func (e *NoSetupError) Error() string {
	return fmt.Sprintf("asset %s: no %s depreciation setup", e.AssetID, e.Method)
}

func (e *NoSetupError) Unwrap() error { return ErrNoSetup }

// InvariantError reports a broken book-value invariant for an asset.
type InvariantError struct {
	AssetID AssetID
	Detail  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("asset %s: %s", e.AssetID, e.Detail)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNoSetup reports whether the error is the per-asset configuration error.
func IsNoSetup(err error) bool { return errors.Is(err, ErrNoSetup) }

// IsInvariantViolation reports whether the error is a fatal invariant break.
func IsInvariantViolation(err error) bool { return errors.Is(err, ErrInvariantViolation) }

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidCadence) ||
		errors.Is(err, ErrUnknownMethod) ||
		errors.Is(err, ErrActorRequired)
}
