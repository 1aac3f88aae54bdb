package dune

import "fmt"

// ErrorCode is the closed taxonomy of validation and rule-conflict failures
// (§7). Protocol codes (UNEXPECTED_RESPONSE, MISSING_RESPONSE) never reach
// RuleError: they trigger forced-default recovery in the phase engine
// instead (§4.E.10) and are reported only via Event, not returned as errors.
type ErrorCode string

const (
	ErrInvalidTerritory             ErrorCode = "INVALID_TERRITORY"
	ErrInvalidSector                ErrorCode = "INVALID_SECTOR"
	ErrSectorInStorm                ErrorCode = "SECTOR_IN_STORM"
	ErrSourceInStorm                ErrorCode = "SOURCE_IN_STORM"
	ErrDestinationInStorm           ErrorCode = "DESTINATION_IN_STORM"
	ErrOccupancyLimitExceeded       ErrorCode = "OCCUPANCY_LIMIT_EXCEEDED"
	ErrInsufficientReserves         ErrorCode = "INSUFFICIENT_RESERVES"
	ErrInsufficientForces           ErrorCode = "INSUFFICIENT_FORCES"
	ErrInsufficientSpice            ErrorCode = "INSUFFICIENT_SPICE"
	ErrCannotShipFromBoard          ErrorCode = "CANNOT_SHIP_FROM_BOARD"
	ErrCannotShipFightersToAdvisors ErrorCode = "CANNOT_SHIP_FIGHTERS_TO_ADVISORS"
	ErrBidTooLow                    ErrorCode = "BID_TOO_LOW"
	ErrForcesDialedExceedsAvailable ErrorCode = "FORCES_DIALED_EXCEEDS_AVAILABLE"
	ErrHandSizeExceeded             ErrorCode = "HAND_SIZE_EXCEEDED"

	ErrPeacetimeBlocked       ErrorCode = "PEACETIME_BLOCKED"
	ErrStormedInBlocked       ErrorCode = "STORMED_IN_BLOCKED"
	ErrNotEligible            ErrorCode = "NOT_ELIGIBLE"
	ErrInvalidFactionForAbility ErrorCode = "INVALID_FACTION_FOR_ABILITY"
)

// RuleError is a validation failure returned as a value, never panicked or
// thrown to an agent uncaught (§7 propagation policy).
type RuleError struct {
	Code        ErrorCode
	Message     string
	Field       string
	Alternative string // suggested alternative action, if one is meaningful
}

func (e *RuleError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newRuleError(code ErrorCode, field, message string) *RuleError {
	return &RuleError{Code: code, Field: field, Message: message}
}

func (e *RuleError) withAlternative(alt string) *RuleError {
	e.Alternative = alt
	return e
}

// InvariantPanic is raised (via panic) when a mutation would leave a
// Snapshot violating one of the §3 global invariants it was not explicitly
// asked to break. This is a programming error, not a game situation: the
// phase engine's top-level driver recovers it, logs at error level, and
// halts rather than returning it to an agent as a RuleError.
type InvariantPanic struct {
	Invariant string
	Detail    string
}

func (p InvariantPanic) Error() string {
	return fmt.Sprintf("invariant violated: %s: %s", p.Invariant, p.Detail)
}

func panicInvariant(invariant, detail string) {
	panic(InvariantPanic{Invariant: invariant, Detail: detail})
}
