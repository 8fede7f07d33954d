package backtest

import "errors"

// Failure taxonomy for ingestion, configuration and analytics.
// All validation happens before the simulation pass; the pass itself
// cannot fail on validated input. Callers match with errors.Is.
var (
	// ErrSchema means a required field is absent or an ordering
	// invariant of the input series is broken.
	ErrSchema = errors.New("schema violation")

	// ErrParse means a timestamp or numeric field could not be parsed.
	ErrParse = errors.New("parse failure")

	// ErrInsufficientData means there are no bars, or the series spans
	// zero time so annualized figures are undefined.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrConfiguration means the run configuration is unusable
	// (non-positive capital, negative cost rate).
	ErrConfiguration = errors.New("invalid configuration")
)
