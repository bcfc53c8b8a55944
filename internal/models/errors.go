package models

import "errors"

// Sentinel errors shared across the repository, service and handler layers.
// Wrap with fmt.Errorf("...: %w", err) to add context; handlers match with
// errors.Is to pick the HTTP status.
var (
	// ErrScenarioNotFound is returned by the store when the id is absent.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrScenarioAlreadyExists is returned by Create on an id collision.
	// Create is deliberately not an upsert: a duplicate id is a hard failure.
	ErrScenarioAlreadyExists = errors.New("scenario with this id already exists")

	// ErrValidation marks a scenario rejected at save time (missing required
	// field or category outside the closed set).
	ErrValidation = errors.New("scenario validation failed")

	// ErrEmptyInput means the query splitter produced zero candidates.
	ErrEmptyInput = errors.New("no queries to analyze")

	// ErrAnalysisFailed wraps any failure of the external analyzer boundary:
	// provider errors, timeouts, unparsable or schema-invalid output. Always
	// whole-batch, never partial.
	ErrAnalysisFailed = errors.New("scenario analysis failed")
)
