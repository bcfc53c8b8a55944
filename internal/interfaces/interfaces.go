package interfaces

import (
	"context"

	"naviai-server/internal/models"
)

// ScenarioRepository is the keyed scenario store. Implementations must keep
// List consistent with completed mutations at the time of the call; there is
// no multi-writer conflict resolution beyond last-writer-wins per key.
type ScenarioRepository interface {
	// List returns all scenarios ordered by creation time, most recent first.
	List(ctx context.Context) ([]models.Scenario, error)
	// GetByID returns the scenario with the given id or ErrScenarioNotFound.
	GetByID(ctx context.Context, id string) (*models.Scenario, error)
	// Create inserts a new scenario. Returns ErrScenarioAlreadyExists when the
	// id is taken.
	Create(ctx context.Context, scenario *models.Scenario) error
	// Update replaces the stored record (full-record replacement keyed by id,
	// CreatedAt excluded). Returns ErrScenarioNotFound when the id is absent.
	Update(ctx context.Context, scenario *models.Scenario) error
	// Delete removes the scenario. Returns ErrScenarioNotFound when the id is
	// absent.
	Delete(ctx context.Context, id string) error
}

// ScenarioAnalyzer is the external LLM boundary: it turns candidate
// utterances into fully populated scenario drafts. The whole batch fails as a
// unit with ErrAnalysisFailed; partial results are never returned. The draft
// count is advisory and may differ from the candidate count.
type ScenarioAnalyzer interface {
	Analyze(ctx context.Context, candidates []string, cfg *models.AnalyzerConfig) ([]models.ScenarioDraft, error)
}
