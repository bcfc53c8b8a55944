package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"naviai-server/internal/interfaces"
	"naviai-server/internal/models"
)

const scenarioFields = `id, category, query_raw, query_context, query_intent, query_expectation, query_action,
	response_trigger, response_phenomenon, response_impact, response_offer, tags, created_at`

// Compile-time check that PgScenarioRepository implements ScenarioRepository.
var _ interfaces.ScenarioRepository = (*PgScenarioRepository)(nil)

// PgScenarioRepository stores scenarios in PostgreSQL, one row per scenario
// in the flat storage shape (query/response sub-records unpacked into
// columns, tags as text[]).
type PgScenarioRepository struct {
	db *pgxpool.Pool
}

func NewPgScenarioRepository(db *pgxpool.Pool) *PgScenarioRepository {
	if db == nil {
		log.Fatal().Msg("Database pool is nil for PgScenarioRepository")
	}
	return &PgScenarioRepository{db: db}
}

// scenarioRow mirrors the scenarios table.
type scenarioRow struct {
	ID                 string    `db:"id"`
	Category           string    `db:"category"`
	QueryRaw           string    `db:"query_raw"`
	QueryContext       string    `db:"query_context"`
	QueryIntent        string    `db:"query_intent"`
	QueryExpectation   string    `db:"query_expectation"`
	QueryAction        string    `db:"query_action"`
	ResponseTrigger    string    `db:"response_trigger"`
	ResponsePhenomenon string    `db:"response_phenomenon"`
	ResponseImpact     string    `db:"response_impact"`
	ResponseOffer      string    `db:"response_offer"`
	Tags               []string  `db:"tags"`
	CreatedAt          time.Time `db:"created_at"`
}

func (r scenarioRow) toModel() models.Scenario {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Scenario{
		ID:       r.ID,
		Category: models.Category(r.Category),
		Query: models.ScenarioQuery{
			Raw:         r.QueryRaw,
			Context:     r.QueryContext,
			Intent:      r.QueryIntent,
			Expectation: r.QueryExpectation,
			Action:      r.QueryAction,
		},
		Response: models.ScenarioResponse{
			Trigger:    r.ResponseTrigger,
			Phenomenon: r.ResponsePhenomenon,
			Impact:     r.ResponseImpact,
			Offer:      r.ResponseOffer,
		},
		Tags:      tags,
		CreatedAt: models.FormatDisplayTime(r.CreatedAt),
	}
}

// List returns every scenario, most recently created first.
func (r *PgScenarioRepository) List(ctx context.Context) ([]models.Scenario, error) {
	query := fmt.Sprintf(`SELECT %s FROM scenarios ORDER BY created_at DESC, id DESC`, scenarioFields)

	var rows []scenarioRow
	if err := pgxscan.Select(ctx, r.db, &rows, query); err != nil {
		log.Error().Err(err).Msg("Failed to list scenarios")
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	scenarios := make([]models.Scenario, 0, len(rows))
	for _, row := range rows {
		scenarios = append(scenarios, row.toModel())
	}
	return scenarios, nil
}

// GetByID returns a single scenario by its key.
func (r *PgScenarioRepository) GetByID(ctx context.Context, id string) (*models.Scenario, error) {
	query := fmt.Sprintf(`SELECT %s FROM scenarios WHERE id = $1`, scenarioFields)

	var row scenarioRow
	if err := pgxscan.Get(ctx, r.db, &row, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrScenarioNotFound
		}
		log.Error().Err(err).Str("id", id).Msg("Failed to get scenario")
		return nil, fmt.Errorf("failed to get scenario %s: %w", id, err)
	}

	scenario := row.toModel()
	return &scenario, nil
}

// Create inserts a new scenario. The created_at column takes the scenario's
// CreatedAt when it parses, NOW() otherwise. A duplicate id is a hard
// failure, not an upsert.
func (r *PgScenarioRepository) Create(ctx context.Context, scenario *models.Scenario) error {
	createdAt := time.Now()
	if scenario.CreatedAt != "" {
		if parsed, err := models.ParseDisplayTime(scenario.CreatedAt); err == nil {
			createdAt = parsed
		}
	}

	query := `INSERT INTO scenarios (id, category, query_raw, query_context, query_intent, query_expectation, query_action,
		response_trigger, response_phenomenon, response_impact, response_offer, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		scenario.ID, string(scenario.Category),
		scenario.Query.Raw, scenario.Query.Context, scenario.Query.Intent, scenario.Query.Expectation, scenario.Query.Action,
		scenario.Response.Trigger, scenario.Response.Phenomenon, scenario.Response.Impact, scenario.Response.Offer,
		scenario.Tags, createdAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return models.ErrScenarioAlreadyExists
		}
		log.Error().Err(err).Str("id", scenario.ID).Msg("Failed to create scenario")
		return fmt.Errorf("failed to create scenario: %w", err)
	}

	log.Info().Str("id", scenario.ID).Str("category", string(scenario.Category)).Msg("Scenario created")
	return nil
}

// Update replaces every mutable column of the record. created_at is left
// untouched; only updated_at moves.
func (r *PgScenarioRepository) Update(ctx context.Context, scenario *models.Scenario) error {
	query := `UPDATE scenarios SET category = $2, query_raw = $3, query_context = $4, query_intent = $5,
		query_expectation = $6, query_action = $7, response_trigger = $8, response_phenomenon = $9,
		response_impact = $10, response_offer = $11, tags = $12, updated_at = NOW()
		WHERE id = $1`

	commandTag, err := r.db.Exec(ctx, query,
		scenario.ID, string(scenario.Category),
		scenario.Query.Raw, scenario.Query.Context, scenario.Query.Intent, scenario.Query.Expectation, scenario.Query.Action,
		scenario.Response.Trigger, scenario.Response.Phenomenon, scenario.Response.Impact, scenario.Response.Offer,
		scenario.Tags,
	)
	if err != nil {
		log.Error().Err(err).Str("id", scenario.ID).Msg("Failed to update scenario")
		return fmt.Errorf("failed to update scenario: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrScenarioNotFound
	}

	log.Info().Str("id", scenario.ID).Msg("Scenario updated")
	return nil
}

// Delete removes a scenario by id.
func (r *PgScenarioRepository) Delete(ctx context.Context, id string) error {
	commandTag, err := r.db.Exec(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to delete scenario")
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrScenarioNotFound
	}

	log.Info().Str("id", id).Msg("Scenario deleted")
	return nil
}
