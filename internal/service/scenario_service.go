package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"naviai-server/internal/interfaces"
	"naviai-server/internal/models"
)

// ScenarioService is the application-facing surface for scenario management.
type ScenarioService interface {
	// ListScenarios returns scenarios matching the search text and category
	// filter, most recent first. Empty search matches everything; category
	// "all" or "" disables the category filter.
	ListScenarios(ctx context.Context, search, category string) ([]models.Scenario, error)
	// CreateScenario validates and stores a scenario. A blank ID gets a
	// generated one; a blank CreatedAt gets the current time.
	CreateScenario(ctx context.Context, scenario *models.Scenario) (*models.Scenario, error)
	// UpdateScenario replaces the stored record with the given one.
	UpdateScenario(ctx context.Context, scenario *models.Scenario) (*models.Scenario, error)
	// DeleteScenario removes a scenario by id.
	DeleteScenario(ctx context.Context, id string) error
	// GetStats recomputes the dashboard statistics from the full record set.
	GetStats(ctx context.Context) (*models.DetailedStats, error)
	// ExportScenarios renders every scenario as indented JSON for download.
	ExportScenarios(ctx context.Context) ([]byte, error)
}

// Compile-time check that ScenarioServiceImpl implements ScenarioService.
var _ ScenarioService = (*ScenarioServiceImpl)(nil)

type ScenarioServiceImpl struct {
	repo   interfaces.ScenarioRepository
	logger *zap.Logger
}

func NewScenarioService(repo interfaces.ScenarioRepository, logger *zap.Logger) *ScenarioServiceImpl {
	return &ScenarioServiceImpl{
		repo:   repo,
		logger: logger.Named("ScenarioService"),
	}
}

func (s *ScenarioServiceImpl) ListScenarios(ctx context.Context, search, category string) ([]models.Scenario, error) {
	scenarios, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return FilterScenarios(scenarios, search, category), nil
}

// FilterScenarios applies the dashboard search semantics: a case-insensitive
// substring match over the raw utterance, id and tags, combined with an exact
// category filter. Both conditions must hold.
func FilterScenarios(scenarios []models.Scenario, search, category string) []models.Scenario {
	needle := strings.ToLower(strings.TrimSpace(search))
	filterCategory := category != "" && category != "all"

	filtered := make([]models.Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		if filterCategory && string(s.Category) != category {
			continue
		}
		if needle != "" && !matchesSearch(s, needle) {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}

func matchesSearch(s models.Scenario, needle string) bool {
	if strings.Contains(strings.ToLower(s.Query.Raw), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(s.ID), needle) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func (s *ScenarioServiceImpl) CreateScenario(ctx context.Context, scenario *models.Scenario) (*models.Scenario, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, err
	}

	now := time.Now()
	if scenario.ID == "" {
		scenario.ID = models.NewScenarioID(now)
	}
	if scenario.CreatedAt == "" {
		scenario.CreatedAt = models.FormatDisplayTime(now)
	}
	if scenario.Tags == nil {
		scenario.Tags = []string{}
	}

	if err := s.repo.Create(ctx, scenario); err != nil {
		return nil, err
	}

	s.logger.Info("Scenario created",
		zap.String("id", scenario.ID),
		zap.String("category", string(scenario.Category)))
	return scenario, nil
}

func (s *ScenarioServiceImpl) UpdateScenario(ctx context.Context, scenario *models.Scenario) (*models.Scenario, error) {
	if scenario.ID == "" {
		return nil, fmt.Errorf("%w: id is required", models.ErrValidation)
	}
	if err := validateScenario(scenario); err != nil {
		return nil, err
	}
	if scenario.Tags == nil {
		scenario.Tags = []string{}
	}

	if err := s.repo.Update(ctx, scenario); err != nil {
		return nil, err
	}

	// The store keeps createdAt untouched, so reload the record instead of
	// echoing the request back.
	stored, err := s.repo.GetByID(ctx, scenario.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload updated scenario: %w", err)
	}

	s.logger.Info("Scenario updated", zap.String("id", scenario.ID))
	return stored, nil
}

func (s *ScenarioServiceImpl) DeleteScenario(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", models.ErrValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Scenario deleted", zap.String("id", id))
	return nil
}

func (s *ScenarioServiceImpl) GetStats(ctx context.Context) (*models.DetailedStats, error) {
	scenarios, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios for stats: %w", err)
	}
	stats := ComputeDetailedStats(scenarios, time.Now())
	return &stats, nil
}

func (s *ScenarioServiceImpl) ExportScenarios(ctx context.Context) ([]byte, error) {
	scenarios, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios for export: %w", err)
	}
	payload, err := json.MarshalIndent(scenarios, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scenarios: %w", err)
	}
	return payload, nil
}

// validateScenario enforces the save-time invariants: a known category and
// every query/response field filled in. The error names the first offending
// field so the form can highlight it.
func validateScenario(scenario *models.Scenario) error {
	if scenario == nil {
		return fmt.Errorf("%w: scenario is required", models.ErrValidation)
	}
	if !scenario.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", models.ErrValidation, scenario.Category)
	}

	fields := []struct {
		name  string
		value string
	}{
		{"query.raw", scenario.Query.Raw},
		{"query.context", scenario.Query.Context},
		{"query.intent", scenario.Query.Intent},
		{"query.expectation", scenario.Query.Expectation},
		{"query.action", scenario.Query.Action},
		{"response.trigger", scenario.Response.Trigger},
		{"response.phenomenon", scenario.Response.Phenomenon},
		{"response.impact", scenario.Response.Impact},
		{"response.offer", scenario.Response.Offer},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", models.ErrValidation, f.name)
		}
	}
	return nil
}
