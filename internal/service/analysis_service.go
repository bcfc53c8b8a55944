package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"naviai-server/internal/interfaces"
	"naviai-server/internal/models"
)

// AnalysisService drives the bulk analysis flow: split the pasted text into
// candidate queries, send the batch to the analyzer, then persist the
// returned drafts as scenarios.
type AnalysisService interface {
	AnalyzeText(ctx context.Context, rawText string, cfg *models.AnalyzerConfig) ([]models.Scenario, error)
}

// Compile-time check that AnalysisServiceImpl implements AnalysisService.
var _ AnalysisService = (*AnalysisServiceImpl)(nil)

type AnalysisServiceImpl struct {
	repo     interfaces.ScenarioRepository
	analyzer interfaces.ScenarioAnalyzer
	logger   *zap.Logger
}

func NewAnalysisService(repo interfaces.ScenarioRepository, analyzer interfaces.ScenarioAnalyzer, logger *zap.Logger) *AnalysisServiceImpl {
	return &AnalysisServiceImpl{
		repo:     repo,
		analyzer: analyzer,
		logger:   logger.Named("AnalysisService"),
	}
}

// AnalyzeText runs the full pipeline. The analyzer call fails as a whole
// batch; on a mid-batch store failure the already-created scenarios are
// rolled back best-effort so the operation stays close to all-or-nothing.
func (s *AnalysisServiceImpl) AnalyzeText(ctx context.Context, rawText string, cfg *models.AnalyzerConfig) ([]models.Scenario, error) {
	candidates, err := SplitQueries(rawText)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Split analysis input", zap.Int("candidates", len(candidates)))

	drafts, err := s.analyzer.Analyze(ctx, candidates, cfg)
	if err != nil {
		return nil, err
	}

	// Identity is assigned here, not by the analyzer: one shared batch
	// timestamp, ids differing only by draft index.
	batchTime := time.Now()
	createdAt := models.FormatDisplayTime(batchTime)

	created := make([]models.Scenario, 0, len(drafts))
	for i, draft := range drafts {
		scenario := models.Scenario{
			ID:        models.NewBatchScenarioID(batchTime, i),
			Category:  draft.Category,
			Query:     draft.Query,
			Response:  draft.Response,
			Tags:      draft.Tags,
			CreatedAt: createdAt,
		}
		if scenario.Tags == nil {
			scenario.Tags = []string{}
		}

		if err := s.repo.Create(ctx, &scenario); err != nil {
			s.logger.Error("Failed to store analyzed scenario",
				zap.String("id", scenario.ID),
				zap.Error(err))
			s.rollback(ctx, created)
			return nil, fmt.Errorf("failed to store analyzed scenario %s: %w", scenario.ID, err)
		}
		created = append(created, scenario)
	}

	s.logger.Info("Analysis batch stored",
		zap.Int("candidates", len(candidates)),
		zap.Int("created", len(created)))
	return created, nil
}

func (s *AnalysisServiceImpl) rollback(ctx context.Context, created []models.Scenario) {
	for _, scenario := range created {
		if err := s.repo.Delete(ctx, scenario.ID); err != nil {
			s.logger.Warn("Failed to roll back scenario",
				zap.String("id", scenario.ID),
				zap.Error(err))
		}
	}
}
