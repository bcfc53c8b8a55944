package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"naviai-server/internal/interfaces"
	"naviai-server/internal/models"
)

// Compile-time check that Analyzer implements ScenarioAnalyzer.
var _ interfaces.ScenarioAnalyzer = (*Analyzer)(nil)

// Analyzer turns candidate utterances into structured scenario drafts by
// prompting an LLM provider. A request-level AnalyzerConfig replaces the
// provider, model and key for that single call; everything else comes from
// the default configuration.
type Analyzer struct {
	defaultCfg    ProviderConfig
	defaultClient Client
}

// NewAnalyzer builds the analyzer around a default provider client.
func NewAnalyzer(cfg ProviderConfig) (*Analyzer, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create default AI client: %w", err)
	}
	return &Analyzer{defaultCfg: cfg, defaultClient: client}, nil
}

// NewAnalyzerWithClient is used in tests to inject a fake client.
func NewAnalyzerWithClient(cfg ProviderConfig, client Client) *Analyzer {
	return &Analyzer{defaultCfg: cfg, defaultClient: client}
}

// analysisResult is the JSON envelope the prompt asks the model to produce.
type analysisResult struct {
	Scenarios []analysisScenario `json:"scenarios"`
}

type analysisScenario struct {
	Category           string   `json:"category"`
	QueryRaw           string   `json:"query_raw"`
	QueryContext       string   `json:"query_context"`
	QueryIntent        string   `json:"query_intent"`
	QueryExpectation   string   `json:"query_expectation"`
	QueryAction        string   `json:"query_action"`
	ResponseTrigger    string   `json:"response_trigger"`
	ResponsePhenomenon string   `json:"response_phenomenon"`
	ResponseImpact     string   `json:"response_impact"`
	ResponseOffer      string   `json:"response_offer"`
	Tags               []string `json:"tags"`
}

// Analyze prompts the provider with the candidate utterances and parses the
// returned drafts. The batch fails as a whole; no partial drafts are returned.
func (a *Analyzer) Analyze(ctx context.Context, candidates []string, cfg *models.AnalyzerConfig) ([]models.ScenarioDraft, error) {
	if len(candidates) == 0 {
		return nil, models.ErrEmptyInput
	}

	client, model, err := a.clientFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAnalysisFailed, err)
	}

	log.Info().
		Int("candidates", len(candidates)).
		Str("model", model).
		Msg("Starting scenario analysis")

	raw, usage, err := client.GenerateText(ctx, analysisSystemPrompt, BuildAnalysisInput(candidates), GenerationParams{})
	if err != nil {
		log.Error().Err(err).Str("model", model).Msg("Scenario analysis generation failed")
		return nil, fmt.Errorf("%w: %v", models.ErrAnalysisFailed, err)
	}

	drafts, err := parseAnalysisResponse(raw)
	if err != nil {
		log.Error().Err(err).Str("model", model).Msg("Scenario analysis output rejected")
		return nil, err
	}

	if len(drafts) != len(candidates) {
		log.Warn().
			Int("candidates", len(candidates)).
			Int("drafts", len(drafts)).
			Msg("Analyzer draft count differs from candidate count")
	}
	log.Info().
		Int("drafts", len(drafts)).
		Int("total_tokens", usage.TotalTokens).
		Msg("Scenario analysis completed")
	return drafts, nil
}

// clientFor returns the default client, or a one-off client when the request
// carries a provider override. Timeouts and retry settings always come from
// the default configuration.
func (a *Analyzer) clientFor(cfg *models.AnalyzerConfig) (Client, string, error) {
	if cfg == nil || (cfg.Provider == "" && cfg.Model == "" && cfg.APIKey == "") {
		return a.defaultClient, a.defaultCfg.Model, nil
	}

	override := a.overrideConfig(cfg)
	client, err := NewClient(override)
	if err != nil {
		return nil, "", err
	}
	return client, override.Model, nil
}

// overrideConfig merges a request-level config into the default one. A
// configured base URL stays in effect as long as the provider is unchanged;
// switching providers falls back to that provider's default endpoint.
func (a *Analyzer) overrideConfig(cfg *models.AnalyzerConfig) ProviderConfig {
	override := a.defaultCfg
	if cfg.Provider != "" && !strings.EqualFold(cfg.Provider, a.defaultCfg.Provider) {
		override.Provider = cfg.Provider
		override.BaseURL = ""
	}
	if cfg.Model != "" {
		override.Model = cfg.Model
	}
	if cfg.APIKey != "" {
		override.APIKey = cfg.APIKey
	}
	return override
}

// parseAnalysisResponse extracts and validates the draft list from the raw
// model output. Models occasionally wrap the JSON in markdown fences despite
// the instructions.
func parseAnalysisResponse(raw string) ([]models.ScenarioDraft, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result analysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("%w: unparsable analyzer output: %v", models.ErrAnalysisFailed, err)
	}
	if len(result.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: analyzer returned no scenarios", models.ErrAnalysisFailed)
	}

	drafts := make([]models.ScenarioDraft, 0, len(result.Scenarios))
	for i, s := range result.Scenarios {
		category := models.Category(s.Category)
		if !category.Valid() {
			return nil, fmt.Errorf("%w: scenario %d has unknown category %q", models.ErrAnalysisFailed, i, s.Category)
		}
		fields := map[string]string{
			"query_raw":           s.QueryRaw,
			"query_context":       s.QueryContext,
			"query_intent":        s.QueryIntent,
			"query_expectation":   s.QueryExpectation,
			"query_action":        s.QueryAction,
			"response_trigger":    s.ResponseTrigger,
			"response_phenomenon": s.ResponsePhenomenon,
			"response_impact":     s.ResponseImpact,
			"response_offer":      s.ResponseOffer,
		}
		for name, value := range fields {
			if strings.TrimSpace(value) == "" {
				return nil, fmt.Errorf("%w: scenario %d is missing %s", models.ErrAnalysisFailed, i, name)
			}
		}
		tags := s.Tags
		if tags == nil {
			tags = []string{}
		}

		drafts = append(drafts, models.ScenarioDraft{
			Category: category,
			Query: models.ScenarioQuery{
				Raw:         s.QueryRaw,
				Context:     s.QueryContext,
				Intent:      s.QueryIntent,
				Expectation: s.QueryExpectation,
				Action:      s.QueryAction,
			},
			Response: models.ScenarioResponse{
				Trigger:    s.ResponseTrigger,
				Phenomenon: s.ResponsePhenomenon,
				Impact:     s.ResponseImpact,
				Offer:      s.ResponseOffer,
			},
			Tags: tags,
		})
	}
	return drafts, nil
}
