package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"naviai-server/internal/interfaces"
	"naviai-server/internal/models"
)

const scenarioListKey = "scenarios:all"

// Compile-time check that the cache decorator implements ScenarioRepository.
var _ interfaces.ScenarioRepository = (*CachedScenarioRepository)(nil)

// CachedScenarioRepository wraps another repository with a Redis read-through
// cache of the full list. Every mutation invalidates the cached list, so a
// re-fetch after a completed create/update/delete always observes it. Cache
// failures degrade to direct reads and are never surfaced to callers.
type CachedScenarioRepository struct {
	inner  interfaces.ScenarioRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedScenarioRepository(inner interfaces.ScenarioRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedScenarioRepository {
	return &CachedScenarioRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.Named("ScenarioCache"),
	}
}

func (r *CachedScenarioRepository) List(ctx context.Context) ([]models.Scenario, error) {
	cached, err := r.client.Get(ctx, scenarioListKey).Bytes()
	if err == nil {
		var scenarios []models.Scenario
		if unmarshalErr := json.Unmarshal(cached, &scenarios); unmarshalErr == nil {
			return scenarios, nil
		}
		// Corrupt entry: drop it and fall through to the store.
		r.logger.Warn("Dropping unreadable cached scenario list")
		r.client.Del(ctx, scenarioListKey)
	} else if err != redis.Nil {
		r.logger.Warn("Redis read failed, falling back to store", zap.Error(err))
	}

	scenarios, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, marshalErr := json.Marshal(scenarios); marshalErr == nil {
		if setErr := r.client.Set(ctx, scenarioListKey, payload, r.ttl).Err(); setErr != nil {
			r.logger.Warn("Failed to cache scenario list", zap.Error(setErr))
		}
	}
	return scenarios, nil
}

func (r *CachedScenarioRepository) GetByID(ctx context.Context, id string) (*models.Scenario, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *CachedScenarioRepository) Create(ctx context.Context, scenario *models.Scenario) error {
	if err := r.inner.Create(ctx, scenario); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedScenarioRepository) Update(ctx context.Context, scenario *models.Scenario) error {
	if err := r.inner.Update(ctx, scenario); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedScenarioRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedScenarioRepository) invalidate(ctx context.Context) {
	if err := r.client.Del(ctx, scenarioListKey).Err(); err != nil {
		// The entry still expires via TTL; a stale window is acceptable for a
		// single-operator dashboard.
		r.logger.Warn("Failed to invalidate scenario list cache", zap.Error(err))
	}
}
