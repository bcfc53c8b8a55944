package database_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"naviai-server/internal/database"
	"naviai-server/internal/models"
)

const cacheListKey = "scenarios:all"

// stubScenarioRepository is a deterministic inner store for exercising the
// cache decorator; listCalls tracks read-through hits on the store.
type stubScenarioRepository struct {
	scenarios []models.Scenario
	listCalls int
}

func (s *stubScenarioRepository) List(_ context.Context) ([]models.Scenario, error) {
	s.listCalls++
	return append([]models.Scenario(nil), s.scenarios...), nil
}

func (s *stubScenarioRepository) GetByID(_ context.Context, id string) (*models.Scenario, error) {
	for i := range s.scenarios {
		if s.scenarios[i].ID == id {
			scenario := s.scenarios[i]
			return &scenario, nil
		}
	}
	return nil, models.ErrScenarioNotFound
}

func (s *stubScenarioRepository) Create(_ context.Context, scenario *models.Scenario) error {
	s.scenarios = append(s.scenarios, *scenario)
	return nil
}

func (s *stubScenarioRepository) Update(_ context.Context, scenario *models.Scenario) error {
	for i := range s.scenarios {
		if s.scenarios[i].ID == scenario.ID {
			s.scenarios[i] = *scenario
			return nil
		}
	}
	return models.ErrScenarioNotFound
}

func (s *stubScenarioRepository) Delete(_ context.Context, id string) error {
	for i := range s.scenarios {
		if s.scenarios[i].ID == id {
			s.scenarios = append(s.scenarios[:i], s.scenarios[i+1:]...)
			return nil
		}
	}
	return models.ErrScenarioNotFound
}

type CacheTestSuite struct {
	suite.Suite
	ctx         context.Context
	rdContainer *tcredis.RedisContainer
	client      *redis.Client
	inner       *stubScenarioRepository
	repo        *database.CachedScenarioRepository
}

func (s *CacheTestSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	redisHost, err := s.rdContainer.Host(s.ctx)
	require.NoError(s.T(), err)
	redisPort, err := s.rdContainer.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port())})
	require.NoError(s.T(), s.client.Ping(s.ctx).Err(), "Failed to connect to test redis")
}

func (s *CacheTestSuite) TearDownSuite() {
	if s.client != nil {
		require.NoError(s.T(), s.client.Close())
	}
	if s.rdContainer != nil {
		require.NoError(s.T(), s.rdContainer.Terminate(s.ctx))
	}
}

func (s *CacheTestSuite) SetupTest() {
	require.NoError(s.T(), s.client.FlushDB(s.ctx).Err())
	s.inner = &stubScenarioRepository{scenarios: []models.Scenario{
		*testScenario("NAV_C_1"),
	}}
	s.repo = database.NewCachedScenarioRepository(s.inner, s.client, 5*time.Minute, zap.NewNop())
}

func (s *CacheTestSuite) TestMissPopulatesCache() {
	scenarios, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Len(scenarios, 1)
	s.Equal(1, s.inner.listCalls)

	exists, err := s.client.Exists(s.ctx, cacheListKey).Result()
	s.Require().NoError(err)
	s.Equal(int64(1), exists)
}

func (s *CacheTestSuite) TestHitSkipsStore() {
	_, err := s.repo.List(s.ctx)
	s.Require().NoError(err)

	scenarios, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Len(scenarios, 1)
	s.Equal("NAV_C_1", scenarios[0].ID)
	s.Equal(1, s.inner.listCalls, "second List must be served from the cache")
}

func (s *CacheTestSuite) TestCorruptEntryFallsThrough() {
	require.NoError(s.T(), s.client.Set(s.ctx, cacheListKey, "{not json", 0).Err())

	scenarios, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Len(scenarios, 1)
	s.Equal(1, s.inner.listCalls)

	// The corrupt entry is replaced by a readable one.
	_, err = s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, s.inner.listCalls)
}

func (s *CacheTestSuite) TestCreateInvalidates() {
	_, err := s.repo.List(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Create(s.ctx, testScenario("NAV_C_2")))

	exists, err := s.client.Exists(s.ctx, cacheListKey).Result()
	s.Require().NoError(err)
	s.Equal(int64(0), exists, "mutation must drop the cached list")

	scenarios, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Len(scenarios, 2)
	s.Equal(2, s.inner.listCalls)
}

func (s *CacheTestSuite) TestUpdateInvalidates() {
	_, err := s.repo.List(s.ctx)
	s.Require().NoError(err)

	changed := testScenario("NAV_C_1")
	changed.Category = models.CategoryEmergency
	s.Require().NoError(s.repo.Update(s.ctx, changed))

	scenarios, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(scenarios, 1)
	s.Equal(models.CategoryEmergency, scenarios[0].Category)
}

func (s *CacheTestSuite) TestDeleteInvalidates() {
	_, err := s.repo.List(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete(s.ctx, "NAV_C_1"))

	scenarios, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(scenarios)
}

func (s *CacheTestSuite) TestGetByIDBypassesCache() {
	stored, err := s.repo.GetByID(s.ctx, "NAV_C_1")
	s.Require().NoError(err)
	s.Equal("NAV_C_1", stored.ID)

	_, err = s.repo.GetByID(s.ctx, "NAV_C_MISSING")
	s.ErrorIs(err, models.ErrScenarioNotFound)
}

func TestCacheTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(CacheTestSuite))
}
