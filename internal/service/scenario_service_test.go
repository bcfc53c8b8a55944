package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"naviai-server/internal/models"
)

type mockScenarioRepository struct {
	mock.Mock
}

func (m *mockScenarioRepository) List(ctx context.Context) ([]models.Scenario, error) {
	args := m.Called(ctx)
	if scenarios, ok := args.Get(0).([]models.Scenario); ok {
		return scenarios, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockScenarioRepository) GetByID(ctx context.Context, id string) (*models.Scenario, error) {
	args := m.Called(ctx, id)
	if scenario, ok := args.Get(0).(*models.Scenario); ok {
		return scenario, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockScenarioRepository) Create(ctx context.Context, scenario *models.Scenario) error {
	return m.Called(ctx, scenario).Error(0)
}

func (m *mockScenarioRepository) Update(ctx context.Context, scenario *models.Scenario) error {
	return m.Called(ctx, scenario).Error(0)
}

func (m *mockScenarioRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func sampleScenarios() []models.Scenario {
	return []models.Scenario{
		{
			ID:        "NAV_002",
			Category:  models.CategoryNearbyPlaces,
			Query:     models.ScenarioQuery{Raw: "근처 주유소 찾아줘"},
			Tags:      []string{"주유소", "주변검색"},
			CreatedAt: "2024-01-14 18:30",
		},
		{
			ID:        "NAV_001",
			Category:  models.CategoryRouteGuidance,
			Query:     models.ScenarioQuery{Raw: "회사까지 가장 빠른 길로 안내해줘"},
			Tags:      []string{"출근", "빠른길"},
			CreatedAt: "2024-01-15 09:00",
		},
	}
}

func TestScenarioService_ListScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("search matches raw text with category all", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		repo.On("List", ctx).Return(sampleScenarios(), nil)
		svc := NewScenarioService(repo, zap.NewNop())

		scenarios, err := svc.ListScenarios(ctx, "주유소", "all")
		require.NoError(t, err)
		require.Len(t, scenarios, 1)
		assert.Equal(t, "NAV_002", scenarios[0].ID)
	})

	t.Run("search matches id case-insensitively", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		repo.On("List", ctx).Return(sampleScenarios(), nil)
		svc := NewScenarioService(repo, zap.NewNop())

		scenarios, err := svc.ListScenarios(ctx, "nav_001", "")
		require.NoError(t, err)
		require.Len(t, scenarios, 1)
		assert.Equal(t, "NAV_001", scenarios[0].ID)
	})

	t.Run("category filter combines with search", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		repo.On("List", ctx).Return(sampleScenarios(), nil)
		svc := NewScenarioService(repo, zap.NewNop())

		scenarios, err := svc.ListScenarios(ctx, "NAV", string(models.CategoryRouteGuidance))
		require.NoError(t, err)
		require.Len(t, scenarios, 1)
		assert.Equal(t, "NAV_001", scenarios[0].ID)
	})

	t.Run("empty search and category all return everything", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		repo.On("List", ctx).Return(sampleScenarios(), nil)
		svc := NewScenarioService(repo, zap.NewNop())

		scenarios, err := svc.ListScenarios(ctx, "", "all")
		require.NoError(t, err)
		assert.Len(t, scenarios, 2)
	})

	t.Run("repository failure is propagated", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		repo.On("List", ctx).Return(nil, errors.New("connection refused"))
		svc := NewScenarioService(repo, zap.NewNop())

		_, err := svc.ListScenarios(ctx, "", "all")
		assert.Error(t, err)
	})
}

// completeScenario fills every save-time required field.
func completeScenario(id string) *models.Scenario {
	return &models.Scenario{
		ID:       id,
		Category: models.CategoryRouteGuidance,
		Query: models.ScenarioQuery{
			Raw:         "회사까지 가장 빠른 길로 안내해줘",
			Context:     "출근 시간대",
			Intent:      "최단 시간 경로 탐색",
			Expectation: "빠른 경로",
			Action:      "경로 탐색 후 안내 시작",
		},
		Response: models.ScenarioResponse{
			Trigger:    "목적지 설정 완료",
			Phenomenon: "최적 경로 계산",
			Impact:     "예상 도착 시간 제공",
			Offer:      "경로 안내 시작",
		},
		Tags: []string{"출근"},
	}
}

func TestScenarioService_CreateScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("generates id and timestamp when blank", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		repo.On("Create", ctx, mock.MatchedBy(func(s *models.Scenario) bool {
			return strings.HasPrefix(s.ID, "NAV_") && s.CreatedAt != ""
		})).Return(nil)
		svc := NewScenarioService(repo, zap.NewNop())

		scenario := completeScenario("")
		created, err := svc.CreateScenario(ctx, scenario)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(created.ID, "NAV_"))
		assert.NotEmpty(t, created.CreatedAt)
		repo.AssertExpectations(t)
	})

	t.Run("keeps a caller-supplied id", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		repo.On("Create", ctx, mock.MatchedBy(func(s *models.Scenario) bool {
			return s.ID == "NAV_CUSTOM"
		})).Return(nil)
		svc := NewScenarioService(repo, zap.NewNop())

		created, err := svc.CreateScenario(ctx, completeScenario("NAV_CUSTOM"))
		require.NoError(t, err)
		assert.Equal(t, "NAV_CUSTOM", created.ID)
	})

	t.Run("rejects unknown category without touching the store", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		svc := NewScenarioService(repo, zap.NewNop())

		scenario := completeScenario("")
		scenario.Category = "잡담"
		_, err := svc.CreateScenario(ctx, scenario)
		assert.ErrorIs(t, err, models.ErrValidation)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects blank raw query naming the field", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		svc := NewScenarioService(repo, zap.NewNop())

		scenario := completeScenario("")
		scenario.Query.Raw = "   "
		_, err := svc.CreateScenario(ctx, scenario)
		require.ErrorIs(t, err, models.ErrValidation)
		assert.Contains(t, err.Error(), "query.raw")
	})

	t.Run("rejects a blank response field naming the field", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		svc := NewScenarioService(repo, zap.NewNop())

		scenario := completeScenario("")
		scenario.Response.Offer = ""
		_, err := svc.CreateScenario(ctx, scenario)
		require.ErrorIs(t, err, models.ErrValidation)
		assert.Contains(t, err.Error(), "response.offer")
	})

	t.Run("nil tags are normalized", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		repo.On("Create", ctx, mock.Anything).Return(nil)
		svc := NewScenarioService(repo, zap.NewNop())

		scenario := completeScenario("")
		scenario.Tags = nil
		created, err := svc.CreateScenario(ctx, scenario)
		require.NoError(t, err)
		assert.NotNil(t, created.Tags)
	})

	t.Run("duplicate id surfaces the conflict", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		repo.On("Create", ctx, mock.Anything).Return(models.ErrScenarioAlreadyExists)
		svc := NewScenarioService(repo, zap.NewNop())

		_, err := svc.CreateScenario(ctx, completeScenario("NAV_001"))
		assert.ErrorIs(t, err, models.ErrScenarioAlreadyExists)
	})
}

func TestScenarioService_UpdateScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("requires an id", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		svc := NewScenarioService(repo, zap.NewNop())

		_, err := svc.UpdateScenario(ctx, completeScenario(""))
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("returns the persisted record including createdAt", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		repo.On("Update", ctx, mock.Anything).Return(nil)
		stored := completeScenario("NAV_001")
		stored.CreatedAt = "2024-01-15 09:00"
		repo.On("GetByID", ctx, "NAV_001").Return(stored, nil)
		svc := NewScenarioService(repo, zap.NewNop())

		// The request omits createdAt, as the edit form does.
		updated, err := svc.UpdateScenario(ctx, completeScenario("NAV_001"))
		require.NoError(t, err)
		assert.Equal(t, "2024-01-15 09:00", updated.CreatedAt)
		repo.AssertExpectations(t)
	})

	t.Run("missing record surfaces not found", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		repo.On("Update", ctx, mock.Anything).Return(models.ErrScenarioNotFound)
		svc := NewScenarioService(repo, zap.NewNop())

		_, err := svc.UpdateScenario(ctx, completeScenario("NAV_MISSING"))
		assert.ErrorIs(t, err, models.ErrScenarioNotFound)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestScenarioService_DeleteScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates to the repository", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		repo.On("Delete", ctx, "NAV_001").Return(nil)
		svc := NewScenarioService(repo, zap.NewNop())

		require.NoError(t, svc.DeleteScenario(ctx, "NAV_001"))
		repo.AssertExpectations(t)
	})

	t.Run("requires an id", func(t *testing.T) {
		repo := new(mockScenarioRepository)
		svc := NewScenarioService(repo, zap.NewNop())

		assert.ErrorIs(t, svc.DeleteScenario(ctx, ""), models.ErrValidation)
	})
}

func TestScenarioService_ExportScenarios(t *testing.T) {
	ctx := context.Background()

	repo := new(mockScenarioRepository)
	repo.On("List", ctx).Return(sampleScenarios(), nil)
	svc := NewScenarioService(repo, zap.NewNop())

	payload, err := svc.ExportScenarios(ctx)
	require.NoError(t, err)

	var decoded []models.Scenario
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Len(t, decoded, 2)
	assert.Contains(t, string(payload), "\n  ") // indented for download
}
