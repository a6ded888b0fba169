package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

type MockCompletionSource struct {
	mock.Mock
}

func (m *MockCompletionSource) ListByHabit(ctx context.Context, userID, habitID string, from, to time.Time) ([]domain.CompletionEvent, error) {
	args := m.Called(ctx, userID, habitID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompletionEvent), args.Error(1)
}

func (m *MockCompletionSource) ListByGroupHabits(ctx context.Context, groupID string, from, to time.Time) (map[string][]domain.CompletionEvent, error) {
	args := m.Called(ctx, groupID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.CompletionEvent), args.Error(1)
}

func (m *MockCompletionSource) ListByGroupMembers(ctx context.Context, groupID string, from, to time.Time) (map[string][]domain.CompletionEvent, error) {
	args := m.Called(ctx, groupID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.CompletionEvent), args.Error(1)
}

func (m *MockCompletionSource) GetAnalyticsRecord(ctx context.Context, userID, habitID string) (*domain.HabitAnalyticsRecord, error) {
	args := m.Called(ctx, userID, habitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HabitAnalyticsRecord), args.Error(1)
}

type MockAnalyticsStore struct {
	mock.Mock
}

func (m *MockAnalyticsStore) SaveHabitSnapshot(ctx context.Context, snap *domain.HabitSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockAnalyticsStore) SaveCorrelation(ctx context.Context, result *domain.CorrelationResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockAnalyticsStore) SaveGroupMetrics(ctx context.Context, result *domain.GroupDynamicsResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockAnalyticsStore) GetLatestGroupMetrics(ctx context.Context, groupID string) (*domain.GroupDynamicsResult, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupDynamicsResult), args.Error(1)
}

func (m *MockAnalyticsStore) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}
