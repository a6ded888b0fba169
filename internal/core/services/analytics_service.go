package services

import (
	"context"
	"log"
	"time"

	"github.com/matteoferri/habitlens-engine/internal/core/analytics"
	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

// forecastLookbackDays is how much history feeds a forecast.
const forecastLookbackDays = 90

// AnalyticsService orchestrates the pure engines over the completion source
// and persists derived results. Engine calls are independent and
// reproducible; persistence failures degrade to a log line instead of
// failing the computation that already succeeded.
type AnalyticsService struct {
	source domain.CompletionSource
	store  domain.AnalyticsRepository

	agg        *analytics.Aggregator
	corr       *analytics.CorrelationAnalyzer
	timing     *analytics.TimingAnalyzer
	predictive *analytics.PredictiveService
	groups     *analytics.GroupDynamicsEngine
	challenges *analytics.ChallengeGenerator
}

func NewAnalyticsService(source domain.CompletionSource, store domain.AnalyticsRepository) *AnalyticsService {
	agg := analytics.NewAggregator()
	return &AnalyticsService{
		source:     source,
		store:      store,
		agg:        agg,
		corr:       analytics.NewCorrelationAnalyzer(),
		timing:     analytics.NewTimingAnalyzer(),
		predictive: analytics.NewPredictiveService(agg),
		groups:     analytics.NewGroupDynamicsEngine(agg),
		challenges: analytics.NewChallengeGenerator(),
	}
}

// HabitSummary aggregates one habit across daily, weekly, streak and timing
// views and caches a snapshot of the window.
func (s *AnalyticsService) HabitSummary(ctx context.Context, userID, habitID string, from, to time.Time) (*domain.HabitOverview, error) {
	if domain.DayOf(to).Before(domain.DayOf(from)) {
		return nil, domain.ErrInvalidDateRange
	}

	records, err := s.source.ListByHabit(ctx, userID, habitID, from, to)
	if err != nil {
		return nil, err
	}

	daily, err := s.agg.AggregateDaily(records, from, to)
	if err != nil {
		return nil, err
	}
	weekly, err := s.agg.AggregateWeekly(records, from, to)
	if err != nil {
		return nil, err
	}
	streaks := s.agg.AnalyzeStreaks(records, habitID)
	timing := s.agg.AggregateTimePatterns(records)

	s.saveSnapshot(ctx, userID, habitID, daily, streaks)

	return &domain.HabitOverview{
		HabitID: habitID,
		Daily:   daily,
		Weekly:  weekly,
		Streaks: streaks,
		Timing:  timing,
	}, nil
}

func (s *AnalyticsService) saveSnapshot(ctx context.Context, userID, habitID string, daily *domain.DailyAggregationResult, streaks *domain.StreakAnalysisResult) {
	rates := make([]float64, 0, len(daily.Days))
	for _, d := range daily.Days {
		rates = append(rates, d.CompletionRate)
	}

	snap := &domain.HabitSnapshot{
		UserID:        userID,
		HabitID:       habitID,
		StartDate:     daily.StartDate,
		EndDate:       daily.EndDate,
		OverallRate:   daily.OverallRate,
		CurrentStreak: streaks.CurrentStreak,
		MaxStreak:     streaks.MaxStreak,
		DailyRates:    rates,
		ComputedAt:    time.Now().UTC(),
	}
	if err := s.store.SaveHabitSnapshot(ctx, snap); err != nil {
		log.Printf("[ANALYTICS] failed to cache snapshot for habit %s: %v", habitID, err)
	}
}

// Timing runs the optimal-timing analysis over the habit's history.
func (s *AnalyticsService) Timing(ctx context.Context, userID, habitID string, from, to time.Time) (*domain.TimingAnalysisResult, error) {
	if domain.DayOf(to).Before(domain.DayOf(from)) {
		return nil, domain.ErrInvalidDateRange
	}
	records, err := s.source.ListByHabit(ctx, userID, habitID, from, to)
	if err != nil {
		return nil, err
	}
	return s.timing.Analyze(records), nil
}

// Forecast projects the habit over the requested horizon from 90 days of
// history starting at the day after the reference time.
func (s *AnalyticsService) Forecast(ctx context.Context, userID, habitID string, days int) (*domain.HabitForecast, error) {
	if days <= 0 {
		return nil, domain.ErrInvalidForecastDays
	}

	now := time.Now().UTC()
	records, err := s.source.ListByHabit(ctx, userID, habitID, now.AddDate(0, 0, -forecastLookbackDays), now)
	if err != nil {
		return nil, err
	}

	return s.predictive.Forecast(habitID, records, domain.DayOf(now).AddDate(0, 0, 1), days)
}

// Anomalies runs the three detection passes over the range.
func (s *AnalyticsService) Anomalies(ctx context.Context, userID, habitID string, from, to time.Time) ([]domain.Anomaly, error) {
	if domain.DayOf(to).Before(domain.DayOf(from)) {
		return nil, domain.ErrInvalidDateRange
	}
	records, err := s.source.ListByHabit(ctx, userID, habitID, from, to)
	if err != nil {
		return nil, err
	}
	return s.predictive.DetectAnomalies(records, habitID), nil
}

// Correlate relates two habits over the range and caches the pair result.
func (s *AnalyticsService) Correlate(ctx context.Context, userID, habit1ID, habit2ID string, from, to time.Time) (*domain.CorrelationResult, error) {
	if habit1ID == habit2ID {
		return nil, domain.ErrSameHabit
	}
	if domain.DayOf(to).Before(domain.DayOf(from)) {
		return nil, domain.ErrInvalidDateRange
	}

	series1, err := s.source.ListByHabit(ctx, userID, habit1ID, from, to)
	if err != nil {
		return nil, err
	}
	series2, err := s.source.ListByHabit(ctx, userID, habit2ID, from, to)
	if err != nil {
		return nil, err
	}

	result, err := s.corr.Correlate(userID, habit1ID, habit2ID, series1, series2, from, to)
	if err != nil {
		return nil, err
	}
	result.ComputedAt = time.Now().UTC()

	if err := s.store.SaveCorrelation(ctx, result); err != nil {
		log.Printf("[ANALYTICS] failed to cache correlation %s/%s: %v", habit1ID, habit2ID, err)
	}

	return result, nil
}

// Formation predicts the habit-formation stage transition. A user/habit pair
// with no stored analytics record yields the UNKNOWN prediction, not an
// error.
func (s *AnalyticsService) Formation(ctx context.Context, userID, habitID string) (*domain.FormationPrediction, error) {
	record, err := s.source.GetAnalyticsRecord(ctx, userID, habitID)
	if err != nil {
		if err == domain.ErrAnalyticsNotFound {
			return s.predictive.PredictFormation(habitID, nil), nil
		}
		return nil, err
	}
	return s.predictive.PredictFormation(habitID, record), nil
}

// GroupDynamics scores the group over the range and caches the metrics.
func (s *AnalyticsService) GroupDynamics(ctx context.Context, groupID string, from, to time.Time) (*domain.GroupDynamicsResult, error) {
	members, err := s.source.ListByGroupMembers(ctx, groupID, from, to)
	if err != nil {
		return nil, err
	}

	result, err := s.groups.Analyze(groupID, members, from, to)
	if err != nil {
		return nil, err
	}
	result.ComputedAt = time.Now().UTC()

	if err := s.store.SaveGroupMetrics(ctx, result); err != nil {
		log.Printf("[ANALYTICS] failed to cache group metrics for %s: %v", groupID, err)
	}

	return result, nil
}

// LatestGroupMetrics serves the most recently computed group metrics from the
// derived cache without triggering a recompute. Returns ErrMetricsNotFound
// when nothing has been computed for the group yet.
func (s *AnalyticsService) LatestGroupMetrics(ctx context.Context, groupID string) (*domain.GroupDynamicsResult, error) {
	return s.store.GetLatestGroupMetrics(ctx, groupID)
}

// GroupCompletions fans in every habit attached to the group.
func (s *AnalyticsService) GroupCompletions(ctx context.Context, groupID string, from, to time.Time) (*domain.GroupAggregationResult, error) {
	byHabit, err := s.source.ListByGroupHabits(ctx, groupID, from, to)
	if err != nil {
		return nil, err
	}
	return s.agg.AggregateGroupCompletions(byHabit, from, to)
}

// ProposeChallenge derives a challenge from the group's trailing 30 days.
func (s *AnalyticsService) ProposeChallenge(ctx context.Context, groupID string) (*domain.ChallengeSpec, error) {
	now := time.Now().UTC()

	dynamics, err := s.GroupDynamics(ctx, groupID, now.AddDate(0, 0, -29), now)
	if err != nil {
		return nil, err
	}

	return s.challenges.Generate(dynamics, now), nil
}

// PurgeStale removes derived rows older than the cutoff.
func (s *AnalyticsService) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	return s.store.PurgeStale(ctx, olderThan)
}
