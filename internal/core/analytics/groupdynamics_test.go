package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matteoferri/habitlens-engine/internal/core/analytics"
	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

func newGroupEngine() *analytics.GroupDynamicsEngine {
	return analytics.NewGroupDynamicsEngine(analytics.NewAggregator())
}

func memberSeries(userID string, start, days int, completions []bool) []domain.CompletionEvent {
	base := day(2024, 3, start)
	events := make([]domain.CompletionEvent, 0, len(completions))
	for i, completed := range completions {
		if i >= days {
			break
		}
		e := event("gh1", base.AddDate(0, 0, i), completed)
		e.UserID = userID
		events = append(events, e)
	}
	return events
}

func TestGroupDynamicsAnalyze(t *testing.T) {
	engine := newGroupEngine()
	start := day(2024, 3, 1)
	end := day(2024, 3, 14)

	t.Run("Inverted range is rejected", func(t *testing.T) {
		_, err := engine.Analyze("g1", nil, end, start)
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	})

	t.Run("Scores stay within [0,1]", func(t *testing.T) {
		members := map[string][]domain.CompletionEvent{
			"u1": memberSeries("u1", 1, 14, []bool{true, false, true, true, false, true, true, false, true, true, false, true, true, true}),
			"u2": memberSeries("u2", 1, 14, []bool{false, false, true, false, false, true, false, false, true, false, false, true, false, false}),
			"u3": nil,
		}

		result, err := engine.Analyze("g1", members, start, end)

		require.NoError(t, err)
		for name, score := range map[string]float64{
			"momentum": result.MomentumScore,
			"cohesion": result.CohesionScore,
			"synergy":  result.SynergisticScore,
		} {
			assert.GreaterOrEqual(t, score, 0.0, name)
			assert.LessOrEqual(t, score, 1.0, name)
		}
	})

	t.Run("Identical member rates score perfect cohesion", func(t *testing.T) {
		pattern := []bool{true, false, true, false, true, false, true, false, true, false, true, false, true, false}
		members := map[string][]domain.CompletionEvent{
			"u1": memberSeries("u1", 1, 14, pattern),
			"u2": memberSeries("u2", 1, 14, pattern),
		}

		result, err := engine.Analyze("g1", members, start, end)

		require.NoError(t, err)
		assert.Equal(t, 1.0, result.CohesionScore)
	})

	t.Run("Divergent member rates lower cohesion", func(t *testing.T) {
		allDone := make([]bool, 14)
		for i := range allDone {
			allDone[i] = true
		}
		members := map[string][]domain.CompletionEvent{
			"u1": memberSeries("u1", 1, 14, allDone),
			"u2": memberSeries("u2", 1, 14, make([]bool, 14)),
		}

		result, err := engine.Analyze("g1", members, start, end)

		require.NoError(t, err)
		assert.Equal(t, 0.0, result.CohesionScore)
	})

	t.Run("Recent activity outweighs old activity in momentum", func(t *testing.T) {
		recentHeavy := make([]bool, 14)
		oldHeavy := make([]bool, 14)
		for i := 0; i < 7; i++ {
			oldHeavy[i] = true
			recentHeavy[13-i] = true
		}

		fading, err := engine.Analyze("g1", map[string][]domain.CompletionEvent{
			"u1": memberSeries("u1", 1, 14, oldHeavy),
		}, start, end)
		require.NoError(t, err)

		surging, err := engine.Analyze("g1", map[string][]domain.CompletionEvent{
			"u1": memberSeries("u1", 1, 14, recentHeavy),
		}, start, end)
		require.NoError(t, err)

		assert.Greater(t, surging.MomentumScore, fading.MomentumScore)
	})

	t.Run("Group streak counts consecutive days above the floor", func(t *testing.T) {
		// days 1-3 done, day 4 missed, days 5-6 done
		members := map[string][]domain.CompletionEvent{
			"u1": memberSeries("u1", 1, 6, []bool{true, true, true, false, true, true}),
		}

		result, err := engine.Analyze("g1", members, start, day(2024, 3, 6))

		require.NoError(t, err)
		assert.Equal(t, 3, result.GroupStreak)
	})

	t.Run("Participation counts silent members", func(t *testing.T) {
		members := map[string][]domain.CompletionEvent{
			"u1": memberSeries("u1", 1, 14, []bool{true, true, false, true}),
			"u2": nil,
		}

		result, err := engine.Analyze("g1", members, start, end)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Participation.TotalMembers)
		assert.Equal(t, 1, result.Participation.ActiveMembers)
		assert.Equal(t, 0.5, result.Participation.ParticipationRate)
		assert.Equal(t, 4, result.Participation.TotalAttempts)
		assert.Equal(t, 3, result.Participation.TotalCompletions)
		assert.Equal(t, 0.75, result.Participation.CompletionRate)
	})

	t.Run("Contributors rank by score with threshold classification", func(t *testing.T) {
		allDone := make([]bool, 14)
		for i := range allDone {
			allDone[i] = true
		}
		firstWeekOnly := make([]bool, 7)
		for i := range firstWeekOnly {
			firstWeekOnly[i] = true
		}

		members := map[string][]domain.CompletionEvent{
			"u-strong": memberSeries("u-strong", 1, 14, allDone),
			"u-mid":    memberSeries("u-mid", 1, 7, firstWeekOnly),
			"u-weak":   memberSeries("u-weak", 1, 14, []bool{false, false}),
		}

		result, err := engine.Analyze("g1", members, start, end)

		require.NoError(t, err)
		require.Len(t, result.KeyContributors, 3)

		strong := result.KeyContributors[0]
		assert.Equal(t, "u-strong", strong.UserID)
		assert.Equal(t, domain.ContributorLeader, strong.ContributorType)
		assert.Equal(t, 14, strong.TotalAttempts)
		assert.Equal(t, 1.0, strong.CompletionRate)

		mid := result.KeyContributors[1]
		assert.Equal(t, "u-mid", mid.UserID)
		assert.Equal(t, domain.ContributorConsistent, mid.ContributorType)

		weak := result.KeyContributors[2]
		assert.Equal(t, "u-weak", weak.UserID)
		assert.Equal(t, domain.ContributorOccasional, weak.ContributorType)
	})

	t.Run("Empty group scores zero everywhere", func(t *testing.T) {
		result, err := engine.Analyze("g1", map[string][]domain.CompletionEvent{}, start, end)

		require.NoError(t, err)
		assert.Equal(t, 0.0, result.CohesionScore)
		assert.Equal(t, 0.0, result.SynergisticScore)
		assert.Equal(t, 0, result.GroupStreak)
		assert.Empty(t, result.KeyContributors)
		assert.Equal(t, 0, result.Participation.TotalMembers)
	})
}
