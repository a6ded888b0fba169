package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matteoferri/habitlens-engine/internal/core/analytics"
	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

func dynamicsFixture(momentum, cohesion float64) *domain.GroupDynamicsResult {
	return &domain.GroupDynamicsResult{
		GroupID:          "g1",
		MomentumScore:    momentum,
		CohesionScore:    cohesion,
		SynergisticScore: 0.5,
		GroupStreak:      4,
		Participation: domain.ParticipationMetrics{
			TotalMembers:      4,
			ActiveMembers:     3,
			ParticipationRate: 0.75,
			TotalAttempts:     40,
			TotalCompletions:  24,
			CompletionRate:    0.6,
		},
	}
}

func TestChallengeGenerate(t *testing.T) {
	gen := analytics.NewChallengeGenerator()
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	t.Run("Low momentum proposes a momentum boost", func(t *testing.T) {
		spec := gen.Generate(dynamicsFixture(0.2, 0.8), now)

		assert.Equal(t, domain.ChallengeTypeMomentumBoost, spec.ChallengeType)
		assert.Equal(t, domain.PriorityHigh, spec.Priority)
		assert.Equal(t, domain.MetricCompletionRate, spec.Target.Metric)
		assert.Greater(t, spec.Target.TargetValue, 0.6)
		assert.LessOrEqual(t, spec.Target.TargetValue, 1.0)
		assert.Equal(t, "ratio", spec.Target.Unit)
	})

	t.Run("Low cohesion proposes a participation push", func(t *testing.T) {
		spec := gen.Generate(dynamicsFixture(0.7, 0.3), now)

		assert.Equal(t, domain.ChallengeTypeParticipation, spec.ChallengeType)
		assert.Equal(t, domain.PriorityMedium, spec.Priority)
		assert.Equal(t, domain.MetricParticipationRate, spec.Target.Metric)
		assert.Greater(t, spec.Target.TargetValue, 0.75)
	})

	t.Run("Healthy group gets a streak extension", func(t *testing.T) {
		spec := gen.Generate(dynamicsFixture(0.8, 0.9), now)

		assert.Equal(t, domain.ChallengeTypeStreakExtension, spec.ChallengeType)
		assert.Equal(t, domain.PriorityLow, spec.Priority)
		assert.Equal(t, domain.MetricGroupStreak, spec.Target.Metric)
		// easy difficulty stretches the 4-day streak by 3
		assert.Equal(t, 7.0, spec.Target.TargetValue)
		assert.Equal(t, "days", spec.Target.Unit)
	})

	t.Run("Difficulty follows cohesion dispersion", func(t *testing.T) {
		cases := []struct {
			cohesion     float64
			difficulty   string
			durationDays int
		}{
			{0.2, domain.DifficultyHard, 21},
			{0.5, domain.DifficultyMedium, 14},
			{0.9, domain.DifficultyEasy, 7},
		}
		for _, tc := range cases {
			spec := gen.Generate(dynamicsFixture(0.8, tc.cohesion), now)
			assert.Equal(t, tc.difficulty, spec.DifficultyLevel)
			assert.Equal(t, tc.durationDays, spec.DurationDays)
		}
	})

	t.Run("Dates span exactly the duration", func(t *testing.T) {
		spec := gen.Generate(dynamicsFixture(0.8, 0.9), now)

		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), spec.StartDate)
		assert.Equal(t, spec.StartDate.AddDate(0, 0, spec.DurationDays-1), spec.EndDate)
	})

	t.Run("Rate targets stay strictly above a near-perfect baseline", func(t *testing.T) {
		dynamics := dynamicsFixture(0.2, 0.9)
		dynamics.Participation.CompletionRate = 0.94

		spec := gen.Generate(dynamics, now)

		require.Equal(t, domain.ChallengeTypeMomentumBoost, spec.ChallengeType)
		assert.Greater(t, spec.Target.TargetValue, 0.94)
		assert.LessOrEqual(t, spec.Target.TargetValue, 1.0)
	})

	t.Run("No headroom falls back to a streak challenge", func(t *testing.T) {
		dynamics := dynamicsFixture(0.2, 0.9)
		dynamics.Participation.CompletionRate = 0.98

		spec := gen.Generate(dynamics, now)

		assert.Equal(t, domain.ChallengeTypeStreakExtension, spec.ChallengeType)
	})

	t.Run("Every proposal is complete", func(t *testing.T) {
		spec := gen.Generate(dynamicsFixture(0.2, 0.3), now)

		assert.NotEmpty(t, spec.ID)
		assert.Equal(t, "g1", spec.GroupID)
		assert.NotEmpty(t, spec.Title)
		assert.NotEmpty(t, spec.Description)
		assert.NotEmpty(t, spec.Rewards)
		assert.Equal(t, domain.ChallengeStatusProposed, spec.Status)
	})

	t.Run("Harder challenges carry richer rewards", func(t *testing.T) {
		easy := gen.Generate(dynamicsFixture(0.8, 0.9), now)
		hard := gen.Generate(dynamicsFixture(0.8, 0.2), now)

		assert.Greater(t, len(hard.Rewards), len(easy.Rewards))
		assert.Contains(t, hard.Rewards, "champion title")
	})
}
