package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

const (
	lowMomentumFloor = 0.4
	lowCohesionFloor = 0.5

	// Above this collective rate, a rate-improvement target has no headroom
	// left and the generator falls back to a streak challenge.
	rateHeadroomCeiling = 0.95
)

// ChallengeGenerator synthesizes a team challenge from a group's measured
// dynamics. The reference time is an explicit parameter so generation stays
// deterministic.
type ChallengeGenerator struct{}

func NewChallengeGenerator() *ChallengeGenerator {
	return &ChallengeGenerator{}
}

// Generate targets the group's weakest dimension: momentum first, then
// cohesion, otherwise streak extension. Improvement targets always sit
// strictly above the measured baseline; the stretch is bounded by the
// difficulty derived from member dispersion.
func (g *ChallengeGenerator) Generate(dynamics *domain.GroupDynamicsResult, now time.Time) *domain.ChallengeSpec {
	difficulty := difficultyFor(dynamics.CohesionScore)
	duration := durationFor(difficulty)
	start := domain.DayOf(now)

	spec := &domain.ChallengeSpec{
		ID:              uuid.NewString(),
		GroupID:         dynamics.GroupID,
		DurationDays:    duration,
		DifficultyLevel: difficulty,
		Rewards:         rewardsFor(difficulty),
		StartDate:       start,
		EndDate:         start.AddDate(0, 0, duration-1),
		Status:          domain.ChallengeStatusProposed,
	}

	currentRate := dynamics.Participation.CompletionRate

	switch {
	case dynamics.MomentumScore < lowMomentumFloor && currentRate < rateHeadroomCeiling:
		spec.ChallengeType = domain.ChallengeTypeMomentumBoost
		spec.Priority = domain.PriorityHigh
		spec.Title = "Get the group moving again"
		spec.Target = rateTarget(domain.MetricCompletionRate, currentRate, difficulty)
		spec.Description = fmt.Sprintf(
			"Group momentum has dropped. Push the collective completion rate from %.0f%% to %.0f%% over %d days.",
			currentRate*100, spec.Target.TargetValue*100, duration)

	case dynamics.CohesionScore < lowCohesionFloor && dynamics.Participation.ParticipationRate < rateHeadroomCeiling:
		spec.ChallengeType = domain.ChallengeTypeParticipation
		spec.Priority = domain.PriorityMedium
		spec.Title = "Everyone in"
		spec.Target = rateTarget(domain.MetricParticipationRate, dynamics.Participation.ParticipationRate, difficulty)
		spec.Description = fmt.Sprintf(
			"Participation is uneven. Raise the share of active members from %.0f%% to %.0f%% over %d days.",
			dynamics.Participation.ParticipationRate*100, spec.Target.TargetValue*100, duration)

	default:
		stretch := streakStretchFor(difficulty)
		spec.ChallengeType = domain.ChallengeTypeStreakExtension
		spec.Priority = domain.PriorityLow
		spec.Title = "Extend the group streak"
		spec.Target = domain.ChallengeTarget{
			Metric:      domain.MetricGroupStreak,
			TargetValue: float64(dynamics.GroupStreak + stretch),
			Unit:        "days",
		}
		spec.Description = fmt.Sprintf(
			"The group is doing well. Stretch the current %d-day group streak to %d days.",
			dynamics.GroupStreak, dynamics.GroupStreak+stretch)
	}

	return spec
}

// rateTarget adds the difficulty-bounded stretch on top of the baseline,
// keeping the result strictly above it and at most 1.0.
func rateTarget(metric string, current float64, difficulty string) domain.ChallengeTarget {
	target := math.Min(1.0, current+rateStretchFor(difficulty))
	if target <= current {
		target = math.Min(1.0, current+0.01)
	}
	return domain.ChallengeTarget{
		Metric:      metric,
		TargetValue: target,
		Unit:        "ratio",
	}
}

func difficultyFor(cohesion float64) string {
	switch {
	case cohesion < 0.4:
		return domain.DifficultyHard
	case cohesion < 0.7:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyEasy
	}
}

func durationFor(difficulty string) int {
	switch difficulty {
	case domain.DifficultyHard:
		return 21
	case domain.DifficultyMedium:
		return 14
	default:
		return 7
	}
}

func rateStretchFor(difficulty string) float64 {
	switch difficulty {
	case domain.DifficultyHard:
		return 0.15
	case domain.DifficultyMedium:
		return 0.10
	default:
		return 0.05
	}
}

func streakStretchFor(difficulty string) int {
	switch difficulty {
	case domain.DifficultyHard:
		return 7
	case domain.DifficultyMedium:
		return 5
	default:
		return 3
	}
}

func rewardsFor(difficulty string) []string {
	rewards := []string{"group badge", "progress highlight"}
	switch difficulty {
	case domain.DifficultyMedium:
		rewards = append(rewards, "weekly spotlight")
	case domain.DifficultyHard:
		rewards = append(rewards, "weekly spotlight", "champion title")
	}
	return rewards
}
