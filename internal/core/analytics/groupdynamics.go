package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

const (
	// momentumDecayDays controls how fast old days lose weight in the
	// momentum score.
	momentumDecayDays = 7.0

	// groupStreakFloor is the daily group rate a day must exceed to extend
	// the group streak.
	groupStreakFloor = 0.5

	// Contributor classification thresholds.
	leaderScoreFloor     = 0.75
	leaderAttemptsFloor  = 10
	consistentScoreFloor = 0.5
)

// GroupDynamicsEngine scores a group's collective behavior from per-member
// completion series.
type GroupDynamicsEngine struct {
	agg *Aggregator
}

func NewGroupDynamicsEngine(agg *Aggregator) *GroupDynamicsEngine {
	return &GroupDynamicsEngine{agg: agg}
}

// Analyze computes momentum, cohesion, synergy, the group streak, key
// contributors and participation metrics over the inclusive range. Members
// with no events still count toward participation totals.
func (g *GroupDynamicsEngine) Analyze(groupID string, members map[string][]domain.CompletionEvent, start, end time.Time) (*domain.GroupDynamicsResult, error) {
	start, end = domain.DayOf(start), domain.DayOf(end)
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	var all []domain.CompletionEvent
	for _, records := range members {
		all = append(all, records...)
	}

	daily, err := g.agg.AggregateDaily(all, start, end)
	if err != nil {
		return nil, err
	}

	memberRates := make(map[string]float64, len(members))
	for userID, records := range members {
		memberRates[userID] = successRate(records)
	}

	result := &domain.GroupDynamicsResult{
		GroupID:          groupID,
		StartDate:        start,
		EndDate:          end,
		MomentumScore:    momentumScore(daily.Days, end),
		CohesionScore:    cohesionScore(memberRates),
		SynergisticScore: synergyScore(daily.OverallRate, memberRates),
		GroupStreak:      groupStreak(daily.Days),
		KeyContributors:  g.rankContributors(members, start, end),
		Participation:    participationMetrics(members),
	}

	return result, nil
}

// momentumScore is a normalized exponentially-weighted average of daily group
// rates, weighting recent days higher.
func momentumScore(days []domain.DailyStat, end time.Time) float64 {
	var weightedSum, weightSum float64
	for _, d := range days {
		age := end.Sub(d.Date).Hours() / 24
		w := math.Exp(-age / momentumDecayDays)
		weightedSum += w * d.CompletionRate
		weightSum += w
	}
	if weightSum == 0 {
		return 0.0
	}
	return clamp01(weightedSum / weightSum)
}

// cohesionScore is the inverse dispersion of member completion rates: zero
// spread scores 1.0, a spread of 0.5 or more scores 0.
func cohesionScore(memberRates map[string]float64) float64 {
	if len(memberRates) == 0 {
		return 0.0
	}

	var sum float64
	for _, r := range memberRates {
		sum += r
	}
	mean := sum / float64(len(memberRates))

	var variance float64
	for _, r := range memberRates {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(memberRates))

	return clamp01(1.0 - 2.0*math.Sqrt(variance))
}

// synergyScore compares the observed collective rate against the rate
// independent member performance predicts. 0.5 is the independent baseline.
func synergyScore(observed float64, memberRates map[string]float64) float64 {
	if len(memberRates) == 0 {
		return 0.0
	}

	var sum float64
	for _, r := range memberRates {
		sum += r
	}
	predicted := sum / float64(len(memberRates))

	return clamp01(0.5 + (observed - predicted))
}

// groupStreak is the longest run of consecutive days whose group rate
// exceeds the floor.
func groupStreak(days []domain.DailyStat) int {
	longest, run := 0, 0
	for _, d := range days {
		if d.CompletionRate > groupStreakFloor {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// rankContributors scores each member on completion rate, volume and recent
// activity, then classifies them by threshold rules.
func (g *GroupDynamicsEngine) rankContributors(members map[string][]domain.CompletionEvent, start, end time.Time) []domain.KeyContributor {
	rangeDays := int(end.Sub(start).Hours()/24) + 1
	recentCutoff := end.AddDate(0, 0, -6)

	contributors := make([]domain.KeyContributor, 0, len(members))
	for userID, records := range members {
		attempts := len(records)
		completions := 0
		var recent []domain.CompletionEvent
		for _, r := range records {
			if r.Completed {
				completions++
			}
			if !r.Day().Before(recentCutoff) {
				recent = append(recent, r)
			}
		}

		rate := 0.0
		if attempts > 0 {
			rate = float64(completions) / float64(attempts)
		}
		volume := math.Min(1.0, float64(attempts)/float64(rangeDays))
		score := 0.5*rate + 0.3*volume + 0.2*successRate(recent)

		c := domain.KeyContributor{
			UserID:                userID,
			TotalAttempts:         attempts,
			SuccessfulCompletions: completions,
			CompletionRate:        rate,
			ContributionScore:     score,
			ContributorType:       domain.ContributorOccasional,
		}
		switch {
		case score >= leaderScoreFloor && attempts >= leaderAttemptsFloor:
			c.ContributorType = domain.ContributorLeader
		case score >= consistentScoreFloor:
			c.ContributorType = domain.ContributorConsistent
		}
		contributors = append(contributors, c)
	}

	sort.SliceStable(contributors, func(i, j int) bool {
		if contributors[i].ContributionScore != contributors[j].ContributionScore {
			return contributors[i].ContributionScore > contributors[j].ContributionScore
		}
		return contributors[i].UserID < contributors[j].UserID
	})

	return contributors
}

func participationMetrics(members map[string][]domain.CompletionEvent) domain.ParticipationMetrics {
	m := domain.ParticipationMetrics{TotalMembers: len(members)}
	for _, records := range members {
		if len(records) > 0 {
			m.ActiveMembers++
		}
		m.TotalAttempts += len(records)
		for _, r := range records {
			if r.Completed {
				m.TotalCompletions++
			}
		}
	}
	if m.TotalMembers > 0 {
		m.ParticipationRate = float64(m.ActiveMembers) / float64(m.TotalMembers)
	}
	if m.TotalAttempts > 0 {
		m.CompletionRate = float64(m.TotalCompletions) / float64(m.TotalAttempts)
	}
	return m
}

func successRate(records []domain.CompletionEvent) float64 {
	if len(records) == 0 {
		return 0.0
	}
	completed := 0
	for _, r := range records {
		if r.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(records))
}
