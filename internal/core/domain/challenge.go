package domain

import "time"

const (
	ChallengeTypeMomentumBoost   = "momentum_boost"
	ChallengeTypeParticipation   = "participation"
	ChallengeTypeStreakExtension = "streak_extension"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	ChallengeStatusProposed = "proposed"

	MetricCompletionRate    = "completion_rate"
	MetricParticipationRate = "participation_rate"
	MetricGroupStreak       = "group_streak_days"
)

type ChallengeTarget struct {
	Metric      string  `json:"metric"`
	TargetValue float64 `json:"target_value"`
	Unit        string  `json:"unit"`
}

// ChallengeSpec is a synthesized team challenge calibrated to a group's
// current dynamics. For improvement challenges TargetValue is strictly above
// the measured baseline on the chosen metric.
type ChallengeSpec struct {
	ID              string          `json:"id"`
	GroupID         string          `json:"group_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	ChallengeType   string          `json:"challenge_type"`
	Target          ChallengeTarget `json:"target"`
	DurationDays    int             `json:"duration_days"`
	DifficultyLevel string          `json:"difficulty_level"`
	Priority        string          `json:"priority"`
	Rewards         []string        `json:"rewards"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Status          string          `json:"status"`
}
