package domain

import "time"

type ContributorType string

const (
	ContributorLeader     ContributorType = "leader"
	ContributorConsistent ContributorType = "consistent"
	ContributorOccasional ContributorType = "occasional"
)

type KeyContributor struct {
	UserID                string          `json:"user_id"`
	TotalAttempts         int             `json:"total_attempts"`
	SuccessfulCompletions int             `json:"successful_completions"`
	CompletionRate        float64         `json:"completion_rate"`
	ContributionScore     float64         `json:"contribution_score"`
	ContributorType       ContributorType `json:"contributor_type"`
}

type ParticipationMetrics struct {
	TotalMembers      int     `json:"total_members"`
	ActiveMembers     int     `json:"active_members"`
	ParticipationRate float64 `json:"participation_rate"`
	TotalAttempts     int     `json:"total_attempts"`
	TotalCompletions  int     `json:"total_completions"`
	CompletionRate    float64 `json:"completion_rate"`
}

// GroupDynamicsResult scores a group's collective behavior over a window.
// All three scores are bounded to [0,1].
type GroupDynamicsResult struct {
	GroupID          string               `json:"group_id"`
	StartDate        time.Time            `json:"start_date"`
	EndDate          time.Time            `json:"end_date"`
	MomentumScore    float64              `json:"momentum_score"`
	CohesionScore    float64              `json:"cohesion_score"`
	SynergisticScore float64              `json:"synergistic_score"`
	GroupStreak      int                  `json:"group_streak"`
	KeyContributors  []KeyContributor     `json:"key_contributors"`
	Participation    ParticipationMetrics `json:"participation_metrics"`
	ComputedAt       time.Time            `json:"computed_at"`
}
