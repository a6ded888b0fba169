package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidDateRange    = errors.New("invalid date range: end date before start date")
	ErrSameHabit           = errors.New("correlation requires two distinct habits")
	ErrInvalidForecastDays = errors.New("forecast days must be positive")
	ErrAnalyticsNotFound   = errors.New("analytics record not found")
	ErrMetricsNotFound     = errors.New("group metrics not found")
)

const DateLayout = "2006-01-02"

// CompletionEvent is a single raw completion observation for a habit (or a
// group habit) on a calendar date. Events are immutable once produced by the
// record source; one event per entity/user/date is assumed but not enforced.
type CompletionEvent struct {
	EntityID    string     `json:"entity_id" db:"entity_id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Date        time.Time  `json:"date" db:"completion_date"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// Day returns the event's calendar date truncated to midnight UTC.
func (e CompletionEvent) Day() time.Time {
	return DayOf(e.Date)
}

func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStartOf returns the Monday of the week containing t, at midnight UTC.
func WeekStartOf(t time.Time) time.Time {
	d := DayOf(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// HabitAnalyticsRecord is the stored per-user/per-habit analytics row used by
// formation prediction. It is maintained by the derived-cache layer, not by
// the engines themselves.
type HabitAnalyticsRecord struct {
	UserID           string         `json:"user_id" db:"user_id"`
	HabitID          string         `json:"habit_id" db:"habit_id"`
	SuccessRate      float64        `json:"success_rate" db:"success_rate"`
	ConsistencyScore float64        `json:"consistency_score" db:"consistency_score"`
	HabitStrength    float64        `json:"habit_strength" db:"habit_strength"`
	FormationStage   FormationStage `json:"formation_stage" db:"formation_stage"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// HabitSnapshot is a derived cache row summarizing one habit over a window.
type HabitSnapshot struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	HabitID       string    `json:"habit_id" db:"habit_id"`
	StartDate     time.Time `json:"start_date" db:"start_date"`
	EndDate       time.Time `json:"end_date" db:"end_date"`
	OverallRate   float64   `json:"overall_rate" db:"overall_rate"`
	CurrentStreak int       `json:"current_streak" db:"current_streak"`
	MaxStreak     int       `json:"max_streak" db:"max_streak"`
	DailyRates    []float64 `json:"daily_rates" db:"-"`
	ComputedAt    time.Time `json:"computed_at" db:"computed_at"`
}

// CompletionSource yields raw completion events and stored analytics records.
// Implementations own storage; the engines only ever read through it.
type CompletionSource interface {
	// ListByHabit returns events for one user+habit in the inclusive range.
	ListByHabit(ctx context.Context, userID, habitID string, from, to time.Time) ([]CompletionEvent, error)

	// ListByGroupHabits returns events for every habit attached to a group,
	// keyed by habit (entity) id.
	ListByGroupHabits(ctx context.Context, groupID string, from, to time.Time) (map[string][]CompletionEvent, error)

	// ListByGroupMembers returns events for every member of a group, keyed by
	// user id.
	ListByGroupMembers(ctx context.Context, groupID string, from, to time.Time) (map[string][]CompletionEvent, error)

	// GetAnalyticsRecord looks up the stored analytics row for a user+habit.
	// Returns ErrAnalyticsNotFound when none exists.
	GetAnalyticsRecord(ctx context.Context, userID, habitID string) (*HabitAnalyticsRecord, error)
}

// AnalyticsRepository persists derived results so the API layer can serve
// them without recomputation.
type AnalyticsRepository interface {
	SaveHabitSnapshot(ctx context.Context, snap *HabitSnapshot) error

	SaveCorrelation(ctx context.Context, result *CorrelationResult) error

	SaveGroupMetrics(ctx context.Context, result *GroupDynamicsResult) error

	// GetLatestGroupMetrics returns the most recent stored metrics for a
	// group, or ErrMetricsNotFound.
	GetLatestGroupMetrics(ctx context.Context, groupID string) (*GroupDynamicsResult, error)

	// PurgeStale deletes derived rows computed before the cutoff and reports
	// how many were removed.
	PurgeStale(ctx context.Context, olderThan time.Time) (int64, error)
}
