package domain

import "time"

// DailyStat aggregates one calendar day. CompletedHabits never exceeds
// TotalHabits and CompletionRate stays within [0,1].
type DailyStat struct {
	Date            time.Time `json:"date"`
	TotalHabits     int       `json:"total_habits"`
	CompletedHabits int       `json:"completed_habits"`
	CompletionRate  float64   `json:"completion_rate"`
}

type DailyAggregationResult struct {
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	Days        []DailyStat `json:"days"`
	OverallRate float64     `json:"overall_completion_rate"`
}

// WeeklyStat covers one Monday-aligned week. DailyRates always carries all
// seven weekdays; days outside the queried range stay at 0.
type WeeklyStat struct {
	WeekStart      time.Time                `json:"week_start"`
	CompletionRate float64                  `json:"completion_rate"`
	DailyRates     map[time.Weekday]float64 `json:"daily_rates"`
}

type WeeklyAggregationResult struct {
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	Weeks     []WeeklyStat `json:"weeks"`
}

// HourlyStat buckets timestamped completions by hour of day (0-23).
type HourlyStat struct {
	Hour               int     `json:"hour"`
	TotalAttempts      int     `json:"total_attempts"`
	SuccessfulAttempts int     `json:"successful_attempts"`
	SuccessRate        float64 `json:"success_rate"`
}

// TimePatternResult always reports all 24 hours; PeakHour is nil when no
// timestamped data exists.
type TimePatternResult struct {
	Hours    []HourlyStat `json:"hours"`
	PeakHour *int         `json:"peak_hour,omitempty"`
}

// StreakPeriod is a maximal run of consecutive completed calendar dates.
type StreakPeriod struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Length    int       `json:"length"`
}

type StreakAnalysisResult struct {
	EntityID      string         `json:"entity_id"`
	CurrentStreak int            `json:"current_streak"`
	MaxStreak     int            `json:"max_streak"`
	AllStreaks    []StreakPeriod `json:"all_streaks"`
}

// GroupAggregationResult fans multiple group-habit series into one daily
// aggregation and tracks how many completions each habit contributed per day.
type GroupAggregationResult struct {
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	Days        []DailyStat `json:"days"`
	OverallRate float64     `json:"overall_completion_rate"`

	// DailyParticipation maps date key (YYYY-MM-DD) -> habit id -> completed
	// count for that habit on that day.
	DailyParticipation map[string]map[string]int `json:"daily_participation"`
}

// HabitOverview bundles the per-habit aggregations served together.
type HabitOverview struct {
	HabitID string                   `json:"habit_id"`
	Daily   *DailyAggregationResult  `json:"daily"`
	Weekly  *WeeklyAggregationResult `json:"weekly"`
	Streaks *StreakAnalysisResult    `json:"streaks"`
	Timing  *TimePatternResult       `json:"timing"`
}
