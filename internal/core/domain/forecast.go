package domain

import "time"

type ForecastPoint struct {
	Date                 time.Time `json:"date"`
	PredictedSuccessRate float64   `json:"predicted_success_rate"`
	Confidence           float64   `json:"confidence"`
}

type HabitForecast struct {
	HabitID           string          `json:"habit_id"`
	ForecastStartDate time.Time       `json:"forecast_start_date"`
	ForecastDays      int             `json:"forecast_days"`
	Predictions       []ForecastPoint `json:"predictions"`
	OverallConfidence float64         `json:"overall_confidence"`
	Trend             float64         `json:"trend"`
}

type AnomalyType string

const (
	AnomalyUnusuallyHigh     AnomalyType = "UNUSUALLY_HIGH"
	AnomalyUnusuallyLow      AnomalyType = "UNUSUALLY_LOW"
	AnomalyUnusualTiming     AnomalyType = "UNUSUAL_TIMING"
	AnomalyExceptionalStreak AnomalyType = "EXCEPTIONAL_STREAK"

	// AnomalyPatternBreak is part of the wire contract but no detection pass
	// currently produces it.
	AnomalyPatternBreak AnomalyType = "PATTERN_BREAK"
)

type Anomaly struct {
	Date        time.Time   `json:"date"`
	Type        AnomalyType `json:"type"`
	Severity    float64     `json:"severity"`
	Description string      `json:"description"`
}

// FormationStage follows the behavioral progression of habit entrenchment.
type FormationStage string

const (
	StageUnknown    FormationStage = "UNKNOWN"
	StageInitiation FormationStage = "INITIATION"
	StageLearning   FormationStage = "LEARNING"
	StageStability  FormationStage = "STABILITY"
	StageMastery    FormationStage = "MASTERY"
)

type FormationPrediction struct {
	HabitID              string         `json:"habit_id"`
	CurrentStage         FormationStage `json:"current_stage"`
	DaysToNextStage      int            `json:"days_to_next_stage"`
	FormationProbability float64        `json:"formation_probability"`
}
