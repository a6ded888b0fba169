package domain

import "time"

type CorrelationType string

const (
	CorrelationPositive CorrelationType = "POSITIVE"
	CorrelationNegative CorrelationType = "NEGATIVE"
	CorrelationNeutral  CorrelationType = "NEUTRAL"

	// The causal variants are reserved for lag-based analysis and are never
	// emitted by plain Pearson classification.
	CorrelationCausal        CorrelationType = "CAUSAL"
	CorrelationInverseCausal CorrelationType = "INVERSE_CAUSAL"
)

// CorrelationResult relates two habits' completion series. The coefficient is
// symmetric under habit swap; ids are stored in call order but carry no
// directional meaning.
type CorrelationResult struct {
	UserID      string          `json:"user_id" db:"user_id"`
	Habit1ID    string          `json:"habit1_id" db:"habit1_id"`
	Habit2ID    string          `json:"habit2_id" db:"habit2_id"`
	Coefficient float64         `json:"coefficient" db:"coefficient"`
	Type        CorrelationType `json:"type" db:"correlation_type"`
	Confidence  float64         `json:"confidence" db:"confidence"`
	SampleSize  int             `json:"sample_size" db:"sample_size"`
	ComputedAt  time.Time       `json:"computed_at" db:"computed_at"`
}
