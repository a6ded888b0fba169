package analytics

import (
	"math"
	"time"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

const (
	// correlationBand separates NEUTRAL from POSITIVE/NEGATIVE.
	correlationBand = 0.2

	// correlationFullConfidenceDays is the overlap at which confidence
	// saturates at 1.0.
	correlationFullConfidenceDays = 30.0
)

// CorrelationAnalyzer computes the pairwise statistical relationship between
// two habits' day-by-day completion series.
type CorrelationAnalyzer struct{}

func NewCorrelationAnalyzer() *CorrelationAnalyzer {
	return &CorrelationAnalyzer{}
}

// Correlate aligns both series over the inclusive date range and computes the
// Pearson coefficient of the binary day vectors. Zero-variance series yield a
// NEUTRAL result with zero confidence instead of dividing by zero.
func (c *CorrelationAnalyzer) Correlate(userID, habit1ID, habit2ID string, series1, series2 []domain.CompletionEvent, start, end time.Time) (*domain.CorrelationResult, error) {
	if habit1ID == habit2ID {
		return nil, domain.ErrSameHabit
	}
	start, end = domain.DayOf(start), domain.DayOf(end)
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	x := dailyBinarySeries(series1, start, end)
	y := dailyBinarySeries(series2, start, end)
	n := len(x)

	result := &domain.CorrelationResult{
		UserID:     userID,
		Habit1ID:   habit1ID,
		Habit2ID:   habit2ID,
		Type:       domain.CorrelationNeutral,
		SampleSize: n,
	}

	r, ok := pearson(x, y)
	if !ok {
		// no variance in at least one series
		return result, nil
	}

	result.Coefficient = r
	result.Confidence = math.Min(1.0, float64(n)/correlationFullConfidenceDays)

	switch {
	case r >= correlationBand:
		result.Type = domain.CorrelationPositive
	case r <= -correlationBand:
		result.Type = domain.CorrelationNegative
	}

	return result, nil
}

// dailyBinarySeries maps each date in the range to 1.0 when at least one
// completed event fell on it.
func dailyBinarySeries(records []domain.CompletionEvent, start, end time.Time) []float64 {
	completed := make(map[string]bool)
	for _, r := range records {
		if r.Completed {
			completed[r.Day().Format(domain.DateLayout)] = true
		}
	}

	var series []float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if completed[d.Format(domain.DateLayout)] {
			series = append(series, 1.0)
		} else {
			series = append(series, 0.0)
		}
	}
	return series
}

// pearson returns the correlation coefficient of two equal-length vectors.
// ok is false when either vector has zero variance or fewer than two points.
func pearson(x, y []float64) (r float64, ok bool) {
	n := len(x)
	if n < 2 || n != len(y) {
		return 0, false
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var num, denX, denY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		num += dx * dy
		denX += dx * dx
		denY += dy * dy
	}

	if denX == 0 || denY == 0 {
		return 0, false
	}

	return num / math.Sqrt(denX*denY), true
}
