package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matteoferri/habitlens-engine/internal/core/analytics"
	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

func series(habitID string, start time.Time, completions []bool) []domain.CompletionEvent {
	events := make([]domain.CompletionEvent, 0, len(completions))
	for i, completed := range completions {
		events = append(events, event(habitID, start.AddDate(0, 0, i), completed))
	}
	return events
}

func TestCorrelate(t *testing.T) {
	corr := analytics.NewCorrelationAnalyzer()
	start := day(2024, 2, 1)

	t.Run("Identical series correlate at 1.0 as POSITIVE", func(t *testing.T) {
		pattern := []bool{true, false, true, true, false, true, false, true, true, false}
		end := start.AddDate(0, 0, len(pattern)-1)

		result, err := corr.Correlate("user-1", "h1", "h2",
			series("h1", start, pattern), series("h2", start, pattern), start, end)

		require.NoError(t, err)
		assert.InDelta(t, 1.0, result.Coefficient, 1e-9)
		assert.Equal(t, domain.CorrelationPositive, result.Type)
		assert.Equal(t, len(pattern), result.SampleSize)
		assert.InDelta(t, float64(len(pattern))/30.0, result.Confidence, 1e-9)
	})

	t.Run("Opposite series correlate at -1.0 as NEGATIVE", func(t *testing.T) {
		p1 := []bool{true, false, true, false, true, false}
		p2 := []bool{false, true, false, true, false, true}
		end := start.AddDate(0, 0, len(p1)-1)

		result, err := corr.Correlate("user-1", "h1", "h2",
			series("h1", start, p1), series("h2", start, p2), start, end)

		require.NoError(t, err)
		assert.InDelta(t, -1.0, result.Coefficient, 1e-9)
		assert.Equal(t, domain.CorrelationNegative, result.Type)
	})

	t.Run("Symmetric under habit swap", func(t *testing.T) {
		p1 := []bool{true, true, false, true, false, false, true}
		p2 := []bool{true, false, false, true, true, false, true}
		end := start.AddDate(0, 0, len(p1)-1)

		s1 := series("h1", start, p1)
		s2 := series("h2", start, p2)

		ab, err := corr.Correlate("user-1", "h1", "h2", s1, s2, start, end)
		require.NoError(t, err)
		ba, err := corr.Correlate("user-1", "h2", "h1", s2, s1, start, end)
		require.NoError(t, err)

		assert.InDelta(t, ab.Coefficient, ba.Coefficient, 1e-9)
		assert.Equal(t, ab.Type, ba.Type)
	})

	t.Run("Zero-variance series degrade to NEUTRAL with zero confidence", func(t *testing.T) {
		flat := []bool{true, true, true, true, true}
		varying := []bool{true, false, true, false, true}
		end := start.AddDate(0, 0, len(flat)-1)

		result, err := corr.Correlate("user-1", "h1", "h2",
			series("h1", start, flat), series("h2", start, varying), start, end)

		require.NoError(t, err)
		assert.Equal(t, domain.CorrelationNeutral, result.Type)
		assert.Equal(t, 0.0, result.Coefficient)
		assert.Equal(t, 0.0, result.Confidence)
		assert.Equal(t, len(flat), result.SampleSize)
	})

	t.Run("Confidence saturates at 1.0 past 30 days", func(t *testing.T) {
		pattern := make([]bool, 40)
		for i := range pattern {
			pattern[i] = i%2 == 0
		}
		end := start.AddDate(0, 0, len(pattern)-1)

		result, err := corr.Correlate("user-1", "h1", "h2",
			series("h1", start, pattern), series("h2", start, pattern), start, end)

		require.NoError(t, err)
		assert.Equal(t, 1.0, result.Confidence)
	})

	t.Run("Same habit id is rejected", func(t *testing.T) {
		_, err := corr.Correlate("user-1", "h1", "h1", nil, nil, start, start)
		assert.ErrorIs(t, err, domain.ErrSameHabit)
	})

	t.Run("Inverted range is rejected", func(t *testing.T) {
		_, err := corr.Correlate("user-1", "h1", "h2", nil, nil, start, start.AddDate(0, 0, -1))
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	})
}
