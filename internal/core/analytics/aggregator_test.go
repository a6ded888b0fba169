package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matteoferri/habitlens-engine/internal/core/analytics"
	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func event(habitID string, date time.Time, completed bool) domain.CompletionEvent {
	return domain.CompletionEvent{
		EntityID:  habitID,
		UserID:    "user-1",
		Date:      date,
		Completed: completed,
	}
}

func timedEvent(habitID string, date time.Time, hour int, completed bool) domain.CompletionEvent {
	e := event(habitID, date, completed)
	ts := time.Date(date.Year(), date.Month(), date.Day(), hour, 15, 0, 0, time.UTC)
	e.CompletedAt = &ts
	return e
}

func TestAggregateDaily(t *testing.T) {
	agg := analytics.NewAggregator()

	t.Run("Empty range yields one zero stat per day", func(t *testing.T) {
		start := day(2024, 3, 1)
		end := day(2024, 3, 5)

		result, err := agg.AggregateDaily(nil, start, end)

		require.NoError(t, err)
		require.Len(t, result.Days, 5)
		for i, stat := range result.Days {
			assert.Equal(t, start.AddDate(0, 0, i), stat.Date)
			assert.Equal(t, 0, stat.TotalHabits)
			assert.Equal(t, 0, stat.CompletedHabits)
			assert.Equal(t, 0.0, stat.CompletionRate)
		}
		assert.Equal(t, 0.0, result.OverallRate)
	})

	t.Run("Overall rate averages per-day rates", func(t *testing.T) {
		start := day(2024, 3, 1)
		end := day(2024, 3, 2)

		records := []domain.CompletionEvent{
			event("h1", start, true),
			event("h2", start, true),
			event("h1", end, true),
			event("h2", end, false),
		}

		result, err := agg.AggregateDaily(records, start, end)

		require.NoError(t, err)
		require.Len(t, result.Days, 2)
		assert.Equal(t, 1.0, result.Days[0].CompletionRate)
		assert.Equal(t, 0.5, result.Days[1].CompletionRate)
		assert.InDelta(t, 0.75, result.OverallRate, 1e-9)
	})

	t.Run("Records outside the range are ignored", func(t *testing.T) {
		start := day(2024, 3, 10)
		end := day(2024, 3, 10)

		records := []domain.CompletionEvent{
			event("h1", day(2024, 3, 9), true),
			event("h1", start, false),
			event("h1", day(2024, 3, 11), true),
		}

		result, err := agg.AggregateDaily(records, start, end)

		require.NoError(t, err)
		require.Len(t, result.Days, 1)
		assert.Equal(t, 1, result.Days[0].TotalHabits)
		assert.Equal(t, 0, result.Days[0].CompletedHabits)
	})

	t.Run("Inverted range is rejected", func(t *testing.T) {
		_, err := agg.AggregateDaily(nil, day(2024, 3, 5), day(2024, 3, 1))
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	})
}

func TestAggregateWeekly(t *testing.T) {
	agg := analytics.NewAggregator()

	t.Run("Weeks are Monday aligned and carry all seven weekdays", func(t *testing.T) {
		// 2024-03-06 is a Wednesday, 2024-03-12 a Tuesday: two partial weeks.
		start := day(2024, 3, 6)
		end := day(2024, 3, 12)

		records := []domain.CompletionEvent{
			event("h1", day(2024, 3, 6), true),
			event("h1", day(2024, 3, 11), true),
		}

		result, err := agg.AggregateWeekly(records, start, end)

		require.NoError(t, err)
		require.Len(t, result.Weeks, 2)

		assert.Equal(t, day(2024, 3, 4), result.Weeks[0].WeekStart)
		assert.Equal(t, day(2024, 3, 11), result.Weeks[1].WeekStart)

		for _, week := range result.Weeks {
			assert.Len(t, week.DailyRates, 7)
		}

		assert.Equal(t, 1.0, result.Weeks[0].DailyRates[time.Wednesday])
		assert.Equal(t, 0.0, result.Weeks[0].DailyRates[time.Thursday])
		assert.Equal(t, 1.0, result.Weeks[1].DailyRates[time.Monday])
	})

	t.Run("Week rate averages only days inside the range", func(t *testing.T) {
		// Friday..Sunday: three in-range days, one completed.
		start := day(2024, 3, 8)
		end := day(2024, 3, 10)

		records := []domain.CompletionEvent{
			event("h1", day(2024, 3, 8), true),
		}

		result, err := agg.AggregateWeekly(records, start, end)

		require.NoError(t, err)
		require.Len(t, result.Weeks, 1)
		assert.InDelta(t, 1.0/3.0, result.Weeks[0].CompletionRate, 1e-9)
	})
}

func TestAggregateTimePatterns(t *testing.T) {
	agg := analytics.NewAggregator()

	t.Run("All 24 hours reported, peak hour has highest success rate", func(t *testing.T) {
		records := []domain.CompletionEvent{
			timedEvent("h1", day(2024, 3, 1), 7, true),
			timedEvent("h1", day(2024, 3, 2), 7, true),
			timedEvent("h1", day(2024, 3, 3), 20, true),
			timedEvent("h1", day(2024, 3, 4), 20, false),
		}

		result := agg.AggregateTimePatterns(records)

		require.Len(t, result.Hours, 24)
		require.NotNil(t, result.PeakHour)
		assert.Equal(t, 7, *result.PeakHour)
		assert.Equal(t, 1.0, result.Hours[7].SuccessRate)
		assert.Equal(t, 0.5, result.Hours[20].SuccessRate)
		assert.Equal(t, 0, result.Hours[3].TotalAttempts)
	})

	t.Run("Records without timestamps are skipped and peak is nil", func(t *testing.T) {
		records := []domain.CompletionEvent{
			event("h1", day(2024, 3, 1), true),
			event("h1", day(2024, 3, 2), true),
		}

		result := agg.AggregateTimePatterns(records)

		require.Len(t, result.Hours, 24)
		assert.Nil(t, result.PeakHour)
		for _, h := range result.Hours {
			assert.Equal(t, 0, h.TotalAttempts)
		}
	})
}

func TestAnalyzeStreaks(t *testing.T) {
	agg := analytics.NewAggregator()

	t.Run("Unbroken run counts as both current and max streak", func(t *testing.T) {
		var records []domain.CompletionEvent
		for i := 0; i < 10; i++ {
			records = append(records, event("h1", day(2024, 1, 1).AddDate(0, 0, i), true))
		}

		result := agg.AnalyzeStreaks(records, "h1")

		assert.Equal(t, 10, result.CurrentStreak)
		assert.Equal(t, 10, result.MaxStreak)
		require.Len(t, result.AllStreaks, 1)
		assert.Equal(t, day(2024, 1, 1), result.AllStreaks[0].StartDate)
		assert.Equal(t, day(2024, 1, 10), result.AllStreaks[0].EndDate)
	})

	t.Run("Gap splits runs into separate periods", func(t *testing.T) {
		var records []domain.CompletionEvent
		for i := 0; i < 3; i++ {
			records = append(records, event("h1", day(2024, 1, 1).AddDate(0, 0, i), true))
		}
		// two-day gap, then a five-day run
		for i := 0; i < 5; i++ {
			records = append(records, event("h1", day(2024, 1, 6).AddDate(0, 0, i), true))
		}

		result := agg.AnalyzeStreaks(records, "h1")

		require.Len(t, result.AllStreaks, 2)
		assert.Equal(t, 3, result.AllStreaks[0].Length)
		assert.Equal(t, 5, result.AllStreaks[1].Length)
		assert.Equal(t, 5, result.MaxStreak)
		assert.Equal(t, 5, result.CurrentStreak)
	})

	t.Run("Current streak is zero when a later miss exists", func(t *testing.T) {
		records := []domain.CompletionEvent{
			event("h1", day(2024, 1, 1), true),
			event("h1", day(2024, 1, 2), true),
			event("h1", day(2024, 1, 3), false),
		}

		result := agg.AnalyzeStreaks(records, "h1")

		assert.Equal(t, 2, result.MaxStreak)
		assert.Equal(t, 0, result.CurrentStreak)
	})

	t.Run("Filters by entity id", func(t *testing.T) {
		records := []domain.CompletionEvent{
			event("h1", day(2024, 1, 1), true),
			event("h2", day(2024, 1, 2), true),
		}

		result := agg.AnalyzeStreaks(records, "h1")

		assert.Equal(t, 1, result.MaxStreak)
		require.Len(t, result.AllStreaks, 1)
	})

	t.Run("No completions yields empty result", func(t *testing.T) {
		records := []domain.CompletionEvent{
			event("h1", day(2024, 1, 1), false),
		}

		result := agg.AnalyzeStreaks(records, "h1")

		assert.Equal(t, 0, result.CurrentStreak)
		assert.Equal(t, 0, result.MaxStreak)
		assert.Empty(t, result.AllStreaks)
	})

	t.Run("Duplicate events on one day count once", func(t *testing.T) {
		records := []domain.CompletionEvent{
			event("h1", day(2024, 1, 1), true),
			event("h1", day(2024, 1, 1), true),
			event("h1", day(2024, 1, 2), true),
		}

		result := agg.AnalyzeStreaks(records, "h1")

		assert.Equal(t, 2, result.MaxStreak)
	})
}

func TestAggregateGroupCompletions(t *testing.T) {
	agg := analytics.NewAggregator()

	t.Run("Fans habits into one aggregation with per-habit participation", func(t *testing.T) {
		start := day(2024, 3, 1)
		end := day(2024, 3, 2)

		byHabit := map[string][]domain.CompletionEvent{
			"h1": {
				event("h1", start, true),
				event("h1", end, false),
			},
			"h2": {
				event("h2", start, true),
			},
		}

		result, err := agg.AggregateGroupCompletions(byHabit, start, end)

		require.NoError(t, err)
		require.Len(t, result.Days, 2)
		assert.Equal(t, 1.0, result.Days[0].CompletionRate)
		assert.Equal(t, 0.0, result.Days[1].CompletionRate)

		dayKey := start.Format(domain.DateLayout)
		require.Contains(t, result.DailyParticipation, dayKey)
		assert.Equal(t, 1, result.DailyParticipation[dayKey]["h1"])
		assert.Equal(t, 1, result.DailyParticipation[dayKey]["h2"])

		// the missed day contributes no participation entry
		assert.NotContains(t, result.DailyParticipation, end.Format(domain.DateLayout))
	})

	t.Run("Inverted range is rejected", func(t *testing.T) {
		_, err := agg.AggregateGroupCompletions(nil, day(2024, 3, 5), day(2024, 3, 1))
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	})
}
