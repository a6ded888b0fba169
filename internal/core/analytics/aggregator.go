package analytics

import (
	"sort"
	"time"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

// Aggregator turns raw completion events into daily, weekly and hourly
// aggregates plus streak analyses. Every method is pure: same records in,
// same result out, no shared state.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AggregateDaily emits one DailyStat for every calendar date in the inclusive
// range, even when no record exists for a date.
func (a *Aggregator) AggregateDaily(records []domain.CompletionEvent, start, end time.Time) (*domain.DailyAggregationResult, error) {
	start, end = domain.DayOf(start), domain.DayOf(end)
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	type dayCount struct {
		total     int
		completed int
	}
	counts := make(map[string]*dayCount)
	for _, r := range records {
		key := r.Day().Format(domain.DateLayout)
		c, ok := counts[key]
		if !ok {
			c = &dayCount{}
			counts[key] = c
		}
		c.total++
		if r.Completed {
			c.completed++
		}
	}

	result := &domain.DailyAggregationResult{
		StartDate: start,
		EndDate:   end,
	}

	var rateSum float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		stat := domain.DailyStat{Date: d}
		if c, ok := counts[d.Format(domain.DateLayout)]; ok {
			stat.TotalHabits = c.total
			stat.CompletedHabits = c.completed
			if c.total > 0 {
				stat.CompletionRate = float64(c.completed) / float64(c.total)
			}
		}
		rateSum += stat.CompletionRate
		result.Days = append(result.Days, stat)
	}

	if len(result.Days) > 0 {
		result.OverallRate = rateSum / float64(len(result.Days))
	}

	return result, nil
}

// AggregateWeekly partitions the range into Monday-aligned weeks. Every week
// reports all seven weekdays; days outside the range stay at zero, and the
// week rate averages only the days actually inside the range.
func (a *Aggregator) AggregateWeekly(records []domain.CompletionEvent, start, end time.Time) (*domain.WeeklyAggregationResult, error) {
	daily, err := a.AggregateDaily(records, start, end)
	if err != nil {
		return nil, err
	}

	type weekAcc struct {
		rates   map[time.Weekday]float64
		rateSum float64
		days    int
	}
	weeks := make(map[string]*weekAcc)
	var order []time.Time

	for _, day := range daily.Days {
		ws := domain.WeekStartOf(day.Date)
		key := ws.Format(domain.DateLayout)
		acc, ok := weeks[key]
		if !ok {
			acc = &weekAcc{rates: emptyWeekdayRates()}
			weeks[key] = acc
			order = append(order, ws)
		}
		acc.rates[day.Date.Weekday()] = day.CompletionRate
		acc.rateSum += day.CompletionRate
		acc.days++
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	result := &domain.WeeklyAggregationResult{
		StartDate: daily.StartDate,
		EndDate:   daily.EndDate,
	}
	for _, ws := range order {
		acc := weeks[ws.Format(domain.DateLayout)]
		stat := domain.WeeklyStat{
			WeekStart:  ws,
			DailyRates: acc.rates,
		}
		if acc.days > 0 {
			stat.CompletionRate = acc.rateSum / float64(acc.days)
		}
		result.Weeks = append(result.Weeks, stat)
	}

	return result, nil
}

func emptyWeekdayRates() map[time.Weekday]float64 {
	rates := make(map[time.Weekday]float64, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		rates[wd] = 0.0
	}
	return rates
}

// AggregateTimePatterns buckets timestamped records by hour of completion.
// All 24 hours appear in the output; PeakHour is the hour with the highest
// success rate and is nil when no record carries a timestamp.
func (a *Aggregator) AggregateTimePatterns(records []domain.CompletionEvent) *domain.TimePatternResult {
	result := &domain.TimePatternResult{
		Hours: make([]domain.HourlyStat, 24),
	}
	for h := range result.Hours {
		result.Hours[h].Hour = h
	}

	for _, r := range records {
		if r.CompletedAt == nil {
			continue
		}
		h := r.CompletedAt.UTC().Hour()
		result.Hours[h].TotalAttempts++
		if r.Completed {
			result.Hours[h].SuccessfulAttempts++
		}
	}

	var peak *int
	for h := range result.Hours {
		stat := &result.Hours[h]
		if stat.TotalAttempts == 0 {
			continue
		}
		stat.SuccessRate = float64(stat.SuccessfulAttempts) / float64(stat.TotalAttempts)
		if peak == nil || stat.SuccessRate > result.Hours[*peak].SuccessRate {
			hour := h
			peak = &hour
		}
	}
	result.PeakHour = peak

	return result
}

// AnalyzeStreaks finds maximal runs of consecutive completed calendar dates
// for one entity. The run ending at the most recent completed date counts as
// the current streak only when no later (non-completed) date exists in the
// input.
func (a *Aggregator) AnalyzeStreaks(records []domain.CompletionEvent, entityID string) *domain.StreakAnalysisResult {
	result := &domain.StreakAnalysisResult{EntityID: entityID}

	completedDays := make(map[string]time.Time)
	var latestDay time.Time
	seen := false

	for _, r := range records {
		if entityID != "" && r.EntityID != entityID {
			continue
		}
		day := r.Day()
		if !seen || day.After(latestDay) {
			latestDay = day
			seen = true
		}
		if r.Completed {
			completedDays[day.Format(domain.DateLayout)] = day
		}
	}

	if len(completedDays) == 0 {
		return result
	}

	days := make([]time.Time, 0, len(completedDays))
	for _, d := range completedDays {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	runStart := days[0]
	prev := days[0]
	for _, d := range days[1:] {
		if d.Sub(prev) == 24*time.Hour {
			prev = d
			continue
		}
		result.AllStreaks = append(result.AllStreaks, newStreakPeriod(runStart, prev))
		runStart, prev = d, d
	}
	result.AllStreaks = append(result.AllStreaks, newStreakPeriod(runStart, prev))

	for _, s := range result.AllStreaks {
		if s.Length > result.MaxStreak {
			result.MaxStreak = s.Length
		}
	}

	last := result.AllStreaks[len(result.AllStreaks)-1]
	if last.EndDate.Equal(latestDay) {
		result.CurrentStreak = last.Length
	}

	return result
}

func newStreakPeriod(start, end time.Time) domain.StreakPeriod {
	return domain.StreakPeriod{
		StartDate: start,
		EndDate:   end,
		Length:    int(end.Sub(start).Hours()/24) + 1,
	}
}

// AggregateGroupCompletions fans multiple group-habit series into a single
// daily aggregation and tracks per-habit completion counts per day.
func (a *Aggregator) AggregateGroupCompletions(byHabit map[string][]domain.CompletionEvent, start, end time.Time) (*domain.GroupAggregationResult, error) {
	var all []domain.CompletionEvent
	for _, records := range byHabit {
		all = append(all, records...)
	}

	daily, err := a.AggregateDaily(all, start, end)
	if err != nil {
		return nil, err
	}

	participation := make(map[string]map[string]int)
	for habitID, records := range byHabit {
		for _, r := range records {
			if !r.Completed {
				continue
			}
			day := r.Day()
			if day.Before(daily.StartDate) || day.After(daily.EndDate) {
				continue
			}
			key := day.Format(domain.DateLayout)
			if participation[key] == nil {
				participation[key] = make(map[string]int)
			}
			participation[key][habitID]++
		}
	}

	return &domain.GroupAggregationResult{
		StartDate:          daily.StartDate,
		EndDate:            daily.EndDate,
		Days:               daily.Days,
		OverallRate:        daily.OverallRate,
		DailyParticipation: participation,
	}, nil
}
