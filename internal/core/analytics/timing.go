package analytics

import (
	"fmt"
	"sort"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

// minWindowSamples is the per-hour attempt floor below which a bucket is
// excluded from optimal-window selection (but still reported).
const minWindowSamples = 3

// TimingAnalyzer finds the time-of-day and day-of-week windows where a habit
// succeeds most often.
type TimingAnalyzer struct{}

func NewTimingAnalyzer() *TimingAnalyzer {
	return &TimingAnalyzer{}
}

// Analyze buckets timestamped completions per hour of day and per day of
// week. Candidate windows are the maximal contiguous runs of hours meeting
// the sample floor, ranked by pooled success rate and tie-broken by larger
// sample size; the best one provides the optimal start/end hours.
func (t *TimingAnalyzer) Analyze(records []domain.CompletionEvent) *domain.TimingAnalysisResult {
	hourly := make([]domain.TimingStat, 24)
	for h := range hourly {
		hourly[h].Bucket = h
		hourly[h].Label = fmt.Sprintf("%02d:00", h)
	}

	weekday := make([]domain.TimingStat, 7)
	weekdayNames := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	for d := range weekday {
		weekday[d].Bucket = d
		weekday[d].Label = weekdayNames[d]
	}

	for _, r := range records {
		if r.CompletedAt == nil {
			continue
		}
		ts := r.CompletedAt.UTC()
		bump(&hourly[ts.Hour()], r.Completed)
		bump(&weekday[int(ts.Weekday())], r.Completed)
	}

	finalize(hourly)
	finalize(weekday)

	windows := candidateWindows(hourly)

	result := &domain.TimingAnalysisResult{
		HourlyStats:  hourly,
		WeekdayStats: weekday,
		BestWindows:  windows,
	}
	if len(windows) > 0 {
		start, end := windows[0].StartHour, windows[0].EndHour
		result.OptimalStartHour = &start
		result.OptimalEndHour = &end
	}

	return result
}

func bump(stat *domain.TimingStat, completed bool) {
	stat.TotalAttempts++
	if completed {
		stat.SuccessfulAttempts++
	}
}

func finalize(stats []domain.TimingStat) {
	for i := range stats {
		if stats[i].TotalAttempts > 0 {
			stats[i].SuccessRate = float64(stats[i].SuccessfulAttempts) / float64(stats[i].TotalAttempts)
		}
	}
}

// candidateWindows merges adjacent qualifying hours into contiguous windows
// with pooled attempt counts.
func candidateWindows(hourly []domain.TimingStat) []domain.TimeWindow {
	var windows []domain.TimeWindow
	i := 0
	for i < 24 {
		if hourly[i].TotalAttempts < minWindowSamples {
			i++
			continue
		}
		j := i
		attempts, successes := 0, 0
		for j < 24 && hourly[j].TotalAttempts >= minWindowSamples {
			attempts += hourly[j].TotalAttempts
			successes += hourly[j].SuccessfulAttempts
			j++
		}
		windows = append(windows, domain.TimeWindow{
			StartHour:   i,
			EndHour:     j - 1,
			SuccessRate: float64(successes) / float64(attempts),
			SampleSize:  attempts,
		})
		i = j
	}

	sort.SliceStable(windows, func(a, b int) bool {
		if windows[a].SuccessRate != windows[b].SuccessRate {
			return windows[a].SuccessRate > windows[b].SuccessRate
		}
		return windows[a].SampleSize > windows[b].SampleSize
	})

	return windows
}
