package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

const (
	// trendBucketSize groups chronological records for trend regression.
	trendBucketSize = 7

	// minTrendRecords gates trend estimation entirely.
	minTrendRecords = 7

	// minRateAnomalyRecords / minTimingAnomalyRecords gate the anomaly passes.
	minRateAnomalyRecords   = 14
	minTimingAnomalyRecords = 10

	// rateAnomalyThreshold is the weekly deviation from the overall rate that
	// gets flagged.
	rateAnomalyThreshold = 0.3

	// timingAnomalyHours is the deviation from the mean completion hour that
	// gets flagged.
	timingAnomalyHours = 6.0

	// exceptionalStreakDays marks a streak as anomalous.
	exceptionalStreakDays = 21

	trendDecayDays = 30.0
)

// PredictiveService builds trend estimates, forecasts, anomaly lists and
// habit-formation predictions on top of the aggregator's output. The
// aggregator is an explicit dependency so the service stays independently
// testable.
type PredictiveService struct {
	agg *Aggregator
}

func NewPredictiveService(agg *Aggregator) *PredictiveService {
	return &PredictiveService{agg: agg}
}

// HistoricalSuccessRate is completed/total, 0.0 for an empty slice.
func (s *PredictiveService) HistoricalSuccessRate(records []domain.CompletionEvent) float64 {
	if len(records) == 0 {
		return 0.0
	}
	completed := 0
	for _, r := range records {
		if r.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(records))
}

// Trend estimates the direction of a habit via ordinary least squares over
// success rates of consecutive 7-record buckets. Fewer than 7 records, or
// fewer than 2 buckets, yield a flat 0.0 trend rather than an error.
func (s *PredictiveService) Trend(records []domain.CompletionEvent) float64 {
	if len(records) < minTrendRecords {
		return 0.0
	}

	sorted := make([]domain.CompletionEvent, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var rates []float64
	for i := 0; i < len(sorted); i += trendBucketSize {
		end := i + trendBucketSize
		if end > len(sorted) {
			end = len(sorted)
		}
		rates = append(rates, s.HistoricalSuccessRate(sorted[i:end]))
	}

	if len(rates) < 2 {
		return 0.0
	}

	return olsSlope(rates)
}

// olsSlope fits rate against bucket index using the standard formula
// (n*Sxy - Sx*Sy) / (n*Sxx - Sx*Sx).
func olsSlope(y []float64) float64 {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	den := n*sumXX - sumX*sumX
	if den == 0 {
		return 0.0
	}
	return (n*sumXY - sumX*sumY) / den
}

// Forecast projects the habit's success rate over forecastDays starting at
// startDate, combining the historical base rate with an exponentially
// decaying trend effect and day-of-week dampening. Point confidence strictly
// never increases along the horizon.
func (s *PredictiveService) Forecast(habitID string, records []domain.CompletionEvent, startDate time.Time, forecastDays int) (*domain.HabitForecast, error) {
	if forecastDays <= 0 {
		return nil, domain.ErrInvalidForecastDays
	}

	baseRate := s.HistoricalSuccessRate(records)
	trend := s.Trend(records)
	startDate = domain.DayOf(startDate)

	forecast := &domain.HabitForecast{
		HabitID:           habitID,
		ForecastStartDate: startDate,
		ForecastDays:      forecastDays,
		Predictions:       make([]domain.ForecastPoint, 0, forecastDays),
		OverallConfidence: s.ForecastConfidence(records, trend),
		Trend:             trend,
	}

	for i := 1; i <= forecastDays; i++ {
		date := startDate.AddDate(0, 0, i-1)

		trendEffect := trend * math.Exp(-float64(i)/trendDecayDays)
		rate := clamp01(baseRate + trendEffect)
		rate = clamp01(rate * weekdayMultiplier(date.Weekday()))

		confidence := math.Max(0.1, 0.9-(float64(i)/float64(forecastDays))*0.5)

		forecast.Predictions = append(forecast.Predictions, domain.ForecastPoint{
			Date:                 date,
			PredictedSuccessRate: rate,
			Confidence:           confidence,
		})
	}

	return forecast, nil
}

func weekdayMultiplier(wd time.Weekday) float64 {
	switch wd {
	case time.Saturday, time.Sunday:
		return 0.85
	case time.Monday:
		return 0.9
	default:
		return 1.0
	}
}

// ForecastConfidence is a fixed 0.3 below 14 samples; otherwise the average
// of a data-volume term and a trend-stability term.
func (s *PredictiveService) ForecastConfidence(records []domain.CompletionEvent, trend float64) float64 {
	if len(records) < 14 {
		return 0.3
	}
	volume := math.Min(0.8, float64(len(records))/30.0)
	stability := math.Max(0.2, 1.0-2.0*math.Abs(trend))
	return (volume + stability) / 2.0
}

// DetectAnomalies runs three independent passes over the records. Each pass
// degrades to nothing on insufficient data; the combined list is empty rather
// than nil-checked by callers.
func (s *PredictiveService) DetectAnomalies(records []domain.CompletionEvent, entityID string) []domain.Anomaly {
	anomalies := make([]domain.Anomaly, 0)
	anomalies = append(anomalies, s.completionRateAnomalies(records)...)
	anomalies = append(anomalies, s.timingAnomalies(records)...)
	anomalies = append(anomalies, s.streakAnomalies(records, entityID)...)
	return anomalies
}

func (s *PredictiveService) completionRateAnomalies(records []domain.CompletionEvent) []domain.Anomaly {
	if len(records) < minRateAnomalyRecords {
		return nil
	}

	overall := s.HistoricalSuccessRate(records)

	type weekCount struct {
		total     int
		completed int
	}
	weeks := make(map[string]*weekCount)
	var order []time.Time
	for _, r := range records {
		ws := domain.WeekStartOf(r.Date)
		key := ws.Format(domain.DateLayout)
		wc, ok := weeks[key]
		if !ok {
			wc = &weekCount{}
			weeks[key] = wc
			order = append(order, ws)
		}
		wc.total++
		if r.Completed {
			wc.completed++
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	var anomalies []domain.Anomaly
	for _, ws := range order {
		wc := weeks[ws.Format(domain.DateLayout)]
		rate := float64(wc.completed) / float64(wc.total)
		deviation := rate - overall
		if math.Abs(deviation) <= rateAnomalyThreshold {
			continue
		}

		a := domain.Anomaly{
			Date:     ws,
			Severity: math.Abs(deviation),
		}
		if deviation > 0 {
			a.Type = domain.AnomalyUnusuallyHigh
			a.Description = fmt.Sprintf("week of %s completed at %.0f%%, well above the usual %.0f%%",
				ws.Format(domain.DateLayout), rate*100, overall*100)
		} else {
			a.Type = domain.AnomalyUnusuallyLow
			a.Description = fmt.Sprintf("week of %s completed at %.0f%%, well below the usual %.0f%%",
				ws.Format(domain.DateLayout), rate*100, overall*100)
		}
		anomalies = append(anomalies, a)
	}

	return anomalies
}

func (s *PredictiveService) timingAnomalies(records []domain.CompletionEvent) []domain.Anomaly {
	var timestamped []domain.CompletionEvent
	for _, r := range records {
		if r.Completed && r.CompletedAt != nil {
			timestamped = append(timestamped, r)
		}
	}
	if len(timestamped) < minTimingAnomalyRecords {
		return nil
	}

	var sum float64
	for _, r := range timestamped {
		sum += float64(r.CompletedAt.UTC().Hour())
	}
	mean := sum / float64(len(timestamped))

	var anomalies []domain.Anomaly
	for _, r := range timestamped {
		deviation := math.Abs(float64(r.CompletedAt.UTC().Hour()) - mean)
		if deviation <= timingAnomalyHours {
			continue
		}
		anomalies = append(anomalies, domain.Anomaly{
			Date:     r.Day(),
			Type:     domain.AnomalyUnusualTiming,
			Severity: deviation,
			Description: fmt.Sprintf("completion at %02d:00 deviates %.1f hours from the usual %02d:00",
				r.CompletedAt.UTC().Hour(), deviation, int(mean)),
		})
	}

	return anomalies
}

func (s *PredictiveService) streakAnomalies(records []domain.CompletionEvent, entityID string) []domain.Anomaly {
	streaks := s.agg.AnalyzeStreaks(records, entityID)

	var anomalies []domain.Anomaly
	for _, streak := range streaks.AllStreaks {
		if streak.Length <= exceptionalStreakDays {
			continue
		}
		anomalies = append(anomalies, domain.Anomaly{
			Date:     streak.StartDate,
			Type:     domain.AnomalyExceptionalStreak,
			Severity: float64(streak.Length),
			Description: fmt.Sprintf("%d-day streak starting %s",
				streak.Length, streak.StartDate.Format(domain.DateLayout)),
		})
	}

	return anomalies
}

// PredictFormation maps a stored analytics record onto the next formation
// stage transition. A missing record degrades to UNKNOWN with zero
// probability; it is not an error.
func (s *PredictiveService) PredictFormation(habitID string, record *domain.HabitAnalyticsRecord) *domain.FormationPrediction {
	if record == nil {
		return &domain.FormationPrediction{
			HabitID:      habitID,
			CurrentStage: domain.StageUnknown,
		}
	}

	stage := record.FormationStage
	if stage == "" {
		stage = domain.StageUnknown
	}

	var days float64
	switch stage {
	case domain.StageInitiation:
		days = 21.0 - record.SuccessRate*14.0
	case domain.StageLearning:
		days = 45.0 - record.ConsistencyScore*24.0
	case domain.StageStability:
		days = 30.0 - record.SuccessRate*record.ConsistencyScore*20.0
	case domain.StageMastery, domain.StageUnknown:
		days = 0.0
	}
	if days < 0 {
		days = 0
	}

	probability := clamp01(0.4*record.SuccessRate + 0.4*record.ConsistencyScore + 0.2*record.HabitStrength)

	return &domain.FormationPrediction{
		HabitID:              habitID,
		CurrentStage:         stage,
		DaysToNextStage:      int(math.Round(days)),
		FormationProbability: probability,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
