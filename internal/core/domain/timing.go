package domain

// TimingStat is a success-rate bucket keyed by hour of day or day of week.
type TimingStat struct {
	Bucket             int     `json:"bucket"`
	Label              string  `json:"label"`
	TotalAttempts      int     `json:"total_attempts"`
	SuccessfulAttempts int     `json:"successful_attempts"`
	SuccessRate        float64 `json:"success_rate"`
}

// TimeWindow is a contiguous hour range candidate for optimal timing.
// EndHour is inclusive.
type TimeWindow struct {
	StartHour   int     `json:"start_hour"`
	EndHour     int     `json:"end_hour"`
	SuccessRate float64 `json:"success_rate"`
	SampleSize  int     `json:"sample_size"`
}

// TimingAnalysisResult reports every hour and weekday bucket (including empty
// ones) plus the ranked candidate windows. Optimal hours are nil when no
// bucket meets the sample floor.
type TimingAnalysisResult struct {
	HourlyStats      []TimingStat `json:"hourly_stats"`
	WeekdayStats     []TimingStat `json:"weekday_stats"`
	OptimalStartHour *int         `json:"optimal_start_hour,omitempty"`
	OptimalEndHour   *int         `json:"optimal_end_hour,omitempty"`
	BestWindows      []TimeWindow `json:"best_time_windows"`
}
