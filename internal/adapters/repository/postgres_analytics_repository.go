package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

var _ domain.AnalyticsRepository = (*PostgresAnalyticsRepository)(nil)

// PostgresAnalyticsRepository persists derived analytics: per-habit
// snapshots, per-pair correlations and per-group metrics.
type PostgresAnalyticsRepository struct {
	db *sqlx.DB
}

func NewPostgresAnalyticsRepository(db *sqlx.DB) *PostgresAnalyticsRepository {
	return &PostgresAnalyticsRepository{db: db}
}

func (r *PostgresAnalyticsRepository) SaveHabitSnapshot(ctx context.Context, snap *domain.HabitSnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}

	query := `
		INSERT INTO habit_snapshots (
			id, user_id, habit_id, start_date, end_date,
			overall_rate, current_streak, max_streak, daily_rates, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, habit_id, start_date, end_date) DO UPDATE SET
			overall_rate   = EXCLUDED.overall_rate,
			current_streak = EXCLUDED.current_streak,
			max_streak     = EXCLUDED.max_streak,
			daily_rates    = EXCLUDED.daily_rates,
			computed_at    = EXCLUDED.computed_at`

	_, err := r.db.ExecContext(ctx, query,
		snap.ID, snap.UserID, snap.HabitID, snap.StartDate, snap.EndDate,
		snap.OverallRate, snap.CurrentStreak, snap.MaxStreak,
		pq.Array(snap.DailyRates), snap.ComputedAt)

	return translatePQError(err)
}

func (r *PostgresAnalyticsRepository) SaveCorrelation(ctx context.Context, result *domain.CorrelationResult) error {
	query := `
		INSERT INTO habit_correlations (
			user_id, habit1_id, habit2_id, coefficient,
			correlation_type, confidence, sample_size, computed_at
		) VALUES (
			:user_id, :habit1_id, :habit2_id, :coefficient,
			:correlation_type, :confidence, :sample_size, :computed_at
		)
		ON CONFLICT (user_id, habit1_id, habit2_id) DO UPDATE SET
			coefficient      = EXCLUDED.coefficient,
			correlation_type = EXCLUDED.correlation_type,
			confidence       = EXCLUDED.confidence,
			sample_size      = EXCLUDED.sample_size,
			computed_at      = EXCLUDED.computed_at`

	_, err := r.db.NamedExecContext(ctx, query, result)
	return translatePQError(err)
}

type groupMetricsRow struct {
	ID            string    `db:"id"`
	GroupID       string    `db:"group_id"`
	StartDate     time.Time `db:"start_date"`
	EndDate       time.Time `db:"end_date"`
	Momentum      float64   `db:"momentum_score"`
	Cohesion      float64   `db:"cohesion_score"`
	Synergy       float64   `db:"synergistic_score"`
	GroupStreak   int       `db:"group_streak"`
	Contributors  []byte    `db:"contributors"`
	Participation []byte    `db:"participation"`
	ComputedAt    time.Time `db:"computed_at"`
}

func (r *PostgresAnalyticsRepository) SaveGroupMetrics(ctx context.Context, result *domain.GroupDynamicsResult) error {
	contributors, err := json.Marshal(result.KeyContributors)
	if err != nil {
		return err
	}
	participation, err := json.Marshal(result.Participation)
	if err != nil {
		return err
	}

	row := groupMetricsRow{
		ID:            uuid.NewString(),
		GroupID:       result.GroupID,
		StartDate:     result.StartDate,
		EndDate:       result.EndDate,
		Momentum:      result.MomentumScore,
		Cohesion:      result.CohesionScore,
		Synergy:       result.SynergisticScore,
		GroupStreak:   result.GroupStreak,
		Contributors:  contributors,
		Participation: participation,
		ComputedAt:    result.ComputedAt,
	}

	query := `
		INSERT INTO group_metrics (
			id, group_id, start_date, end_date,
			momentum_score, cohesion_score, synergistic_score, group_streak,
			contributors, participation, computed_at
		) VALUES (
			:id, :group_id, :start_date, :end_date,
			:momentum_score, :cohesion_score, :synergistic_score, :group_streak,
			:contributors, :participation, :computed_at
		)`

	_, err = r.db.NamedExecContext(ctx, query, row)
	return translatePQError(err)
}

func (r *PostgresAnalyticsRepository) GetLatestGroupMetrics(ctx context.Context, groupID string) (*domain.GroupDynamicsResult, error) {
	var row groupMetricsRow

	query := `
		SELECT id, group_id, start_date, end_date,
		       momentum_score, cohesion_score, synergistic_score, group_streak,
		       contributors, participation, computed_at
		FROM group_metrics
		WHERE group_id = $1
		ORDER BY computed_at DESC
		LIMIT 1`

	if err := r.db.GetContext(ctx, &row, query, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMetricsNotFound
		}
		return nil, err
	}

	result := &domain.GroupDynamicsResult{
		GroupID:          row.GroupID,
		StartDate:        row.StartDate,
		EndDate:          row.EndDate,
		MomentumScore:    row.Momentum,
		CohesionScore:    row.Cohesion,
		SynergisticScore: row.Synergy,
		GroupStreak:      row.GroupStreak,
		ComputedAt:       row.ComputedAt,
	}
	if err := json.Unmarshal(row.Contributors, &result.KeyContributors); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(row.Participation, &result.Participation); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresAnalyticsRepository) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	var total int64

	for _, table := range []string{"habit_snapshots", "habit_correlations", "group_metrics"} {
		res, err := r.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE computed_at < $1`, olderThan)
		if err != nil {
			return total, err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += rows
	}

	return total, nil
}

func translatePQError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" {
			return errors.New("referenced habit, user or group does not exist")
		}
	}
	return err
}
