package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

var _ domain.CompletionSource = (*PostgresCompletionSource)(nil)

// PostgresCompletionSource reads raw completion events and stored analytics
// records. It never writes; event ingestion belongs to the tracking side of
// the system.
type PostgresCompletionSource struct {
	db *sqlx.DB
}

func NewPostgresCompletionSource(db *sqlx.DB) *PostgresCompletionSource {
	return &PostgresCompletionSource{db: db}
}

func (r *PostgresCompletionSource) ListByHabit(ctx context.Context, userID, habitID string, from, to time.Time) ([]domain.CompletionEvent, error) {
	events := []domain.CompletionEvent{}

	query := `
		SELECT entity_id, user_id, completion_date, completed, completed_at
		FROM completion_events
		WHERE user_id = $1
		  AND entity_id = $2
		  AND completion_date >= $3
		  AND completion_date <= $4
		ORDER BY completion_date ASC`

	err := r.db.SelectContext(ctx, &events, query, userID, habitID, domain.DayOf(from), domain.DayOf(to))
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresCompletionSource) ListByGroupHabits(ctx context.Context, groupID string, from, to time.Time) (map[string][]domain.CompletionEvent, error) {
	var habitIDs []string
	if err := r.db.SelectContext(ctx, &habitIDs,
		`SELECT habit_id FROM group_habits WHERE group_id = $1`, groupID); err != nil {
		return nil, err
	}

	byHabit := make(map[string][]domain.CompletionEvent, len(habitIDs))
	for _, id := range habitIDs {
		byHabit[id] = []domain.CompletionEvent{}
	}

	if len(habitIDs) == 0 {
		return byHabit, nil
	}

	events := []domain.CompletionEvent{}
	query := `
		SELECT e.entity_id, e.user_id, e.completion_date, e.completed, e.completed_at
		FROM completion_events e
		JOIN group_habits gh ON gh.habit_id = e.entity_id
		WHERE gh.group_id = $1
		  AND e.completion_date >= $2
		  AND e.completion_date <= $3
		ORDER BY e.completion_date ASC`

	if err := r.db.SelectContext(ctx, &events, query, groupID, domain.DayOf(from), domain.DayOf(to)); err != nil {
		return nil, err
	}

	for _, e := range events {
		byHabit[e.EntityID] = append(byHabit[e.EntityID], e)
	}
	return byHabit, nil
}

func (r *PostgresCompletionSource) ListByGroupMembers(ctx context.Context, groupID string, from, to time.Time) (map[string][]domain.CompletionEvent, error) {
	var memberIDs []string
	if err := r.db.SelectContext(ctx, &memberIDs,
		`SELECT user_id FROM group_members WHERE group_id = $1`, groupID); err != nil {
		return nil, err
	}

	// members without events still participate in the dynamics scores
	byMember := make(map[string][]domain.CompletionEvent, len(memberIDs))
	for _, id := range memberIDs {
		byMember[id] = []domain.CompletionEvent{}
	}

	if len(memberIDs) == 0 {
		return byMember, nil
	}

	events := []domain.CompletionEvent{}
	query := `
		SELECT e.entity_id, e.user_id, e.completion_date, e.completed, e.completed_at
		FROM completion_events e
		JOIN group_habits gh ON gh.habit_id = e.entity_id
		WHERE gh.group_id = $1
		  AND e.completion_date >= $2
		  AND e.completion_date <= $3
		ORDER BY e.completion_date ASC`

	if err := r.db.SelectContext(ctx, &events, query, groupID, domain.DayOf(from), domain.DayOf(to)); err != nil {
		return nil, err
	}

	for _, e := range events {
		if _, ok := byMember[e.UserID]; ok {
			byMember[e.UserID] = append(byMember[e.UserID], e)
		}
	}
	return byMember, nil
}

func (r *PostgresCompletionSource) GetAnalyticsRecord(ctx context.Context, userID, habitID string) (*domain.HabitAnalyticsRecord, error) {
	var record domain.HabitAnalyticsRecord

	query := `
		SELECT user_id, habit_id, success_rate, consistency_score, habit_strength, formation_stage, updated_at
		FROM habit_analytics
		WHERE user_id = $1 AND habit_id = $2`

	err := r.db.GetContext(ctx, &record, query, userID, habitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAnalyticsNotFound
		}
		return nil, err
	}
	return &record, nil
}
