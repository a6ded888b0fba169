package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

var _ domain.CompletionSource = (*InMemoryCompletionSource)(nil)

// InMemoryCompletionSource backs the engines in tests and local development.
type InMemoryCompletionSource struct {
	mu sync.RWMutex

	events       []domain.CompletionEvent
	groupHabits  map[string][]string
	groupMembers map[string][]string
	analytics    map[string]*domain.HabitAnalyticsRecord
}

func NewInMemoryCompletionSource() *InMemoryCompletionSource {
	return &InMemoryCompletionSource{
		groupHabits:  make(map[string][]string),
		groupMembers: make(map[string][]string),
		analytics:    make(map[string]*domain.HabitAnalyticsRecord),
	}
}

func (r *InMemoryCompletionSource) AddEvents(events ...domain.CompletionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *InMemoryCompletionSource) SetGroup(groupID string, habitIDs, memberIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groupHabits[groupID] = habitIDs
	r.groupMembers[groupID] = memberIDs
}

func (r *InMemoryCompletionSource) SetAnalyticsRecord(record *domain.HabitAnalyticsRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analytics[analyticsKey(record.UserID, record.HabitID)] = record
}

func analyticsKey(userID, habitID string) string {
	return fmt.Sprintf("%s|%s", userID, habitID)
}

func inRange(e domain.CompletionEvent, from, to time.Time) bool {
	day := e.Day()
	return !day.Before(domain.DayOf(from)) && !day.After(domain.DayOf(to))
}

func (r *InMemoryCompletionSource) ListByHabit(ctx context.Context, userID, habitID string, from, to time.Time) ([]domain.CompletionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := []domain.CompletionEvent{}
	for _, e := range r.events {
		if e.UserID == userID && e.EntityID == habitID && inRange(e, from, to) {
			matches = append(matches, e)
		}
	}
	return matches, nil
}

func (r *InMemoryCompletionSource) ListByGroupHabits(ctx context.Context, groupID string, from, to time.Time) (map[string][]domain.CompletionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byHabit := make(map[string][]domain.CompletionEvent)
	for _, habitID := range r.groupHabits[groupID] {
		byHabit[habitID] = []domain.CompletionEvent{}
		for _, e := range r.events {
			if e.EntityID == habitID && inRange(e, from, to) {
				byHabit[habitID] = append(byHabit[habitID], e)
			}
		}
	}
	return byHabit, nil
}

func (r *InMemoryCompletionSource) ListByGroupMembers(ctx context.Context, groupID string, from, to time.Time) (map[string][]domain.CompletionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := make(map[string]bool)
	for _, habitID := range r.groupHabits[groupID] {
		habits[habitID] = true
	}

	byMember := make(map[string][]domain.CompletionEvent)
	for _, userID := range r.groupMembers[groupID] {
		byMember[userID] = []domain.CompletionEvent{}
		for _, e := range r.events {
			if e.UserID == userID && habits[e.EntityID] && inRange(e, from, to) {
				byMember[userID] = append(byMember[userID], e)
			}
		}
	}
	return byMember, nil
}

func (r *InMemoryCompletionSource) GetAnalyticsRecord(ctx context.Context, userID, habitID string) (*domain.HabitAnalyticsRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.analytics[analyticsKey(userID, habitID)]
	if !ok {
		return nil, domain.ErrAnalyticsNotFound
	}
	return record, nil
}
