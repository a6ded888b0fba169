package workers

import (
	"context"
	"log"
	"time"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

// JobKind mirrors the external scheduler's cadence: hourly incremental
// collection, daily full recompute for the prior day, weekly recompute over a
// 90-day window, monthly cleanup of stale derived data.
type JobKind string

const (
	JobHourly  JobKind = "hourly"
	JobDaily   JobKind = "daily"
	JobWeekly  JobKind = "weekly"
	JobMonthly JobKind = "monthly"
)

const (
	weeklyWindowDays = 90
	staleAfterDays   = 180
)

type RecomputeJob struct {
	Kind    JobKind
	UserID  string
	HabitID string
	GroupID string
}

// AnalyticsRecomputer is the slice of the analytics service the worker needs.
type AnalyticsRecomputer interface {
	HabitSummary(ctx context.Context, userID, habitID string, from, to time.Time) (*domain.HabitOverview, error)
	GroupDynamics(ctx context.Context, groupID string, from, to time.Time) (*domain.GroupDynamicsResult, error)
	PurgeStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// RecomputeWorker drains cadence jobs enqueued by an external scheduler and
// replays them against the analytics service. Each job is an independent
// recomputation; identical inputs always produce identical derived rows, so
// arbitrary cadence and duplicate deliveries are safe.
type RecomputeWorker struct {
	svc  AnalyticsRecomputer
	jobs chan RecomputeJob
	now  func() time.Time
}

func NewRecomputeWorker(svc AnalyticsRecomputer) *RecomputeWorker {
	return &RecomputeWorker{
		svc:  svc,
		jobs: make(chan RecomputeJob, 100),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (w *RecomputeWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Recompute worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Recompute worker shutting down...")
				return
			}
		}
	}()
}

func (w *RecomputeWorker) Enqueue(job RecomputeJob) {
	select {
	case w.jobs <- job:
	default:
		log.Printf("Recompute queue full! Dropping %s job (habit=%s group=%s)", job.Kind, job.HabitID, job.GroupID)
	}
}

func (w *RecomputeWorker) processJob(ctx context.Context, job RecomputeJob) {
	now := w.now()

	switch job.Kind {
	case JobHourly:
		// incremental: just the trailing day
		w.recomputeHabit(ctx, job, now.AddDate(0, 0, -1), now)

	case JobDaily:
		yesterday := domain.DayOf(now).AddDate(0, 0, -1)
		w.recomputeHabit(ctx, job, yesterday, yesterday)

	case JobWeekly:
		w.recomputeHabit(ctx, job, now.AddDate(0, 0, -weeklyWindowDays+1), now)

	case JobMonthly:
		removed, err := w.svc.PurgeStale(ctx, now.AddDate(0, 0, -staleAfterDays))
		if err != nil {
			log.Printf("Worker cleanup failed: %v", err)
			return
		}
		log.Printf("Worker cleanup removed %d stale derived rows", removed)

	default:
		log.Printf("Worker received unknown job kind %q", job.Kind)
	}
}

func (w *RecomputeWorker) recomputeHabit(ctx context.Context, job RecomputeJob, from, to time.Time) {
	if job.HabitID != "" {
		if _, err := w.svc.HabitSummary(ctx, job.UserID, job.HabitID, from, to); err != nil {
			log.Printf("Worker failed to recompute habit %s: %v", job.HabitID, err)
		}
	}
	if job.GroupID != "" {
		if _, err := w.svc.GroupDynamics(ctx, job.GroupID, from, to); err != nil {
			log.Printf("Worker failed to recompute group %s: %v", job.GroupID, err)
		}
	}
}
