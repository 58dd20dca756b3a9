// Package goals maintains user activity goals: streaming progress updates as
// durations accrue, and a periodic reconcile that recomputes progress from
// the authoritative duration records.
package goals

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MohammedDeeb261/MotionTrackerApp/internal/aggregate"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/logger"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/store"
)

// combinedTypes maps a combined goal activity type to its constituents.
var combinedTypes = map[string][]string{
	"Run & Walk": {"Run", "Walk"},
}

// Constituents returns the activity labels counted toward a goal activity
// type: the type itself, or its members for a combined type.
func Constituents(activityType string) []string {
	if members, ok := combinedTypes[activityType]; ok {
		return members
	}
	return []string{activityType}
}

// Matches reports whether a delta for activity counts toward goalActivity.
func Matches(goalActivity, activity string) bool {
	for _, member := range Constituents(goalActivity) {
		if member == activity {
			return true
		}
	}
	return false
}

// Engine owns goal progress. The streaming path (ApplyDelta) exists for
// low-latency feedback and is rate limited per goal; the reconcile path
// recomputes from source-of-truth records and supersedes it.
type Engine struct {
	mu        sync.Mutex
	goals     []store.Goal
	lastWrite map[string]time.Time

	store    store.Store
	userID   string
	cooldown time.Duration
	log      *logger.Logger
	now      func() time.Time
}

func NewEngine(st store.Store, userID string, cooldown time.Duration, log *logger.Logger) *Engine {
	return &Engine{
		lastWrite: make(map[string]time.Time),
		store:     st,
		userID:    userID,
		cooldown:  cooldown,
		log:       log,
		now:       time.Now,
	}
}

// Refresh reloads the goal list from the store.
func (e *Engine) Refresh(ctx context.Context) error {
	goals, err := e.store.ListGoals(ctx, e.userID)
	if err != nil {
		return fmt.Errorf("failed to load goals: %w", err)
	}
	e.mu.Lock()
	e.goals = goals
	e.mu.Unlock()
	return nil
}

// Goals returns the cached goal list.
func (e *Engine) Goals() []store.Goal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]store.Goal(nil), e.goals...)
}

// ApplyDelta is the streaming path: deltaSeconds of activity is credited to
// every matching active goal. Implements the tracker's delta sink. Remote
// writes are limited to one per goal per cooldown window, except that a
// completion is written immediately.
func (e *Engine) ApplyDelta(ctx context.Context, activityType string, deltaSeconds int64, now time.Time) {
	deltaMs := deltaSeconds * 1000
	if deltaMs <= 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.goals {
		g := &e.goals[i]
		if g.Status != store.GoalActive || !Matches(g.ActivityType, activityType) {
			continue
		}

		g.CurrentDurationMs += deltaMs
		completed := e.completeLocked(g, now)

		if !completed && !e.writeAllowedLocked(g.ID, now) {
			continue
		}
		e.writeProgressLocked(ctx, g, now)
	}
}

// Reconcile recomputes each active goal's progress from the authoritative
// records: today's daily bucket for daily goals, the current ISO week bucket
// for weekly goals, and the raw tracking events since start_date for regular
// goals. Per-goal failures are logged and do not stop the pass.
func (e *Engine) Reconcile(ctx context.Context) {
	if err := e.Refresh(ctx); err != nil {
		e.log.Error("goal reconcile skipped", "error", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	for i := range e.goals {
		g := &e.goals[i]
		if g.Status != store.GoalActive {
			continue
		}

		currentMs, err := e.recompute(ctx, g, now)
		if err != nil {
			e.log.Error("goal recompute failed", "goal", g.ID, "error", err)
			continue
		}

		// A goal can arrive from the store already past its target with the
		// status still active, so completion is decided even when the
		// recomputed value matches.
		changed := currentMs != g.CurrentDurationMs
		g.CurrentDurationMs = currentMs
		completed := e.completeLocked(g, now)
		if !changed && !completed {
			continue
		}
		e.writeProgressLocked(ctx, g, now)
	}
}

func (e *Engine) recompute(ctx context.Context, g *store.Goal, now time.Time) (int64, error) {
	switch g.GoalType {
	case store.GoalDaily:
		return e.sumBucket(ctx, aggregate.DailyKey(now), g.ActivityType)
	case store.GoalWeekly:
		return e.sumBucket(ctx, aggregate.WeeklyKey(now), g.ActivityType)
	case store.GoalRegular:
		start, err := time.ParseInLocation("2006-01-02", g.StartDate, now.Location())
		if err != nil {
			return 0, fmt.Errorf("bad start_date %q: %w", g.StartDate, err)
		}
		var totalSeconds int64
		for _, activity := range Constituents(g.ActivityType) {
			sum, err := e.store.SumTracking(ctx, e.userID, activity, start, now.Add(time.Second))
			if err != nil {
				return 0, err
			}
			totalSeconds += sum
		}
		return totalSeconds * 1000, nil
	default:
		return 0, fmt.Errorf("unknown goal type %q", g.GoalType)
	}
}

func (e *Engine) sumBucket(ctx context.Context, key store.PeriodKey, activityType string) (int64, error) {
	records, err := e.store.ListAggregates(ctx, e.userID, key)
	if err != nil {
		return 0, err
	}
	var totalSeconds int64
	for _, rec := range records {
		if Matches(activityType, rec.ActivityType) {
			totalSeconds += rec.TotalDurationSeconds
		}
	}
	return totalSeconds * 1000, nil
}

// completeLocked flips the goal to completed when the target is reached.
// One-way: a completed goal never reverts, even if a later recompute sums
// lower.
func (e *Engine) completeLocked(g *store.Goal, now time.Time) bool {
	if g.Status != store.GoalActive || g.CurrentDurationMs < g.TargetDurationMs {
		return false
	}
	g.Status = store.GoalCompleted
	g.IsCompleted = true
	date := now.Format("2006-01-02")
	g.CompletionDate = &date
	e.log.Info("goal completed", "goal", g.ID, "title", g.Title)
	return true
}

func (e *Engine) writeAllowedLocked(goalID string, now time.Time) bool {
	last, ok := e.lastWrite[goalID]
	return !ok || now.Sub(last) >= e.cooldown
}

func (e *Engine) writeProgressLocked(ctx context.Context, g *store.Goal, now time.Time) {
	g.UpdatedAt = now
	if err := e.store.UpdateGoalProgress(ctx, *g); err != nil {
		e.log.Error("failed to write goal progress", "goal", g.ID, "error", err)
		return
	}
	e.lastWrite[g.ID] = now
}

// Create validates and stores a new goal, then refreshes the cached list.
func (e *Engine) Create(ctx context.Context, title, activityType string, goalType store.GoalType, targetMs int64, startDate time.Time) (*store.Goal, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("goal title is required")
	}
	if targetMs <= 0 {
		return nil, fmt.Errorf("target duration must be positive")
	}
	switch goalType {
	case store.GoalDaily, store.GoalWeekly, store.GoalRegular:
	default:
		return nil, fmt.Errorf("unknown goal type %q", goalType)
	}

	now := e.now()
	g := store.Goal{
		ID:               uuid.New().String(),
		UserID:           e.userID,
		Title:            title,
		ActivityType:     activityType,
		GoalType:         goalType,
		TargetDurationMs: targetMs,
		StartDate:        startDate.Format("2006-01-02"),
		Status:           store.GoalActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := e.store.CreateGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	e.mu.Lock()
	e.goals = append([]store.Goal{g}, e.goals...)
	e.mu.Unlock()
	return &g, nil
}
