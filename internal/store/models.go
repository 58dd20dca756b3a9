// Package store defines the remote-store tables the accounting engine writes
// to, plus the local persisted cache.
package store

import (
	"context"
	"time"
)

// Table names in the hosted database.
const (
	TableTracking = "activity_tracking"
	TableDaily    = "activity_daily"
	TableWeekly   = "activity_weekly"
	TableMonthly  = "activity_monthly"
	TableYearly   = "activity_yearly"
	TableGoals    = "user_activity_goals"
)

// Granularity selects one aggregate bucket family.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// Granularities lists every bucket family a delta applies to.
var Granularities = []Granularity{Daily, Weekly, Monthly, Yearly}

// PeriodKey identifies one aggregate row's time bucket. Which fields are
// meaningful depends on the granularity: Date for daily, Year+Week for
// weekly, Year+Month for monthly, Year alone for yearly.
type PeriodKey struct {
	Granularity Granularity
	Date        string // YYYY-MM-DD
	Year        int
	Week        int
	Month       int
}

func (k PeriodKey) Table() string {
	switch k.Granularity {
	case Weekly:
		return TableWeekly
	case Monthly:
		return TableMonthly
	case Yearly:
		return TableYearly
	default:
		return TableDaily
	}
}

// TrackingEvent is one flushed interval of a single activity.
type TrackingEvent struct {
	ID              string    `json:"id,omitempty"`
	UserID          string    `json:"user_id"`
	ActivityType    string    `json:"activity_type"`
	DurationSeconds int64     `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

// AggregateRecord is one row of a time-bucketed aggregate table. Totals only
// grow, by delta application; they are never overwritten with recomputed
// absolutes.
type AggregateRecord struct {
	UserID               string
	ActivityType         string
	Period               PeriodKey
	TotalDurationSeconds int64

	// Week bucket metadata, Monday through Sunday.
	WeekStart string
	WeekEnd   string
}

// GoalType scopes which duration records count toward a goal.
type GoalType string

const (
	GoalDaily   GoalType = "daily"
	GoalWeekly  GoalType = "weekly"
	GoalRegular GoalType = "regular"
)

// Goal statuses. Completion is one-way: no path moves a goal from completed
// back to active.
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalExpired   = "expired"
)

type Goal struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Title             string    `json:"title"`
	ActivityType      string    `json:"activity_type"`
	GoalType          GoalType  `json:"goal_type"`
	TargetDurationMs  int64     `json:"target_duration_ms"`
	CurrentDurationMs int64     `json:"current_duration_ms"`
	StartDate         string    `json:"start_date"` // YYYY-MM-DD
	Status            string    `json:"status"`
	IsCompleted       bool      `json:"is_completed"`
	CompletionDate    *string   `json:"completion_date,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}

// Store is the logical remote-store surface used by the accounting engine.
type Store interface {
	// Raw per-interval duration events.
	InsertTracking(ctx context.Context, ev TrackingEvent) error
	// SumTracking totals raw event seconds for one activity in [from, to).
	SumTracking(ctx context.Context, userID, activityType string, from, to time.Time) (int64, error)

	// Aggregate buckets. GetAggregate returns nil when the row is absent.
	GetAggregate(ctx context.Context, userID, activityType string, key PeriodKey) (*AggregateRecord, error)
	UpsertAggregate(ctx context.Context, rec AggregateRecord) error
	// ListAggregates returns every activity's row for one period bucket.
	ListAggregates(ctx context.Context, userID string, key PeriodKey) ([]AggregateRecord, error)

	// Goals.
	ListGoals(ctx context.Context, userID string) ([]Goal, error)
	CreateGoal(ctx context.Context, g Goal) error
	UpdateGoalProgress(ctx context.Context, g Goal) error

	Close() error
}
