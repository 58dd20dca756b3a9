package aggregate

import (
	"context"
	"time"

	"github.com/MohammedDeeb261/MotionTrackerApp/internal/logger"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/store"
)

// Reconciler applies duration deltas to every aggregate bucket. The delta is
// added to the stored total via read-then-add, never written as an absolute,
// so concurrent writers from other sessions don't lose updates.
type Reconciler struct {
	store  store.Store
	userID string
	log    *logger.Logger
}

func NewReconciler(st store.Store, userID string, log *logger.Logger) *Reconciler {
	return &Reconciler{store: st, userID: userID, log: log}
}

// ApplyDelta adds deltaSeconds of activity to the daily, weekly, monthly and
// yearly buckets containing now. Buckets are updated independently: one
// granularity failing does not block the others, and failures are logged
// rather than returned. The caller must pass the true increment since its
// last successful flush and must never re-send a flushed interval.
func (r *Reconciler) ApplyDelta(ctx context.Context, activityType string, deltaSeconds int64, now time.Time) {
	if deltaSeconds <= 0 {
		return
	}

	for _, key := range Keys(now) {
		if err := r.applyToBucket(ctx, activityType, deltaSeconds, key, now); err != nil {
			r.log.Error("aggregate bucket update failed",
				"granularity", string(key.Granularity),
				"activity", activityType,
				"error", err)
		}
	}
}

func (r *Reconciler) applyToBucket(ctx context.Context, activityType string, delta int64, key store.PeriodKey, now time.Time) error {
	existing, err := r.store.GetAggregate(ctx, r.userID, activityType, key)
	if err != nil {
		return err
	}

	rec := store.AggregateRecord{
		UserID:               r.userID,
		ActivityType:         activityType,
		Period:               key,
		TotalDurationSeconds: delta,
	}
	if existing != nil {
		rec.TotalDurationSeconds = existing.TotalDurationSeconds + delta
	}
	if key.Granularity == store.Weekly {
		rec.WeekStart, rec.WeekEnd = WeekBounds(now)
	}

	return r.store.UpsertAggregate(ctx, rec)
}

// PeriodTotals reads every activity's total for one bucket. When the
// aggregate table read fails, totals are recomputed from raw tracking events
// over the same window for the requested activities.
func (r *Reconciler) PeriodTotals(ctx context.Context, key store.PeriodKey, now time.Time, fallbackActivities []string) ([]store.AggregateRecord, error) {
	records, err := r.store.ListAggregates(ctx, r.userID, key)
	if err == nil {
		return records, nil
	}
	r.log.Warn("aggregate read failed, falling back to raw events",
		"granularity", string(key.Granularity), "error", err)

	from, to := PeriodWindow(key, now)
	var out []store.AggregateRecord
	for _, activity := range fallbackActivities {
		total, sumErr := r.store.SumTracking(ctx, r.userID, activity, from, to)
		if sumErr != nil {
			return nil, sumErr
		}
		if total > 0 {
			out = append(out, store.AggregateRecord{
				UserID:               r.userID,
				ActivityType:         activity,
				Period:               key,
				TotalDurationSeconds: total,
			})
		}
	}
	return out, nil
}
