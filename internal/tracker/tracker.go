// Package tracker attributes elapsed wall-clock time to the currently
// classified activity and fans flushed deltas out to the aggregate and goal
// accounting paths.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MohammedDeeb261/MotionTrackerApp/internal/logger"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/store"
)

// Sink receives each flushed duration delta. The reconciler and the goal
// engine both implement it.
type Sink interface {
	ApplyDelta(ctx context.Context, activityType string, deltaSeconds int64, now time.Time)
}

// Session is the in-progress interval for the currently classified activity.
// Exactly one exists while tracking.
type Session struct {
	Activity     string    `json:"activity"`
	StartTime    time.Time `json:"start_time"`
	BaseDuration int64     `json:"base_duration"` // seconds accumulated before this session
	LastUpdated  time.Time `json:"last_updated"`
}

// Tracker is the Idle/Tracking state machine. All mutation goes through its
// mutex: label results and flush ticks arrive from different timers and must
// serialize on the single session cell.
type Tracker struct {
	mu        sync.Mutex
	session   *Session
	durations map[string]time.Duration
	gen       uint64 // bumped whenever the session moves on; stale results are discarded

	userID string
	bonus  time.Duration
	store  store.Store
	cache  *store.Cache
	sinks  []Sink
	log    *logger.Logger
	now    func() time.Time
}

func New(userID string, bonus time.Duration, st store.Store, cache *store.Cache, log *logger.Logger, sinks ...Sink) *Tracker {
	t := &Tracker{
		durations: make(map[string]time.Duration),
		userID:    userID,
		bonus:     bonus,
		store:     st,
		cache:     cache,
		sinks:     sinks,
		log:       log,
		now:       time.Now,
	}
	t.restore()
	return t
}

// restore loads the last-flushed durations and session snapshot so the
// display is warm immediately after a relaunch. The restored session is
// display-only; the next label opens a fresh one.
func (t *Tracker) restore() {
	if t.cache == nil {
		return
	}
	var persisted map[string]int64
	if found, err := t.cache.Get(store.CacheKeyDurations, &persisted); err != nil {
		t.log.Warn("failed to restore cached durations", "error", err)
	} else if found {
		for activity, seconds := range persisted {
			t.durations[activity] = time.Duration(seconds) * time.Second
		}
	}
	var session Session
	if found, err := t.cache.Get(store.CacheKeySession, &session); err != nil {
		t.log.Warn("failed to restore cached session", "error", err)
	} else if found {
		// Keep the activity for display but restart the clock: offline time
		// is not credited.
		session.StartTime = t.now()
		session.LastUpdated = session.StartTime
		t.session = &session
	}
}

// Generation identifies the current session epoch. Callers snapshot it before
// issuing an async classification and pass it back with the result; results
// from an older epoch are dropped.
func (t *Tracker) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// OnLabel feeds one authoritative (post-vote) classification result into the
// state machine. gen must be the Generation observed when the classification
// was started.
func (t *Tracker) OnLabel(ctx context.Context, label string, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen {
		t.log.Debug("discarding stale classification result", "label", label)
		return
	}
	now := t.now()

	switch {
	case t.session == nil || t.session.Activity == "":
		t.openSession(label, now)

	case t.session.Activity == label:
		// Still active: small reinforcement between full flushes.
		t.durations[label] += t.bonus
		t.session.LastUpdated = now
		t.persist()

	default:
		// The session moves on: anything classified against the old one is
		// stale from here.
		t.flushLocked(ctx, now)
		t.gen++
		t.openSession(label, now)
	}
}

func (t *Tracker) openSession(label string, now time.Time) {
	t.session = &Session{
		Activity:     label,
		StartTime:    now,
		BaseDuration: int64(t.durations[label] / time.Second),
		LastUpdated:  now,
	}
	t.persist()
}

// Flush runs the periodic durable flush: elapsed time so far is credited to
// the active activity and forwarded downstream, and the session clock
// restarts. A no-op while idle.
func (t *Tracker) Flush(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flushLocked(ctx, t.now())
}

// Stop performs the final teardown flush and clears the live-session marker.
func (t *Tracker) Stop(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.flushLocked(ctx, t.now())
	t.session = nil
	t.gen++
	if t.cache != nil {
		if err := t.cache.Delete(store.CacheKeySession); err != nil {
			t.log.Warn("failed to clear session snapshot", "error", err)
		}
	}
	t.persist()
}

// flushLocked credits floor(now - start) whole seconds to the active
// activity, persists, and forwards the delta. Callers hold the mutex.
func (t *Tracker) flushLocked(ctx context.Context, now time.Time) {
	if t.session == nil || t.session.Activity == "" {
		return
	}

	elapsed := now.Sub(t.session.StartTime)
	deltaSeconds := int64(elapsed / time.Second)
	if deltaSeconds <= 0 {
		return
	}
	activity := t.session.Activity

	t.durations[activity] += time.Duration(deltaSeconds) * time.Second
	t.session.StartTime = now
	t.session.LastUpdated = now
	t.persist()

	ev := store.TrackingEvent{
		ID:              uuid.New().String(),
		UserID:          t.userID,
		ActivityType:    activity,
		DurationSeconds: deltaSeconds,
		CreatedAt:       now,
	}
	if err := t.store.InsertTracking(ctx, ev); err != nil {
		t.log.Error("failed to record tracking event", "activity", activity, "error", err)
	}

	for _, sink := range t.sinks {
		sink.ApplyDelta(ctx, activity, deltaSeconds, now)
	}
}

// persist writes the floored durations map and the session snapshot to the
// local cache. Cache failures are logged and never block the remote path.
func (t *Tracker) persist() {
	if t.cache == nil {
		return
	}
	floored := make(map[string]int64, len(t.durations))
	for activity, d := range t.durations {
		floored[activity] = int64(d / time.Second)
	}
	if err := t.cache.Put(store.CacheKeyDurations, floored); err != nil {
		t.log.Warn("failed to persist durations", "error", err)
	}
	if t.session != nil {
		if err := t.cache.Put(store.CacheKeySession, t.session); err != nil {
			t.log.Warn("failed to persist session snapshot", "error", err)
		}
	}
}

// Durations returns the accumulated per-activity totals, floored to seconds.
func (t *Tracker) Durations() map[string]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]int64, len(t.durations))
	for activity, d := range t.durations {
		out[activity] = int64(d / time.Second)
	}
	return out
}

// Current returns a copy of the live session, or nil while idle.
func (t *Tracker) Current() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil
	}
	clone := *t.session
	return &clone
}

// Reset clears all accumulated durations and the live session. User-initiated
// only; nothing in the accounting paths calls this.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.durations = make(map[string]time.Duration)
	t.session = nil
	t.gen++
	if t.cache != nil {
		if err := t.cache.Delete(store.CacheKeySession); err != nil {
			t.log.Warn("failed to clear session snapshot", "error", err)
		}
	}
	t.persist()
}
