package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps the logical tables in process memory. It backs tests and
// the offline mode used when no remote store is configured.
type MemoryStore struct {
	mu         sync.Mutex
	tracking   []TrackingEvent
	aggregates map[string]*AggregateRecord
	goals      map[string]*Goal
	goalOrder  []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		aggregates: make(map[string]*AggregateRecord),
		goals:      make(map[string]*Goal),
	}
}

func (s *MemoryStore) InsertTracking(_ context.Context, ev TrackingEvent) error {
	s.mu.Lock()
	s.tracking = append(s.tracking, ev)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SumTracking(_ context.Context, userID, activityType string, from, to time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, ev := range s.tracking {
		if ev.UserID != userID || ev.ActivityType != activityType {
			continue
		}
		if ev.CreatedAt.Before(from) || !ev.CreatedAt.Before(to) {
			continue
		}
		total += ev.DurationSeconds
	}
	return total, nil
}

func (s *MemoryStore) GetAggregate(_ context.Context, userID, activityType string, key PeriodKey) (*AggregateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.aggregates[aggregateKey(userID, activityType, key)]
	if !ok {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func (s *MemoryStore) UpsertAggregate(_ context.Context, rec AggregateRecord) error {
	s.mu.Lock()
	clone := rec
	s.aggregates[aggregateKey(rec.UserID, rec.ActivityType, rec.Period)] = &clone
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListAggregates(_ context.Context, userID string, key PeriodKey) ([]AggregateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []AggregateRecord
	for _, rec := range s.aggregates {
		if rec.UserID == userID && rec.Period == key {
			records = append(records, *rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ActivityType < records[j].ActivityType
	})
	return records, nil
}

func (s *MemoryStore) ListGoals(_ context.Context, userID string) ([]Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var goals []Goal
	// Newest first, matching the remote ordering.
	for i := len(s.goalOrder) - 1; i >= 0; i-- {
		g := s.goals[s.goalOrder[i]]
		if g.UserID == userID {
			goals = append(goals, *g)
		}
	}
	return goals, nil
}

func (s *MemoryStore) CreateGoal(_ context.Context, g Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.goals[g.ID]; exists {
		return fmt.Errorf("goal %s already exists", g.ID)
	}
	clone := g
	s.goals[g.ID] = &clone
	s.goalOrder = append(s.goalOrder, g.ID)
	return nil
}

func (s *MemoryStore) UpdateGoalProgress(_ context.Context, g Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.goals[g.ID]
	if !ok {
		return fmt.Errorf("goal %s not found", g.ID)
	}
	existing.CurrentDurationMs = g.CurrentDurationMs
	existing.IsCompleted = g.IsCompleted
	existing.Status = g.Status
	existing.CompletionDate = g.CompletionDate
	existing.UpdatedAt = g.UpdatedAt
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func aggregateKey(userID, activityType string, key PeriodKey) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d|%d",
		userID, activityType, key.Granularity, key.Date, key.Year, key.Week, key.Month)
}
