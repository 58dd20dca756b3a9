// Package importer backfills recorded workout files into the same accounting
// paths live classification feeds: raw tracking events plus aggregate and
// goal deltas.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tormoder/fit"

	"github.com/MohammedDeeb261/MotionTrackerApp/internal/logger"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/store"
)

// Sink receives each imported activity's duration delta, keyed to the
// activity's own start time so it lands in the right buckets.
type Sink interface {
	ApplyDelta(ctx context.Context, activityType string, deltaSeconds int64, now time.Time)
}

type Importer struct {
	store  store.Store
	userID string
	sinks  []Sink
	log    *logger.Logger
}

func New(st store.Store, userID string, log *logger.Logger, sinks ...Sink) *Importer {
	return &Importer{store: st, userID: userID, sinks: sinks, log: log}
}

// ImportDir imports every .fit file under dir. Per-file failures are logged
// and skipped; the count of successfully imported files is returned.
func (i *Importer) ImportDir(ctx context.Context, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.fit"))
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return imported, ctx.Err()
		default:
		}
		if err := i.ImportFile(ctx, path); err != nil {
			i.log.Error("failed to import activity file", "file", path, "error", err)
			continue
		}
		imported++
	}
	return imported, nil
}

func (i *Importer) ImportFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return i.ImportData(ctx, data)
}

// ImportData parses one FIT activity and records its duration.
func (i *Importer) ImportData(ctx context.Context, data []byte) error {
	fitFile, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode FIT file: %w", err)
	}

	activity, err := fitFile.Activity()
	if err != nil {
		return fmt.Errorf("failed to get activity from FIT: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return fmt.Errorf("no sessions found in FIT file")
	}

	for _, session := range activity.Sessions {
		seconds := int64(session.GetTotalTimerTimeScaled())
		if seconds <= 0 {
			continue
		}
		label := activityLabel(fmt.Sprint(session.Sport))
		startTime := session.StartTime

		ev := store.TrackingEvent{
			ID:              uuid.New().String(),
			UserID:          i.userID,
			ActivityType:    label,
			DurationSeconds: seconds,
			CreatedAt:       startTime,
		}
		if err := i.store.InsertTracking(ctx, ev); err != nil {
			return fmt.Errorf("failed to record imported activity: %w", err)
		}

		for _, sink := range i.sinks {
			sink.ApplyDelta(ctx, label, seconds, startTime)
		}
		i.log.Info("imported activity",
			"activity", label, "seconds", seconds, "start", startTime)
	}
	return nil
}

// activityLabel maps a FIT sport name onto the classifier's label set.
func activityLabel(sport string) string {
	switch strings.ToLower(sport) {
	case "walking", "hiking":
		return "Walk"
	case "running":
		return "Run"
	default:
		if sport == "" || strings.EqualFold(sport, "invalid") {
			return "Other"
		}
		return sport
	}
}
