package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MohammedDeeb261/MotionTrackerApp/internal/classifier"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/logger"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/sensor"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/store"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/tracker"
)

type fakeClassifier struct {
	mu       sync.Mutex
	label    string
	err      error
	windows  int
	features int
	// onCall runs inside ClassifyWindow before returning, with the lock held.
	onCall func()
}

func (f *fakeClassifier) ClassifyWindow(ctx context.Context, w *sensor.Window) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows++
	if f.onCall != nil {
		f.onCall()
	}
	return f.label, f.err
}

func (f *fakeClassifier) ClassifyFeatures(ctx context.Context, fv sensor.FeatureVector) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.features++
	return f.label, f.err
}

func (f *fakeClassifier) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.windows, f.features
}

func newFixture(t *testing.T, fc *fakeClassifier, opts Options) (*Pipeline, *sensor.Windower, *classifier.Vote, *tracker.Tracker) {
	t.Helper()
	w := sensor.NewWindower(4, 2)
	v := classifier.NewVote(5)
	tr := tracker.New("user-1", 0, store.NewMemoryStore(), nil, logger.Nop())
	return New(w, fc, v, tr, opts, logger.Nop()), w, v, tr
}

func fillWindows(w *sensor.Windower, n int) {
	for i := 0; i < n; i++ {
		w.Append(sensor.Sample{X: 1}, sensor.Sample{Z: 1})
	}
}

func TestClassifyReadyDrainsAllFullWindows(t *testing.T) {
	fc := &fakeClassifier{label: "Walk"}
	p, w, v, _ := newFixture(t, fc, Options{})

	// Eight samples with size 4 / step 2 yields three windows.
	fillWindows(w, 8)
	p.ClassifyReady(context.Background())
	p.Wait()

	windows, features := fc.calls()
	if windows != 3 {
		t.Errorf("classified %d windows, want 3", windows)
	}
	if features != 0 {
		t.Errorf("classified %d feature vectors, want 0", features)
	}
	if label, ok := v.Resolve(); !ok || label != "Walk" {
		t.Errorf("vote resolved to (%q, %v), want (Walk, true)", label, ok)
	}
}

func TestSendFeaturesMode(t *testing.T) {
	fc := &fakeClassifier{label: "Run"}
	p, w, _, _ := newFixture(t, fc, Options{SendFeatures: true})

	fillWindows(w, 4)
	p.ClassifyReady(context.Background())
	p.Wait()

	windows, features := fc.calls()
	if windows != 0 || features != 1 {
		t.Errorf("got %d window / %d feature calls, want 0 / 1", windows, features)
	}
}

func TestResolveVoteDrivesTracker(t *testing.T) {
	fc := &fakeClassifier{label: "Walk"}
	p, w, _, tr := newFixture(t, fc, Options{})

	fillWindows(w, 4)
	p.ClassifyReady(context.Background())
	p.Wait()
	p.ResolveVote(context.Background())

	session := tr.Current()
	if session == nil || session.Activity != "Walk" {
		t.Fatalf("tracker session = %+v, want active Walk session", session)
	}
}

func TestResolveVoteNoopWhenEmpty(t *testing.T) {
	fc := &fakeClassifier{label: "Walk"}
	p, _, _, tr := newFixture(t, fc, Options{})

	p.ResolveVote(context.Background())
	if tr.Current() != nil {
		t.Fatal("empty vote buffer must not open a session")
	}
}

func TestClassificationErrorsDoNotVote(t *testing.T) {
	fc := &fakeClassifier{err: errors.New("connection refused")}
	p, w, v, _ := newFixture(t, fc, Options{})

	fillWindows(w, 4)
	p.ClassifyReady(context.Background())
	p.Wait()

	if _, ok := v.Resolve(); ok {
		t.Fatal("failed classification must not add a vote")
	}
}

func TestNoPredictionDoesNotVote(t *testing.T) {
	fc := &fakeClassifier{err: classifier.ErrNoPrediction}
	p, w, v, _ := newFixture(t, fc, Options{})

	fillWindows(w, 4)
	p.ClassifyReady(context.Background())
	p.Wait()

	if _, ok := v.Resolve(); ok {
		t.Fatal("no-prediction response must not add a vote")
	}
}

func TestStaleGenerationDropped(t *testing.T) {
	fc := &fakeClassifier{label: "Walk"}
	p, w, v, tr := newFixture(t, fc, Options{})

	// The session epoch advances while the request is in flight.
	fc.onCall = func() { tr.Reset() }

	fillWindows(w, 4)
	p.ClassifyReady(context.Background())
	p.Wait()

	if _, ok := v.Resolve(); ok {
		t.Fatal("prediction from a superseded session must be dropped")
	}
}
