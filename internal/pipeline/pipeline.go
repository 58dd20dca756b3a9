// Package pipeline wires the motion path end to end: windowed sensor samples
// go out for classification, predictions collect in a vote buffer, and the
// resolved label drives duration tracking.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MohammedDeeb261/MotionTrackerApp/internal/classifier"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/logger"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/sensor"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/tracker"
)

// Classifier is the remote inference surface the pipeline needs.
type Classifier interface {
	ClassifyWindow(ctx context.Context, w *sensor.Window) (string, error)
	ClassifyFeatures(ctx context.Context, fv sensor.FeatureVector) (string, error)
}

type Options struct {
	// SendFeatures posts reduced feature vectors instead of raw windows.
	SendFeatures bool
	// CheckInterval is the window-ready polling cadence.
	CheckInterval time.Duration
	// VoteInterval is how often the vote buffer is resolved into a label.
	VoteInterval time.Duration
}

type Pipeline struct {
	windower   *sensor.Windower
	classifier Classifier
	vote       *classifier.Vote
	tracker    *tracker.Tracker
	opts       Options
	log        *logger.Logger

	wg sync.WaitGroup
}

func New(w *sensor.Windower, c Classifier, v *classifier.Vote, t *tracker.Tracker, opts Options, log *logger.Logger) *Pipeline {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 100 * time.Millisecond
	}
	if opts.VoteInterval <= 0 {
		opts.VoteInterval = time.Second
	}
	return &Pipeline{
		windower:   w,
		classifier: c,
		vote:       v,
		tracker:    t,
		opts:       opts,
		log:        log,
	}
}

// Start runs the classification and vote loops until ctx is cancelled.
func (p *Pipeline) Start(ctx context.Context) {
	go p.classifyLoop(ctx)
	go p.voteLoop(ctx)
}

// Wait blocks until all in-flight classification requests have returned.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) classifyLoop(ctx context.Context) {
	ticker := time.NewTicker(p.opts.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ClassifyReady(ctx)
		}
	}
}

func (p *Pipeline) voteLoop(ctx context.Context) {
	ticker := time.NewTicker(p.opts.VoteInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ResolveVote(ctx)
		}
	}
}

// ClassifyReady drains every full window from the buffer and sends each for
// classification in its own goroutine. Sampling never waits on the network.
func (p *Pipeline) ClassifyReady(ctx context.Context) {
	for {
		window, ok := p.windower.Next()
		if !ok {
			return
		}
		gen := p.tracker.Generation()
		p.wg.Add(1)
		go p.classify(ctx, window, gen)
	}
}

func (p *Pipeline) classify(ctx context.Context, window *sensor.Window, gen uint64) {
	defer p.wg.Done()

	var (
		label string
		err   error
	)
	if p.opts.SendFeatures {
		label, err = p.classifier.ClassifyFeatures(ctx, sensor.ExtractFeatures(window))
	} else {
		label, err = p.classifier.ClassifyWindow(ctx, window)
	}
	if err != nil {
		if errors.Is(err, classifier.ErrNoPrediction) {
			p.log.Debug("classifier has no prediction yet", "error", err)
		} else {
			p.log.Warn("classification failed", "error", err)
		}
		return
	}

	// A response for a session that has since moved on is worthless.
	if gen != p.tracker.Generation() {
		p.log.Debug("discarding stale prediction", "label", label)
		return
	}
	p.vote.Add(label)
}

// ResolveVote turns the accumulated predictions into a single label and
// feeds it to the duration tracker.
func (p *Pipeline) ResolveVote(ctx context.Context) {
	label, ok := p.vote.Resolve()
	if !ok {
		return
	}
	p.tracker.OnLabel(ctx, label, p.tracker.Generation())
}
