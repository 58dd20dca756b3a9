package sensor

import (
	"context"
	"fmt"
	"time"

	"github.com/MohammedDeeb261/MotionTrackerApp/internal/logger"
)

// Sample is a single three-axis reading from one sensor.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Source delivers paired accelerometer and gyroscope readings. Implementations
// wrap whatever produces the data: a device bridge, a replay file, or a
// synthetic generator in tests.
type Source interface {
	Read() (accel Sample, gyro Sample, err error)
}

// ErrSensorUnavailable is returned by Sampler.Start when the source cannot
// produce a first reading.
var ErrSensorUnavailable = fmt.Errorf("sensor unavailable")

// Sampler polls a Source at a fixed rate and appends each reading pair to the
// windower buffers.
type Sampler struct {
	source   Source
	windower *Windower
	interval time.Duration
	log      *logger.Logger
}

func NewSampler(source Source, windower *Windower, rateHz int, log *logger.Logger) *Sampler {
	if rateHz <= 0 {
		rateHz = 100
	}
	return &Sampler{
		source:   source,
		windower: windower,
		interval: time.Second / time.Duration(rateHz),
		log:      log,
	}
}

// Start verifies the source is readable, then pumps readings until ctx is
// cancelled. A failed probe is surfaced to the caller; read failures after
// that are logged and the cycle skipped.
func (s *Sampler) Start(ctx context.Context) error {
	accel, gyro, err := s.source.Read()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
	}
	s.windower.Append(accel, gyro)

	go s.run(ctx)
	return nil
}

func (s *Sampler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			accel, gyro, err := s.source.Read()
			if err != nil {
				s.log.Warn("sensor read failed", "error", err)
				continue
			}
			s.windower.Append(accel, gyro)
		}
	}
}
