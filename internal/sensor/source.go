package sensor

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"sync"
)

// SyntheticSource generates a plausible walking-like oscillation. It stands in
// for a device bridge on hosts without motion hardware.
type SyntheticSource struct {
	mu   sync.Mutex
	tick int
	// RateHz shapes the oscillation period so one stride spans about a second.
	RateHz int
}

func NewSyntheticSource(rateHz int) *SyntheticSource {
	if rateHz <= 0 {
		rateHz = 100
	}
	return &SyntheticSource{RateHz: rateHz}
}

func (s *SyntheticSource) Read() (Sample, Sample, error) {
	s.mu.Lock()
	phase := 2 * math.Pi * float64(s.tick) / float64(s.RateHz)
	s.tick++
	s.mu.Unlock()

	accel := Sample{
		X: 0.3 * math.Sin(phase),
		Y: 0.2 * math.Cos(2*phase),
		Z: 1 + 0.4*math.Sin(phase+math.Pi/4),
	}
	gyro := Sample{
		X: 0.5 * math.Cos(phase),
		Y: 0.1 * math.Sin(3*phase),
		Z: 0.05 * math.Sin(phase/2),
	}
	return accel, gyro, nil
}

// ReplaySource loops over a recorded CSV of readings. Each row holds six
// columns: ax, ay, az, gx, gy, gz. A header row is skipped if present.
type ReplaySource struct {
	mu   sync.Mutex
	rows [][6]float64
	next int
}

func NewReplaySource(path string) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read replay file: %w", err)
	}

	src := &ReplaySource{}
	for _, record := range records {
		if len(record) < 6 {
			continue
		}
		var row [6]float64
		ok := true
		for i := 0; i < 6; i++ {
			row[i], err = strconv.ParseFloat(record[i], 64)
			if err != nil {
				ok = false
				break
			}
		}
		// Non-numeric rows (the header) are skipped.
		if ok {
			src.rows = append(src.rows, row)
		}
	}
	if len(src.rows) == 0 {
		return nil, fmt.Errorf("replay file %s contains no readings", path)
	}
	return src, nil
}

func (r *ReplaySource) Read() (Sample, Sample, error) {
	r.mu.Lock()
	row := r.rows[r.next]
	r.next = (r.next + 1) % len(r.rows)
	r.mu.Unlock()

	return Sample{X: row[0], Y: row[1], Z: row[2]},
		Sample{X: row[3], Y: row[4], Z: row[5]}, nil
}
