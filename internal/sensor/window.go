package sensor

import "sync"

// Window is a fixed-length slice of paired samples, aligned by index. Both
// slices always have the same length.
type Window struct {
	Accel []Sample
	Gyro  []Sample
}

// Rows flattens the window into classification order: one row per index,
// columns ax, ay, az, gx, gy, gz.
func (w *Window) Rows() [][]float64 {
	rows := make([][]float64, len(w.Accel))
	for i := range w.Accel {
		a, g := w.Accel[i], w.Gyro[i]
		rows[i] = []float64{a.X, a.Y, a.Z, g.X, g.Y, g.Z}
	}
	return rows
}

// Windower buffers incoming sample pairs and cuts them into overlapping
// fixed-size windows. Appends come from the sampler goroutine and emissions
// from the classification timer, so access is serialized with a mutex.
type Windower struct {
	mu   sync.Mutex
	size int
	step int

	accel []Sample
	gyro  []Sample
}

// NewWindower returns a windower emitting windows of size samples and
// advancing by step samples per emission. step < size yields overlap.
func NewWindower(size, step int) *Windower {
	if step < 1 {
		step = 1
	}
	return &Windower{size: size, step: step}
}

func (w *Windower) Append(accel, gyro Sample) {
	w.mu.Lock()
	w.accel = append(w.accel, accel)
	w.gyro = append(w.gyro, gyro)
	w.mu.Unlock()
}

// Next emits the oldest window if both buffers hold at least a full window's
// worth of samples, then trims step samples from the front of each buffer so
// the overlapping tail seeds the next window. Returns false when there is not
// enough data yet; that is normal backpressure, not an error.
func (w *Windower) Next() (*Window, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.accel) < w.size || len(w.gyro) < w.size {
		return nil, false
	}

	win := &Window{
		Accel: append([]Sample(nil), w.accel[:w.size]...),
		Gyro:  append([]Sample(nil), w.gyro[:w.size]...),
	}

	w.accel = w.accel[w.step:]
	w.gyro = w.gyro[w.step:]
	return win, true
}

// Len reports the current accelerometer and gyroscope buffer lengths.
func (w *Windower) Len() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.accel), len(w.gyro)
}
