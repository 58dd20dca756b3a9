package sensor

import "testing"

func fill(w *Windower, n int, start float64) {
	for i := 0; i < n; i++ {
		v := start + float64(i)
		w.Append(Sample{X: v}, Sample{Y: v})
	}
}

func TestWindowerEmitsOnlyWhenFull(t *testing.T) {
	w := NewWindower(100, 50)

	fill(w, 99, 0)
	if _, ok := w.Next(); ok {
		t.Fatalf("expected no window with 99 samples buffered")
	}

	fill(w, 1, 99)
	win, ok := w.Next()
	if !ok {
		t.Fatalf("expected a window with 100 samples buffered")
	}
	if len(win.Accel) != 100 || len(win.Gyro) != 100 {
		t.Fatalf("window lengths = %d/%d, want 100/100", len(win.Accel), len(win.Gyro))
	}
}

func TestWindowerAdvancesByStep(t *testing.T) {
	w := NewWindower(100, 50)
	fill(w, 150, 0)

	first, ok := w.Next()
	if !ok {
		t.Fatalf("expected first window")
	}
	accLen, gyroLen := w.Len()
	if accLen != 100 || gyroLen != 100 {
		t.Fatalf("buffers after emission = %d/%d, want 100/100", accLen, gyroLen)
	}

	second, ok := w.Next()
	if !ok {
		t.Fatalf("expected second window from overlap")
	}

	// 50% overlap: second window starts where the first window's midpoint was.
	if got, want := second.Accel[0].X, first.Accel[50].X; got != want {
		t.Fatalf("overlap start = %v, want %v", got, want)
	}
}

func TestWindowerRowsOrder(t *testing.T) {
	w := NewWindower(2, 1)
	w.Append(Sample{X: 1, Y: 2, Z: 3}, Sample{X: 4, Y: 5, Z: 6})
	w.Append(Sample{X: 7, Y: 8, Z: 9}, Sample{X: 10, Y: 11, Z: 12})

	win, ok := w.Next()
	if !ok {
		t.Fatalf("expected window")
	}
	rows := win.Rows()
	if len(rows) != 2 || len(rows[0]) != 6 {
		t.Fatalf("rows shape = %dx%d, want 2x6", len(rows), len(rows[0]))
	}
	want := []float64{1, 2, 3, 4, 5, 6}
	for i, v := range want {
		if rows[0][i] != v {
			t.Fatalf("rows[0][%d] = %v, want %v", i, rows[0][i], v)
		}
	}
}
