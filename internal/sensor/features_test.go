package sensor

import (
	"math"
	"testing"
)

func constantWindow(n int, accel, gyro Sample) *Window {
	w := &Window{Accel: make([]Sample, n), Gyro: make([]Sample, n)}
	for i := 0; i < n; i++ {
		w.Accel[i] = accel
		w.Gyro[i] = gyro
	}
	return w
}

func TestExtractFeaturesConstantWindow(t *testing.T) {
	// 100 accelerometer samples of (0,0,1) and gyroscope samples of (0,0,0).
	w := constantWindow(100, Sample{Z: 1}, Sample{})
	fv := ExtractFeatures(w)

	checks := map[string]float64{
		"acc_z_mean":  1,
		"acc_z_std":   0,
		"acc_z_rms":   1,
		"acc_z_max":   1,
		"acc_z_min":   1,
		"acc_sma":     1,
		"gyro_z_mean": 0,
		"gyro_z_rms":  0,
	}
	for name, want := range checks {
		if got := fv[name]; math.Abs(got-want) > 1e-12 {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestExtractFeaturesNegativeConstant(t *testing.T) {
	// For constant value v: mean=v, std=0, rms=|v|, max=min=v.
	w := constantWindow(10, Sample{X: -2}, Sample{})
	fv := ExtractFeatures(w)

	if fv["acc_x_mean"] != -2 {
		t.Errorf("acc_x_mean = %v, want -2", fv["acc_x_mean"])
	}
	if fv["acc_x_std"] != 0 {
		t.Errorf("acc_x_std = %v, want 0", fv["acc_x_std"])
	}
	if fv["acc_x_rms"] != 2 {
		t.Errorf("acc_x_rms = %v, want 2", fv["acc_x_rms"])
	}
	if fv["acc_x_max"] != -2 || fv["acc_x_min"] != -2 {
		t.Errorf("acc_x_max/min = %v/%v, want -2/-2", fv["acc_x_max"], fv["acc_x_min"])
	}
}

func TestExtractFeaturesStd(t *testing.T) {
	w := &Window{
		Accel: []Sample{{X: 1}, {X: 3}},
		Gyro:  []Sample{{}, {}},
	}
	fv := ExtractFeatures(w)

	// Population std with divisor n: sqrt(((1-2)^2+(3-2)^2)/2) = 1.
	if got := fv["acc_x_std"]; math.Abs(got-1) > 1e-12 {
		t.Errorf("acc_x_std = %v, want 1", got)
	}
}

func TestFeatureVectorComplete(t *testing.T) {
	fv := ExtractFeatures(constantWindow(5, Sample{}, Sample{}))
	if !fv.Complete() {
		t.Fatalf("extracted vector should be complete")
	}

	delete(fv, "gyro_y_rms")
	if fv.Complete() {
		t.Fatalf("vector missing gyro_y_rms should not be complete")
	}
}
