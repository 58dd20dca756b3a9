package sensor

import "math"

// FeatureVector maps statistic names to values, one entry per axis statistic
// plus the accelerometer signal magnitude area. Keys follow the training
// pipeline's naming: <sensor>_<axis>_<stat> and acc_sma.
type FeatureVector map[string]float64

var featureStats = []string{"mean", "std", "rms", "max", "min"}

var featureAxes = []struct {
	prefix  string
	extract func(Sample) float64
	accel   bool
}{
	{"acc_x", func(s Sample) float64 { return s.X }, true},
	{"acc_y", func(s Sample) float64 { return s.Y }, true},
	{"acc_z", func(s Sample) float64 { return s.Z }, true},
	{"gyro_x", func(s Sample) float64 { return s.X }, false},
	{"gyro_y", func(s Sample) float64 { return s.Y }, false},
	{"gyro_z", func(s Sample) float64 { return s.Z }, false},
}

// ExtractFeatures reduces a window to its summary statistics: mean, population
// standard deviation, RMS, max and min for each axis of each sensor, plus the
// accelerometer signal magnitude area (mean of |x|+|y|+|z| over the window).
func ExtractFeatures(w *Window) FeatureVector {
	fv := make(FeatureVector, len(featureAxes)*len(featureStats)+1)

	for _, axis := range featureAxes {
		samples := w.Gyro
		if axis.accel {
			samples = w.Accel
		}
		series := make([]float64, len(samples))
		for i, s := range samples {
			series[i] = axis.extract(s)
		}
		mean, std, rms, max, min := summarize(series)
		fv[axis.prefix+"_mean"] = mean
		fv[axis.prefix+"_std"] = std
		fv[axis.prefix+"_rms"] = rms
		fv[axis.prefix+"_max"] = max
		fv[axis.prefix+"_min"] = min
	}

	var sma float64
	for _, s := range w.Accel {
		sma += math.Abs(s.X) + math.Abs(s.Y) + math.Abs(s.Z)
	}
	if len(w.Accel) > 0 {
		sma /= float64(len(w.Accel))
	}
	fv["acc_sma"] = sma

	return fv
}

// Complete reports whether every required per-axis statistic is present.
// Classification must not be attempted on a partial vector.
func (fv FeatureVector) Complete() bool {
	for _, axis := range featureAxes {
		for _, stat := range featureStats {
			if _, ok := fv[axis.prefix+"_"+stat]; !ok {
				return false
			}
		}
	}
	_, ok := fv["acc_sma"]
	return ok
}

func summarize(series []float64) (mean, std, rms, max, min float64) {
	if len(series) == 0 {
		return 0, 0, 0, 0, 0
	}
	max, min = series[0], series[0]
	var sum, sumSq float64
	for _, v := range series {
		sum += v
		sumSq += v * v
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	n := float64(len(series))
	mean = sum / n
	rms = math.Sqrt(sumSq / n)

	var variance float64
	for _, v := range series {
		d := v - mean
		variance += d * d
	}
	// Population std, divisor n, matching the training pipeline.
	std = math.Sqrt(variance / n)
	return mean, std, rms, max, min
}
