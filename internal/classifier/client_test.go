package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MohammedDeeb261/MotionTrackerApp/internal/sensor"
)

func testWindow(n int) *sensor.Window {
	w := &sensor.Window{Accel: make([]sensor.Sample, n), Gyro: make([]sensor.Sample, n)}
	for i := range w.Accel {
		w.Accel[i] = sensor.Sample{Z: 1}
	}
	return w
}

func TestClassifyWindowSuccess(t *testing.T) {
	var received map[string][][]float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"prediction": "Walk"})
	}))
	defer srv.Close()

	label, err := NewClient(srv.URL).ClassifyWindow(context.Background(), testWindow(10))
	if err != nil {
		t.Fatalf("ClassifyWindow: %v", err)
	}
	if label != "Walk" {
		t.Fatalf("label = %q, want Walk", label)
	}
	if len(received["window"]) != 10 || len(received["window"][0]) != 6 {
		t.Fatalf("posted window shape = %dx%d, want 10x6",
			len(received["window"]), len(received["window"][0]))
	}
}

func TestClassifyWindowActivityField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"activity": "Run"})
	}))
	defer srv.Close()

	label, err := NewClient(srv.URL).ClassifyWindow(context.Background(), testWindow(4))
	if err != nil {
		t.Fatalf("ClassifyWindow: %v", err)
	}
	if label != "Run" {
		t.Fatalf("label = %q, want Run", label)
	}
}

func TestClassifyWindowNoPrediction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "model not loaded"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ClassifyWindow(context.Background(), testWindow(4))
	if !errors.Is(err, ErrNoPrediction) {
		t.Fatalf("err = %v, want ErrNoPrediction", err)
	}
}

func TestClassifyWindowServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ClassifyWindow(context.Background(), testWindow(4))
	if err == nil {
		t.Fatalf("expected error on 500 response")
	}
	if errors.Is(err, ErrNoPrediction) {
		t.Fatalf("transport-level failure should not be ErrNoPrediction")
	}
}

func TestClassifyFeaturesRejectsIncomplete(t *testing.T) {
	_, err := NewClient("http://unused").ClassifyFeatures(context.Background(),
		sensor.FeatureVector{"acc_x_mean": 1})
	if !errors.Is(err, ErrNoPrediction) {
		t.Fatalf("err = %v, want ErrNoPrediction for incomplete vector", err)
	}
}

func TestClassifyFeaturesPostsFlatObject(t *testing.T) {
	var received map[string]float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"prediction": "Stationary"})
	}))
	defer srv.Close()

	fv := sensor.ExtractFeatures(testWindow(8))
	label, err := NewClient(srv.URL).ClassifyFeatures(context.Background(), fv)
	if err != nil {
		t.Fatalf("ClassifyFeatures: %v", err)
	}
	if label != "Stationary" {
		t.Fatalf("label = %q, want Stationary", label)
	}
	if received["acc_z_mean"] != 1 {
		t.Fatalf("posted acc_z_mean = %v, want 1", received["acc_z_mean"])
	}
}
