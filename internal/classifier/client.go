// Package classifier talks to the remote activity inference endpoint.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MohammedDeeb261/MotionTrackerApp/internal/sensor"
)

// ErrNoPrediction means the endpoint responded but without a usable label.
// Callers treat it as "no activity change this cycle", not a failure.
var ErrNoPrediction = errors.New("no prediction")

type Client struct {
	httpClient *http.Client
	predictURL string
}

func NewClient(predictURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		predictURL: predictURL,
	}
}

type predictResponse struct {
	Prediction string `json:"prediction"`
	Activity   string `json:"activity"`
	Error      string `json:"error"`
}

// ClassifyWindow posts a raw window as {"window": [[ax,ay,az,gx,gy,gz], ...]}
// and returns the predicted label.
func (c *Client) ClassifyWindow(ctx context.Context, w *sensor.Window) (string, error) {
	return c.post(ctx, map[string]interface{}{"window": w.Rows()})
}

// ClassifyFeatures posts a feature vector as a flat name→value object.
func (c *Client) ClassifyFeatures(ctx context.Context, fv sensor.FeatureVector) (string, error) {
	if !fv.Complete() {
		return "", fmt.Errorf("%w: incomplete feature vector", ErrNoPrediction)
	}
	return c.post(ctx, fv)
}

func (c *Client) post(ctx context.Context, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.predictURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, respBody)
	}

	var parsed predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoPrediction, err)
	}

	// Older model servers answer with "activity" instead of "prediction".
	label := parsed.Prediction
	if label == "" {
		label = parsed.Activity
	}
	if label == "" {
		if parsed.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrNoPrediction, parsed.Error)
		}
		return "", ErrNoPrediction
	}
	return label, nil
}
