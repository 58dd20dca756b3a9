package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RemoteStore talks to the hosted database's REST layer. Every table is a
// resource under /rest/v1 filtered with column=op.value query parameters, the
// way the mobile client queried it.
type RemoteStore struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewRemoteStore(baseURL, apiKey string) *RemoteStore {
	return &RemoteStore{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (s *RemoteStore) InsertTracking(ctx context.Context, ev TrackingEvent) error {
	return s.insert(ctx, TableTracking, ev, "")
}

func (s *RemoteStore) SumTracking(ctx context.Context, userID, activityType string, from, to time.Time) (int64, error) {
	params := url.Values{}
	params.Set("select", "duration_seconds")
	params.Set("user_id", "eq."+userID)
	params.Set("activity_type", "eq."+activityType)
	params.Add("created_at", "gte."+from.UTC().Format(time.RFC3339))
	params.Add("created_at", "lt."+to.UTC().Format(time.RFC3339))

	var rows []struct {
		DurationSeconds int64 `json:"duration_seconds"`
	}
	if err := s.get(ctx, TableTracking, params, &rows); err != nil {
		return 0, err
	}

	var total int64
	for _, r := range rows {
		total += r.DurationSeconds
	}
	return total, nil
}

func (s *RemoteStore) GetAggregate(ctx context.Context, userID, activityType string, key PeriodKey) (*AggregateRecord, error) {
	params := periodParams(key)
	params.Set("user_id", "eq."+userID)
	params.Set("activity_type", "eq."+activityType)

	var rows []map[string]interface{}
	if err := s.get(ctx, key.Table(), params, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rec := decodeAggregate(rows[0], key)
	return &rec, nil
}

func (s *RemoteStore) UpsertAggregate(ctx context.Context, rec AggregateRecord) error {
	return s.insert(ctx, rec.Period.Table(), encodeAggregate(rec), conflictColumns(rec.Period.Granularity))
}

func (s *RemoteStore) ListAggregates(ctx context.Context, userID string, key PeriodKey) ([]AggregateRecord, error) {
	params := periodParams(key)
	params.Set("user_id", "eq."+userID)

	var rows []map[string]interface{}
	if err := s.get(ctx, key.Table(), params, &rows); err != nil {
		return nil, err
	}
	records := make([]AggregateRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, decodeAggregate(row, key))
	}
	return records, nil
}

func (s *RemoteStore) ListGoals(ctx context.Context, userID string) ([]Goal, error) {
	params := url.Values{}
	params.Set("user_id", "eq."+userID)
	params.Set("order", "created_at.desc")

	var goals []Goal
	if err := s.get(ctx, TableGoals, params, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

func (s *RemoteStore) CreateGoal(ctx context.Context, g Goal) error {
	return s.insert(ctx, TableGoals, g, "")
}

func (s *RemoteStore) UpdateGoalProgress(ctx context.Context, g Goal) error {
	params := url.Values{}
	params.Set("id", "eq."+g.ID)

	patch := map[string]interface{}{
		"current_duration_ms": g.CurrentDurationMs,
		"is_completed":        g.IsCompleted,
		"status":              g.Status,
		"completion_date":     g.CompletionDate,
	}
	return s.write(ctx, http.MethodPatch, TableGoals, params, patch, "")
}

func (s *RemoteStore) Close() error {
	return nil
}

func (s *RemoteStore) get(ctx context.Context, table string, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, table, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store returned status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *RemoteStore) insert(ctx context.Context, table string, row interface{}, onConflict string) error {
	return s.write(ctx, http.MethodPost, table, url.Values{}, row, onConflict)
}

func (s *RemoteStore) write(ctx context.Context, method, table string, params url.Values, body interface{}, onConflict string) error {
	if onConflict != "" {
		params.Set("on_conflict", onConflict)
	}
	reqURL := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table)
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	if onConflict != "" {
		req.Header.Set("Prefer", "resolution=merge-duplicates")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store returned status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}

func (s *RemoteStore) setHeaders(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
}

func periodParams(key PeriodKey) url.Values {
	params := url.Values{}
	switch key.Granularity {
	case Weekly:
		params.Set("year", fmt.Sprintf("eq.%d", key.Year))
		params.Set("week_number", fmt.Sprintf("eq.%d", key.Week))
	case Monthly:
		params.Set("year", fmt.Sprintf("eq.%d", key.Year))
		params.Set("month", fmt.Sprintf("eq.%d", key.Month))
	case Yearly:
		params.Set("year", fmt.Sprintf("eq.%d", key.Year))
	default:
		params.Set("date", "eq."+key.Date)
	}
	return params
}

func conflictColumns(g Granularity) string {
	switch g {
	case Weekly:
		return "user_id,activity_type,year,week_number"
	case Monthly:
		return "user_id,activity_type,year,month"
	case Yearly:
		return "user_id,activity_type,year"
	default:
		return "user_id,activity_type,date"
	}
}

func encodeAggregate(rec AggregateRecord) map[string]interface{} {
	row := map[string]interface{}{
		"user_id":                rec.UserID,
		"activity_type":          rec.ActivityType,
		"total_duration_seconds": rec.TotalDurationSeconds,
	}
	switch rec.Period.Granularity {
	case Weekly:
		row["year"] = rec.Period.Year
		row["week_number"] = rec.Period.Week
		row["week_start_date"] = rec.WeekStart
		row["week_end_date"] = rec.WeekEnd
	case Monthly:
		row["year"] = rec.Period.Year
		row["month"] = rec.Period.Month
	case Yearly:
		row["year"] = rec.Period.Year
	default:
		row["date"] = rec.Period.Date
	}
	return row
}

func decodeAggregate(row map[string]interface{}, key PeriodKey) AggregateRecord {
	rec := AggregateRecord{Period: key}
	if v, ok := row["user_id"].(string); ok {
		rec.UserID = v
	}
	if v, ok := row["activity_type"].(string); ok {
		rec.ActivityType = v
	}
	if v, ok := row["total_duration_seconds"].(float64); ok {
		rec.TotalDurationSeconds = int64(v)
	}
	if v, ok := row["week_start_date"].(string); ok {
		rec.WeekStart = v
	}
	if v, ok := row["week_end_date"].(string); ok {
		rec.WeekEnd = v
	}
	return rec
}
