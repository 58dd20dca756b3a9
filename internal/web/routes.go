// Package web exposes the local HTTP surface: live tracking status, aggregate
// summaries, goal management, and backfill import.
package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MohammedDeeb261/MotionTrackerApp/internal/aggregate"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/goals"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/importer"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/logger"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/store"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/tracker"
)

// DefaultGoalTargetMs is used when a goal is created without a target.
const DefaultGoalTargetMs = 30 * 60 * 1000

// Activities listed in aggregate views even when a period has no rows yet.
var knownActivities = []string{"Walk", "Run", "Stationary"}

type Handler struct {
	tracker    *tracker.Tracker
	aggregates *aggregate.Reconciler
	goals      *goals.Engine
	importer   *importer.Importer
	importDir  string
	log        *logger.Logger
}

func NewHandler(t *tracker.Tracker, agg *aggregate.Reconciler, g *goals.Engine, imp *importer.Importer, importDir string, log *logger.Logger) *Handler {
	return &Handler{
		tracker:    t,
		aggregates: agg,
		goals:      g,
		importer:   imp,
		importDir:  importDir,
		log:        log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/tracking", h.TrackingStatus)
	router.POST("/tracking/reset", h.TrackingReset)
	router.GET("/aggregates/:period", h.Aggregates)
	router.GET("/goals", h.GoalList)
	router.POST("/goals", h.GoalCreate)
	router.POST("/import", h.Import)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type activityTotal struct {
	ActivityType string `json:"activity_type"`
	Seconds      int64  `json:"seconds"`
	Formatted    string `json:"formatted"`
}

type trackingStatus struct {
	Session   *tracker.Session `json:"session"`
	Durations []activityTotal  `json:"durations"`
}

func (h *Handler) TrackingStatus(c *gin.Context) {
	status := trackingStatus{Session: h.tracker.Current()}
	durations := h.tracker.Durations()
	for _, activity := range knownActivities {
		seconds := durations[activity]
		status.Durations = append(status.Durations, activityTotal{
			ActivityType: activity,
			Seconds:      seconds,
			Formatted:    FormatDuration(seconds),
		})
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) TrackingReset(c *gin.Context) {
	h.tracker.Reset()
	c.Status(http.StatusOK)
}

func (h *Handler) Aggregates(c *gin.Context) {
	now := time.Now()
	var key store.PeriodKey
	switch store.Granularity(c.Param("period")) {
	case store.Daily:
		key = aggregate.DailyKey(now)
	case store.Weekly:
		key = aggregate.WeeklyKey(now)
	case store.Monthly:
		key = aggregate.MonthlyKey(now)
	case store.Yearly:
		key = aggregate.YearlyKey(now)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be daily, weekly, monthly or yearly"})
		return
	}

	records, err := h.aggregates.PeriodTotals(c.Request.Context(), key, now, knownActivities)
	if err != nil {
		h.log.Error("failed to load aggregates", "period", key.Granularity, "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	totals := make([]activityTotal, 0, len(records))
	for _, rec := range records {
		totals = append(totals, activityTotal{
			ActivityType: rec.ActivityType,
			Seconds:      rec.TotalDurationSeconds,
			Formatted:    FormatDuration(rec.TotalDurationSeconds),
		})
	}
	c.JSON(http.StatusOK, gin.H{"period": key.Granularity, "totals": totals})
}

func (h *Handler) GoalList(c *gin.Context) {
	if err := h.goals.Refresh(c.Request.Context()); err != nil {
		h.log.Error("failed to refresh goals", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, h.goals.Goals())
}

type goalRequest struct {
	Title        string `json:"title"`
	ActivityType string `json:"activity_type"`
	GoalType     string `json:"goal_type"`
	Target       string `json:"target"` // HH:MM:SS
}

func (h *Handler) GoalCreate(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.GoalType == "" {
		req.GoalType = string(store.GoalDaily)
	}
	targetMs := int64(DefaultGoalTargetMs)
	if req.Target != "" {
		var err error
		if targetMs, err = ParseTimeToMs(req.Target); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	goal, err := h.goals.Create(c.Request.Context(), req.Title, req.ActivityType, store.GoalType(req.GoalType), targetMs, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (h *Handler) Import(c *gin.Context) {
	dir := c.Query("dir")
	if dir == "" {
		dir = h.importDir
	}
	imported, err := h.importer.ImportDir(c.Request.Context(), dir)
	if err != nil {
		h.log.Error("import failed", "dir", dir, "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported})
}
