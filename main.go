// main.go - Entry point and dependency injection
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/MohammedDeeb261/MotionTrackerApp/internal/aggregate"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/classifier"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/config"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/goals"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/importer"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/logger"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/pipeline"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/sensor"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/store"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/tracker"
	"github.com/MohammedDeeb261/MotionTrackerApp/internal/web"

	_ "github.com/mattn/go-sqlite3"
)

type App struct {
	cfg      *config.Config
	log      *logger.Logger
	cache    *store.Cache
	store    store.Store
	tracker  *tracker.Tracker
	goals    *goals.Engine
	pipeline *pipeline.Pipeline
	sampler  *sensor.Sampler
	cron     *cron.Cron
	server   *http.Server
	cancel   context.CancelFunc
	shutdown chan os.Signal
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	app := &App{
		shutdown: make(chan os.Signal, 1),
	}

	if err := app.init(); err != nil {
		log.Fatal("Failed to initialize app:", err)
	}

	if err := app.start(); err != nil {
		app.log.Fatal("failed to start", "error", err)
	}

	signal.Notify(app.shutdown, os.Interrupt, syscall.SIGTERM)
	<-app.shutdown

	app.stop()
}

func (app *App) init() error {
	var err error
	if app.cfg, err = config.Load(); err != nil {
		return err
	}
	if app.log, err = logger.New(app.cfg.LogMode); err != nil {
		return err
	}

	if err := os.MkdirAll(app.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if app.cache, err = store.NewCache(app.cfg.CachePath); err != nil {
		return fmt.Errorf("failed to open local cache: %w", err)
	}

	// Without a remote store the daemon still tracks, in memory only.
	if app.cfg.StoreURL != "" {
		app.store = store.NewRemoteStore(app.cfg.StoreURL, app.cfg.StoreKey)
	} else {
		app.log.Warn("STORE_URL not set, durations will not survive outside the local cache")
		app.store = store.NewMemoryStore()
	}

	reconciler := aggregate.NewReconciler(app.store, app.cfg.UserID, app.log)
	app.goals = goals.NewEngine(app.store, app.cfg.UserID, app.cfg.GoalWriteCooldown, app.log)
	app.tracker = tracker.New(app.cfg.UserID, app.cfg.BonusIncrement, app.store, app.cache, app.log,
		reconciler, app.goals)

	windower := sensor.NewWindower(app.cfg.WindowSize, app.cfg.Step())
	source, err := app.sensorSource()
	if err != nil {
		return err
	}
	app.sampler = sensor.NewSampler(source, windower, app.cfg.SampleRateHz, app.log)

	app.pipeline = pipeline.New(
		windower,
		classifier.NewClient(app.cfg.PredictURL),
		classifier.NewVote(app.cfg.VoteSize),
		app.tracker,
		pipeline.Options{
			SendFeatures:  app.cfg.SendFeatures,
			CheckInterval: app.cfg.CheckInterval,
			VoteInterval:  app.cfg.VoteInterval,
		},
		app.log,
	)

	app.cron = cron.New()

	imp := importer.New(app.store, app.cfg.UserID, app.log, reconciler, app.goals)
	handler := web.NewHandler(app.tracker, reconciler, app.goals, imp, app.cfg.ImportDir, app.log)

	if app.cfg.LogMode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)

	app.server = &http.Server{
		Addr:    app.cfg.ListenAddr,
		Handler: router,
	}

	return nil
}

func (app *App) sensorSource() (sensor.Source, error) {
	if app.cfg.ReplayPath != "" {
		src, err := sensor.NewReplaySource(app.cfg.ReplayPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open replay source: %w", err)
		}
		app.log.Info("replaying recorded sensor data", "path", app.cfg.ReplayPath)
		return src, nil
	}
	return sensor.NewSyntheticSource(app.cfg.SampleRateHz), nil
}

func (app *App) start() error {
	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	if err := app.sampler.Start(ctx); err != nil {
		return err
	}
	app.pipeline.Start(ctx)

	if err := app.goals.Refresh(ctx); err != nil {
		app.log.Warn("failed to load goals at startup", "error", err)
	}

	app.cron.AddFunc(fmt.Sprintf("@every %s", app.cfg.FlushInterval), func() {
		app.tracker.Flush(context.Background())
	})
	app.cron.AddFunc(fmt.Sprintf("@every %s", app.cfg.GoalReconcileInterval), func() {
		app.goals.Reconcile(context.Background())
	})
	app.cron.Start()

	go func() {
		app.log.Info("server starting", "addr", app.cfg.ListenAddr)
		if err := app.server.ListenAndServe(); err != http.ErrServerClosed {
			app.log.Error("server error", "error", err)
		}
	}()

	return nil
}

func (app *App) stop() {
	app.log.Info("shutting down")

	if app.cancel != nil {
		app.cancel()
	}
	app.cron.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.server.Shutdown(ctx); err != nil {
		app.log.Error("server shutdown error", "error", err)
	}

	// Let in-flight classifications settle, then flush the open session.
	app.pipeline.Wait()
	app.tracker.Stop(ctx)

	if app.cache != nil {
		app.cache.Close()
	}
	if app.store != nil {
		app.store.Close()
	}
	app.log.Info("shutdown complete")
	app.log.Sync()
}
