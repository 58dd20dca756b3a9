package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings. Values come from the environment
// (godotenv loads .env in main); every tuning constant has a default so the
// daemon runs with an empty environment.
type Config struct {
	// Identity
	UserID string

	// Sensor pipeline
	SampleRateHz int     // samples per second per sensor
	WindowSize   int     // samples per classification window
	Overlap      float64 // fraction of a window retained for the next one
	SendFeatures bool    // reduce windows to feature vectors instead of raw samples

	// Classifier
	PredictURL    string
	VoteSize      int           // ring buffer length for majority-vote smoothing
	VoteInterval  time.Duration // how often the vote is resolved into a label
	CheckInterval time.Duration // how often buffers are polled for a ready window

	// Duration accounting
	BonusIncrement time.Duration // "still active" reinforcement per repeated label
	FlushInterval  time.Duration // durable flush cadence while tracking

	// Goals
	GoalReconcileInterval time.Duration
	GoalWriteCooldown     time.Duration

	// Remote store
	StoreURL string
	StoreKey string

	// Local
	DataDir    string
	CachePath  string
	ReplayPath string // recorded sensor CSV; empty selects the synthetic source
	ImportDir  string // default directory scanned for .fit backfill files
	ListenAddr string
	LogMode    string
}

// Load reads the environment into a Config, applying defaults for anything
// unset. It only errors on values that are present but unparseable.
func Load() (*Config, error) {
	cfg := &Config{
		UserID:                getEnv("USER_ID", "local"),
		SampleRateHz:          100,
		WindowSize:            100,
		Overlap:               0.5,
		PredictURL:            getEnv("PREDICT_URL", "http://localhost:10000/predict"),
		VoteSize:              5,
		VoteInterval:          time.Second,
		CheckInterval:         100 * time.Millisecond,
		BonusIncrement:        500 * time.Millisecond,
		FlushInterval:         5 * time.Second,
		GoalReconcileInterval: 60 * time.Second,
		GoalWriteCooldown:     60 * time.Second,
		StoreURL:              getEnv("STORE_URL", ""),
		StoreKey:              getEnv("STORE_KEY", ""),
		DataDir:               getEnv("DATA_DIR", "./data"),
		ReplayPath:            getEnv("REPLAY_PATH", ""),
		ListenAddr:            getEnv("LISTEN_ADDR", ":8888"),
		LogMode:               getEnv("LOG_MODE", "dev"),
	}

	var err error
	if cfg.SampleRateHz, err = getInt("SAMPLE_RATE_HZ", cfg.SampleRateHz); err != nil {
		return nil, err
	}
	if cfg.WindowSize, err = getInt("WINDOW_SIZE", cfg.WindowSize); err != nil {
		return nil, err
	}
	if cfg.Overlap, err = getFloat("WINDOW_OVERLAP", cfg.Overlap); err != nil {
		return nil, err
	}
	if cfg.SendFeatures, err = getBool("SEND_FEATURES", false); err != nil {
		return nil, err
	}
	if cfg.VoteSize, err = getInt("VOTE_SIZE", cfg.VoteSize); err != nil {
		return nil, err
	}
	if cfg.VoteInterval, err = getDuration("VOTE_INTERVAL", cfg.VoteInterval); err != nil {
		return nil, err
	}
	if cfg.CheckInterval, err = getDuration("CHECK_INTERVAL", cfg.CheckInterval); err != nil {
		return nil, err
	}
	if cfg.BonusIncrement, err = getDuration("BONUS_INCREMENT", cfg.BonusIncrement); err != nil {
		return nil, err
	}
	if cfg.FlushInterval, err = getDuration("FLUSH_INTERVAL", cfg.FlushInterval); err != nil {
		return nil, err
	}
	if cfg.GoalReconcileInterval, err = getDuration("GOAL_RECONCILE_INTERVAL", cfg.GoalReconcileInterval); err != nil {
		return nil, err
	}
	if cfg.GoalWriteCooldown, err = getDuration("GOAL_WRITE_COOLDOWN", cfg.GoalWriteCooldown); err != nil {
		return nil, err
	}

	if cfg.WindowSize <= 0 {
		return nil, fmt.Errorf("WINDOW_SIZE must be positive, got %d", cfg.WindowSize)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= 1 {
		return nil, fmt.Errorf("WINDOW_OVERLAP must be in [0,1), got %v", cfg.Overlap)
	}

	cfg.CachePath = getEnv("CACHE_PATH", cfg.DataDir+"/motion.db")
	cfg.ImportDir = getEnv("IMPORT_DIR", cfg.DataDir+"/import")
	return cfg, nil
}

// Step is the number of samples dropped from the front of each buffer after
// a window is emitted.
func (c *Config) Step() int {
	step := int(float64(c.WindowSize) * (1 - c.Overlap))
	if step < 1 {
		step = 1
	}
	return step
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
