// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/example/wordapi/internal/cache"
	"github.com/example/wordapi/internal/dashboard"
	"github.com/example/wordapi/internal/database"
)

// DefaultWarmHour is the UTC hour the daily cache warm runs at
const DefaultWarmHour = 5

// Warmer precomputes the dashboard aggregates for every active user
// once a day, so the first morning request hits a fresh cache entry
// instead of paying for the aggregation.
type Warmer struct {
	scheduler *gocron.Scheduler
	users     *database.UserRepository
	engine    *dashboard.Engine
	store     cache.Store
	logger    zerolog.Logger
}

// NewWarmer creates a warmer over the shared database connection
func NewWarmer(engine *dashboard.Engine, store cache.Store, logger zerolog.Logger) *Warmer {
	return &Warmer{
		scheduler: gocron.NewScheduler(time.UTC),
		users:     database.NewUserRepository(),
		engine:    engine,
		store:     store,
		logger:    logger,
	}
}

// Start schedules the daily warm run. CACHE_WARM_HOUR overrides the hour.
func (w *Warmer) Start() error {
	hour := DefaultWarmHour
	if raw := os.Getenv("CACHE_WARM_HOUR"); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h <= 23 {
			hour = h
		}
	}
	if _, err := w.scheduler.Every(1).Day().At(fmt.Sprintf("%02d:00", hour)).Do(w.warmAll); err != nil {
		return fmt.Errorf("failed to schedule cache warm: %v", err)
	}
	w.scheduler.StartAsync()
	return nil
}

// Stop terminates the scheduled jobs
func (w *Warmer) Stop() {
	w.scheduler.Stop()
}

func (w *Warmer) warmAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	users, err := w.users.GetAll(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("cache warm: listing users failed")
		return
	}

	today := time.Now().UTC()
	warmed := 0
	for _, user := range users {
		if !user.Active {
			continue
		}
		if err := w.WarmUser(ctx, user.ID, today); err != nil {
			w.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("cache warm failed for user")
			continue
		}
		warmed++
	}
	w.logger.Info().Int("users", warmed).Msg("dashboard cache warmed")
}

// WarmUser computes and stores the four dashboard aggregates for one user.
// Keys match what the HTTP cache middleware derives, so warmed entries are
// served to real requests.
func (w *Warmer) WarmUser(ctx context.Context, userID int64, today time.Time) error {
	day := today.Format("2006-01-02")

	entries := []struct {
		path    string
		compute func() (interface{}, error)
	}{
		{"/api/dashboard/total_hits_last_30days", func() (interface{}, error) {
			return w.engine.Rolling30(ctx, userID, today)
		}},
		{"/api/dashboard/historic_by_day/" + day, func() (interface{}, error) {
			return w.engine.ByDay(ctx, userID, today, today)
		}},
		{"/api/dashboard/top10_wrong_words_by_user", func() (interface{}, error) {
			return w.engine.Top10Missed(ctx, userID, today)
		}},
		{"/api/dashboard/historic_90days_by_user", func() (interface{}, error) {
			return w.engine.Series90(ctx, userID, today)
		}},
	}

	for _, entry := range entries {
		value, err := entry.compute()
		if err != nil {
			return err
		}
		body, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode aggregate: %v", err)
		}
		key := cache.UserRouteKey(userID, entry.path)
		if err := w.store.Set(ctx, key, body, cache.DashboardTTL); err != nil {
			return fmt.Errorf("failed to store %s: %v", key, err)
		}
	}
	return nil
}
