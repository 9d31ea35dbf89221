// Package dashboard computes time-windowed review statistics for one user.
//
// Every operation takes an explicit reference date instead of reading the
// wall clock, so a long-lived server never carries a stale notion of "today"
// and tests can pin the clock.
package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/example/wordapi/pkg/models"
)

// EventSource supplies review events for aggregation. The order of the
// returned slice is unspecified; the engine imposes its own ordering.
type EventSource interface {
	EventsByUserAndRange(ctx context.Context, userID int64, start, end time.Time) ([]models.Historic, error)
}

// Engine answers the dashboard queries over an EventSource
type Engine struct {
	events EventSource
}

// NewEngine creates an aggregation engine
func NewEngine(events EventSource) *Engine {
	return &Engine{events: events}
}

// HitsTotal is a zero-filled hits/errors pair
type HitsTotal struct {
	Hits   int `json:"hits"`
	Errors int `json:"errors"`
}

// DayCount is one outcome's count on a single day
type DayCount struct {
	HitType string `json:"hit_type"`
	Count   int    `json:"count"`
}

// WordMissCount is a word's accumulated miss count
type WordMissCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// DaySeries is one day's complete hits/errors pair
type DaySeries struct {
	Date   string `json:"date"`
	Hits   int    `json:"hits"`
	Errors int    `json:"errors"`
}

const dateLayout = "2006-01-02"

// Rolling30 counts hits and errors in [today-30, today-1]. Both counters
// start at zero: a user with no events gets {0,0}, never an error.
func (e *Engine) Rolling30(ctx context.Context, userID int64, today time.Time) (HitsTotal, error) {
	today = models.DateOnly(today)
	start := today.AddDate(0, 0, -30)
	end := today.AddDate(0, 0, -1)

	events, err := e.events.EventsByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return HitsTotal{}, err
	}

	var total HitsTotal
	for _, event := range events {
		if event.Hit {
			total.Hits++
		} else {
			total.Errors++
		}
	}
	return total, nil
}

// ByDay returns one record per outcome actually present on the given date.
// A day with no events yields an empty slice, not a zero-filled pair; this
// asymmetry with Rolling30 is part of the serving contract. Errors sort
// before hits, matching the boolean grouping order of the original reports.
func (e *Engine) ByDay(ctx context.Context, userID int64, date, today time.Time) ([]DayCount, error) {
	date = models.DateOnly(date)

	events, err := e.events.EventsByUserAndRange(ctx, userID, date, date)
	if err != nil {
		return nil, err
	}

	var hits, misses int
	for _, event := range events {
		if !models.DateOnly(event.Date).Equal(date) {
			continue
		}
		if event.Hit {
			hits++
		} else {
			misses++
		}
	}

	counts := make([]DayCount, 0, 2)
	if misses > 0 {
		counts = append(counts, DayCount{HitType: "errors", Count: misses})
	}
	if hits > 0 {
		counts = append(counts, DayCount{HitType: "hits", Count: hits})
	}
	return counts, nil
}

// Top10Missed returns at most ten words ordered by miss count descending.
// Only misses with date <= today-1 count; ties keep first-seen order.
func (e *Engine) Top10Missed(ctx context.Context, userID int64, today time.Time) ([]WordMissCount, error) {
	end := models.DateOnly(today).AddDate(0, 0, -1)

	events, err := e.events.EventsByUserAndRange(ctx, userID, time.Time{}, end)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, event := range events {
		if event.Hit {
			continue
		}
		if _, seen := counts[event.WordName]; !seen {
			order = append(order, event.WordName)
		}
		counts[event.WordName]++
	}

	ranked := make([]WordMissCount, 0, len(order))
	for _, word := range order {
		ranked = append(ranked, WordMissCount{Word: word, Count: counts[word]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	return ranked, nil
}

// Series90 returns one entry per date with at least one event in
// [today-91, today-1], ascending by date. Each emitted entry carries a
// complete pair with the absent outcome zero-filled; dates with no events
// at all are omitted. The window is the literal 91-day inclusive range.
func (e *Engine) Series90(ctx context.Context, userID int64, today time.Time) ([]DaySeries, error) {
	today = models.DateOnly(today)
	end := today.AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -90)

	events, err := e.events.EventsByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*DaySeries)
	for _, event := range events {
		key := models.DateOnly(event.Date).Format(dateLayout)
		entry, ok := byDate[key]
		if !ok {
			entry = &DaySeries{Date: key}
			byDate[key] = entry
		}
		if event.Hit {
			entry.Hits++
		} else {
			entry.Errors++
		}
	}

	series := make([]DaySeries, 0, len(byDate))
	for _, entry := range byDate {
		series = append(series, *entry)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series, nil
}
