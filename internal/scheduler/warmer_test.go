package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/wordapi/internal/cache"
	"github.com/example/wordapi/internal/dashboard"
	"github.com/example/wordapi/internal/database"
	"github.com/example/wordapi/pkg/models"
)

func TestWarmUserStoresAllAggregates(t *testing.T) {
	if err := database.ConnectTest(); err != nil {
		t.Fatalf("ConnectTest: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	ctx := context.Background()

	user := &models.User{Name: "Ada", Email: "ada@example.com", Password: "hash", Active: true}
	if err := database.NewUserRepository().Create(ctx, user, nil); err != nil {
		t.Fatalf("create user: %v", err)
	}
	word := &models.Word{Name: "house", Translation: "casa"}
	if err := database.NewWordRepository().Create(ctx, word, nil); err != nil {
		t.Fatalf("create word: %v", err)
	}

	today := models.DateOnly(time.Now())
	historics := database.NewHistoricRepository()
	batch := []models.Historic{
		{WordID: word.ID, Hit: true, Date: today.AddDate(0, 0, -1)},
		{WordID: word.ID, Hit: false, Date: today.AddDate(0, 0, -1)},
	}
	if _, err := historics.CreateBatch(ctx, batch, user.ID); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	store := cache.NewMemoryStore()
	warmer := NewWarmer(dashboard.NewEngine(historics), store, zerolog.Nop())

	if err := warmer.WarmUser(ctx, user.ID, today); err != nil {
		t.Fatalf("WarmUser: %v", err)
	}

	key := cache.UserRouteKey(user.ID, "/api/dashboard/total_hits_last_30days")
	body, hit, err := store.Get(ctx, key)
	if err != nil || !hit {
		t.Fatalf("totals entry missing: hit=%v err=%v", hit, err)
	}
	var totals struct {
		Hits   int `json:"hits"`
		Errors int `json:"errors"`
	}
	if err := json.Unmarshal(body, &totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if totals.Hits != 1 || totals.Errors != 1 {
		t.Errorf("totals = %+v, want {1 1}", totals)
	}

	for _, path := range []string{
		"/api/dashboard/historic_by_day/" + today.Format("2006-01-02"),
		"/api/dashboard/top10_wrong_words_by_user",
		"/api/dashboard/historic_90days_by_user",
	} {
		if _, hit, err := store.Get(ctx, cache.UserRouteKey(user.ID, path)); err != nil || !hit {
			t.Errorf("entry for %s missing: hit=%v err=%v", path, hit, err)
		}
	}
}
