package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestUserRouteKey(t *testing.T) {
	key := UserRouteKey(42, "/api/dashboard/total_hits_last_30days")
	want := "user_42_/api/dashboard/total_hits_last_30days"
	if key != want {
		t.Errorf("expected %q, got %q", want, key)
	}
	if UserRouteKey(42, "/a") == UserRouteKey(42, "/b") {
		t.Error("different routes must not collide")
	}
	if UserRouteKey(1, "/a") == UserRouteKey(2, "/a") {
		t.Error("different users must not collide")
	}
}

func TestGetOrComputeIdempotentWithinTTL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	calls := 0
	compute := func() ([]byte, error) {
		calls++
		return []byte(`{"hits":1,"errors":2}`), nil
	}

	first, err := GetOrCompute(ctx, store, "k", time.Hour, compute)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}

	// Underlying data "changes": compute would now return something else.
	second, err := GetOrCompute(ctx, store, "k", time.Hour, func() ([]byte, error) {
		calls++
		return []byte(`{"hits":9,"errors":9}`), nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected 1 compute call, got %d", calls)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("results within TTL must be byte-identical: %q vs %q", first, second)
	}
}

func TestGetOrComputeRecomputesAfterExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	calls := 0
	compute := func() ([]byte, error) {
		calls++
		return []byte("v"), nil
	}

	if _, err := GetOrCompute(ctx, store, "k", time.Hour, compute); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}

	now = now.Add(time.Hour + time.Second)

	if _, err := GetOrCompute(ctx, store, "k", time.Hour, compute); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected recomputation after expiry, got %d calls", calls)
	}
}

func TestMemoryStoreCopiesValue(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("original")
	if err := store.Set(ctx, "k", value, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'X'

	got, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != "original" {
		t.Errorf("stored value was aliased: %q", got)
	}
}
