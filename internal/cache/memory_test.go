package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if _, ok, _ := c.Get(ctx, "latest:EUR"); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Set(ctx, "latest:EUR", []byte(`{"USD":"1.1"}`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok, err := c.Get(ctx, "latest:EUR")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if string(val) != `{"USD":"1.1"}` {
		t.Errorf("unexpected value %q", val)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_ = c.Set(ctx, "convert:EUR:USD:2025-08-29", []byte("1.5"), time.Hour)

	// Just before the deadline the entry is served.
	now = now.Add(time.Hour - time.Nanosecond)
	if _, ok, _ := c.Get(ctx, "convert:EUR:USD:2025-08-29"); !ok {
		t.Fatal("entry expired too early")
	}

	// At the deadline the entry is stale (strict check).
	now = now.Add(time.Nanosecond)
	if _, ok, _ := c.Get(ctx, "convert:EUR:USD:2025-08-29"); ok {
		t.Fatal("entry served past its expiry")
	}
}

func TestMemoryCacheOverwrite(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("old"), time.Minute)
	_ = c.Set(ctx, "k", []byte("new"), time.Minute)

	val, ok, _ := c.Get(ctx, "k")
	if !ok || string(val) != "new" {
		t.Fatalf("expected last write to win, got ok=%v val=%q", ok, val)
	}
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, "shared", []byte("v"), time.Minute)
				_, _, _ = c.Get(ctx, "shared")
			}
		}()
	}
	wg.Wait()

	if _, ok, _ := c.Get(ctx, "shared"); !ok {
		t.Fatal("expected entry after concurrent writes")
	}
}

func TestMemoryCacheJanitor(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("v"), 10*time.Millisecond)
	_ = c.Set(ctx, "long", []byte("v"), time.Hour)

	c.StartJanitor(5 * time.Millisecond)
	defer c.Stop()

	time.Sleep(50 * time.Millisecond)

	c.mu.RLock()
	_, shortKept := c.entries["short"]
	_, longKept := c.entries["long"]
	c.mu.RUnlock()

	if shortKept {
		t.Error("janitor should have removed the expired entry")
	}
	if !longKept {
		t.Error("janitor must keep live entries")
	}
}

func TestKeyBuilders(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{LatestKey("eur"), "latest:EUR"},
		{HistoricalKey("eur", "2020-01-01", "2020-01-31"), "historical:EUR:2020-01-01:2020-01-31"},
		{ConversionKey("eur", "usd", "2025-08-29"), "convert:EUR:USD:2025-08-29"},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("key = %q, want %q", tc.got, tc.want)
		}
	}
}
