//go:build integration

package integration

import (
	"testing"
	"time"

	"ratesvc/internal/repository"
)

func TestFetchLogInsertAndListRecent(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)

	repo := repository.NewFetchLogRepository(testDB)

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	entries := []repository.FetchLogEntry{
		{Provider: "frankfurter", Operation: "latest", Base: "EUR", DurationMs: 120, Outcome: "success", FetchedAt: base},
		{Provider: "frankfurter", Operation: "historical", Base: "USD", RangeStart: "2024-01-01", RangeEnd: "2024-01-31", DurationMs: 340, Outcome: "success", FetchedAt: base.Add(time.Minute)},
		{Provider: "frankfurter", Operation: "convert", Base: "GBP", DurationMs: 90, Outcome: "failure", Error: "upstream unavailable", FetchedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := repo.Insert(ctx, e); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}

	// Newest first.
	if got[0].Operation != "convert" {
		t.Errorf("expected newest entry first, got operation %q", got[0].Operation)
	}
	if got[0].Outcome != "failure" || got[0].Error != "upstream unavailable" {
		t.Errorf("failure outcome not round-tripped: %+v", got[0])
	}
	if got[1].RangeStart != "2024-01-01" || got[1].RangeEnd != "2024-01-31" {
		t.Errorf("date range not round-tripped: %+v", got[1])
	}
	if got[0].ID == got[1].ID {
		t.Error("expected distinct generated IDs")
	}
}

func TestFetchLogListRecentHonorsLimit(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)

	repo := repository.NewFetchLogRepository(testDB)
	for i := 0; i < 5; i++ {
		entry := repository.FetchLogEntry{
			Provider:   "frankfurter",
			Operation:  "latest",
			Base:       "EUR",
			DurationMs: int64(i),
			Outcome:    "success",
			FetchedAt:  time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if err := repo.Insert(ctx, entry); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
}
