package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dovimux/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now()

	for i, source := range []string{"a.mkv", "b.mkv"} {
		err := store.Record(ctx, history.Entry{
			JobID:          "job-" + source,
			Source:         source,
			Output:         source[:1] + ".DV8.mkv",
			MetadataPolicy: "CM v4.0",
			Status:         "succeeded",
			StartedAt:      now.Add(time.Duration(i) * time.Minute),
			FinishedAt:     now.Add(time.Duration(i)*time.Minute + 30*time.Second),
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Source != "b.mkv" {
		t.Fatalf("expected newest first, got %q", entries[0].Source)
	}
	if entries[0].Status != "succeeded" || entries[0].Output != "b.DV8.mkv" {
		t.Fatalf("fields lost: %#v", entries[0])
	}
	if entries[0].FinishedAt.Before(entries[0].StartedAt) {
		t.Fatal("timestamps mangled")
	}
}

func TestRecentLimitDefaults(t *testing.T) {
	store := openStore(t)
	entries, err := store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected empty history, got %v", entries)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := history.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	first.Close()
	second, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	second.Close()
}
