package memory

import (
	"context"
	"testing"
	"time"

	"quizzy-service/internal/domain"
)

func TestResultStoreAppendAndQuery(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	records := []domain.ResultRecord{
		{OwnerID: "a", Score: 2, Total: 5, CompletedAt: time.Unix(100, 0)},
		{OwnerID: "b", Score: 4, Total: 5, CompletedAt: time.Unix(200, 0)},
		{OwnerID: "a", Score: 5, Total: 5, CompletedAt: time.Unix(300, 0)},
	}
	for _, r := range records {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := store.QueryAll(ctx)
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}

	own, err := store.QueryByOwner(ctx, "a")
	if err != nil {
		t.Fatalf("query by owner: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("expected 2 records for a, got %d", len(own))
	}
	for _, r := range own {
		if r.OwnerID != "a" {
			t.Fatalf("wrong owner in filtered set: %+v", r)
		}
	}
}

func TestResultStoreSnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	_ = store.Append(ctx, domain.ResultRecord{OwnerID: "a", Score: 1, Total: 5})
	snapshot, _ := store.QueryAll(ctx)

	_ = store.Append(ctx, domain.ResultRecord{OwnerID: "b", Score: 2, Total: 5})
	if len(snapshot) != 1 {
		t.Fatalf("snapshot changed after later append: %d records", len(snapshot))
	}
}
