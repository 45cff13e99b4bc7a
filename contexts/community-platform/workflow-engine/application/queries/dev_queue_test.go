package queries

import (
	"context"
	"testing"

	"wikigaia/contexts/community-platform/workflow-engine/adapters/memory"
	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
)

func TestListQueueOrderedByPosition(t *testing.T) {
	store := memory.NewStore(nil)
	ctx := context.Background()
	for _, problemID := range []string{"problem-a", "problem-b", "problem-c"} {
		if _, err := store.EnqueueItem(ctx, entities.DevelopmentQueueItem{
			ItemID:    "item-" + problemID,
			ProblemID: problemID,
			Priority:  entities.PriorityMedium,
			Status:    entities.QueueStatusQueued,
		}); err != nil {
			t.Fatalf("seed %s: %v", problemID, err)
		}
	}

	uc := DevQueueListUseCase{Queue: store}
	views, err := uc.ListQueue(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected three items, got %d", len(views))
	}
	for i, view := range views {
		if view.QueuePosition != i+1 {
			t.Fatalf("expected position %d at index %d, got %d", i+1, i, view.QueuePosition)
		}
	}
	if views[0].ProblemID != "problem-a" {
		t.Fatalf("expected first admitted problem first, got %s", views[0].ProblemID)
	}
}
