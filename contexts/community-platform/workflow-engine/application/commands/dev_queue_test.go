package commands

import (
	"context"
	"errors"
	"testing"

	"wikigaia/contexts/community-platform/workflow-engine/adapters/memory"
	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
	domainerrors "wikigaia/contexts/community-platform/workflow-engine/domain/errors"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func seedQueueItem(t *testing.T, store *memory.Store) entities.DevelopmentQueueItem {
	t.Helper()
	item, err := store.EnqueueItem(context.Background(), entities.DevelopmentQueueItem{
		ItemID:    "item-1",
		ProblemID: "problem-1",
		Priority:  entities.PriorityMedium,
		Status:    entities.QueueStatusQueued,
	})
	if err != nil {
		t.Fatalf("seed queue item: %v", err)
	}
	return item
}

func TestUpdateQueueItemPartialEdit(t *testing.T) {
	store := memory.NewStore(nil)
	seedQueueItem(t, store)
	uc := DevQueueUseCase{Queue: store, Clock: store}

	item, err := uc.UpdateQueueItem(context.Background(), UpdateQueueItemCommand{
		ProblemID:      "problem-1",
		ActorID:        "admin-1",
		Priority:       strPtr("urgent"),
		EstimatedHours: intPtr(16),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Priority != entities.PriorityUrgent {
		t.Fatalf("expected urgent, got %s", item.Priority)
	}
	if item.EstimatedHours != 16 {
		t.Fatalf("expected 16 hours, got %d", item.EstimatedHours)
	}
	// Untouched fields survive the edit.
	if item.Status != entities.QueueStatusQueued || item.QueuePosition != 1 {
		t.Fatalf("unrelated fields mutated: %+v", item)
	}
}

func TestUpdateQueueItemStatusAndNotes(t *testing.T) {
	store := memory.NewStore(nil)
	seedQueueItem(t, store)
	uc := DevQueueUseCase{Queue: store, Clock: store}

	item, err := uc.UpdateQueueItem(context.Background(), UpdateQueueItemCommand{
		ProblemID: "problem-1",
		ActorID:   "admin-1",
		Status:    strPtr("in_progress"),
		Notes:     strPtr("  picked up by volunteer team  "),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Status != entities.QueueStatusInProgress {
		t.Fatalf("expected in_progress, got %s", item.Status)
	}
	if item.Notes != "picked up by volunteer team" {
		t.Fatalf("notes not trimmed: %q", item.Notes)
	}

	stored, found, err := store.GetItemByProblem(context.Background(), "problem-1")
	if err != nil || !found {
		t.Fatalf("reload queue item: found=%v err=%v", found, err)
	}
	if stored.Status != entities.QueueStatusInProgress {
		t.Fatalf("edit not persisted: %+v", stored)
	}
}

func TestUpdateQueueItemValidation(t *testing.T) {
	cases := []struct {
		name string
		cmd  UpdateQueueItemCommand
		want error
	}{
		{
			name: "missing problem id",
			cmd:  UpdateQueueItemCommand{ActorID: "admin-1", Notes: strPtr("x")},
			want: domainerrors.ErrInvalidQueueUpdate,
		},
		{
			name: "missing actor",
			cmd:  UpdateQueueItemCommand{ProblemID: "problem-1", Notes: strPtr("x")},
			want: domainerrors.ErrActorRequired,
		},
		{
			name: "no fields to edit",
			cmd:  UpdateQueueItemCommand{ProblemID: "problem-1", ActorID: "admin-1"},
			want: domainerrors.ErrInvalidQueueUpdate,
		},
		{
			name: "unknown priority",
			cmd:  UpdateQueueItemCommand{ProblemID: "problem-1", ActorID: "admin-1", Priority: strPtr("critical")},
			want: domainerrors.ErrInvalidQueueUpdate,
		},
		{
			name: "unknown queue status",
			cmd:  UpdateQueueItemCommand{ProblemID: "problem-1", ActorID: "admin-1", Status: strPtr("paused")},
			want: domainerrors.ErrInvalidQueueUpdate,
		},
		{
			name: "negative estimate",
			cmd:  UpdateQueueItemCommand{ProblemID: "problem-1", ActorID: "admin-1", EstimatedHours: intPtr(-4)},
			want: domainerrors.ErrInvalidQueueUpdate,
		},
	}

	for _, tc := range cases {
		store := memory.NewStore(nil)
		seedQueueItem(t, store)
		uc := DevQueueUseCase{Queue: store, Clock: store}
		_, err := uc.UpdateQueueItem(context.Background(), tc.cmd)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestUpdateQueueItemNotFound(t *testing.T) {
	store := memory.NewStore(nil)
	uc := DevQueueUseCase{Queue: store, Clock: store}

	_, err := uc.UpdateQueueItem(context.Background(), UpdateQueueItemCommand{
		ProblemID: "never-queued",
		ActorID:   "admin-1",
		Notes:     strPtr("x"),
	})
	if !errors.Is(err, domainerrors.ErrQueueItemNotFound) {
		t.Fatalf("expected ErrQueueItemNotFound, got %v", err)
	}
}
