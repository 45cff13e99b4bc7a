package policy

import (
	"testing"

	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
)

func TestTransitionTable(t *testing.T) {
	legal := []struct {
		from entities.Status
		to   entities.Status
	}{
		{entities.StatusProposed, entities.StatusUnderReview},
		{entities.StatusProposed, entities.StatusRejected},
		{entities.StatusUnderReview, entities.StatusPriorityQueue},
		{entities.StatusUnderReview, entities.StatusRejected},
		{entities.StatusPriorityQueue, entities.StatusInDevelopment},
		{entities.StatusPriorityQueue, entities.StatusRejected},
		{entities.StatusInDevelopment, entities.StatusCompleted},
		{entities.StatusInDevelopment, entities.StatusRejected},
	}
	for _, pair := range legal {
		if !IsLegalTransition(pair.from, pair.to) {
			t.Errorf("expected %s -> %s to be legal", pair.from, pair.to)
		}
	}

	illegal := []struct {
		from entities.Status
		to   entities.Status
	}{
		{entities.StatusProposed, entities.StatusPriorityQueue},
		{entities.StatusProposed, entities.StatusInDevelopment},
		{entities.StatusUnderReview, entities.StatusInDevelopment},
		{entities.StatusUnderReview, entities.StatusProposed},
		{entities.StatusPriorityQueue, entities.StatusUnderReview},
		{entities.StatusInDevelopment, entities.StatusPriorityQueue},
		{entities.StatusCompleted, entities.StatusRejected},
		{entities.StatusRejected, entities.StatusProposed},
	}
	for _, pair := range illegal {
		if IsLegalTransition(pair.from, pair.to) {
			t.Errorf("expected %s -> %s to be illegal", pair.from, pair.to)
		}
	}
}

func TestTerminalStatusesHaveNoOutgoingTransitions(t *testing.T) {
	for _, from := range []entities.Status{entities.StatusCompleted, entities.StatusRejected} {
		for _, to := range entities.AllStatuses() {
			if IsLegalTransition(from, to) {
				t.Errorf("terminal status %s must not transition to %s", from, to)
			}
		}
	}
}

func TestCrossedMilestoneAppliesFirstCrossedThresholdOnly(t *testing.T) {
	// A jump from 40 to 120 crosses every threshold but advances one step.
	milestone, crossed := CrossedMilestone(entities.StatusProposed, 40, 120)
	if !crossed {
		t.Fatal("expected a milestone to fire")
	}
	if milestone.Threshold != 50 || milestone.Target != entities.StatusUnderReview {
		t.Fatalf("expected first threshold 50 -> Under Review, got %d -> %s", milestone.Threshold, milestone.Target)
	}
}

func TestCrossedMilestoneRequiresCrossing(t *testing.T) {
	if _, crossed := CrossedMilestone(entities.StatusProposed, 55, 60); crossed {
		t.Fatal("no threshold is crossed between 55 and 60")
	}
	if _, crossed := CrossedMilestone(entities.StatusProposed, 50, 55); crossed {
		t.Fatal("threshold 50 was already reached before the update")
	}
	// Exactly reaching the threshold counts as crossing.
	milestone, crossed := CrossedMilestone(entities.StatusProposed, 49, 50)
	if !crossed || milestone.Threshold != 50 {
		t.Fatalf("expected threshold 50 to fire at exactly 50 votes, got crossed=%v", crossed)
	}
}

func TestCrossedMilestoneSkipsIllegalTargets(t *testing.T) {
	// Under Review at 60 votes crossing 100 must not jump to In
	// Development; the only crossed-and-legal target is Priority Queue.
	milestone, crossed := CrossedMilestone(entities.StatusUnderReview, 60, 110)
	if !crossed {
		t.Fatal("expected the 75 milestone to fire")
	}
	if milestone.Target != entities.StatusPriorityQueue {
		t.Fatalf("expected Priority Queue, got %s", milestone.Target)
	}

	// Proposed at 60 votes crossing 75: Under Review was already passed,
	// and Priority Queue is not legal from Proposed.
	if _, crossed := CrossedMilestone(entities.StatusProposed, 60, 80); crossed {
		t.Fatal("no legal milestone should fire for Proposed crossing 75")
	}
}

func TestCrossedMilestoneTerminal(t *testing.T) {
	if _, crossed := CrossedMilestone(entities.StatusCompleted, 0, 1000); crossed {
		t.Fatal("terminal status must never fire a milestone")
	}
}

func TestNextMilestone(t *testing.T) {
	milestone, ok := NextMilestone(entities.StatusProposed, 40)
	if !ok || milestone.Threshold != 50 || milestone.Target != entities.StatusUnderReview {
		t.Fatalf("expected next milestone 50 -> Under Review, got ok=%v %+v", ok, milestone)
	}

	milestone, ok = NextMilestone(entities.StatusUnderReview, 60)
	if !ok || milestone.Threshold != 75 || milestone.Target != entities.StatusPriorityQueue {
		t.Fatalf("expected next milestone 75 -> Priority Queue, got ok=%v %+v", ok, milestone)
	}

	if _, ok := NextMilestone(entities.StatusInDevelopment, 150); ok {
		t.Fatal("In Development past every threshold has no next milestone")
	}
	if _, ok := NextMilestone(entities.StatusCompleted, 0); ok {
		t.Fatal("terminal statuses have no next milestone")
	}
}

func TestQueuePriorityForVotes(t *testing.T) {
	if got := QueuePriorityForVotes(90); got != entities.PriorityMedium {
		t.Fatalf("expected medium below 100 votes, got %s", got)
	}
	if got := QueuePriorityForVotes(100); got != entities.PriorityHigh {
		t.Fatalf("expected high at 100 votes, got %s", got)
	}
}
