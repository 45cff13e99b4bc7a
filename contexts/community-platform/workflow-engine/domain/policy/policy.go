// Package policy holds the pure decision rules of the problem workflow:
// the vote-milestone table and the legal transition graph. It performs no
// I/O so both the engine and the read side can share it.
package policy

import "wikigaia/contexts/community-platform/workflow-engine/domain/entities"

// Milestone pairs a vote-count threshold with the status it makes a
// problem eligible for once crossed.
type Milestone struct {
	Threshold int
	Target    entities.Status
}

// milestones is evaluated in ascending threshold order everywhere.
var milestones = []Milestone{
	{Threshold: 50, Target: entities.StatusUnderReview},
	{Threshold: 75, Target: entities.StatusPriorityQueue},
	{Threshold: 100, Target: entities.StatusInDevelopment},
}

var transitions = map[entities.Status][]entities.Status{
	entities.StatusProposed:      {entities.StatusUnderReview, entities.StatusRejected},
	entities.StatusUnderReview:   {entities.StatusPriorityQueue, entities.StatusRejected},
	entities.StatusPriorityQueue: {entities.StatusInDevelopment, entities.StatusRejected},
	entities.StatusInDevelopment: {entities.StatusCompleted, entities.StatusRejected},
	entities.StatusCompleted:     {},
	entities.StatusRejected:      {},
}

// Milestones returns the threshold table in ascending order.
func Milestones() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones)
	return out
}

func IsLegalTransition(from entities.Status, to entities.Status) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// CrossedMilestone finds the automatic transition for a vote-count move
// from oldCount to newCount while in the given status. Thresholds are
// walked ascending and the first crossed threshold whose target is a
// legal transition wins; a problem never advances more than one status
// per update even when the count jumps past several thresholds.
func CrossedMilestone(status entities.Status, oldCount int, newCount int) (Milestone, bool) {
	if status.IsTerminal() {
		return Milestone{}, false
	}
	for _, milestone := range milestones {
		if oldCount < milestone.Threshold && milestone.Threshold <= newCount &&
			IsLegalTransition(status, milestone.Target) {
			return milestone, true
		}
	}
	return Milestone{}, false
}

// NextMilestone reports the first unreached threshold whose target is
// still reachable from the current status. Terminal statuses have none.
func NextMilestone(status entities.Status, voteCount int) (Milestone, bool) {
	if status.IsTerminal() {
		return Milestone{}, false
	}
	for _, milestone := range milestones {
		if voteCount < milestone.Threshold && IsLegalTransition(status, milestone.Target) {
			return milestone, true
		}
	}
	return Milestone{}, false
}

// QueuePriorityForVotes derives the development-queue priority from the
// vote count that triggered admission.
func QueuePriorityForVotes(voteCount int) entities.QueuePriority {
	if voteCount >= 100 {
		return entities.PriorityHigh
	}
	return entities.PriorityMedium
}
