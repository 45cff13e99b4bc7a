package entities

import (
	"strings"
	"time"
)

type Status string

const (
	StatusProposed      Status = "Proposed"
	StatusUnderReview   Status = "Under Review"
	StatusPriorityQueue Status = "Priority Queue"
	StatusInDevelopment Status = "In Development"
	StatusCompleted     Status = "Completed"
	StatusRejected      Status = "Rejected"
)

// ParseStatus resolves a caller-supplied status string against the six
// canonical values, case-insensitively.
func ParseStatus(raw string) (Status, bool) {
	candidate := strings.TrimSpace(raw)
	for _, status := range AllStatuses() {
		if strings.EqualFold(candidate, string(status)) {
			return status, true
		}
	}
	return "", false
}

func AllStatuses() []Status {
	return []Status{
		StatusProposed,
		StatusUnderReview,
		StatusPriorityQueue,
		StatusInDevelopment,
		StatusCompleted,
		StatusRejected,
	}
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

type Problem struct {
	ProblemID   string
	Title       string
	Description string
	Status      Status
	VoteCount   int
	CategoryID  string
	ProposerID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TriggerType string

const (
	TriggerMilestone     TriggerType = "milestone_triggered"
	TriggerAdminOverride TriggerType = "admin_override"
)

// WorkflowLogEntry is one immutable audit record of a status transition.
// Entries are append-only; ordering by CreatedAt defines the problem's
// workflow history.
type WorkflowLogEntry struct {
	EntryID           string
	ProblemID         string
	PreviousStatus    Status
	NewStatus         Status
	TriggerType       TriggerType
	TriggeredBy       string
	VoteCountAtChange int
	Reason            string
	CreatedAt         time.Time
}

type QueuePriority string

const (
	PriorityUrgent QueuePriority = "urgent"
	PriorityHigh   QueuePriority = "high"
	PriorityMedium QueuePriority = "medium"
	PriorityLow    QueuePriority = "low"
)

func ParseQueuePriority(raw string) (QueuePriority, bool) {
	switch QueuePriority(strings.ToLower(strings.TrimSpace(raw))) {
	case PriorityUrgent:
		return PriorityUrgent, true
	case PriorityHigh:
		return PriorityHigh, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityLow:
		return PriorityLow, true
	default:
		return "", false
	}
}

type QueueStatus string

const (
	QueueStatusQueued     QueueStatus = "queued"
	QueueStatusInProgress QueueStatus = "in_progress"
	QueueStatusCompleted  QueueStatus = "completed"
	QueueStatusBlocked    QueueStatus = "blocked"
)

func ParseQueueStatus(raw string) (QueueStatus, bool) {
	switch QueueStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case QueueStatusQueued:
		return QueueStatusQueued, true
	case QueueStatusInProgress:
		return QueueStatusInProgress, true
	case QueueStatusCompleted:
		return QueueStatusCompleted, true
	case QueueStatusBlocked:
		return QueueStatusBlocked, true
	default:
		return "", false
	}
}

// DevelopmentQueueItem is a problem admitted into the build pipeline.
// Created by the workflow engine on entry to In Development, mutated by
// admins afterwards.
type DevelopmentQueueItem struct {
	ItemID         string
	ProblemID      string
	Priority       QueuePriority
	QueuePosition  int
	Status         QueueStatus
	EstimatedHours int
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
