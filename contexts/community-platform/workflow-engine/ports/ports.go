package ports

import (
	"context"
	"time"

	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
	"wikigaia/internal/shared/events"
	"wikigaia/internal/shared/outbox"
)

// Transition is the unit of work committed atomically by a
// ProblemRepository: the status-guarded problem update, the audit log
// append, and the outbox append must land together or not at all.
type Transition struct {
	ProblemID      string
	ExpectedStatus entities.Status
	NewStatus      entities.Status
	LogEntry       entities.WorkflowLogEntry
	Event          *EventEnvelope
	OccurredAt     time.Time
}

type ProblemRepository interface {
	GetProblem(ctx context.Context, problemID string) (entities.Problem, error)
	// CommitTransition performs the guarded status write. When the stored
	// status no longer matches ExpectedStatus the commit fails with the
	// domain conflict error and writes nothing.
	CommitTransition(ctx context.Context, transition Transition) error
}

type WorkflowLogRepository interface {
	AppendLogEntry(ctx context.Context, entry entities.WorkflowLogEntry) error
	ListLogEntries(ctx context.Context, problemID string) ([]entities.WorkflowLogEntry, error)
}

type DevelopmentQueueRepository interface {
	EnqueueItem(ctx context.Context, item entities.DevelopmentQueueItem) (entities.DevelopmentQueueItem, error)
	GetItemByProblem(ctx context.Context, problemID string) (entities.DevelopmentQueueItem, bool, error)
	ListItems(ctx context.Context) ([]entities.DevelopmentQueueItem, error)
	UpdateItem(ctx context.Context, item entities.DevelopmentQueueItem) error
}

// Notifier is the external notification dispatcher contract. Dispatch
// failures are non-fatal to workflow updates.
type Notifier interface {
	SendStatusChangeNotification(
		ctx context.Context,
		problemID string,
		previousStatus entities.Status,
		newStatus entities.Status,
		metadata map[string]string,
	) error
}

// EventEnvelope reuses the canonical cross-service envelope contract.
type EventEnvelope = events.Envelope

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// OutboxMessage reuses the shared outbox row contract.
type OutboxMessage = outbox.Message

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// ViewCache holds composed workflow views keyed by problem id. A nil
// cache is valid wiring; all cache failures are best effort.
type ViewCache interface {
	Get(ctx context.Context, problemID string) ([]byte, bool, error)
	Set(ctx context.Context, problemID string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, problemID string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
