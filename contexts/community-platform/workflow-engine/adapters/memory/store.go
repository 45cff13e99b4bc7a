package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
	domainerrors "wikigaia/contexts/community-platform/workflow-engine/domain/errors"
	"wikigaia/contexts/community-platform/workflow-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory adapter used for tests and local wiring. One
// mutex covers every table so CommitTransition stays atomic the same way
// the postgres transaction does.
type Store struct {
	mu sync.RWMutex

	problems map[string]entities.Problem
	log      []entities.WorkflowLogEntry
	queue    map[string]entities.DevelopmentQueueItem
	outbox   map[string]outboxRecord
}

func NewStore(seed []entities.Problem) *Store {
	problems := make(map[string]entities.Problem, len(seed))
	for _, problem := range seed {
		problems[problem.ProblemID] = problem
	}
	return &Store{
		problems: problems,
		queue:    make(map[string]entities.DevelopmentQueueItem),
		outbox:   make(map[string]outboxRecord),
	}
}

func (s *Store) SetProblem(problem entities.Problem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.problems[strings.TrimSpace(problem.ProblemID)] = problem
}

func (s *Store) GetProblem(ctx context.Context, problemID string) (entities.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	problem, ok := s.problems[strings.TrimSpace(problemID)]
	if !ok {
		return entities.Problem{}, domainerrors.ErrProblemNotFound
	}
	return problem, nil
}

func (s *Store) CommitTransition(ctx context.Context, transition ports.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	problem, ok := s.problems[strings.TrimSpace(transition.ProblemID)]
	if !ok {
		return domainerrors.ErrProblemNotFound
	}
	if problem.Status != transition.ExpectedStatus {
		return domainerrors.ErrConflict
	}

	problem.Status = transition.NewStatus
	problem.UpdatedAt = transition.OccurredAt.UTC()
	s.problems[problem.ProblemID] = problem
	s.log = append(s.log, transition.LogEntry)

	if transition.Event != nil {
		s.outbox[transition.Event.EventID] = outboxRecord{
			message: ports.OutboxMessage{
				OutboxID:     transition.Event.EventID,
				EventType:    transition.Event.EventType,
				PartitionKey: transition.Event.PartitionKey,
				Payload:      marshalEnvelope(*transition.Event),
				CreatedAt:    transition.OccurredAt.UTC(),
			},
		}
	}
	return nil
}

func (s *Store) AppendLogEntry(ctx context.Context, entry entities.WorkflowLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, entry)
	return nil
}

func (s *Store) ListLogEntries(ctx context.Context, problemID string) ([]entities.WorkflowLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	problemID = strings.TrimSpace(problemID)
	entries := make([]entities.WorkflowLogEntry, 0)
	for _, entry := range s.log {
		if entry.ProblemID == problemID {
			entries = append(entries, entry)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *Store) EnqueueItem(ctx context.Context, item entities.DevelopmentQueueItem) (entities.DevelopmentQueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	problemID := strings.TrimSpace(item.ProblemID)
	if existing, ok := s.queue[problemID]; ok {
		return existing, nil
	}

	position := 0
	for _, queued := range s.queue {
		if queued.QueuePosition > position {
			position = queued.QueuePosition
		}
	}
	item.ProblemID = problemID
	item.QueuePosition = position + 1
	s.queue[problemID] = item
	return item, nil
}

func (s *Store) GetItemByProblem(ctx context.Context, problemID string) (entities.DevelopmentQueueItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.queue[strings.TrimSpace(problemID)]
	return item, ok, nil
}

func (s *Store) ListItems(ctx context.Context) ([]entities.DevelopmentQueueItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.DevelopmentQueueItem, 0, len(s.queue))
	for _, item := range s.queue {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].QueuePosition < items[j].QueuePosition
	})
	return items, nil
}

func (s *Store) UpdateItem(ctx context.Context, item entities.DevelopmentQueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	problemID := strings.TrimSpace(item.ProblemID)
	if _, ok := s.queue[problemID]; !ok {
		return domainerrors.ErrQueueItemNotFound
	}
	s.queue[problemID] = item
	return nil
}

func (s *Store) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	messages := make([]ports.OutboxMessage, 0)
	for _, record := range s.outbox {
		if !record.published {
			messages = append(messages, record.message)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	if len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

func (s *Store) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok || record.published {
		return domainerrors.ErrConflict
	}
	record.published = true
	s.outbox[strings.TrimSpace(outboxID)] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(ctx context.Context) (string, error) {
	return uuid.NewString(), nil
}

func marshalEnvelope(envelope ports.EventEnvelope) []byte {
	payload, _ := json.Marshal(envelope)
	return payload
}

var _ ports.ProblemRepository = (*Store)(nil)
var _ ports.WorkflowLogRepository = (*Store)(nil)
var _ ports.DevelopmentQueueRepository = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
