package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "wikigaia/contexts/community-platform/workflow-engine/application"
	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
	domainerrors "wikigaia/contexts/community-platform/workflow-engine/domain/errors"
	"wikigaia/contexts/community-platform/workflow-engine/ports"
)

// UpdateQueueItemCommand carries an admin edit of one development-queue
// record. Nil fields are left untouched; insertion stays engine-owned.
type UpdateQueueItemCommand struct {
	ProblemID      string
	ActorID        string
	Priority       *string
	Status         *string
	EstimatedHours *int
	Notes          *string
}

type DevQueueUseCase struct {
	Queue  ports.DevelopmentQueueRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (uc DevQueueUseCase) UpdateQueueItem(ctx context.Context, cmd UpdateQueueItemCommand) (entities.DevelopmentQueueItem, error) {
	logger := application.ResolveLogger(uc.Logger)
	problemID := strings.TrimSpace(cmd.ProblemID)
	if problemID == "" {
		return entities.DevelopmentQueueItem{}, domainerrors.ErrInvalidQueueUpdate
	}
	if strings.TrimSpace(cmd.ActorID) == "" {
		return entities.DevelopmentQueueItem{}, domainerrors.ErrActorRequired
	}
	if cmd.Priority == nil && cmd.Status == nil && cmd.EstimatedHours == nil && cmd.Notes == nil {
		return entities.DevelopmentQueueItem{}, domainerrors.ErrInvalidQueueUpdate
	}

	item, found, err := uc.Queue.GetItemByProblem(ctx, problemID)
	if err != nil {
		return entities.DevelopmentQueueItem{}, err
	}
	if !found {
		return entities.DevelopmentQueueItem{}, domainerrors.ErrQueueItemNotFound
	}

	if cmd.Priority != nil {
		priority, ok := entities.ParseQueuePriority(*cmd.Priority)
		if !ok {
			return entities.DevelopmentQueueItem{}, domainerrors.ErrInvalidQueueUpdate
		}
		item.Priority = priority
	}
	if cmd.Status != nil {
		status, ok := entities.ParseQueueStatus(*cmd.Status)
		if !ok {
			return entities.DevelopmentQueueItem{}, domainerrors.ErrInvalidQueueUpdate
		}
		item.Status = status
	}
	if cmd.EstimatedHours != nil {
		if *cmd.EstimatedHours < 0 {
			return entities.DevelopmentQueueItem{}, domainerrors.ErrInvalidQueueUpdate
		}
		item.EstimatedHours = *cmd.EstimatedHours
	}
	if cmd.Notes != nil {
		item.Notes = strings.TrimSpace(*cmd.Notes)
	}
	item.UpdatedAt = uc.now()

	if err := uc.Queue.UpdateItem(ctx, item); err != nil {
		return entities.DevelopmentQueueItem{}, err
	}
	logger.Info("development queue item updated",
		"event", "workflow_dev_queue_item_updated",
		"module", "community-platform/workflow-engine",
		"layer", "application",
		"problem_id", problemID,
		"actor_id", strings.TrimSpace(cmd.ActorID),
		"priority", string(item.Priority),
		"queue_status", string(item.Status),
	)
	return item, nil
}

func (uc DevQueueUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
