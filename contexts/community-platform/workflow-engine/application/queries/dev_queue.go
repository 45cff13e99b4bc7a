package queries

import (
	"context"

	"wikigaia/contexts/community-platform/workflow-engine/ports"
)

type DevQueueListUseCase struct {
	Queue ports.DevelopmentQueueRepository
}

// ListQueue returns queue items ordered by position, for the admin surface.
func (uc DevQueueListUseCase) ListQueue(ctx context.Context) ([]QueueItemView, error) {
	items, err := uc.Queue.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]QueueItemView, 0, len(items))
	for _, item := range items {
		views = append(views, *toQueueItemView(item))
	}
	return views, nil
}
