package httpadapter

import (
	"context"
	"log/slog"

	"wikigaia/contexts/community-platform/workflow-engine/application/commands"
	"wikigaia/contexts/community-platform/workflow-engine/application/queries"
	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
	httptransport "wikigaia/contexts/community-platform/workflow-engine/transport/http"
)

// Handler translates transport DTOs into commands/queries and back. All
// request validation beyond JSON shape happens in the use cases.
type Handler struct {
	Workflow commands.UpdateStatusUseCase
	DevQueue commands.DevQueueUseCase
	Views    queries.WorkflowViewUseCase
	Queue    queries.DevQueueListUseCase
	Logger   *slog.Logger
}

func (h Handler) UpdateStatusHandler(
	ctx context.Context,
	problemID string,
	actorID string,
	req httptransport.UpdateStatusRequest,
) (httptransport.TransitionResponse, error) {
	result, err := h.Workflow.UpdateStatus(ctx, commands.UpdateStatusCommand{
		ProblemID:     problemID,
		NewVoteCount:  req.NewVoteCount,
		AdminOverride: req.AdminOverride,
		TargetStatus:  req.TargetStatus,
		Reason:        req.Reason,
		ActorID:       actorID,
	})
	if err != nil {
		return httptransport.TransitionResponse{}, err
	}

	resp := httptransport.TransitionResponse{
		ProblemID:      result.ProblemID,
		PreviousStatus: string(result.PreviousStatus),
		NewStatus:      string(result.NewStatus),
		StatusChanged:  result.StatusChanged,
		WorkflowAction: result.WorkflowAction,
		VoteCount:      result.VoteCount,
	}
	if result.StatusChanged {
		notificationSent := result.NotificationSent
		resp.NotificationSent = &notificationSent
		if result.NewStatus == entities.StatusInDevelopment {
			addedToDevQueue := result.AddedToDevQueue
			resp.AddedToDevQueue = &addedToDevQueue
		}
		if result.QueueItem != nil {
			resp.QueueItem = &httptransport.QueueItemResponse{
				ProblemID:      result.QueueItem.ProblemID,
				Priority:       string(result.QueueItem.Priority),
				QueuePosition:  result.QueueItem.QueuePosition,
				Status:         string(result.QueueItem.Status),
				EstimatedHours: result.QueueItem.EstimatedHours,
				Notes:          result.QueueItem.Notes,
			}
		}
	}
	return resp, nil
}

func (h Handler) WorkflowViewHandler(ctx context.Context, problemID string) (httptransport.WorkflowViewResponse, error) {
	view, err := h.Views.ProblemWorkflowView(ctx, problemID)
	if err != nil {
		return httptransport.WorkflowViewResponse{}, err
	}

	resp := httptransport.WorkflowViewResponse{
		ProblemID: view.ProblemID,
		Status:    string(view.Status),
		VoteCount: view.VoteCount,
		Terminal:  view.Terminal,
		History:   mapHistory(view.History),
	}
	if view.NextMilestone != nil {
		resp.NextMilestone = &httptransport.NextMilestoneResponse{
			Threshold:    view.NextMilestone.Threshold,
			TargetStatus: string(view.NextMilestone.TargetStatus),
			VotesNeeded:  view.NextMilestone.VotesNeeded,
		}
	}
	if view.QueueItem != nil {
		resp.QueueItem = mapQueueItem(*view.QueueItem)
	}
	return resp, nil
}

func (h Handler) WorkflowHistoryHandler(ctx context.Context, problemID string) (httptransport.HistoryResponse, error) {
	entries, err := h.Views.ProblemHistory(ctx, problemID)
	if err != nil {
		return httptransport.HistoryResponse{}, err
	}
	return httptransport.HistoryResponse{
		ProblemID: problemID,
		Entries:   mapHistory(entries),
	}, nil
}

func (h Handler) ListDevQueueHandler(ctx context.Context) (httptransport.DevQueueListResponse, error) {
	items, err := h.Queue.ListQueue(ctx)
	if err != nil {
		return httptransport.DevQueueListResponse{}, err
	}
	resp := httptransport.DevQueueListResponse{
		Items: make([]httptransport.QueueItemResponse, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, *mapQueueItem(item))
	}
	return resp, nil
}

func (h Handler) UpdateQueueItemHandler(
	ctx context.Context,
	problemID string,
	actorID string,
	req httptransport.UpdateQueueItemRequest,
) (httptransport.QueueItemResponse, error) {
	item, err := h.DevQueue.UpdateQueueItem(ctx, commands.UpdateQueueItemCommand{
		ProblemID:      problemID,
		ActorID:        actorID,
		Priority:       req.Priority,
		Status:         req.Status,
		EstimatedHours: req.EstimatedHours,
		Notes:          req.Notes,
	})
	if err != nil {
		return httptransport.QueueItemResponse{}, err
	}
	return httptransport.QueueItemResponse{
		ProblemID:      item.ProblemID,
		Priority:       string(item.Priority),
		QueuePosition:  item.QueuePosition,
		Status:         string(item.Status),
		EstimatedHours: item.EstimatedHours,
		Notes:          item.Notes,
	}, nil
}

func mapHistory(entries []queries.HistoryEntryView) []httptransport.HistoryEntryResponse {
	out := make([]httptransport.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, httptransport.HistoryEntryResponse{
			PreviousStatus:    string(entry.PreviousStatus),
			NewStatus:         string(entry.NewStatus),
			TriggerType:       string(entry.TriggerType),
			TriggeredBy:       entry.TriggeredBy,
			VoteCountAtChange: entry.VoteCountAtChange,
			Reason:            entry.Reason,
			CreatedAt:         entry.CreatedAt,
		})
	}
	return out
}

func mapQueueItem(item queries.QueueItemView) *httptransport.QueueItemResponse {
	return &httptransport.QueueItemResponse{
		ProblemID:      item.ProblemID,
		Priority:       string(item.Priority),
		QueuePosition:  item.QueuePosition,
		Status:         string(item.Status),
		EstimatedHours: item.EstimatedHours,
		Notes:          item.Notes,
	}
}
