package queries

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "wikigaia/contexts/community-platform/workflow-engine/application"
	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
	domainerrors "wikigaia/contexts/community-platform/workflow-engine/domain/errors"
	"wikigaia/contexts/community-platform/workflow-engine/domain/policy"
	"wikigaia/contexts/community-platform/workflow-engine/ports"
)

// NextMilestoneView is the first unreached threshold still reachable from
// the problem's current status.
type NextMilestoneView struct {
	Threshold    int             `json:"threshold"`
	TargetStatus entities.Status `json:"target_status"`
	VotesNeeded  int             `json:"votes_needed"`
}

type HistoryEntryView struct {
	PreviousStatus    entities.Status      `json:"previous_status"`
	NewStatus         entities.Status      `json:"new_status"`
	TriggerType       entities.TriggerType `json:"trigger_type"`
	TriggeredBy       string               `json:"triggered_by,omitempty"`
	VoteCountAtChange int                  `json:"vote_count_at_change"`
	Reason            string               `json:"reason,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
}

type QueueItemView struct {
	ProblemID      string                 `json:"problem_id"`
	Priority       entities.QueuePriority `json:"priority"`
	QueuePosition  int                    `json:"queue_position"`
	Status         entities.QueueStatus   `json:"status"`
	EstimatedHours int                    `json:"estimated_hours,omitempty"`
	Notes          string                 `json:"notes,omitempty"`
}

// ProblemWorkflowView is the composed read model over the problem, the
// status policy, the audit log, and (when relevant) the development
// queue. Building it has no side effects beyond cache population.
type ProblemWorkflowView struct {
	ProblemID     string             `json:"problem_id"`
	Status        entities.Status    `json:"status"`
	VoteCount     int                `json:"vote_count"`
	Terminal      bool               `json:"terminal"`
	NextMilestone *NextMilestoneView `json:"next_milestone,omitempty"`
	History       []HistoryEntryView `json:"history"`
	QueueItem     *QueueItemView     `json:"queue_item,omitempty"`
}

type WorkflowViewUseCase struct {
	Problems ports.ProblemRepository
	Log      ports.WorkflowLogRepository
	Queue    ports.DevelopmentQueueRepository
	Cache    ports.ViewCache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// ProblemWorkflowView serves the composed view, preferring a fresh cache
// entry. Cache misses recompute from the repositories and re-populate
// best effort.
func (uc WorkflowViewUseCase) ProblemWorkflowView(ctx context.Context, problemID string) (ProblemWorkflowView, error) {
	logger := application.ResolveLogger(uc.Logger)
	problemID = strings.TrimSpace(problemID)
	if problemID == "" {
		return ProblemWorkflowView{}, domainerrors.ErrInvalidUpdateInput
	}

	if cached, ok := uc.cachedView(ctx, problemID); ok {
		return cached, nil
	}

	problem, err := uc.Problems.GetProblem(ctx, problemID)
	if err != nil {
		return ProblemWorkflowView{}, err
	}

	view := ProblemWorkflowView{
		ProblemID: problem.ProblemID,
		Status:    problem.Status,
		VoteCount: problem.VoteCount,
		Terminal:  problem.Status.IsTerminal(),
	}
	if milestone, ok := policy.NextMilestone(problem.Status, problem.VoteCount); ok {
		view.NextMilestone = &NextMilestoneView{
			Threshold:    milestone.Threshold,
			TargetStatus: milestone.Target,
			VotesNeeded:  milestone.Threshold - problem.VoteCount,
		}
	}

	entries, err := uc.Log.ListLogEntries(ctx, problem.ProblemID)
	if err != nil {
		return ProblemWorkflowView{}, err
	}
	view.History = toHistoryViews(entries)

	if problem.Status == entities.StatusInDevelopment {
		item, found, err := uc.Queue.GetItemByProblem(ctx, problem.ProblemID)
		if err != nil {
			return ProblemWorkflowView{}, err
		}
		if found {
			view.QueueItem = toQueueItemView(item)
		}
	}

	uc.storeView(ctx, problemID, view)
	logger.Debug("workflow view composed",
		"event", "workflow_view_composed",
		"module", "community-platform/workflow-engine",
		"layer", "application",
		"problem_id", problemID,
		"history_entries", len(view.History),
	)
	return view, nil
}

// ProblemHistory returns the audit trail alone, newest first.
func (uc WorkflowViewUseCase) ProblemHistory(ctx context.Context, problemID string) ([]HistoryEntryView, error) {
	problemID = strings.TrimSpace(problemID)
	if problemID == "" {
		return nil, domainerrors.ErrInvalidUpdateInput
	}
	if _, err := uc.Problems.GetProblem(ctx, problemID); err != nil {
		return nil, err
	}
	entries, err := uc.Log.ListLogEntries(ctx, problemID)
	if err != nil {
		return nil, err
	}
	return toHistoryViews(entries), nil
}

func (uc WorkflowViewUseCase) cachedView(ctx context.Context, problemID string) (ProblemWorkflowView, bool) {
	if uc.Cache == nil {
		return ProblemWorkflowView{}, false
	}
	logger := application.ResolveLogger(uc.Logger)
	payload, found, err := uc.Cache.Get(ctx, problemID)
	if err != nil {
		logger.Warn("workflow view cache read failed",
			"event", "workflow_view_cache_get_failed",
			"module", "community-platform/workflow-engine",
			"layer", "application",
			"problem_id", problemID,
			"error", err.Error(),
		)
		return ProblemWorkflowView{}, false
	}
	if !found {
		return ProblemWorkflowView{}, false
	}
	var view ProblemWorkflowView
	if err := json.Unmarshal(payload, &view); err != nil {
		logger.Warn("workflow view cache decode failed",
			"event", "workflow_view_cache_decode_failed",
			"module", "community-platform/workflow-engine",
			"layer", "application",
			"problem_id", problemID,
			"error", err.Error(),
		)
		return ProblemWorkflowView{}, false
	}
	return view, true
}

func (uc WorkflowViewUseCase) storeView(ctx context.Context, problemID string, view ProblemWorkflowView) {
	if uc.Cache == nil {
		return
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return
	}
	ttl := uc.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if err := uc.Cache.Set(ctx, problemID, payload, ttl); err != nil {
		application.ResolveLogger(uc.Logger).Warn("workflow view cache write failed",
			"event", "workflow_view_cache_set_failed",
			"module", "community-platform/workflow-engine",
			"layer", "application",
			"problem_id", problemID,
			"error", err.Error(),
		)
	}
}

func toHistoryViews(entries []entities.WorkflowLogEntry) []HistoryEntryView {
	views := make([]HistoryEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, HistoryEntryView{
			PreviousStatus:    entry.PreviousStatus,
			NewStatus:         entry.NewStatus,
			TriggerType:       entry.TriggerType,
			TriggeredBy:       entry.TriggeredBy,
			VoteCountAtChange: entry.VoteCountAtChange,
			Reason:            entry.Reason,
			CreatedAt:         entry.CreatedAt,
		})
	}
	return views
}

func toQueueItemView(item entities.DevelopmentQueueItem) *QueueItemView {
	return &QueueItemView{
		ProblemID:      item.ProblemID,
		Priority:       item.Priority,
		QueuePosition:  item.QueuePosition,
		Status:         item.Status,
		EstimatedHours: item.EstimatedHours,
		Notes:          item.Notes,
	}
}
