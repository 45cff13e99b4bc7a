package commands

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	application "wikigaia/contexts/community-platform/workflow-engine/application"
	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
	domainerrors "wikigaia/contexts/community-platform/workflow-engine/domain/errors"
	"wikigaia/contexts/community-platform/workflow-engine/domain/policy"
	"wikigaia/contexts/community-platform/workflow-engine/ports"
)

const maxReasonLength = 500

// Workflow actions reported on TransitionResult.
const (
	ActionNone          = "none"
	ActionAdminOverride = "admin_override"
	ActionMilestone     = "milestone_triggered"
)

const statusChangedEventType = "problem.status_changed"

// UpdateStatusCommand is the write-model input for one status-transition
// attempt. TargetStatus/Reason/ActorID only apply when AdminOverride is set.
type UpdateStatusCommand struct {
	ProblemID     string
	NewVoteCount  int
	AdminOverride bool
	TargetStatus  string
	Reason        string
	ActorID       string
}

// TransitionResult reports what the engine decided and which best-effort
// side effects landed. NotificationSent and AddedToDevQueue are only
// meaningful when StatusChanged is true.
type TransitionResult struct {
	ProblemID        string
	PreviousStatus   entities.Status
	NewStatus        entities.Status
	StatusChanged    bool
	WorkflowAction   string
	VoteCount        int
	NotificationSent bool
	AddedToDevQueue  bool
	QueueItem        *entities.DevelopmentQueueItem
}

// UpdateStatusUseCase orchestrates one state-transition attempt for one
// problem. It is the single place where problem status changes: threshold
// evaluation, transition legality, the guarded commit, audit logging,
// outbox emission, and best-effort notification/queue side effects.
type UpdateStatusUseCase struct {
	Problems ports.ProblemRepository
	Queue    ports.DevelopmentQueueRepository
	Notifier ports.Notifier
	Cache    ports.ViewCache
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// UpdateStatus applies the workflow transition rules: terminal statuses
// never move, admin overrides are validated against the transition table,
// and the automatic path applies at most the first crossed milestone.
// Side-effect failures after the commit never roll the transition back.
func (uc UpdateStatusUseCase) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (TransitionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	problemID := strings.TrimSpace(cmd.ProblemID)
	logger.Info("workflow status update started",
		"event", "workflow_update_started",
		"module", "community-platform/workflow-engine",
		"layer", "application",
		"problem_id", problemID,
		"new_vote_count", cmd.NewVoteCount,
		"admin_override", cmd.AdminOverride,
	)

	if problemID == "" {
		logger.Warn("workflow update validation failed",
			"event", "workflow_update_validation_failed",
			"module", "community-platform/workflow-engine",
			"layer", "application",
			"reason", "missing_problem_id",
		)
		return TransitionResult{}, domainerrors.ErrInvalidUpdateInput
	}
	if cmd.NewVoteCount < 0 {
		logger.Warn("workflow update validation failed",
			"event", "workflow_update_validation_failed",
			"module", "community-platform/workflow-engine",
			"layer", "application",
			"problem_id", problemID,
			"reason", "negative_vote_count",
		)
		return TransitionResult{}, domainerrors.ErrInvalidVoteCount
	}

	var targetStatus entities.Status
	if cmd.AdminOverride {
		parsed, ok := entities.ParseStatus(cmd.TargetStatus)
		if !ok {
			return TransitionResult{}, domainerrors.ErrInvalidStatus
		}
		targetStatus = parsed
		if strings.TrimSpace(cmd.Reason) == "" {
			return TransitionResult{}, domainerrors.ErrReasonRequired
		}
		if utf8.RuneCountInString(cmd.Reason) > maxReasonLength {
			return TransitionResult{}, domainerrors.ErrReasonTooLong
		}
		if strings.TrimSpace(cmd.ActorID) == "" {
			// Authorization lives upstream; the engine still refuses to
			// record an override without an asserted actor.
			return TransitionResult{}, domainerrors.ErrActorRequired
		}
	}

	problem, err := uc.Problems.GetProblem(ctx, problemID)
	if err != nil {
		return TransitionResult{}, err
	}

	result := TransitionResult{
		ProblemID:      problem.ProblemID,
		PreviousStatus: problem.Status,
		NewStatus:      problem.Status,
		WorkflowAction: ActionNone,
		VoteCount:      cmd.NewVoteCount,
	}

	// Terminal statuses have no outgoing transitions regardless of inputs,
	// override included.
	if problem.Status.IsTerminal() {
		logger.Info("workflow update ignored for terminal status",
			"event", "workflow_update_terminal_noop",
			"module", "community-platform/workflow-engine",
			"layer", "application",
			"problem_id", problemID,
			"status", string(problem.Status),
		)
		return result, nil
	}

	var (
		newStatus   entities.Status
		triggerType entities.TriggerType
		action      string
	)
	if cmd.AdminOverride {
		if !policy.IsLegalTransition(problem.Status, targetStatus) {
			logger.Warn("workflow override rejected",
				"event", "workflow_override_illegal_transition",
				"module", "community-platform/workflow-engine",
				"layer", "application",
				"problem_id", problemID,
				"from_status", string(problem.Status),
				"target_status", string(targetStatus),
				"actor_id", strings.TrimSpace(cmd.ActorID),
			)
			return TransitionResult{}, domainerrors.ErrInvalidTransition
		}
		newStatus = targetStatus
		triggerType = entities.TriggerAdminOverride
		action = ActionAdminOverride
	} else {
		milestone, crossed := policy.CrossedMilestone(problem.Status, problem.VoteCount, cmd.NewVoteCount)
		if !crossed {
			logger.Info("workflow update fired no milestone",
				"event", "workflow_update_no_milestone",
				"module", "community-platform/workflow-engine",
				"layer", "application",
				"problem_id", problemID,
				"status", string(problem.Status),
				"stored_vote_count", problem.VoteCount,
				"new_vote_count", cmd.NewVoteCount,
			)
			return result, nil
		}
		newStatus = milestone.Target
		triggerType = entities.TriggerMilestone
		action = ActionMilestone
	}

	now := uc.now()
	entryID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return TransitionResult{}, err
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return TransitionResult{}, err
	}

	logEntry := entities.WorkflowLogEntry{
		EntryID:           entryID,
		ProblemID:         problem.ProblemID,
		PreviousStatus:    problem.Status,
		NewStatus:         newStatus,
		TriggerType:       triggerType,
		TriggeredBy:       strings.TrimSpace(cmd.ActorID),
		VoteCountAtChange: cmd.NewVoteCount,
		Reason:            strings.TrimSpace(cmd.Reason),
		CreatedAt:         now,
	}
	envelope, err := newWorkflowEnvelope(eventID, statusChangedEventType, problem.ProblemID, now, map[string]any{
		"problem_id":      problem.ProblemID,
		"previous_status": string(problem.Status),
		"new_status":      string(newStatus),
		"trigger_type":    string(triggerType),
		"vote_count":      cmd.NewVoteCount,
		"triggered_by":    strings.TrimSpace(cmd.ActorID),
		"occurred_at":     now.Format(time.RFC3339),
	})
	if err != nil {
		return TransitionResult{}, err
	}

	// Status write, audit entry, and outbox row commit atomically, guarded
	// on the status read above. A lost race surfaces as a retryable
	// conflict with nothing written.
	if err := uc.Problems.CommitTransition(ctx, ports.Transition{
		ProblemID:      problem.ProblemID,
		ExpectedStatus: problem.Status,
		NewStatus:      newStatus,
		LogEntry:       logEntry,
		Event:          &envelope,
		OccurredAt:     now,
	}); err != nil {
		return TransitionResult{}, err
	}

	result.NewStatus = newStatus
	result.StatusChanged = true
	result.WorkflowAction = action
	logger.Info("workflow status changed",
		"event", "workflow_status_changed",
		"module", "community-platform/workflow-engine",
		"layer", "application",
		"problem_id", problem.ProblemID,
		"previous_status", string(problem.Status),
		"new_status", string(newStatus),
		"trigger_type", string(triggerType),
		"vote_count", cmd.NewVoteCount,
	)

	result.NotificationSent = uc.dispatchNotification(ctx, problem, newStatus, triggerType, cmd)
	if newStatus == entities.StatusInDevelopment {
		result.QueueItem, result.AddedToDevQueue = uc.admitToQueue(ctx, problem.ProblemID, cmd.NewVoteCount, now)
	}
	uc.invalidateView(ctx, problem.ProblemID)

	return result, nil
}

// dispatchNotification is fire-and-report: a dispatcher failure is logged
// and reflected on the result but never fails the committed transition.
func (uc UpdateStatusUseCase) dispatchNotification(
	ctx context.Context,
	problem entities.Problem,
	newStatus entities.Status,
	triggerType entities.TriggerType,
	cmd UpdateStatusCommand,
) bool {
	if uc.Notifier == nil {
		return false
	}
	logger := application.ResolveLogger(uc.Logger)
	metadata := map[string]string{
		"trigger_type": string(triggerType),
		"vote_count":   strconv.Itoa(cmd.NewVoteCount),
	}
	if actor := strings.TrimSpace(cmd.ActorID); actor != "" {
		metadata["actor_id"] = actor
	}
	if err := uc.Notifier.SendStatusChangeNotification(ctx, problem.ProblemID, problem.Status, newStatus, metadata); err != nil {
		logger.Warn("status change notification failed",
			"event", "workflow_notification_failed",
			"module", "community-platform/workflow-engine",
			"layer", "application",
			"problem_id", problem.ProblemID,
			"new_status", string(newStatus),
			"error", err.Error(),
		)
		return false
	}
	return true
}

func (uc UpdateStatusUseCase) admitToQueue(
	ctx context.Context,
	problemID string,
	voteCount int,
	now time.Time,
) (*entities.DevelopmentQueueItem, bool) {
	logger := application.ResolveLogger(uc.Logger)
	if uc.Queue == nil {
		return nil, false
	}
	itemID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		logger.Warn("development queue admission failed",
			"event", "workflow_dev_queue_admission_failed",
			"module", "community-platform/workflow-engine",
			"layer", "application",
			"problem_id", problemID,
			"error", err.Error(),
		)
		return nil, false
	}
	item, err := uc.Queue.EnqueueItem(ctx, entities.DevelopmentQueueItem{
		ItemID:    itemID,
		ProblemID: problemID,
		Priority:  policy.QueuePriorityForVotes(voteCount),
		Status:    entities.QueueStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		logger.Warn("development queue admission failed",
			"event", "workflow_dev_queue_admission_failed",
			"module", "community-platform/workflow-engine",
			"layer", "application",
			"problem_id", problemID,
			"error", err.Error(),
		)
		return nil, false
	}
	logger.Info("problem admitted to development queue",
		"event", "workflow_dev_queue_admitted",
		"module", "community-platform/workflow-engine",
		"layer", "application",
		"problem_id", problemID,
		"priority", string(item.Priority),
		"queue_position", item.QueuePosition,
	)
	return &item, true
}

func (uc UpdateStatusUseCase) invalidateView(ctx context.Context, problemID string) {
	if uc.Cache == nil {
		return
	}
	if err := uc.Cache.Invalidate(ctx, problemID); err != nil {
		application.ResolveLogger(uc.Logger).Warn("workflow view cache invalidation failed",
			"event", "workflow_view_cache_invalidate_failed",
			"module", "community-platform/workflow-engine",
			"layer", "application",
			"problem_id", problemID,
			"error", err.Error(),
		)
	}
}

func (uc UpdateStatusUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
