package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
	domainerrors "wikigaia/contexts/community-platform/workflow-engine/domain/errors"
	"wikigaia/contexts/community-platform/workflow-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetProblem(ctx context.Context, problemID string) (entities.Problem, error) {
	var row problemModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(problemID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Problem{}, domainerrors.ErrProblemNotFound
		}
		return entities.Problem{}, r.logError("workflow_repo_get_problem_failed", err,
			"problem_id", strings.TrimSpace(problemID),
		)
	}
	return row.toEntity(), nil
}

// CommitTransition writes the guarded status update, the audit log row,
// and the outbox row in one transaction. The update is conditioned on the
// status the engine read, so a raced caller sees zero affected rows and
// gets the retryable conflict error with nothing written.
func (r *Repository) CommitTransition(ctx context.Context, transition ports.Transition) error {
	problemID := strings.TrimSpace(transition.ProblemID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&problemModel{}).
			Where("id = ?", problemID).
			Where("status = ?", string(transition.ExpectedStatus)).
			Updates(map[string]any{
				"status":     string(transition.NewStatus),
				"updated_at": transition.OccurredAt.UTC(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&problemModel{}).
				Where("id = ?", problemID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domainerrors.ErrProblemNotFound
			}
			return domainerrors.ErrConflict
		}

		logRow := workflowLogModelFromEntity(transition.LogEntry)
		if err := tx.Create(&logRow).Error; err != nil {
			return err
		}

		if transition.Event != nil {
			outboxRow, err := outboxModelFromEnvelope(*transition.Event, transition.OccurredAt)
			if err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "outbox_id"}},
				DoNothing: true,
			}).Create(&outboxRow).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) || errors.Is(err, domainerrors.ErrProblemNotFound) {
			return err
		}
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("workflow_repo_commit_transition_failed", err,
			"problem_id", problemID,
			"from_status", string(transition.ExpectedStatus),
			"to_status", string(transition.NewStatus),
		)
	}
	return nil
}

func (r *Repository) AppendLogEntry(ctx context.Context, entry entities.WorkflowLogEntry) error {
	row := workflowLogModelFromEntity(entry)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("workflow_repo_append_log_failed", err,
			"problem_id", strings.TrimSpace(entry.ProblemID),
		)
	}
	return nil
}

func (r *Repository) ListLogEntries(ctx context.Context, problemID string) ([]entities.WorkflowLogEntry, error) {
	var rows []workflowLogModel
	if err := r.db.WithContext(ctx).
		Where("problem_id = ?", strings.TrimSpace(problemID)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("workflow_repo_list_log_failed", err,
			"problem_id", strings.TrimSpace(problemID),
		)
	}
	entries := make([]entities.WorkflowLogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntity())
	}
	return entries, nil
}

func (r *Repository) EnqueueItem(ctx context.Context, item entities.DevelopmentQueueItem) (entities.DevelopmentQueueItem, error) {
	problemID := strings.TrimSpace(item.ProblemID)
	var out entities.DevelopmentQueueItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var position int
		if err := tx.Model(&devQueueModel{}).
			Select("COALESCE(MAX(queue_position), 0) + 1").
			Scan(&position).Error; err != nil {
			return err
		}

		row := devQueueModelFromEntity(item)
		row.ProblemID = problemID
		row.QueuePosition = position
		create := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "problem_id"}},
			DoNothing: true,
		}).Create(&row)
		if create.Error != nil {
			return create.Error
		}
		if create.RowsAffected > 0 {
			out = row.toEntity()
			return nil
		}

		// Already admitted; admission is idempotent.
		var existing devQueueModel
		if err := tx.Where("problem_id = ?", problemID).First(&existing).Error; err != nil {
			return err
		}
		out = existing.toEntity()
		return nil
	})
	if err != nil {
		return entities.DevelopmentQueueItem{}, r.logError("workflow_repo_enqueue_failed", err,
			"problem_id", problemID,
		)
	}
	return out, nil
}

func (r *Repository) GetItemByProblem(ctx context.Context, problemID string) (entities.DevelopmentQueueItem, bool, error) {
	var row devQueueModel
	err := r.db.WithContext(ctx).
		Where("problem_id = ?", strings.TrimSpace(problemID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.DevelopmentQueueItem{}, false, nil
		}
		return entities.DevelopmentQueueItem{}, false, r.logError("workflow_repo_get_queue_item_failed", err,
			"problem_id", strings.TrimSpace(problemID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListItems(ctx context.Context) ([]entities.DevelopmentQueueItem, error) {
	var rows []devQueueModel
	if err := r.db.WithContext(ctx).
		Order("queue_position ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("workflow_repo_list_queue_failed", err)
	}
	items := make([]entities.DevelopmentQueueItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateItem(ctx context.Context, item entities.DevelopmentQueueItem) error {
	result := r.db.WithContext(ctx).
		Model(&devQueueModel{}).
		Where("problem_id = ?", strings.TrimSpace(item.ProblemID)).
		Updates(map[string]any{
			"priority":        string(item.Priority),
			"status":          string(item.Status),
			"estimated_hours": item.EstimatedHours,
			"notes":           item.Notes,
			"updated_at":      item.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("workflow_repo_update_queue_item_failed", result.Error,
			"problem_id", strings.TrimSpace(item.ProblemID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrQueueItemNotFound
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("workflow_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Where("status = ?", outboxStatusPending).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("workflow_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "community-platform/workflow-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("workflow repository operation failed", fields...)
	return err
}

type problemModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	Status      string    `gorm:"column:status"`
	VoteCount   int       `gorm:"column:vote_count"`
	CategoryID  string    `gorm:"column:category_id"`
	ProposerID  string    `gorm:"column:proposer_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (problemModel) TableName() string {
	return "problems"
}

func (m problemModel) toEntity() entities.Problem {
	return entities.Problem{
		ProblemID:   m.ID,
		Title:       m.Title,
		Description: m.Description,
		Status:      entities.Status(m.Status),
		VoteCount:   m.VoteCount,
		CategoryID:  m.CategoryID,
		ProposerID:  m.ProposerID,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type workflowLogModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	ProblemID         string    `gorm:"column:problem_id"`
	PreviousStatus    string    `gorm:"column:previous_status"`
	NewStatus         string    `gorm:"column:new_status"`
	TriggerType       string    `gorm:"column:trigger_type"`
	TriggeredBy       *string   `gorm:"column:triggered_by"`
	VoteCountAtChange int       `gorm:"column:vote_count_at_change"`
	Reason            *string   `gorm:"column:reason"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (workflowLogModel) TableName() string {
	return "workflow_log"
}

func workflowLogModelFromEntity(entry entities.WorkflowLogEntry) workflowLogModel {
	return workflowLogModel{
		ID:                strings.TrimSpace(entry.EntryID),
		ProblemID:         strings.TrimSpace(entry.ProblemID),
		PreviousStatus:    string(entry.PreviousStatus),
		NewStatus:         string(entry.NewStatus),
		TriggerType:       string(entry.TriggerType),
		TriggeredBy:       optionalString(entry.TriggeredBy),
		VoteCountAtChange: entry.VoteCountAtChange,
		Reason:            optionalString(entry.Reason),
		CreatedAt:         entry.CreatedAt.UTC(),
	}
}

func (m workflowLogModel) toEntity() entities.WorkflowLogEntry {
	return entities.WorkflowLogEntry{
		EntryID:           m.ID,
		ProblemID:         m.ProblemID,
		PreviousStatus:    entities.Status(m.PreviousStatus),
		NewStatus:         entities.Status(m.NewStatus),
		TriggerType:       entities.TriggerType(m.TriggerType),
		TriggeredBy:       derefString(m.TriggeredBy),
		VoteCountAtChange: m.VoteCountAtChange,
		Reason:            derefString(m.Reason),
		CreatedAt:         m.CreatedAt.UTC(),
	}
}

type devQueueModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	ProblemID      string    `gorm:"column:problem_id"`
	Priority       string    `gorm:"column:priority"`
	QueuePosition  int       `gorm:"column:queue_position"`
	Status         string    `gorm:"column:status"`
	EstimatedHours int       `gorm:"column:estimated_hours"`
	Notes          string    `gorm:"column:notes"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (devQueueModel) TableName() string {
	return "development_queue"
}

func devQueueModelFromEntity(item entities.DevelopmentQueueItem) devQueueModel {
	return devQueueModel{
		ID:             strings.TrimSpace(item.ItemID),
		ProblemID:      strings.TrimSpace(item.ProblemID),
		Priority:       string(item.Priority),
		QueuePosition:  item.QueuePosition,
		Status:         string(item.Status),
		EstimatedHours: item.EstimatedHours,
		Notes:          item.Notes,
		CreatedAt:      item.CreatedAt.UTC(),
		UpdatedAt:      item.UpdatedAt.UTC(),
	}
}

func (m devQueueModel) toEntity() entities.DevelopmentQueueItem {
	return entities.DevelopmentQueueItem{
		ItemID:         m.ID,
		ProblemID:      m.ProblemID,
		Priority:       entities.QueuePriority(m.Priority),
		QueuePosition:  m.QueuePosition,
		Status:         entities.QueueStatus(m.Status),
		EstimatedHours: m.EstimatedHours,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "workflow_outbox"
}

func outboxModelFromEnvelope(envelope ports.EventEnvelope, occurredAt time.Time) (outboxModel, error) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return outboxModel{}, err
	}
	return outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    occurredAt.UTC(),
	}, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ProblemRepository = (*Repository)(nil)
var _ ports.WorkflowLogRepository = (*Repository)(nil)
var _ ports.DevelopmentQueueRepository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
