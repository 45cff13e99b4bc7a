package messagingadapter

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
	"wikigaia/contexts/community-platform/workflow-engine/ports"
)

const (
	defaultNotificationTopic = "workflow.notifications"
	notificationEventType    = "problem.status_change_notification"
)

// BusNotifier dispatches status-change notifications by publishing onto
// the platform event bus. Downstream notification channels (mail, in-app)
// consume the topic independently.
type BusNotifier struct {
	Publisher ports.EventPublisher
	IDGen     ports.IDGenerator
	Clock     ports.Clock
	Topic     string
}

func (n BusNotifier) SendStatusChangeNotification(
	ctx context.Context,
	problemID string,
	previousStatus entities.Status,
	newStatus entities.Status,
	metadata map[string]string,
) error {
	eventID, err := n.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if n.Clock != nil {
		now = n.Clock.Now().UTC()
	}

	data, err := json.Marshal(map[string]any{
		"problem_id":      problemID,
		"previous_status": string(previousStatus),
		"new_status":      string(newStatus),
		"metadata":        metadata,
	})
	if err != nil {
		return err
	}

	topic := strings.TrimSpace(n.Topic)
	if topic == "" {
		topic = defaultNotificationTopic
	}
	return n.Publisher.Publish(ctx, topic, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        notificationEventType,
		OccurredAt:       now,
		SourceService:    "workflow-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "problem_id",
		PartitionKey:     problemID,
		Data:             data,
	})
}

var _ ports.Notifier = (*BusNotifier)(nil)
