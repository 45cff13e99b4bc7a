package commands

import (
	"encoding/json"
	"time"

	"wikigaia/contexts/community-platform/workflow-engine/ports"
)

func newWorkflowEnvelope(
	eventID string,
	eventType string,
	problemID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Workflow events are partitioned by problem so problem-scoped
	// consumers observe transitions in order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "workflow-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "problem_id",
		PartitionKey:     problemID,
		Data:             payload,
	}, nil
}
