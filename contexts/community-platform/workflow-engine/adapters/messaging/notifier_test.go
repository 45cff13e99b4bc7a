package messagingadapter

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
	"wikigaia/contexts/community-platform/workflow-engine/ports"
)

type capturePublisher struct {
	topic string
	event ports.EventEnvelope
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.topic = topic
	p.event = event
	return nil
}

type staticIDGen struct{ id string }

func (g staticIDGen) NewID(context.Context) (string, error) { return g.id, nil }

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func TestBusNotifierPublishesNotificationEvent(t *testing.T) {
	publisher := &capturePublisher{}
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	notifier := BusNotifier{
		Publisher: publisher,
		IDGen:     staticIDGen{id: "evt-1"},
		Clock:     fixedClock{at: at},
	}

	err := notifier.SendStatusChangeNotification(
		context.Background(),
		"problem-1",
		entities.StatusProposed,
		entities.StatusUnderReview,
		map[string]string{"trigger_type": "milestone_triggered", "vote_count": "55"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if publisher.topic != "workflow.notifications" {
		t.Fatalf("unexpected topic %s", publisher.topic)
	}
	if publisher.event.EventType != "problem.status_change_notification" {
		t.Fatalf("unexpected event type %s", publisher.event.EventType)
	}
	if publisher.event.PartitionKey != "problem-1" || !publisher.event.OccurredAt.Equal(at) {
		t.Fatalf("unexpected envelope %+v", publisher.event)
	}

	var data map[string]any
	if err := json.Unmarshal(publisher.event.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["previous_status"] != "Proposed" || data["new_status"] != "Under Review" {
		t.Fatalf("unexpected data %v", data)
	}
}

func TestBusNotifierCustomTopic(t *testing.T) {
	publisher := &capturePublisher{}
	notifier := BusNotifier{
		Publisher: publisher,
		IDGen:     staticIDGen{id: "evt-2"},
		Topic:     "workflow.notifications.test",
	}

	err := notifier.SendStatusChangeNotification(
		context.Background(), "problem-1", entities.StatusProposed, entities.StatusUnderReview, nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if publisher.topic != "workflow.notifications.test" {
		t.Fatalf("unexpected topic %s", publisher.topic)
	}
}
