package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	workflowengine "wikigaia/contexts/community-platform/workflow-engine"
	"wikigaia/contexts/community-platform/workflow-engine/domain/entities"
	workflowhttp "wikigaia/contexts/community-platform/workflow-engine/transport/http"
)

type noopNotifier struct{}

func (noopNotifier) SendStatusChangeNotification(
	context.Context, string, entities.Status, entities.Status, map[string]string,
) error {
	return nil
}

func newTestServer(seed []entities.Problem) *httptest.Server {
	module := workflowengine.NewInMemoryModule(seed, noopNotifier{}, nil)
	return httptest.NewServer(New(module, nil, "").Handler())
}

func postStatus(t *testing.T, server *httptest.Server, problemID, actorID string, body workflowhttp.UpdateStatusRequest) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/problems/"+problemID+"/status", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if actorID != "" {
		req.Header.Set("X-Actor-Id", actorID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestUpdateStatusEndpointMilestone(t *testing.T) {
	server := newTestServer([]entities.Problem{{
		ProblemID: "problem-1",
		Status:    entities.StatusProposed,
		VoteCount: 40,
	}})
	defer server.Close()

	resp := postStatus(t, server, "problem-1", "", workflowhttp.UpdateStatusRequest{NewVoteCount: 55})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody[workflowhttp.TransitionResponse](t, resp)
	if !body.StatusChanged || body.NewStatus != "Under Review" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.WorkflowAction != "milestone_triggered" {
		t.Fatalf("unexpected action %s", body.WorkflowAction)
	}
	if body.NotificationSent == nil || !*body.NotificationSent {
		t.Fatal("expected notification_sent=true")
	}
	if body.AddedToDevQueue != nil {
		t.Fatal("added_to_dev_queue only belongs on In Development responses")
	}
}

func TestUpdateStatusEndpointIllegalOverride(t *testing.T) {
	server := newTestServer([]entities.Problem{{
		ProblemID: "problem-1",
		Status:    entities.StatusUnderReview,
		VoteCount: 80,
	}})
	defer server.Close()

	resp := postStatus(t, server, "problem-1", "admin-1", workflowhttp.UpdateStatusRequest{
		NewVoteCount:  80,
		AdminOverride: true,
		TargetStatus:  "In Development",
		Reason:        "fast-tracked",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody[workflowhttp.ErrorResponse](t, resp)
	if body.Code != "invalid_transition" {
		t.Fatalf("unexpected error code %s", body.Code)
	}
}

func TestUpdateStatusEndpointMissingActor(t *testing.T) {
	server := newTestServer([]entities.Problem{{
		ProblemID: "problem-1",
		Status:    entities.StatusUnderReview,
		VoteCount: 80,
	}})
	defer server.Close()

	resp := postStatus(t, server, "problem-1", "", workflowhttp.UpdateStatusRequest{
		NewVoteCount:  80,
		AdminOverride: true,
		TargetStatus:  "Rejected",
		Reason:        "duplicate of an existing problem",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	body := decodeBody[workflowhttp.ErrorResponse](t, resp)
	if body.Code != "actor_required" {
		t.Fatalf("unexpected error code %s", body.Code)
	}
}

func TestUpdateStatusEndpointUnknownProblem(t *testing.T) {
	server := newTestServer(nil)
	defer server.Close()

	resp := postStatus(t, server, "missing", "", workflowhttp.UpdateStatusRequest{NewVoteCount: 60})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateStatusEndpointRejectsBadJSON(t *testing.T) {
	server := newTestServer(nil)
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/problems/problem-1/status", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody[workflowhttp.ErrorResponse](t, resp)
	if body.Code != "invalid_json" {
		t.Fatalf("unexpected error code %s", body.Code)
	}
}

func TestWorkflowViewAndHistoryEndpoints(t *testing.T) {
	server := newTestServer([]entities.Problem{{
		ProblemID: "problem-1",
		Status:    entities.StatusPriorityQueue,
		VoteCount: 90,
	}})
	defer server.Close()

	// Drive one override into development so the view carries a queue item.
	resp := postStatus(t, server, "problem-1", "admin-1", workflowhttp.UpdateStatusRequest{
		NewVoteCount:  90,
		AdminOverride: true,
		TargetStatus:  "In Development",
		Reason:        "approved by steering committee",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("override: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	viewResp, err := http.Get(server.URL + "/api/v1/problems/problem-1/workflow")
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if viewResp.StatusCode != http.StatusOK {
		t.Fatalf("view: expected 200, got %d", viewResp.StatusCode)
	}
	view := decodeBody[workflowhttp.WorkflowViewResponse](t, viewResp)
	if view.Status != "In Development" || view.Terminal {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.NextMilestone != nil {
		t.Fatalf("no milestone beyond In Development, got %+v", view.NextMilestone)
	}
	if view.QueueItem == nil || view.QueueItem.Priority != "medium" {
		t.Fatalf("unexpected queue item %+v", view.QueueItem)
	}
	if len(view.History) != 1 || view.History[0].TriggerType != "admin_override" {
		t.Fatalf("unexpected history %+v", view.History)
	}

	historyResp, err := http.Get(server.URL + "/api/v1/problems/problem-1/workflow/history")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	history := decodeBody[workflowhttp.HistoryResponse](t, historyResp)
	if history.ProblemID != "problem-1" || len(history.Entries) != 1 {
		t.Fatalf("unexpected history response %+v", history)
	}
	if history.Entries[0].TriggeredBy != "admin-1" {
		t.Fatalf("expected override actor in history, got %+v", history.Entries[0])
	}
}

func TestDevQueueEndpoints(t *testing.T) {
	server := newTestServer([]entities.Problem{{
		ProblemID: "problem-1",
		Status:    entities.StatusPriorityQueue,
		VoteCount: 90,
	}})
	defer server.Close()

	resp := postStatus(t, server, "problem-1", "", workflowhttp.UpdateStatusRequest{NewVoteCount: 130})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("milestone: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	listResp, err := http.Get(server.URL + "/api/v1/dev-queue")
	if err != nil {
		t.Fatalf("list queue: %v", err)
	}
	list := decodeBody[workflowhttp.DevQueueListResponse](t, listResp)
	if len(list.Items) != 1 || list.Items[0].Priority != "high" {
		t.Fatalf("unexpected queue list %+v", list)
	}

	status := "in_progress"
	payload, _ := json.Marshal(workflowhttp.UpdateQueueItemRequest{Status: &status})
	patchReq, err := http.NewRequest(http.MethodPatch, server.URL+"/api/v1/dev-queue/problem-1", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build patch: %v", err)
	}
	patchReq.Header.Set("Content-Type", "application/json")
	patchReq.Header.Set("X-Actor-Id", "admin-1")
	patchResp, err := http.DefaultClient.Do(patchReq)
	if err != nil {
		t.Fatalf("do patch: %v", err)
	}
	if patchResp.StatusCode != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d", patchResp.StatusCode)
	}
	item := decodeBody[workflowhttp.QueueItemResponse](t, patchResp)
	if item.Status != "in_progress" {
		t.Fatalf("unexpected patched item %+v", item)
	}

	// Same patch without an actor header is unauthorized.
	unauthReq, _ := http.NewRequest(http.MethodPatch, server.URL+"/api/v1/dev-queue/problem-1", bytes.NewReader(payload))
	unauthReq.Header.Set("Content-Type", "application/json")
	unauthResp, err := http.DefaultClient.Do(unauthReq)
	if err != nil {
		t.Fatalf("do unauthorized patch: %v", err)
	}
	defer unauthResp.Body.Close()
	if unauthResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", unauthResp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
