package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UpdateStatusRequest is the write endpoint body. TargetStatus and Reason
// only apply when AdminOverride is set; the acting admin is asserted via
// the X-Actor-Id header, not the body.
type UpdateStatusRequest struct {
	NewVoteCount  int    `json:"new_vote_count"`
	AdminOverride bool   `json:"admin_override,omitempty"`
	TargetStatus  string `json:"target_status,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type TransitionResponse struct {
	ProblemID        string             `json:"problem_id"`
	PreviousStatus   string             `json:"previous_status"`
	NewStatus        string             `json:"new_status"`
	StatusChanged    bool               `json:"status_changed"`
	WorkflowAction   string             `json:"workflow_action"`
	VoteCount        int                `json:"vote_count"`
	NotificationSent *bool              `json:"notification_sent,omitempty"`
	AddedToDevQueue  *bool              `json:"added_to_dev_queue,omitempty"`
	QueueItem        *QueueItemResponse `json:"queue_item,omitempty"`
}

type NextMilestoneResponse struct {
	Threshold    int    `json:"threshold"`
	TargetStatus string `json:"target_status"`
	VotesNeeded  int    `json:"votes_needed"`
}

type HistoryEntryResponse struct {
	PreviousStatus    string    `json:"previous_status"`
	NewStatus         string    `json:"new_status"`
	TriggerType       string    `json:"trigger_type"`
	TriggeredBy       string    `json:"triggered_by,omitempty"`
	VoteCountAtChange int       `json:"vote_count_at_change"`
	Reason            string    `json:"reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type QueueItemResponse struct {
	ProblemID      string `json:"problem_id"`
	Priority       string `json:"priority"`
	QueuePosition  int    `json:"queue_position"`
	Status         string `json:"status"`
	EstimatedHours int    `json:"estimated_hours,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

type WorkflowViewResponse struct {
	ProblemID     string                 `json:"problem_id"`
	Status        string                 `json:"status"`
	VoteCount     int                    `json:"vote_count"`
	Terminal      bool                   `json:"terminal"`
	NextMilestone *NextMilestoneResponse `json:"next_milestone,omitempty"`
	History       []HistoryEntryResponse `json:"history"`
	QueueItem     *QueueItemResponse     `json:"queue_item,omitempty"`
}

type HistoryResponse struct {
	ProblemID string                 `json:"problem_id"`
	Entries   []HistoryEntryResponse `json:"entries"`
}

type DevQueueListResponse struct {
	Items []QueueItemResponse `json:"items"`
}

// UpdateQueueItemRequest is the admin queue mutation body; absent fields
// stay untouched.
type UpdateQueueItemRequest struct {
	Priority       *string `json:"priority,omitempty"`
	Status         *string `json:"status,omitempty"`
	EstimatedHours *int    `json:"estimated_hours,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}
