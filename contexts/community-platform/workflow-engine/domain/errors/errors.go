package errors

import "errors"

var (
	ErrInvalidUpdateInput = errors.New("invalid workflow update input")
	ErrInvalidVoteCount   = errors.New("vote count must be non-negative")
	ErrInvalidStatus      = errors.New("unknown problem status")
	ErrProblemNotFound    = errors.New("problem not found")
	ErrInvalidTransition  = errors.New("status transition is not legal from the current status")
	ErrReasonRequired     = errors.New("admin override requires a reason")
	ErrReasonTooLong      = errors.New("override reason exceeds 500 characters")
	ErrActorRequired      = errors.New("admin override requires an actor id")
	ErrConflict           = errors.New("concurrent workflow update conflict")
	ErrQueueItemNotFound  = errors.New("development queue item not found")
	ErrInvalidQueueUpdate = errors.New("invalid development queue update")
)
