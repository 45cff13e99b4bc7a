package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	workflowengine "wikigaia/contexts/community-platform/workflow-engine"
	workflowerrors "wikigaia/contexts/community-platform/workflow-engine/domain/errors"
	workflowhttp "wikigaia/contexts/community-platform/workflow-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "wikigaia/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	workflow workflowengine.Module
}

func New(workflow workflowengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		workflow: workflow,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/v1/problems/{problem_id}/status", s.handleUpdateStatus)
	s.mux.HandleFunc("GET /api/v1/problems/{problem_id}/workflow", s.handleWorkflowView)
	s.mux.HandleFunc("GET /api/v1/problems/{problem_id}/workflow/history", s.handleWorkflowHistory)

	s.mux.HandleFunc("GET /api/v1/dev-queue", s.handleListDevQueue)
	s.mux.HandleFunc("PATCH /api/v1/dev-queue/{problem_id}", s.handleUpdateQueueItem)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req workflowhttp.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	problemID := r.PathValue("problem_id")
	actorID := r.Header.Get("X-Actor-Id")

	resp, err := s.workflow.Handler.UpdateStatusHandler(r.Context(), problemID, actorID, req)
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWorkflowView(w http.ResponseWriter, r *http.Request) {
	resp, err := s.workflow.Handler.WorkflowViewHandler(r.Context(), r.PathValue("problem_id"))
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWorkflowHistory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.workflow.Handler.WorkflowHistoryHandler(r.Context(), r.PathValue("problem_id"))
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDevQueue(w http.ResponseWriter, r *http.Request) {
	resp, err := s.workflow.Handler.ListDevQueueHandler(r.Context())
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateQueueItem(w http.ResponseWriter, r *http.Request) {
	var req workflowhttp.UpdateQueueItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	problemID := r.PathValue("problem_id")
	actorID := r.Header.Get("X-Actor-Id")

	resp, err := s.workflow.Handler.UpdateQueueItemHandler(r.Context(), problemID, actorID, req)
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeWorkflowDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflowerrors.ErrProblemNotFound):
		writeError(w, http.StatusNotFound, "problem_not_found", err.Error())
	case errors.Is(err, workflowerrors.ErrQueueItemNotFound):
		writeError(w, http.StatusNotFound, "queue_item_not_found", err.Error())
	case errors.Is(err, workflowerrors.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, "invalid_transition", err.Error())
	case errors.Is(err, workflowerrors.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, workflowerrors.ErrActorRequired):
		writeError(w, http.StatusUnauthorized, "actor_required", err.Error())
	case errors.Is(err, workflowerrors.ErrReasonRequired):
		writeError(w, http.StatusBadRequest, "reason_required", err.Error())
	case errors.Is(err, workflowerrors.ErrReasonTooLong):
		writeError(w, http.StatusBadRequest, "reason_too_long", err.Error())
	case errors.Is(err, workflowerrors.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, workflowerrors.ErrInvalidVoteCount):
		writeError(w, http.StatusBadRequest, "invalid_vote_count", err.Error())
	case errors.Is(err, workflowerrors.ErrInvalidQueueUpdate):
		writeError(w, http.StatusBadRequest, "invalid_queue_update", err.Error())
	case errors.Is(err, workflowerrors.ErrInvalidUpdateInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, workflowhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
