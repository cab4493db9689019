package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/reel-lens/internal/tasks"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SubmitRequest is the submission body.
type SubmitRequest struct {
	Source string `json:"source" validate:"required"`
}

// SubmitResponse acknowledges an accepted submission.
type SubmitResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// StatusResponse is one status poll result.
type StatusResponse struct {
	TaskID   string `json:"task_id"`
	Status   string `json:"status"`
	Stage    string `json:"stage"`
	Progress int    `json:"progress"`
	ReelID   string `json:"reel_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, &tasks.ErrInvalidSource{Source: "", Message: "invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, &tasks.ErrInvalidSource{Source: req.Source, Message: "source is required"})
		return
	}

	taskID, err := s.runner.Submit(req.Source)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusAccepted, SubmitResponse{
		TaskID: taskID.String(),
		Status: string(tasks.StatusQueued),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(r.PathValue("task_id"))
	if err != nil {
		s.errorResponse(w, &tasks.ErrNotFound{})
		return
	}

	job, err := s.registry.Get(taskID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	resp := StatusResponse{
		TaskID:   job.TaskID.String(),
		Status:   string(job.Status),
		Stage:    string(job.Stage),
		Progress: job.Progress,
		Error:    job.Error,
	}
	if job.ResultRef != uuid.Nil {
		resp.ReelID = job.ResultRef.String()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleGetReel(w http.ResponseWriter, r *http.Request) {
	doc, err := s.cache.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"record":         doc.Record,
		"keyframes":      doc.Keyframes,
		"correlation_id": doc.CorrelationID,
	})
}

func (s *Server) handleIntelligence(w http.ResponseWriter, r *http.Request) {
	obj, err := s.chain.Generate(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	// Partial objects still return 200; failures live in processing_errors.
	s.jsonResponse(w, http.StatusOK, obj)
}

func (s *Server) handleReconstruct(w http.ResponseWriter, r *http.Request) {
	overlay, err := s.reconstructor.Reconstruct(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, overlay)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
