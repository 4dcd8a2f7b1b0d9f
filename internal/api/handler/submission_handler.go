package handler

import (
	"encoding/json"
	"net/http"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/api/middleware"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/service"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
	jobService        *service.ExecutionJobService
}

func NewSubmissionHandler(ss *service.SubmissionService, js *service.ExecutionJobService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss, jobService: js}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.createSubmission)
	r.Post("/async", h.enqueueSubmission)
	r.Get("/jobs/{jobID}", h.getJob)
	r.Get("/{submissionID}", h.getSubmission)
}

func (h *SubmissionHandler) RegisterProgressRoutes(r chi.Router) {
	r.Get("/{problemID}", h.getProgress)
}

// decodeSubmission reads the body and pins userId to the authenticated user.
func decodeSubmission(w http.ResponseWriter, r *http.Request) (model.SubmissionRequest, bool) {
	var req model.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return req, false
	}
	userID, err := middleware.ResolveUserID(r.Context(), req.UserID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return req, false
	}
	req.UserID = userID
	return req, true
}

func (h *SubmissionHandler) createSubmission(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubmission(w, r)
	if !ok {
		return
	}

	outcome, err := h.submissionService.Submit(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	if outcome.RateLimited {
		common.RespondWithJSON(w, http.StatusTooManyRequests, outcome)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, outcome)
}

func (h *SubmissionHandler) enqueueSubmission(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubmission(w, r)
	if !ok {
		return
	}

	job, err := h.jobService.EnqueueSubmission(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID, "status": job.Status})
}

func (h *SubmissionHandler) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobService.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok && userID != job.Request.UserID {
		common.RespondWithError(w, http.StatusNotFound, common.ErrNotFound.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, job)
}

func (h *SubmissionHandler) getSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.submissionService.GetSubmission(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok && userID != sub.UserID {
		common.RespondWithError(w, http.StatusNotFound, common.ErrNotFound.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) getProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.ResolveUserID(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	progress, err := h.submissionService.GetProgress(r.Context(), userID, chi.URLParam(r, "problemID"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, progress)
}
