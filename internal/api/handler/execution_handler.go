package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/executor"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/service"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/go-chi/chi/v5"
)

// ExecutionHandler serves the run-code proxy and the language table.
type ExecutionHandler struct {
	submissionService *service.SubmissionService
}

func NewExecutionHandler(ss *service.SubmissionService) *ExecutionHandler {
	return &ExecutionHandler{submissionService: ss}
}

func (h *ExecutionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/execute", h.execute)
	r.Get("/languages", h.listLanguages)
	r.Get("/languages/{language}", h.getLanguage)
}

func (h *ExecutionHandler) execute(w http.ResponseWriter, r *http.Request) {
	var req service.RunCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.submissionService.RunCode(r.Context(), req)
	switch {
	case errors.Is(err, common.ErrRateLimited):
		common.RespondWithJSON(w, http.StatusTooManyRequests, res)
	case err != nil:
		common.RespondWithDomainError(w, err)
	default:
		common.RespondWithJSON(w, http.StatusOK, res)
	}
}

func (h *ExecutionHandler) listLanguages(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, executor.SupportedLanguages())
}

func (h *ExecutionHandler) getLanguage(w http.ResponseWriter, r *http.Request) {
	lang := model.Language(chi.URLParam(r, "language"))
	if !lang.Valid() {
		common.RespondWithError(w, http.StatusNotFound, "unsupported language "+string(lang))
		return
	}
	common.RespondWithJSON(w, http.StatusOK, executor.DescribeLanguage(lang))
}
