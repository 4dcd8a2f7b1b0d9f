package handler

import (
	"net/http"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/service"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
}

func NewProblemHandler(ps *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{problemService: ps}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{problemID}/examples", h.listExamples)
}

func (h *ProblemHandler) listExamples(w http.ResponseWriter, r *http.Request) {
	cases, err := h.problemService.ListExampleTestCases(r.Context(), chi.URLParam(r, "problemID"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, cases)
}
