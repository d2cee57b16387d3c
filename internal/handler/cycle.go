package handler

import (
	"net/http"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/service"
	"github.com/jazanyumba/chama-vault/pkg/response"
)

// CycleHandler serves table-banking rotations and their contributions.
type CycleHandler struct {
	base
	cycles        *service.CycleService
	contributions *service.ContributionService
}

func NewCycleHandler(cycles *service.CycleService, contributions *service.ContributionService) *CycleHandler {
	return &CycleHandler{base: newBase(), cycles: cycles, contributions: contributions}
}

func (h *CycleHandler) StartCycle(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.StartCycleRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	resp, err := h.cycles.StartCycle(r.Context(), a, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, resp)
}

func (h *CycleHandler) ListCycles(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	cycles, err := h.cycles.ListCycles(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, cycles)
}

func (h *CycleHandler) GetActiveCycle(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	cycle, err := h.cycles.GetActiveCycle(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, cycle)
}

func (h *CycleHandler) GetCycle(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "cycleId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	cycle, err := h.cycles.GetCycle(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, cycle)
}

func (h *CycleHandler) ProgressCycle(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "cycleId")
	if err != nil {
		response.FromError(w, err)
		return
	}
	var req domain.ProgressCycleRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	cycle, err := h.cycles.ProgressCycle(r.Context(), a, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, cycle)
}

func (h *CycleHandler) ListContributions(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "cycleId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	contributions, err := h.cycles.ListContributions(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, contributions)
}

func (h *CycleHandler) RecordContribution(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "cycleId")
	if err != nil {
		response.FromError(w, err)
		return
	}
	var req domain.RecordContributionRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	contribution, err := h.contributions.RecordContribution(r.Context(), a, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, contribution)
}

func (h *CycleHandler) RateContribution(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "contributionId")
	if err != nil {
		response.FromError(w, err)
		return
	}
	var req domain.RateTimingRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	contribution, err := h.contributions.RateTiming(r.Context(), a, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, contribution)
}

func (h *CycleHandler) MemberContributions(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "memberId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	contributions, err := h.contributions.ListMemberContributions(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, contributions)
}
