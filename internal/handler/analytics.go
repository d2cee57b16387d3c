package handler

import (
	"net/http"

	"github.com/jazanyumba/chama-vault/internal/service"
	"github.com/jazanyumba/chama-vault/pkg/response"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	entries, err := h.service.Leaderboard(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, entries)
}

func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, dashboard)
}

// Timing reports group-wide timing ratings, or one cycle's when cycle_id is given.
func (h *AnalyticsHandler) Timing(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	cycleID, err := queryUUID(r, "cycle_id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	analytics, err := h.service.TimingAnalytics(r.Context(), a, cycleID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, analytics)
}

func (h *AnalyticsHandler) MemberReport(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "memberId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	report, err := h.service.MemberReport(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, report)
}
