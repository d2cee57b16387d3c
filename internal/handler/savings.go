package handler

import (
	"net/http"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/service"
	"github.com/jazanyumba/chama-vault/pkg/response"
)

// SavingsHandler serves deposits, balances and withdrawal requests.
type SavingsHandler struct {
	base
	service *service.SavingsService
}

func NewSavingsHandler(service *service.SavingsService) *SavingsHandler {
	return &SavingsHandler{base: newBase(), service: service}
}

func (h *SavingsHandler) RecordDeposit(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.DepositRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	entry, err := h.service.RecordDeposit(r.Context(), a, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, entry)
}

// GetBalance returns the caller's balance, or another member's when memberId is in the path.
func (h *SavingsHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	memberID := a.MemberID
	if _, set := muxVar(r, "memberId"); set {
		id, err := pathUUID(r, "memberId")
		if err != nil {
			response.FromError(w, err)
			return
		}
		memberID = id
	}

	balance, err := h.service.GetBalance(r.Context(), a, memberID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, balance)
}

func (h *SavingsHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	memberID := a.MemberID
	if _, set := muxVar(r, "memberId"); set {
		id, err := pathUUID(r, "memberId")
		if err != nil {
			response.FromError(w, err)
			return
		}
		memberID = id
	}

	entries, err := h.service.ListEntries(r.Context(), a, memberID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, entries)
}

func (h *SavingsHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.WithdrawalRequestInput
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	withdrawal, err := h.service.RequestWithdrawal(r.Context(), a, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, withdrawal)
}

func (h *SavingsHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	list, err := h.service.ListWithdrawals(r.Context(), a, r.URL.Query().Get("status"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, list)
}

func (h *SavingsHandler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "withdrawalId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	withdrawal, err := h.service.ApproveWithdrawal(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, withdrawal)
}

func (h *SavingsHandler) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "withdrawalId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	withdrawal, err := h.service.RejectWithdrawal(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, withdrawal)
}
