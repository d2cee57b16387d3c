package handler

import (
	"net/http"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/service"
	"github.com/jazanyumba/chama-vault/pkg/response"
)

type LoanHandler struct {
	base
	service *service.LoanService
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{base: newBase(), service: service}
}

// RequestLoan files a member's loan request.
func (h *LoanHandler) RequestLoan(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.RequestLoanRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	loan, err := h.service.RequestLoan(r.Context(), a, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, loan)
}

// CreateLoan records a loan with full terms on behalf of a member.
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.CreateLoanRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), a, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, loan)
}

func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	loans, err := h.service.ListLoans(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, loans)
}

func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "loanId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	loan, err := h.service.GetLoan(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, loan)
}

func (h *LoanHandler) OfferLoan(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "loanId")
	if err != nil {
		response.FromError(w, err)
		return
	}
	var terms domain.LoanTerms
	if err := h.decodeAndValidate(r, &terms); err != nil {
		response.FromError(w, err)
		return
	}

	loan, err := h.service.OfferLoan(r.Context(), a, id, terms)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, loan)
}

func (h *LoanHandler) RespondToOffer(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "loanId")
	if err != nil {
		response.FromError(w, err)
		return
	}
	var req domain.LoanDecisionRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	loan, err := h.service.RespondToOffer(r.Context(), a, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, loan)
}

func (h *LoanHandler) SubmitRepayment(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "loanId")
	if err != nil {
		response.FromError(w, err)
		return
	}
	var req domain.SubmitRepaymentRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	repayment, err := h.service.SubmitRepayment(r.Context(), a, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, repayment)
}

func (h *LoanHandler) ListRepayments(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "loanId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	repayments, err := h.service.ListRepayments(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, repayments)
}

func (h *LoanHandler) ApproveRepayment(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "repaymentId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	repayment, err := h.service.ApproveRepayment(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, repayment)
}

func (h *LoanHandler) RejectRepayment(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "repaymentId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	repayment, err := h.service.RejectRepayment(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, repayment)
}

func (h *LoanHandler) RateRepayment(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "repaymentId")
	if err != nil {
		response.FromError(w, err)
		return
	}
	var req domain.RateTimingRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	repayment, err := h.service.RateRepaymentTiming(r.Context(), a, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, repayment)
}
