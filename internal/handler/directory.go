package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/service"
	"github.com/jazanyumba/chama-vault/pkg/response"
)

type base struct {
	validator *validator.Validate
}

func newBase() base {
	return base{validator: NewValidator()}
}

// DirectoryHandler serves registration, login and member management.
type DirectoryHandler struct {
	base
	service *service.DirectoryService
}

func NewDirectoryHandler(service *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{base: newBase(), service: service}
}

func (h *DirectoryHandler) RegisterGroup(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterGroupRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	resp, err := h.service.RegisterGroup(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, resp)
}

func (h *DirectoryHandler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterMemberRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	member, err := h.service.RegisterMember(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, member)
}

func (h *DirectoryHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, resp)
}

func (h *DirectoryHandler) Me(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	member, err := h.service.GetMember(r.Context(), a, a.MemberID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	group, err := h.service.GetGroup(r.Context(), a)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, domain.AuthResponse{Member: member, Group: group})
}

func (h *DirectoryHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	members, err := h.service.ListMembers(r.Context(), a, r.URL.Query().Get("status"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, members)
}

func (h *DirectoryHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "memberId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	member, err := h.service.GetMember(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, member)
}

func (h *DirectoryHandler) ApproveMember(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "memberId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	member, err := h.service.ApproveMember(r.Context(), a, id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, member)
}

func (h *DirectoryHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "memberId")
	if err != nil {
		response.FromError(w, err)
		return
	}

	if err := h.service.RemoveMember(r.Context(), a, id); err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]string{"id": id.String()})
}
