package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/bloomie/bloomie-care/internal/api/respond"
	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/services"
)

// NurtureHandler is a thin HTTP transport over NurtureService.
type NurtureHandler struct {
	svc *services.NurtureService
}

func NewNurtureHandler(svc *services.NurtureService) *NurtureHandler { return &NurtureHandler{svc: svc} }

type nurtureRequest struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Species   *string    `json:"species,omitempty"`
	Breed     *string    `json:"breed,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	AvatarRef *string    `json:"avatarRef,omitempty"`
}

// CreateNurture POST /api/users/{userId}/nurtures
func (h *NurtureHandler) CreateNurture(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["userId"]
	var req nurtureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	n := &model.Nurture{
		OwnerID:   ownerID,
		Name:      req.Name,
		Type:      model.NurtureType(req.Type),
		Species:   req.Species,
		Breed:     req.Breed,
		BirthDate: req.BirthDate,
		AvatarRef: req.AvatarRef,
	}
	out, err := h.svc.CreateNurture(r.Context(), n)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListNurtures GET /api/users/{userId}/nurtures
func (h *NurtureHandler) ListNurtures(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["userId"]
	nurtures, err := h.svc.ListNurtures(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"nurtures": nurtures, "count": len(nurtures)})
}

// GetNurture GET /api/users/{userId}/nurtures/{nurtureId}
func (h *NurtureHandler) GetNurture(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n, err := h.svc.GetNurture(r.Context(), vars["userId"], vars["nurtureId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, n)
}

// UpdateNurture PATCH /api/users/{userId}/nurtures/{nurtureId}
func (h *NurtureHandler) UpdateNurture(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req nurtureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	n := &model.Nurture{
		NurtureID: vars["nurtureId"],
		OwnerID:   vars["userId"],
		Name:      req.Name,
		Type:      model.NurtureType(req.Type),
		Species:   req.Species,
		Breed:     req.Breed,
		BirthDate: req.BirthDate,
		AvatarRef: req.AvatarRef,
	}
	out, err := h.svc.UpdateNurture(r.Context(), n)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteNurture DELETE /api/users/{userId}/nurtures/{nurtureId}
func (h *NurtureHandler) DeleteNurture(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteNurture(r.Context(), vars["userId"], vars["nurtureId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case model.IsValidationError(err):
		respond.WriteBadRequest(w, err.Error())
	case model.IsNotFoundError(err):
		respond.WriteNotFound(w, err.Error())
	case model.IsConflictError(err):
		respond.WriteConflict(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
