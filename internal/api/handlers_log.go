package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/bloomie/bloomie-care/internal/api/respond"
	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/services"
)

// LogHandler is a thin HTTP transport over LogService.
type LogHandler struct {
	svc *services.LogService
}

func NewLogHandler(svc *services.LogService) *LogHandler { return &LogHandler{svc: svc} }

// CreateLog POST /api/users/{userId}/nurtures/{nurtureId}/logs
func (h *LogHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req struct {
		RawText     string   `json:"rawText"`
		Action      *string  `json:"action,omitempty"`
		Notes       *string  `json:"notes,omitempty"`
		Mood        *string  `json:"mood,omitempty"`
		HealthScore *float64 `json:"healthScore,omitempty"`
		Photos      []string `json:"photos,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	l := &model.ActivityLog{
		NurtureID:   vars["nurtureId"],
		RawText:     req.RawText,
		Action:      req.Action,
		Notes:       req.Notes,
		Mood:        req.Mood,
		HealthScore: req.HealthScore,
		Photos:      req.Photos,
	}
	out, err := h.svc.CreateLog(r.Context(), vars["userId"], l)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListLogs GET /api/users/{userId}/nurtures/{nurtureId}/logs?since=RFC3339&limit=n
func (h *LogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req := model.ListLogsRequest{NurtureID: vars["nurtureId"]}

	if raw := r.URL.Query().Get("since"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respond.WriteBadRequest(w, "since must be RFC3339")
			return
		}
		req.Since = &ts
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respond.WriteBadRequest(w, "limit must be a non-negative integer")
			return
		}
		req.Limit = n
	}

	logs, err := h.svc.ListLogs(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"logs": logs, "count": len(logs)})
}

// GetLog GET /api/users/{userId}/nurtures/{nurtureId}/logs/{logId}
func (h *LogHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	l, err := h.svc.GetLog(r.Context(), vars["nurtureId"], vars["logId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, l)
}

// DeleteLog DELETE /api/users/{userId}/nurtures/{nurtureId}/logs/{logId}
func (h *LogHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteLog(r.Context(), vars["nurtureId"], vars["logId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
