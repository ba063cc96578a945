package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bloomie/bloomie-care/internal/api/respond"
	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/services"
)

// AlertHandler is a thin HTTP transport over AlertService. Alerts are
// recomputed on every request; nothing here is read from storage.
type AlertHandler struct {
	svc *services.AlertService
}

func NewAlertHandler(svc *services.AlertService) *AlertHandler { return &AlertHandler{svc: svc} }

// ListAlerts GET /api/users/{userId}/alerts
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["userId"]
	alerts, err := h.svc.ListAlerts(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if alerts == nil {
		alerts = []model.HealthAlert{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts, "count": len(alerts)})
}

// NurtureAlerts GET /api/users/{userId}/nurtures/{nurtureId}/alerts
func (h *AlertHandler) NurtureAlerts(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	alerts, err := h.svc.NurtureAlerts(r.Context(), vars["userId"], vars["nurtureId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if alerts == nil {
		alerts = []model.HealthAlert{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts, "count": len(alerts)})
}

// Acknowledge POST /api/users/{userId}/alerts/{alertId}/ack
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := h.svc.Acknowledge(r.Context(), vars["userId"], vars["alertId"], model.AckAction(req.Action)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
