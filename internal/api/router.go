package api

import (
	"github.com/gorilla/mux"

	"github.com/bloomie/bloomie-care/internal/api/recovery"
	"github.com/bloomie/bloomie-care/internal/services"
)

// Deps bundles everything the router needs.
type Deps struct {
	Nurtures  *services.NurtureService
	Logs      *services.LogService
	Alerts    *services.AlertService
	IsHealthy func() bool
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler(d.IsHealthy)
	nurtureHandler := NewNurtureHandler(d.Nurtures)
	logHandler := NewLogHandler(d.Logs)
	alertHandler := NewAlertHandler(d.Alerts)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Nurture endpoints
	router.HandleFunc("/api/users/{userId}/nurtures", nurtureHandler.CreateNurture).Methods("POST")
	router.HandleFunc("/api/users/{userId}/nurtures", nurtureHandler.ListNurtures).Methods("GET")
	router.HandleFunc("/api/users/{userId}/nurtures/{nurtureId}", nurtureHandler.GetNurture).Methods("GET")
	router.HandleFunc("/api/users/{userId}/nurtures/{nurtureId}", nurtureHandler.UpdateNurture).Methods("PATCH")
	router.HandleFunc("/api/users/{userId}/nurtures/{nurtureId}", nurtureHandler.DeleteNurture).Methods("DELETE")

	// Activity log endpoints
	router.HandleFunc("/api/users/{userId}/nurtures/{nurtureId}/logs", logHandler.CreateLog).Methods("POST")
	router.HandleFunc("/api/users/{userId}/nurtures/{nurtureId}/logs", logHandler.ListLogs).Methods("GET")
	router.HandleFunc("/api/users/{userId}/nurtures/{nurtureId}/logs/{logId}", logHandler.GetLog).Methods("GET")
	router.HandleFunc("/api/users/{userId}/nurtures/{nurtureId}/logs/{logId}", logHandler.DeleteLog).Methods("DELETE")

	// Alert endpoints (recomputed per request, never persisted)
	router.HandleFunc("/api/users/{userId}/alerts", alertHandler.ListAlerts).Methods("GET")
	router.HandleFunc("/api/users/{userId}/nurtures/{nurtureId}/alerts", alertHandler.NurtureAlerts).Methods("GET")
	router.HandleFunc("/api/users/{userId}/alerts/{alertId}/ack", alertHandler.Acknowledge).Methods("POST")

	return router
}
