package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloomie/bloomie-care/internal/detector"
	"github.com/bloomie/bloomie-care/internal/events"
	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/platform/logger"
	"github.com/bloomie/bloomie-care/internal/services"
	"github.com/bloomie/bloomie-care/internal/store/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := sqlite.NewWithDB(db)
	log := logger.New("api-test")
	det := detector.New(nil, detector.DefaultThresholds(), log)
	bus := events.NewBus(16)

	router := NewRouter(Deps{
		Nurtures:  services.NewNurtureService(st, log),
		Logs:      services.NewLogService(st, log),
		Alerts:    services.NewAlertService(st, det, bus, 7*24*time.Hour, 30, log),
		IsHealthy: func() bool { return true },
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func TestAPI_NurtureLifecycle(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/users/u1"

	resp, body := doJSON(t, http.MethodPost, base+"/nurtures", map[string]any{
		"name": "Planty", "type": "plant", "species": "pothos",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created model.Nurture
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.NurtureID)

	resp, body = doJSON(t, http.MethodGet, base+"/nurtures/"+created.NurtureID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got model.Nurture
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Planty", got.Name)
	assert.Equal(t, model.NurturePlant, got.Type)

	// Type change is rejected.
	resp, _ = doJSON(t, http.MethodPatch, base+"/nurtures/"+created.NurtureID, map[string]any{
		"name": "Planty", "type": "pet",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, base+"/nurtures/"+created.NurtureID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, base+"/nurtures/"+created.NurtureID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_CreateNurtureValidation(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/users/u1/nurtures", map[string]any{
		"name": "Smaug", "type": "dragon",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_LogsAndAlerts(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/users/u1"

	resp, body := doJSON(t, http.MethodPost, base+"/nurtures", map[string]any{
		"name": "Planty", "type": "plant", "species": "pothos",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var n model.Nurture
	require.NoError(t, json.Unmarshal(body, &n))
	logsURL := base + "/nurtures/" + n.NurtureID + "/logs"

	// With no logs the alert list is empty, not an error.
	resp, body = doJSON(t, http.MethodGet, base+"/alerts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var alertsResp struct {
		Alerts []model.HealthAlert `json:"alerts"`
		Count  int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &alertsResp))
	assert.Zero(t, alertsResp.Count)

	resp, body = doJSON(t, http.MethodPost, logsURL, map[string]any{"rawText": "watered thoroughly"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var l model.ActivityLog
	require.NoError(t, json.Unmarshal(body, &l))
	require.NotNil(t, l.Action)
	assert.Equal(t, "watering", *l.Action)

	resp, body = doJSON(t, http.MethodGet, logsURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listResp struct {
		Logs  []model.ActivityLog `json:"logs"`
		Count int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &listResp))
	assert.Equal(t, 1, listResp.Count)

	resp, _ = doJSON(t, http.MethodGet, logsURL+"?since=not-a-time", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_AcknowledgeFlow(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/users/u1"

	resp, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/alerts/%s/ack", base, "some-alert-id"), map[string]any{
		"action": "dismissed",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/alerts/%s/ack", base, "some-alert-id"), map[string]any{
		"action": "shrugged",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]any
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health["status"])
}
