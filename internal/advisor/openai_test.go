package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloomie/bloomie-care/internal/apicache"
	"github.com/bloomie/bloomie-care/internal/detector"
	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/platform/logger"
)

func chatBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func testRequest() detector.AdvisorRequest {
	return detector.AdvisorRequest{
		Nurture:    detector.NurtureSummary{NurtureID: "n1", Name: "Planty", Type: model.NurturePlant},
		DetectedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestAdvisor(t *testing.T, handler http.HandlerFunc, cache *apicache.Cache) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAI(Options{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		Timeout: 2 * time.Second,
	}, cache, logger.New("advisor-test"))
}

func TestSynthesize_ParsesAlerts(t *testing.T) {
	var gotAuth string
	adv := newTestAdvisor(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])

		fmt.Fprint(w, chatBody(`{"alerts":[{"type":"warning","category":"watering","title":"Needs water","message":"Planty is thirsty.","urgency":"medium","suggestedActions":["Water it"]}]}`))
	}, nil)

	alerts, err := adv.Synthesize(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertWarning, alerts[0].Type)
	assert.Equal(t, model.CategoryWatering, alerts[0].Category)
	assert.Equal(t, "Needs water", alerts[0].Title)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestSynthesize_EmptyAlertsIsValid(t *testing.T) {
	adv := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chatBody(`{"alerts":[]}`))
	}, nil)

	alerts, err := adv.Synthesize(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestSynthesize_MissingAlertsFieldIsAnError(t *testing.T) {
	// A well-formed JSON object that never mentions alerts must not pass as
	// an empty verdict; the caller needs an error to trigger its fallback.
	adv := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chatBody(`{"status":"all good","note":"nothing to report"}`))
	}, nil)

	_, err := adv.Synthesize(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alerts")
}

func TestSynthesize_NullAlertsFieldIsAnError(t *testing.T) {
	adv := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chatBody(`{"alerts":null}`))
	}, nil)

	_, err := adv.Synthesize(context.Background(), testRequest())
	require.Error(t, err)
}

func TestSynthesize_StripsCodeFences(t *testing.T) {
	adv := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		fenced := "```json\n{\"alerts\":[{\"type\":\"info\",\"category\":\"schedule\",\"title\":\"t\",\"message\":\"m\",\"urgency\":\"low\"}]}\n```"
		fmt.Fprint(w, chatBody(fenced))
	}, nil)

	alerts, err := adv.Synthesize(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertInfo, alerts[0].Type)
}

func TestSynthesize_UpstreamErrorStatus(t *testing.T) {
	adv := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}, nil)

	_, err := adv.Synthesize(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSynthesize_MalformedContent(t *testing.T) {
	adv := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chatBody("I think the plant looks fine!"))
	}, nil)

	_, err := adv.Synthesize(context.Background(), testRequest())
	require.Error(t, err)
}

func TestSynthesize_CachesByRequestContent(t *testing.T) {
	var calls int
	adv := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		fmt.Fprint(w, chatBody(`{"alerts":[]}`))
	}, apicache.New(time.Minute))

	req := testRequest()
	_, err := adv.Synthesize(context.Background(), req)
	require.NoError(t, err)
	_, err = adv.Synthesize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "identical request within TTL must be served from cache")

	// A different request misses the cache.
	other := req
	other.Nurture.NurtureID = "n2"
	_, err = adv.Synthesize(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSynthesize_ErrorsAreNotCached(t *testing.T) {
	var calls int
	adv := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, chatBody(`{"alerts":[]}`))
	}, apicache.New(time.Minute))

	req := testRequest()
	_, err := adv.Synthesize(context.Background(), req)
	require.Error(t, err)

	_, err = adv.Synthesize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
