// Package advisor implements the LLM-backed alert synthesis path against an
// OpenAI-compatible chat completions API.
package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/bloomie/bloomie-care/internal/apicache"
	"github.com/bloomie/bloomie-care/internal/detector"
	"github.com/bloomie/bloomie-care/internal/model"
)

const systemPrompt = `You are a care advisor for babies, pets, and plants. You receive computed care statistics (activity intervals, health-score trend, mood trend) plus recent activity logs for one tracked individual. Identify genuine care concerns and respond ONLY with a JSON object of the form {"alerts": [...]}. Each alert has: "type" (one of "urgent","warning","info"), "category" (one of "watering","feeding","health","schedule","veterinary","medical"), "title", "message", "details", "suggestedActions" (2-4 short strings), "urgency" (one of "low","medium","high"). Return {"alerts": []} when nothing warrants attention. Do not invent data not supported by the statistics.`

// Options configures the OpenAI-compatible client.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAI calls a chat-completions endpoint and parses the structured alert
// response. Identical requests within the cache TTL are served from cache, so
// repeated detector runs over unchanged logs cost one upstream call.
type OpenAI struct {
	client *resty.Client
	model  string
	cache  *apicache.Cache
	log    zerolog.Logger
}

var _ detector.Advisor = (*OpenAI)(nil)

// NewOpenAI builds the advisor client. cache may be nil to disable caching.
func NewOpenAI(opts Options, cache *apicache.Cache, log zerolog.Logger) *OpenAI {
	c := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+opts.APIKey).
		SetTimeout(opts.Timeout)

	return &OpenAI{client: c, model: opts.Model, cache: cache, log: log}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// alertEnvelope is the required response shape. Alerts is a pointer so a
// payload that omits the field entirely is distinguishable from {"alerts":[]}.
type alertEnvelope struct {
	Alerts *[]model.HealthAlert `json:"alerts"`
}

// Synthesize sends the computed statistics to the model and decodes its alert
// list. Any transport error, non-200 status, or unparseable payload is
// returned as an error so the caller can fall back.
func (o *OpenAI) Synthesize(ctx context.Context, req detector.AdvisorRequest) ([]model.HealthAlert, error) {
	userContent, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal advisor request: %w", err)
	}

	key := cacheKey(o.model, userContent)
	if o.cache != nil {
		if body, ok := o.cache.Get(key); ok {
			o.log.Debug().Str("nurtureId", req.Nurture.NurtureID).Msg("advisor cache hit")
			return parseAlerts(body)
		}
	}

	body := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(userContent)},
		},
		Temperature:    0.2,
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(&body).
		Post("/v1/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("advisor request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("advisor status %d: %s", resp.StatusCode(), resp.String())
	}

	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}

	content := []byte(stripFences(cr.Choices[0].Message.Content))
	alerts, err := parseAlerts(content)
	if err != nil {
		return nil, err
	}
	if o.cache != nil {
		o.cache.Set(key, content)
	}
	return alerts, nil
}

func parseAlerts(content []byte) ([]model.HealthAlert, error) {
	var env alertEnvelope
	if err := json.Unmarshal(content, &env); err != nil {
		return nil, fmt.Errorf("decode alerts payload: %w", err)
	}
	if env.Alerts == nil {
		return nil, fmt.Errorf("alerts payload missing \"alerts\" array")
	}
	return *env.Alerts, nil
}

// stripFences tolerates models that wrap JSON in a markdown code fence despite
// the JSON response format instruction.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// cacheKey hashes the model name plus the full request content, so any change
// in logs or statistics produces a fresh upstream call.
func cacheKey(model string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
