// Package detector implements care-pattern anomaly detection over per-nurture
// activity logs: interval statistics, trend analysis, and alert synthesis with
// an advisor (LLM) primary path and a deterministic fallback.
package detector

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bloomie/bloomie-care/internal/model"
)

// Advisor synthesizes alerts from computed statistics via an external
// language model. Implementations must return an error for any transport
// failure or response that does not match the alert taxonomy; the detector
// then falls back to the deterministic generator.
type Advisor interface {
	Synthesize(ctx context.Context, req AdvisorRequest) ([]model.HealthAlert, error)
}

// NurtureSummary is the nurture context handed to the advisor.
type NurtureSummary struct {
	NurtureID string            `json:"nurtureId"`
	Name      string            `json:"name"`
	Type      model.NurtureType `json:"type"`
	Species   *string           `json:"species,omitempty"`
	AgeMonths *int              `json:"ageMonths,omitempty"`
}

// AdvisorRequest packages the detector's computed statistics plus a capped
// slice of raw recent logs as structured context for synthesis.
type AdvisorRequest struct {
	Nurture    NurtureSummary              `json:"nurture"`
	Intervals  IntervalStats               `json:"intervals"`
	ScoreTrend ScoreTrend                  `json:"scoreTrend"`
	MoodTrend  MoodTrend                   `json:"moodTrend"`
	FreqTrends map[Category]FrequencyTrend `json:"frequencyTrends,omitempty"`
	RecentLogs []*model.ActivityLog        `json:"recentLogs"`
	DetectedAt time.Time                   `json:"detectedAt"`
}

// Detector is a stateless per-nurture analysis engine. Analyze is a pure
// function of (nurture, logs, now); concurrent invocations share no state.
type Detector struct {
	adv Advisor
	th  Thresholds
	log zerolog.Logger
}

// New constructs a Detector. adv may be nil, in which case every run uses the
// deterministic generator.
func New(adv Advisor, th Thresholds, log zerolog.Logger) *Detector {
	return &Detector{adv: adv, th: th, log: log}
}

// Thresholds returns the active policy constants.
func (d *Detector) Thresholds() Thresholds { return d.th }

// Analyze produces the prioritized alert list for one nurture. Fewer than
// MinLogs logs yields an empty list; advisor failures fall back to the
// deterministic generator and are never surfaced as errors.
func (d *Detector) Analyze(ctx context.Context, n *model.Nurture, logs []*model.ActivityLog, now time.Time) []model.HealthAlert {
	if len(logs) < d.th.MinLogs {
		return nil
	}

	stats := BuildIntervalStats(logs, now, d.th.WindowDays)
	score := AnalyzeHealthScoreTrend(logs, now, d.th)
	mood := AnalyzeMoodTrend(logs, now, d.th)

	if d.adv != nil {
		req := AdvisorRequest{
			Nurture:    summarize(n, now),
			Intervals:  stats,
			ScoreTrend: score,
			MoodTrend:  mood,
			FreqTrends: AnalyzeFrequencyTrends(logs, now, d.th),
			RecentLogs: recentLogs(logs, d.th.RecentLogsForLLM),
			DetectedAt: now,
		}
		synthesized, err := d.adv.Synthesize(ctx, req)
		if err != nil {
			d.log.Warn().Err(err).Str("nurtureId", n.NurtureID).Msg("advisor synthesis failed; using fallback generator")
		} else {
			adopted := d.adoptAdvisorAlerts(n, synthesized, now)
			if len(synthesized) > 0 && len(adopted) == 0 {
				// Every entry violated the taxonomy: treat as a parse failure.
				d.log.Warn().Str("nurtureId", n.NurtureID).Msg("advisor response outside taxonomy; using fallback generator")
			} else {
				// An empty-but-valid advisor response stands; the fallback
				// runs only on failure, never for parity.
				return d.Prioritize(adopted)
			}
		}
	}

	return d.Prioritize(d.synthesizeFallback(n, logs, stats, score, mood, now))
}

// NurtureAlerts pairs a nurture with its analysis result.
type NurtureAlerts struct {
	NurtureID string
	Alerts    []model.HealthAlert
}

// AnalyzeAll runs Analyze for each nurture concurrently and returns the
// merged, globally sorted alert list. Per-nurture invocations are
// independent; merging happens only after all complete.
func (d *Detector) AnalyzeAll(ctx context.Context, nurtures []*model.Nurture, logsByNurture map[string][]*model.ActivityLog, now time.Time) []model.HealthAlert {
	results := make([][]model.HealthAlert, len(nurtures))
	var wg sync.WaitGroup
	for i, n := range nurtures {
		wg.Add(1)
		go func(i int, n *model.Nurture) {
			defer wg.Done()
			results[i] = d.Analyze(ctx, n, logsByNurture[n.NurtureID], now)
		}(i, n)
	}
	wg.Wait()

	var merged []model.HealthAlert
	for _, r := range results {
		merged = append(merged, r...)
	}
	SortAlerts(merged)
	return merged
}

// adoptAdvisorAlerts validates advisor output against the taxonomy, stamps
// nurture identity and detection time, and assigns recomputable identifiers.
// Entries outside the taxonomy are dropped; if nothing valid remains the
// caller falls back.
func (d *Detector) adoptAdvisorAlerts(n *model.Nurture, in []model.HealthAlert, now time.Time) []model.HealthAlert {
	var out []model.HealthAlert
	for _, a := range in {
		if !model.ValidAlertClass(a.Type) || !model.ValidAlertCategory(a.Category) || !model.ValidUrgency(a.Urgency) {
			d.log.Debug().Str("nurtureId", n.NurtureID).Str("title", a.Title).Msg("dropping advisor alert outside taxonomy")
			continue
		}
		a.NurtureID = n.NurtureID
		a.NurtureName = n.Name
		a.DetectedAt = now
		a.AlertID = AlertID(n.NurtureID, a.Category, a.Type, a.Title)
		out = append(out, a)
	}
	return out
}

// AlertID derives a stable identifier from an alert's identity so that a
// recomputed alert for the same condition carries the same ID across runs.
func AlertID(nurtureID string, category model.AlertCategory, class model.AlertClass, title string) string {
	name := fmt.Sprintf("%s/%s/%s/%s", nurtureID, category, class, title)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func (d *Detector) newAlert(n *model.Nurture, class model.AlertClass, category model.AlertCategory,
	title, message, details string, actions []string, urgency model.Urgency, now time.Time, data *model.AlertData) model.HealthAlert {
	return model.HealthAlert{
		AlertID:          AlertID(n.NurtureID, category, class, title),
		NurtureID:        n.NurtureID,
		NurtureName:      n.Name,
		Type:             class,
		Category:         category,
		Title:            title,
		Message:          message,
		Details:          details,
		SuggestedActions: actions,
		Urgency:          urgency,
		DetectedAt:       now,
		Data:             data,
	}
}

func summarize(n *model.Nurture, now time.Time) NurtureSummary {
	s := NurtureSummary{NurtureID: n.NurtureID, Name: n.Name, Type: n.Type, Species: n.Species}
	if n.BirthDate != nil {
		months := int(now.Sub(*n.BirthDate).Hours() / (hoursPerDay * 30))
		s.AgeMonths = &months
	}
	return s
}

func recentLogs(logs []*model.ActivityLog, limit int) []*model.ActivityLog {
	sorted := make([]*model.ActivityLog, len(logs))
	copy(sorted, logs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreationTime.After(sorted[j].CreationTime) })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
