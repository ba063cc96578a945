package detector

import (
	"sort"
	"time"

	"github.com/bloomie/bloomie-care/internal/model"
)

// TrendDirection classifies the movement of the numeric health score.
type TrendDirection string

const (
	TrendImproving    TrendDirection = "improving"
	TrendDeclining    TrendDirection = "declining"
	TrendStable       TrendDirection = "stable"
	TrendInsufficient TrendDirection = "insufficient_data"
)

// ScoreTrend is the health-score trend over the analysis window.
type ScoreTrend struct {
	CurrentScore float64        `json:"currentScore"`
	SampleCount  int            `json:"sampleCount"`
	Trend        TrendDirection `json:"trend"`
}

// MoodTrendState classifies the recent mood pattern.
type MoodTrendState string

const (
	MoodConcerning   MoodTrendState = "concerning"
	MoodNormal       MoodTrendState = "normal"
	MoodInsufficient MoodTrendState = "insufficient_data"
)

// MoodTrend is the categorical mood trend over the analysis window.
type MoodTrend struct {
	DominantMood string         `json:"dominantMood,omitempty"`
	RecentTrend  MoodTrendState `json:"recentTrend"`
	Distribution map[string]int `json:"distribution,omitempty"`
}

// FrequencyTrend classifies change in per-category activity frequency.
type FrequencyTrend string

const (
	FreqIncreasing   FrequencyTrend = "increasing"
	FreqDecreasing   FrequencyTrend = "decreasing"
	FreqStable       FrequencyTrend = "stable"
	FreqInsufficient FrequencyTrend = "insufficient_data"
)

// negativeMoods is the fixed set whose dominance marks a concerning stretch.
var negativeMoods = map[string]bool{
	model.MoodSad:   true,
	model.MoodTired: true,
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// AnalyzeHealthScoreTrend compares the mean of the most recent scored entries
// against the mean of the entries preceding them. Fewer than three scored
// logs yields an insufficient-data trend whose current score is the plain
// mean of whatever scores exist.
func AnalyzeHealthScoreTrend(logs []*model.ActivityLog, now time.Time, th Thresholds) ScoreTrend {
	cutoff := now.AddDate(0, 0, -th.WindowDays)

	type scored struct {
		t time.Time
		v float64
	}
	var series []scored
	for _, l := range logs {
		if l.HealthScore == nil || l.CreationTime.Before(cutoff) {
			continue
		}
		series = append(series, scored{t: l.CreationTime, v: *l.HealthScore})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].t.Before(series[j].t) })

	scores := make([]float64, len(series))
	for i, s := range series {
		scores[i] = s.v
	}

	if len(scores) < 3 {
		return ScoreTrend{CurrentScore: mean(scores), SampleCount: len(scores), Trend: TrendInsufficient}
	}

	w := th.TrendWindow
	recentStart := len(scores) - w
	if recentStart < 0 {
		recentStart = 0
	}
	recent := scores[recentStart:]

	olderStart := recentStart - w
	if olderStart < 0 {
		olderStart = 0
	}
	older := scores[olderStart:recentStart]

	out := ScoreTrend{CurrentScore: mean(recent), SampleCount: len(scores), Trend: TrendStable}
	if len(older) == 0 {
		return out
	}
	delta := mean(recent) - mean(older)
	switch {
	case delta > th.ScoreDelta:
		out.Trend = TrendImproving
	case delta < -th.ScoreDelta:
		out.Trend = TrendDeclining
	}
	return out
}

// AnalyzeMoodTrend computes the mood distribution and judges the most recent
// moods. More than MoodNegativeLimit negatives among the last
// MoodRecentWindow moods is concerning.
func AnalyzeMoodTrend(logs []*model.ActivityLog, now time.Time, th Thresholds) MoodTrend {
	cutoff := now.AddDate(0, 0, -th.WindowDays)

	type dated struct {
		t time.Time
		m string
	}
	var series []dated
	for _, l := range logs {
		if l.Mood == nil || *l.Mood == "" || l.CreationTime.Before(cutoff) {
			continue
		}
		series = append(series, dated{t: l.CreationTime, m: *l.Mood})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].t.Before(series[j].t) })

	out := MoodTrend{RecentTrend: MoodInsufficient}
	if len(series) == 0 {
		return out
	}

	dist := make(map[string]int, len(series))
	for _, s := range series {
		dist[s.m]++
	}
	out.Distribution = dist

	best, bestN := "", -1
	for _, s := range series {
		if n := dist[s.m]; n > bestN {
			best, bestN = s.m, n
		}
	}
	out.DominantMood = best

	if len(series) < 3 {
		return out
	}

	start := len(series) - th.MoodRecentWindow
	if start < 0 {
		start = 0
	}
	negatives := 0
	for _, s := range series[start:] {
		if negativeMoods[s.m] {
			negatives++
		}
	}
	if negatives > th.MoodNegativeLimit {
		out.RecentTrend = MoodConcerning
	} else {
		out.RecentTrend = MoodNormal
	}
	return out
}

// AnalyzeFrequencyTrends computes the frequency trend for every action
// category seen in the trailing window.
func AnalyzeFrequencyTrends(logs []*model.ActivityLog, now time.Time, th Thresholds) map[Category]FrequencyTrend {
	cutoff := now.AddDate(0, 0, -th.WindowDays)

	byCat := make(map[Category][]time.Time)
	for _, l := range logs {
		if l.CreationTime.Before(cutoff) {
			continue
		}
		cat := Categorize(l)
		byCat[cat] = append(byCat[cat], l.CreationTime)
	}

	out := make(map[Category]FrequencyTrend, len(byCat))
	for cat, ts := range byCat {
		out[cat] = AnalyzeActivityFrequency(ts, th)
	}
	return out
}

// AnalyzeActivityFrequency compares the events-per-day rate of the last seven
// timestamps in a category against the rate of up to seven prior timestamps.
func AnalyzeActivityFrequency(timestamps []time.Time, th Thresholds) FrequencyTrend {
	if len(timestamps) < 4 {
		return FreqInsufficient
	}
	ts := make([]time.Time, len(timestamps))
	copy(ts, timestamps)
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })

	recentStart := len(ts) - th.TrendWindow
	if recentStart < 0 {
		recentStart = 0
	}
	recent := ts[recentStart:]

	olderStart := recentStart - th.TrendWindow
	if olderStart < 0 {
		olderStart = 0
	}
	older := ts[olderStart:recentStart]

	if len(recent) < 2 || len(older) < 2 {
		return FreqStable
	}

	recentRate := eventsPerDay(recent)
	olderRate := eventsPerDay(older)
	if olderRate == 0 {
		return FreqStable
	}

	ratio := recentRate / olderRate
	switch {
	case ratio > th.FreqIncreaseRatio:
		return FreqIncreasing
	case ratio < th.FreqDecreaseRatio:
		return FreqDecreasing
	default:
		return FreqStable
	}
}

func eventsPerDay(ts []time.Time) float64 {
	span := ts[len(ts)-1].Sub(ts[0]).Hours() / hoursPerDay
	if span <= 0 {
		return 0
	}
	return float64(len(ts)) / span
}
