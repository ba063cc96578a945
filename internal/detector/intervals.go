package detector

import (
	"math"
	"sort"
	"time"

	"github.com/bloomie/bloomie-care/internal/model"
)

const hoursPerDay = 24.0

// IntervalStat holds per-category interval statistics for one nurture.
type IntervalStat struct {
	Count            int       `json:"count"`
	MeanIntervalDays float64   `json:"meanIntervalDays,omitempty"`
	HasMean          bool      `json:"hasMean"`
	DaysSinceLast    float64   `json:"daysSinceLast"`
	LastSeen         time.Time `json:"lastSeen"`
}

// DaysSinceLastFloor returns whole days since the last occurrence, for display.
// Comparisons use the fractional DaysSinceLast.
func (s IntervalStat) DaysSinceLastFloor() int {
	return int(math.Floor(s.DaysSinceLast))
}

// IntervalStats maps action categories to their interval statistics.
type IntervalStats map[Category]IntervalStat

// BuildIntervalStats groups a nurture's logs from the trailing window by
// normalized action category and computes, per category, the arithmetic mean
// of consecutive gaps (categories with at least two occurrences) and the time
// since the most recent occurrence. The input order of logs does not affect
// the result.
func BuildIntervalStats(logs []*model.ActivityLog, now time.Time, windowDays int) IntervalStats {
	cutoff := now.AddDate(0, 0, -windowDays)

	byCat := make(map[Category][]time.Time)
	for _, l := range logs {
		if l.CreationTime.Before(cutoff) {
			continue
		}
		cat := Categorize(l)
		byCat[cat] = append(byCat[cat], l.CreationTime)
	}

	stats := make(IntervalStats, len(byCat))
	for cat, ts := range byCat {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })

		st := IntervalStat{Count: len(ts)}
		last := ts[len(ts)-1]
		st.LastSeen = last
		st.DaysSinceLast = now.Sub(last).Hours() / hoursPerDay

		if len(ts) >= 2 {
			var totalDays float64
			for i := 1; i < len(ts); i++ {
				totalDays += ts[i].Sub(ts[i-1]).Hours() / hoursPerDay
			}
			st.MeanIntervalDays = totalDays / float64(len(ts)-1)
			st.HasMean = true
		}
		stats[cat] = st
	}
	return stats
}
