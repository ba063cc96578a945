package detector

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bloomie/bloomie-care/internal/carekb"
	"github.com/bloomie/bloomie-care/internal/model"
)

type symptomTier struct {
	class    model.AlertClass
	urgency  model.Urgency
	keywords []string
}

// Symptom keyword tiers. Scan order is urgent, warning, info; the first
// keyword matched in a log's notes stops that log's scan.
var symptomTiers = []symptomTier{
	{model.AlertUrgent, model.UrgencyHigh,
		[]string{"vomiting", "diarrhea", "fever", "bleeding", "seizure", "unconscious", "choking"}},
	{model.AlertWarning, model.UrgencyMedium,
		[]string{"lethargy", "not eating", "not drinking", "crying", "whining", "limping", "rash"}},
	{model.AlertInfo, model.UrgencyLow,
		[]string{"unusual", "different", "change", "concern"}},
}

// synthesizeFallback reproduces the alert policy deterministically when the
// advisor path is unavailable or fails.
func (d *Detector) synthesizeFallback(n *model.Nurture, logs []*model.ActivityLog, stats IntervalStats, score ScoreTrend, mood MoodTrend, now time.Time) []model.HealthAlert {
	var alerts []model.HealthAlert

	if a := d.healthScoreRule(n, score, now); a != nil {
		alerts = append(alerts, *a)
	}
	if a := d.moodRule(n, mood, now); a != nil {
		alerts = append(alerts, *a)
	}
	switch n.Type {
	case model.NurturePlant:
		if a := d.wateringRule(n, stats, now); a != nil {
			alerts = append(alerts, *a)
		}
	case model.NurturePet, model.NurtureBaby:
		if a := d.feedingRule(n, stats, now); a != nil {
			alerts = append(alerts, *a)
		}
	}
	if n.Type == model.NurturePet {
		if a := d.walkRule(n, stats, now); a != nil {
			alerts = append(alerts, *a)
		}
	}
	alerts = append(alerts, d.symptomRule(n, logs, now)...)

	return dedupeByID(alerts)
}

func (d *Detector) healthScoreRule(n *model.Nurture, score ScoreTrend, now time.Time) *model.HealthAlert {
	if score.Trend != TrendDeclining || score.CurrentScore >= d.th.LowScore {
		return nil
	}
	class, urgency := model.AlertWarning, model.UrgencyMedium
	if score.CurrentScore < d.th.CriticalScore {
		class, urgency = model.AlertUrgent, model.UrgencyHigh
	}
	trend := string(TrendDeclining)
	cur := score.CurrentScore
	a := d.newAlert(n, class, model.CategoryHealth, "Health score declining",
		fmt.Sprintf("Recent health scores for %s are trending down.", n.Name),
		fmt.Sprintf("Average health score dropped to %.1f over the recent entries (alert threshold %.1f).", score.CurrentScore, d.th.LowScore),
		[]string{
			"Observe closely for other symptoms",
			"Review recent changes in routine or environment",
			"Consult a professional if the decline continues",
		},
		urgency, now,
		&model.AlertData{HealthScore: &cur, Trend: &trend})
	return &a
}

func (d *Detector) moodRule(n *model.Nurture, mood MoodTrend, now time.Time) *model.HealthAlert {
	if mood.RecentTrend != MoodConcerning {
		return nil
	}
	dominant := mood.DominantMood
	a := d.newAlert(n, model.AlertWarning, model.CategoryHealth, "Mood needs attention",
		fmt.Sprintf("%s has seemed sad or tired lately.", n.Name),
		fmt.Sprintf("Most of the recent mood entries were negative; dominant mood is %q.", mood.DominantMood),
		[]string{
			"Spend extra one-on-one time together",
			"Check for discomfort or stress",
			"Track mood closely over the next few days",
		},
		model.UrgencyMedium, now,
		&model.AlertData{DominantMood: &dominant})
	return &a
}

func (d *Detector) wateringRule(n *model.Nurture, stats IntervalStats, now time.Time) *model.HealthAlert {
	st, ok := stats[CatWatering]
	if !ok {
		return nil
	}
	expected := carekb.WateringIntervalDays(n.Species)
	actual := st.DaysSinceLast
	last := st.LastSeen

	if actual > d.th.OverdueRatio*expected {
		class, urgency := model.AlertWarning, model.UrgencyMedium
		if actual > d.th.WateringUrgentRatio*expected {
			class, urgency = model.AlertUrgent, model.UrgencyHigh
		}
		a := d.newAlert(n, class, model.CategoryWatering, "Watering overdue",
			fmt.Sprintf("%s may need water.", n.Name),
			fmt.Sprintf("Expected watering every %.0f days; last watered %d days ago.", expected, st.DaysSinceLastFloor()),
			[]string{
				"Check soil moisture",
				"Water thoroughly if the soil is dry",
				"Adjust the watering schedule if this keeps happening",
			},
			urgency, now,
			&model.AlertData{ExpectedInterval: &expected, ActualInterval: &actual, LastActivity: &last})
		return &a
	}

	remaining := expected - actual
	if actual < d.th.PredictiveRatio*expected && remaining <= d.th.PredictiveDueDays {
		nextDue := last.Add(time.Duration(expected * float64(24*time.Hour)))
		a := d.newAlert(n, model.AlertInfo, model.CategoryWatering, "Watering due soon",
			fmt.Sprintf("%s will need water in about %.0f day(s).", n.Name, remaining),
			fmt.Sprintf("Based on an expected interval of %.0f days, the next watering is due in %.0f day(s).", expected, remaining),
			[]string{
				"Plan the next watering",
				"Check soil moisture before watering",
			},
			model.UrgencyLow, now,
			&model.AlertData{ExpectedInterval: &expected, ActualInterval: &actual, NextDue: &nextDue})
		return &a
	}
	return nil
}

func (d *Detector) feedingRule(n *model.Nurture, stats IntervalStats, now time.Time) *model.HealthAlert {
	st, ok := stats[CatFeeding]
	if !ok {
		return nil
	}
	expectedHours := carekb.FeedingIntervalHours(n.Type == model.NurtureBaby, n.Species)
	actualHours := st.DaysSinceLast * hoursPerDay
	if actualHours <= d.th.OverdueRatio*expectedHours {
		return nil
	}

	class, urgency := model.AlertWarning, model.UrgencyMedium
	if actualHours > d.th.FeedingUrgentRatio*expectedHours {
		class, urgency = model.AlertUrgent, model.UrgencyHigh
	}
	last := st.LastSeen
	a := d.newAlert(n, class, model.CategoryFeeding, "Feeding overdue",
		fmt.Sprintf("%s hasn't been fed in a while.", n.Name),
		fmt.Sprintf("Expected feeding every %.0f hours; last fed %.0f hours ago.", expectedHours, actualHours),
		[]string{
			"Offer food now",
			"Keep feeding times consistent",
			"Watch appetite at the next meal",
		},
		urgency, now,
		&model.AlertData{ExpectedInterval: &expectedHours, ActualInterval: &actualHours, LastActivity: &last})
	return &a
}

func (d *Detector) walkRule(n *model.Nurture, stats IntervalStats, now time.Time) *model.HealthAlert {
	expected, ok := carekb.WalkIntervalDays(n.Species)
	if !ok || expected >= 2 {
		// Walks only alert for species walked roughly daily.
		return nil
	}
	st, have := stats[CatWalk]
	if !have {
		return nil
	}
	actual := st.DaysSinceLast
	if actual <= d.th.WalkFireRatio*expected {
		return nil
	}

	class, urgency := model.AlertInfo, model.UrgencyLow
	if actual > d.th.WalkWarnRatio*expected {
		class, urgency = model.AlertWarning, model.UrgencyMedium
	}
	last := st.LastSeen
	a := d.newAlert(n, class, model.CategorySchedule, "Walk overdue",
		fmt.Sprintf("%s is due for a walk.", n.Name),
		fmt.Sprintf("Expected a walk about every %.0f day(s); last walk was %d days ago.", expected, st.DaysSinceLastFloor()),
		[]string{
			"Take a walk today",
			"Keep a regular exercise routine",
		},
		urgency, now,
		&model.AlertData{ExpectedInterval: &expected, ActualInterval: &actual, LastActivity: &last})
	return &a
}

func (d *Detector) symptomRule(n *model.Nurture, logs []*model.ActivityLog, now time.Time) []model.HealthAlert {
	category := model.CategoryHealth
	if n.Type == model.NurtureBaby {
		category = model.CategoryMedical
	}

	var noted []*model.ActivityLog
	for _, l := range logs {
		if l.Notes != nil && *l.Notes != "" {
			noted = append(noted, l)
		}
	}
	sort.Slice(noted, func(i, j int) bool { return noted[i].CreationTime.After(noted[j].CreationTime) })
	if len(noted) > d.th.SymptomNoteScan {
		noted = noted[:d.th.SymptomNoteScan]
	}

	var alerts []model.HealthAlert
	for _, l := range noted {
		if kw, tier, found := matchSymptom(*l.Notes); found {
			keyword := kw
			alerts = append(alerts, d.newAlert(n, tier.class, category,
				fmt.Sprintf("Symptom noted: %s", kw),
				fmt.Sprintf("A recent note for %s mentions %q.", n.Name, kw),
				fmt.Sprintf("Logged %s: %q.", l.CreationTime.Format("Jan 2"), *l.Notes),
				symptomActions(tier.class, n.Type),
				tier.urgency, now,
				&model.AlertData{Keyword: &keyword}))
		}
	}
	return alerts
}

// matchSymptom returns the first keyword found in the note, scanning tiers in
// severity order. A single note yields at most one match.
func matchSymptom(note string) (string, symptomTier, bool) {
	lower := strings.ToLower(note)
	for _, tier := range symptomTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(lower, kw) {
				return kw, tier, true
			}
		}
	}
	return "", symptomTier{}, false
}

func symptomActions(class model.AlertClass, t model.NurtureType) []string {
	professional := "veterinarian"
	if t == model.NurtureBaby {
		professional = "pediatrician"
	}
	switch class {
	case model.AlertUrgent:
		return []string{
			fmt.Sprintf("Contact your %s promptly", professional),
			"Do not wait for symptoms to worsen",
			"Note when the symptom started",
		}
	case model.AlertWarning:
		return []string{
			"Monitor closely over the next 24 hours",
			fmt.Sprintf("Ask your %s if it persists", professional),
		}
	default:
		return []string{
			"Keep notes on any further changes",
			"Mention it at the next checkup",
		}
	}
}

func dedupeByID(alerts []model.HealthAlert) []model.HealthAlert {
	seen := make(map[string]bool, len(alerts))
	out := alerts[:0]
	for _, a := range alerts {
		if seen[a.AlertID] {
			continue
		}
		seen[a.AlertID] = true
		out = append(out, a)
	}
	return out
}
