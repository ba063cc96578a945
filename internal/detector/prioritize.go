package detector

import (
	"sort"

	"github.com/bloomie/bloomie-care/internal/model"
)

// Prioritize reduces an alert set to the bounded list shown for one nurture:
// all urgent alerts plus at most two warnings; with no urgent alerts, at most
// two warnings plus one info; otherwise at most two info alerts. The result
// never exceeds MaxAlerts.
func (d *Detector) Prioritize(alerts []model.HealthAlert) []model.HealthAlert {
	var urgent, warning, info []model.HealthAlert
	for _, a := range alerts {
		switch a.Type {
		case model.AlertUrgent:
			urgent = append(urgent, a)
		case model.AlertWarning:
			warning = append(warning, a)
		default:
			info = append(info, a)
		}
	}

	var out []model.HealthAlert
	switch {
	case len(urgent) > 0:
		out = append(out, urgent...)
		out = append(out, capped(warning, d.th.MaxWarnings)...)
	case len(warning) > 0:
		out = append(out, capped(warning, d.th.MaxWarnings)...)
		out = append(out, capped(info, d.th.MaxInfoWithWarning)...)
	default:
		out = append(out, capped(info, d.th.MaxInfoOnly)...)
	}

	return capped(out, d.th.MaxAlerts)
}

func capped(alerts []model.HealthAlert, n int) []model.HealthAlert {
	if len(alerts) > n {
		return alerts[:n]
	}
	return alerts
}

// SortAlerts orders a merged alert list for display: urgent before warning
// before info, ties broken by urgency. The sort is stable so per-nurture
// ordering is preserved among equals.
func SortAlerts(alerts []model.HealthAlert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		ci, cj := model.ClassRank(alerts[i].Type), model.ClassRank(alerts[j].Type)
		if ci != cj {
			return ci < cj
		}
		return model.UrgencyRank(alerts[i].Urgency) < model.UrgencyRank(alerts[j].Urgency)
	})
}
