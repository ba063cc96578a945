package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bloomie/bloomie-care/internal/model"
)

func mkAlert(id string, class model.AlertClass, urgency model.Urgency) model.HealthAlert {
	return model.HealthAlert{AlertID: id, Type: class, Category: model.CategoryHealth, Title: id, Urgency: urgency}
}

func classes(alerts []model.HealthAlert) []model.AlertClass {
	out := make([]model.AlertClass, len(alerts))
	for i, a := range alerts {
		out[i] = a.Type
	}
	return out
}

func TestPrioritize(t *testing.T) {
	d := newTestDetector(nil)

	t.Run("urgent suppresses info entirely", func(t *testing.T) {
		in := []model.HealthAlert{
			mkAlert("u1", model.AlertUrgent, model.UrgencyHigh),
			mkAlert("w1", model.AlertWarning, model.UrgencyMedium),
			mkAlert("w2", model.AlertWarning, model.UrgencyMedium),
			mkAlert("w3", model.AlertWarning, model.UrgencyMedium),
			mkAlert("i1", model.AlertInfo, model.UrgencyLow),
			mkAlert("i2", model.AlertInfo, model.UrgencyLow),
		}
		got := d.Prioritize(in)
		assert.Equal(t, []model.AlertClass{model.AlertUrgent, model.AlertWarning, model.AlertWarning}, classes(got))
		for _, a := range got {
			assert.NotEqual(t, model.AlertInfo, a.Type)
		}
	})

	t.Run("warnings admit at most one info", func(t *testing.T) {
		in := []model.HealthAlert{
			mkAlert("w1", model.AlertWarning, model.UrgencyMedium),
			mkAlert("i1", model.AlertInfo, model.UrgencyLow),
			mkAlert("i2", model.AlertInfo, model.UrgencyLow),
		}
		got := d.Prioritize(in)
		assert.Equal(t, []model.AlertClass{model.AlertWarning, model.AlertInfo}, classes(got))
	})

	t.Run("info only capped at two", func(t *testing.T) {
		in := []model.HealthAlert{
			mkAlert("i1", model.AlertInfo, model.UrgencyLow),
			mkAlert("i2", model.AlertInfo, model.UrgencyLow),
			mkAlert("i3", model.AlertInfo, model.UrgencyLow),
		}
		got := d.Prioritize(in)
		assert.Len(t, got, 2)
	})

	t.Run("never more than three", func(t *testing.T) {
		var in []model.HealthAlert
		for _, id := range []string{"u1", "u2", "u3", "u4"} {
			in = append(in, mkAlert(id, model.AlertUrgent, model.UrgencyHigh))
		}
		in = append(in, mkAlert("w1", model.AlertWarning, model.UrgencyMedium))
		got := d.Prioritize(in)
		assert.Len(t, got, 3)
		for _, a := range got {
			assert.Equal(t, model.AlertUrgent, a.Type)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, d.Prioritize(nil))
	})
}

func TestSortAlerts(t *testing.T) {
	alerts := []model.HealthAlert{
		mkAlert("i1", model.AlertInfo, model.UrgencyLow),
		mkAlert("w-high", model.AlertWarning, model.UrgencyHigh),
		mkAlert("u1", model.AlertUrgent, model.UrgencyHigh),
		mkAlert("w-med", model.AlertWarning, model.UrgencyMedium),
	}
	SortAlerts(alerts)

	ids := []string{alerts[0].AlertID, alerts[1].AlertID, alerts[2].AlertID, alerts[3].AlertID}
	assert.Equal(t, []string{"u1", "w-high", "w-med", "i1"}, ids)
}
