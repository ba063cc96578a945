package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloomie/bloomie-care/internal/detector"
	"github.com/bloomie/bloomie-care/internal/events"
	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/platform/logger"
)

const (
	testAckWindow  = 7 * 24 * time.Hour
	testWindowDays = 30
)

func newAlertFixture(t *testing.T) (*fakeStore, *AlertService, *events.Bus, time.Time) {
	t.Helper()
	fs := newFakeStore()
	bus := events.NewBus(16)
	det := detector.New(nil, detector.DefaultThresholds(), logger.New("test"))
	svc := NewAlertService(fs, det, bus, testAckWindow, testWindowDays, logger.New("test"))

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time { return now }
	return fs, svc, bus, now
}

// seedOverduePlant stores a pothos whose last watering is far enough in the
// past that the fallback flags it urgent.
func seedOverduePlant(t *testing.T, fs *fakeStore, now time.Time) *model.Nurture {
	t.Helper()
	species := "pothos"
	n, err := fs.Nurtures().Create(context.Background(), &model.Nurture{OwnerID: "u1", Name: "Planty", Type: model.NurturePlant, Species: &species})
	require.NoError(t, err)
	for _, daysAgo := range []float64{29, 22, 15} {
		_, err := fs.Logs().Create(context.Background(), &model.ActivityLog{
			NurtureID:    n.NurtureID,
			RawText:      "watered",
			CreationTime: now.Add(-time.Duration(daysAgo * float64(24*time.Hour))),
		})
		require.NoError(t, err)
	}
	return n
}

func TestAlertService_ListAlerts(t *testing.T) {
	fs, svc, bus, now := newAlertFixture(t)
	n := seedOverduePlant(t, fs, now)

	alerts, err := svc.ListAlerts(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertUrgent, alerts[0].Type)
	assert.Equal(t, model.CategoryWatering, alerts[0].Category)
	assert.Equal(t, n.NurtureID, alerts[0].NurtureID)

	select {
	case evt := <-bus.Subscribe():
		assert.Equal(t, events.EventAlertGenerated, evt.Kind)
		assert.Equal(t, n.NurtureID, evt.NurtureID)
		assert.Equal(t, 1, evt.Count)
	default:
		t.Fatalf("expected an alert_generated event")
	}
}

func TestAlertService_AcknowledgementSuppression(t *testing.T) {
	fs, svc, _, now := newAlertFixture(t)
	seedOverduePlant(t, fs, now)
	ctx := context.Background()

	alerts, err := svc.ListAlerts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	alertID := alerts[0].AlertID

	require.NoError(t, svc.Acknowledge(ctx, "u1", alertID, model.AckDismissed))

	// Recomputation yields the same identifier, so the ack suppresses it.
	again, err := svc.ListAlerts(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestAlertService_StaleAcknowledgementDoesNotSuppress(t *testing.T) {
	fs, svc, _, now := newAlertFixture(t)
	seedOverduePlant(t, fs, now)
	ctx := context.Background()

	alerts, err := svc.ListAlerts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	// An acknowledgement just past the 7-day window is inactive.
	fs.acks = append(fs.acks, &model.Acknowledgement{
		AlertID:      alerts[0].AlertID,
		OwnerID:      "u1",
		Action:       model.AckDismissed,
		CreationTime: now.Add(-testAckWindow - time.Hour),
	})

	again, err := svc.ListAlerts(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestAlertService_AcknowledgeValidation(t *testing.T) {
	_, svc, _, _ := newAlertFixture(t)
	ctx := context.Background()

	err := svc.Acknowledge(ctx, "u1", "", model.AckDismissed)
	assert.True(t, model.IsValidationError(err))

	err = svc.Acknowledge(ctx, "u1", "a1", "shrugged")
	assert.True(t, model.IsValidationError(err))
}

func TestAlertService_AcknowledgeSwallowsStoreFailure(t *testing.T) {
	fs, svc, bus, _ := newAlertFixture(t)
	fs.ackAppendErr = errStoreDown

	err := svc.Acknowledge(context.Background(), "u1", "a1", model.AckResolved)
	assert.NoError(t, err, "acknowledgement store failures are logged and swallowed")

	select {
	case <-bus.Subscribe():
		t.Fatalf("no event should be published for a failed acknowledgement")
	default:
	}
}

func TestAlertService_AckReadFailureLeavesAlertsUnfiltered(t *testing.T) {
	fs, svc, _, now := newAlertFixture(t)
	seedOverduePlant(t, fs, now)
	fs.ackReadErr = errStoreDown

	alerts, err := svc.ListAlerts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestAlertService_NurtureAlerts(t *testing.T) {
	fs, svc, _, now := newAlertFixture(t)
	n := seedOverduePlant(t, fs, now)
	ctx := context.Background()

	alerts, err := svc.NurtureAlerts(ctx, "u1", n.NurtureID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	_, err = svc.NurtureAlerts(ctx, "u1", "ghost")
	assert.True(t, model.IsNotFoundError(err))
}

func TestAlertService_FewLogsMeansNoAlerts(t *testing.T) {
	fs, svc, _, now := newAlertFixture(t)
	species := "pothos"
	n, err := fs.Nurtures().Create(context.Background(), &model.Nurture{OwnerID: "u1", Name: "Sprout", Type: model.NurturePlant, Species: &species})
	require.NoError(t, err)
	_, err = fs.Logs().Create(context.Background(), &model.ActivityLog{NurtureID: n.NurtureID, RawText: "watered", CreationTime: now.Add(-48 * time.Hour)})
	require.NoError(t, err)

	alerts, err := svc.ListAlerts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlertService_SupersededRunSkipsEvents(t *testing.T) {
	fs, svc, bus, now := newAlertFixture(t)
	n := seedOverduePlant(t, fs, now)

	// Simulate an older in-flight run completing after a newer one started.
	oldSeq := svc.beginRun("u1")
	_ = svc.beginRun("u1")
	assert.False(t, svc.isLatestRun("u1", oldSeq))

	alerts := []model.HealthAlert{{AlertID: "a1", NurtureID: n.NurtureID, Type: model.AlertUrgent}}
	if svc.isLatestRun("u1", oldSeq) {
		svc.publishGenerated("u1", alerts)
	}

	select {
	case <-bus.Subscribe():
		t.Fatalf("superseded run must not publish events")
	default:
	}
}
