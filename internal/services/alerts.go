package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bloomie/bloomie-care/internal/detector"
	"github.com/bloomie/bloomie-care/internal/events"
	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/store"
)

// AlertService runs the detector over stored logs and applies the
// consumption-layer concerns the detector itself stays free of:
// acknowledgement suppression, event publication, and a completion-order
// guard for overlapping runs.
type AlertService struct {
	store      store.Store
	det        *detector.Detector
	bus        *events.Bus
	ackWindow  time.Duration
	windowDays int
	log        zerolog.Logger

	mu      sync.Mutex
	runSeq  map[string]uint64 // ownerID -> latest started run
	nowFunc func() time.Time
}

func NewAlertService(s store.Store, det *detector.Detector, bus *events.Bus, ackWindow time.Duration, windowDays int, log zerolog.Logger) *AlertService {
	return &AlertService{
		store:      s,
		det:        det,
		bus:        bus,
		ackWindow:  ackWindow,
		windowDays: windowDays,
		log:        log,
		runSeq:     make(map[string]uint64),
		nowFunc:    time.Now,
	}
}

// ListAlerts recomputes alerts for all of the owner's nurtures, suppresses
// actively-acknowledged identifiers, and returns the merged, globally sorted
// list. Alerts are never read from storage; every call is a fresh synthesis.
func (s *AlertService) ListAlerts(ctx context.Context, ownerID string) ([]model.HealthAlert, error) {
	now := s.nowFunc().UTC()
	seq := s.beginRun(ownerID)

	nurtures, err := s.store.Nurtures().List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	since := now.AddDate(0, 0, -s.windowDays)
	logsByNurture := make(map[string][]*model.ActivityLog, len(nurtures))
	for _, n := range nurtures {
		logs, err := s.store.Logs().List(ctx, model.ListLogsRequest{NurtureID: n.NurtureID, Since: &since})
		if err != nil {
			return nil, err
		}
		logsByNurture[n.NurtureID] = logs
	}

	alerts := s.det.AnalyzeAll(ctx, nurtures, logsByNurture, now)
	alerts = s.suppressAcknowledged(ctx, ownerID, alerts, now)

	// A run that was superseded while computing still answers its own caller,
	// but must not publish events on top of a newer run's.
	if s.isLatestRun(ownerID, seq) && len(alerts) > 0 {
		s.publishGenerated(ownerID, alerts)
	}
	return alerts, nil
}

// NurtureAlerts recomputes alerts for a single nurture.
func (s *AlertService) NurtureAlerts(ctx context.Context, ownerID, nurtureID string) ([]model.HealthAlert, error) {
	now := s.nowFunc().UTC()

	n, err := s.store.Nurtures().Get(ctx, ownerID, nurtureID)
	if err != nil {
		return nil, err
	}
	since := now.AddDate(0, 0, -s.windowDays)
	logs, err := s.store.Logs().List(ctx, model.ListLogsRequest{NurtureID: nurtureID, Since: &since})
	if err != nil {
		return nil, err
	}

	alerts := s.det.Analyze(ctx, n, logs, now)
	return s.suppressAcknowledged(ctx, ownerID, alerts, now), nil
}

// Acknowledge appends an acknowledgement record. Store failures are logged
// and swallowed: a lost acknowledgement only means the alert may reappear on
// the next run.
func (s *AlertService) Acknowledge(ctx context.Context, ownerID, alertID string, action model.AckAction) error {
	if alertID == "" {
		return model.NewValidationError("alertId", "alert id is required")
	}
	if !model.ValidAckAction(action) {
		return model.NewValidationError("action", "action must be dismissed, resolved, or action_taken")
	}

	ack := &model.Acknowledgement{AlertID: alertID, OwnerID: ownerID, Action: action, CreationTime: s.nowFunc().UTC()}
	if _, err := s.store.Acks().Append(ctx, ack); err != nil {
		s.log.Error().Err(err).Str("alertId", alertID).Msg("acknowledgement write failed; alert may reappear next run")
		return nil
	}

	id := alertID
	s.bus.Publish(events.Event{Kind: events.EventAckRecorded, OwnerID: ownerID, AlertID: &id})
	return nil
}

// suppressAcknowledged drops alerts whose identifier was acknowledged within
// the validity window. Read failures leave the list unfiltered rather than
// failing the run.
func (s *AlertService) suppressAcknowledged(ctx context.Context, ownerID string, alerts []model.HealthAlert, now time.Time) []model.HealthAlert {
	if len(alerts) == 0 {
		return alerts
	}
	acked, err := s.store.Acks().ActiveIDs(ctx, ownerID, now.Add(-s.ackWindow))
	if err != nil {
		s.log.Error().Err(err).Msg("acknowledgement read failed; returning unfiltered alerts")
		return alerts
	}
	if len(acked) == 0 {
		return alerts
	}
	out := alerts[:0]
	for _, a := range alerts {
		if acked[a.AlertID] {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *AlertService) publishGenerated(ownerID string, alerts []model.HealthAlert) {
	byNurture := make(map[string]int)
	for _, a := range alerts {
		byNurture[a.NurtureID]++
	}
	for nurtureID, count := range byNurture {
		if !s.bus.Publish(events.Event{Kind: events.EventAlertGenerated, OwnerID: ownerID, NurtureID: nurtureID, Count: count}) {
			s.log.Warn().Str("nurtureId", nurtureID).Msg("event buffer full; alert event dropped")
		}
	}
}

func (s *AlertService) beginRun(ownerID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runSeq[ownerID]++
	return s.runSeq[ownerID]
}

func (s *AlertService) isLatestRun(ownerID string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runSeq[ownerID] == seq
}
