package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bloomie/bloomie-care/internal/detector"
	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/store"
)

type LogService struct {
	store store.Store
	log   zerolog.Logger
}

func NewLogService(s store.Store, log zerolog.Logger) *LogService {
	return &LogService{store: s, log: log}
}

// CreateLog validates and persists one activity log. When no explicit action
// label is supplied, one is derived from the log text so interval grouping
// stays deterministic.
func (s *LogService) CreateLog(ctx context.Context, ownerID string, l *model.ActivityLog) (*model.ActivityLog, error) {
	if l.NurtureID == "" {
		return nil, model.NewValidationError("nurtureId", "nurture id is required")
	}
	if l.RawText == "" {
		return nil, model.NewValidationError("rawText", "log text is required")
	}
	if l.Mood != nil && !model.ValidMood(*l.Mood) {
		return nil, model.NewValidationError("mood", "unknown mood label")
	}
	if l.HealthScore != nil && (*l.HealthScore < 1 || *l.HealthScore > 5) {
		return nil, model.NewValidationError("healthScore", "health score must be between 1 and 5")
	}

	// The nurture must exist and belong to the caller.
	if _, err := s.store.Nurtures().Get(ctx, ownerID, l.NurtureID); err != nil {
		return nil, err
	}

	if l.Action == nil || *l.Action == "" {
		derived := string(detector.Categorize(l))
		l.Action = &derived
	}

	created, err := s.store.Logs().Create(ctx, l)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("nurtureId", created.NurtureID).Str("logId", created.LogID).Str("action", *created.Action).Msg("activity log created")
	return created, nil
}

func (s *LogService) GetLog(ctx context.Context, nurtureID, logID string) (*model.ActivityLog, error) {
	return s.store.Logs().Get(ctx, nurtureID, logID)
}

func (s *LogService) ListLogs(ctx context.Context, req model.ListLogsRequest) ([]*model.ActivityLog, error) {
	if req.NurtureID == "" {
		return nil, model.NewValidationError("nurtureId", "nurture id is required")
	}
	return s.store.Logs().List(ctx, req)
}

func (s *LogService) DeleteLog(ctx context.Context, nurtureID, logID string) error {
	return s.store.Logs().Delete(ctx, nurtureID, logID)
}
