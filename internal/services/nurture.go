// Package services contains the orchestration layer between the HTTP API and
// the store, detector, and event bus.
package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/store"
)

const maxNameLength = 50

type NurtureService struct {
	store store.Store
	log   zerolog.Logger
}

func NewNurtureService(s store.Store, log zerolog.Logger) *NurtureService {
	return &NurtureService{store: s, log: log}
}

func (s *NurtureService) CreateNurture(ctx context.Context, n *model.Nurture) (*model.Nurture, error) {
	if err := validateNurture(n); err != nil {
		return nil, err
	}
	created, err := s.store.Nurtures().Create(ctx, n)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("nurtureId", created.NurtureID).Str("type", string(created.Type)).Msg("nurture created")
	return created, nil
}

func (s *NurtureService) GetNurture(ctx context.Context, ownerID, nurtureID string) (*model.Nurture, error) {
	return s.store.Nurtures().Get(ctx, ownerID, nurtureID)
}

func (s *NurtureService) ListNurtures(ctx context.Context, ownerID string) ([]*model.Nurture, error) {
	return s.store.Nurtures().List(ctx, ownerID)
}

// UpdateNurture applies mutable fields (name, species, breed, birth date,
// avatar). The type tag is immutable after creation.
func (s *NurtureService) UpdateNurture(ctx context.Context, n *model.Nurture) (*model.Nurture, error) {
	existing, err := s.store.Nurtures().Get(ctx, n.OwnerID, n.NurtureID)
	if err != nil {
		return nil, err
	}
	if n.Type != "" && n.Type != existing.Type {
		return nil, model.NewValidationError("type", "type is immutable after creation")
	}
	upd := *n
	upd.Type = existing.Type
	if err := validateNurture(&upd); err != nil {
		return nil, err
	}
	return s.store.Nurtures().Update(ctx, &upd)
}

// DeleteNurture removes the nurture; the store cascades its activity logs.
func (s *NurtureService) DeleteNurture(ctx context.Context, ownerID, nurtureID string) error {
	if err := s.store.Nurtures().Delete(ctx, ownerID, nurtureID); err != nil {
		return err
	}
	s.log.Info().Str("nurtureId", nurtureID).Msg("nurture deleted")
	return nil
}

func validateNurture(n *model.Nurture) error {
	if n.OwnerID == "" {
		return model.NewValidationError("ownerId", "owner id is required")
	}
	if n.Name == "" {
		return model.NewValidationError("name", "name is required")
	}
	if len(n.Name) > maxNameLength {
		return model.NewValidationError("name", "name exceeds 50 characters")
	}
	if !model.ValidNurtureType(n.Type) {
		return model.NewValidationError("type", "type must be baby, pet, or plant")
	}
	if n.BirthDate != nil && n.Type != model.NurtureBaby {
		return model.NewValidationError("birthDate", "birth date is only meaningful for baby nurtures")
	}
	return nil
}
