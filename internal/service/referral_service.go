package service

import (
	"context"
	"strings"

	"hotspot/internal/domain"
	"hotspot/internal/events"
	"hotspot/internal/models"
	"hotspot/internal/repository"
)

// ReferralService records users inviting others by email.
type ReferralService struct {
	referrals repository.ReferralStore
	bus       Publisher
}

func NewReferralService(referrals repository.ReferralStore, bus Publisher) *ReferralService {
	return &ReferralService{referrals: referrals, bus: bus}
}

type CreateReferralInput struct {
	ReferrerID    string `json:"referrerId" validate:"required"`
	ReferredEmail string `json:"referredEmail" validate:"required,email"`
	Relationship  string `json:"relationship" validate:"max=64"`
}

func (s *ReferralService) Create(ctx context.Context, in CreateReferralInput) (*models.Referral, error) {
	in.ReferredEmail = strings.ToLower(strings.TrimSpace(in.ReferredEmail))
	if err := check(in); err != nil {
		return nil, err
	}
	r := &models.Referral{
		ReferrerID:    in.ReferrerID,
		ReferredEmail: in.ReferredEmail,
		Relationship:  in.Relationship,
	}
	if err := s.referrals.Create(ctx, r); err != nil {
		return nil, err
	}
	after := *r
	s.bus.Publish(events.Event{
		Collection: domain.CollectionReferrals,
		Kind:       events.Created,
		DocID:      r.ID,
		Version:    version(events.Created, r.CreatedAt.UnixNano()),
		After:      &after,
	})
	return r, nil
}

func (s *ReferralService) ListByReferrer(ctx context.Context, referrerID string, limit, offset int) ([]models.Referral, error) {
	return s.referrals.ListByReferrerID(ctx, referrerID, limit, offset)
}
