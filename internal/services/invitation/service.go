package invitation

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mcoot/roomrank/internal/dependencies/clock"
	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/services/bonus"
	"github.com/mcoot/roomrank/internal/storage"
)

var tracer = otel.Tracer("github.com/mcoot/roomrank/internal/services/invitation")

// Service records invitations and applies referral bonuses
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new invitation Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// RecordInvitation stores the invitation carried by an invite code.
// An invitee can be invited once.
func (s *Service) RecordInvitation(ctx context.Context, code string) (*model.Invitation, error) {
	if code == "" {
		return nil, model.ErrInvalidInviteCode
	}
	inviter, invitee, err := DecodeCode(code)
	if err != nil {
		return nil, err
	}
	if inviter == invitee {
		return nil, model.ErrSelfInvitation
	}

	ctx, span := tracer.Start(ctx, "invitation.RecordInvitation")
	defer span.End()
	span.SetAttributes(
		attribute.String("invitation.inviter", string(inviter)),
		attribute.String("invitation.invitee", string(invitee)),
	)

	inv := &model.Invitation{
		Invitee:   invitee,
		Inviter:   inviter,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.CreateInvitation(ctx, inv); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record invitation failed")
		return nil, fmt.Errorf("record invitation for %s: %w", invitee, err)
	}

	s.logger.Info("invitation recorded", "inviter", inviter, "invitee", invitee)
	return inv, nil
}

// ApplyBonus credits the referral bonus for score to the invitee and their
// inviter unless it was already applied. It returns nil when there was
// nothing left to apply, and model.ErrNoValidInvitation when the invitee was
// never invited.
func (s *Service) ApplyBonus(ctx context.Context, invitee model.Address, score *float64) (*model.BonusAward, error) {
	invitee = invitee.Normalize()
	if err := invitee.Validate(); err != nil {
		return nil, err
	}
	value, err := model.ParseScore(score)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "invitation.ApplyBonus")
	defer span.End()
	span.SetAttributes(attribute.String("invitation.invitee", string(invitee)))

	award, err := s.storage.ApplyReferralBonus(ctx, model.BonusRequest{
		Invitee: invitee,
		Bonus:   bonus.Referral(value),
		At:      s.clock.Now(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply bonus failed")
		return nil, fmt.Errorf("apply bonus for %s: %w", invitee, err)
	}

	span.SetAttributes(attribute.Bool("bonus.applied", award != nil))
	if award != nil {
		s.logger.Info("referral bonus applied",
			"invitee", award.Invitee,
			"inviter", award.Inviter,
			"bonus", award.Amount,
		)
	}
	return award, nil
}

// InviteCount returns how many invitations address has sent
func (s *Service) InviteCount(ctx context.Context, inviter model.Address) (int, error) {
	inviter = inviter.Normalize()
	if err := inviter.Validate(); err != nil {
		return 0, err
	}
	return s.storage.CountInvitations(ctx, inviter)
}
