package scores

import (
	"context"
	"errors"
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

var tracer = otel.Tracer("github.com/mcoot/roomrank/internal/services/scores")

// Submission is a raw score submission. Numeric fields are pointers so a
// missing value is distinguishable from zero.
type Submission struct {
	Address      model.Address
	Score        *float64
	TokenBalance *float64
}

// Service records scores and answers per-player queries
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new score Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// SubmitScore validates and stores a score. The store keeps the best score,
// overwrites the token balance, counts the game and applies a pending referral
// bonus in one unit.
func (s *Service) SubmitScore(ctx context.Context, sub Submission) (*model.ScoreResult, error) {
	address := sub.Address.Normalize()
	if err := address.Validate(); err != nil {
		return nil, err
	}
	score, err := model.ParseScore(sub.Score)
	if err != nil {
		return nil, err
	}
	balance, err := model.ParseTokenBalance(sub.TokenBalance)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "scores.SubmitScore")
	defer span.End()
	span.SetAttributes(
		attribute.String("player.address", string(address)),
		attribute.Int64("score.submitted", score),
	)

	result, err := s.storage.SubmitScore(ctx, model.ScoreUpdate{
		Address:       address,
		Score:         score,
		TokenBalance:  balance,
		ReferralBonus: bonus.Referral(score),
		At:            s.clock.Now(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit score failed")
		return nil, fmt.Errorf("submit score for %s: %w", address, err)
	}

	span.SetAttributes(attribute.Int64("score.best", result.BestScore))
	if result.Referral != nil {
		span.SetAttributes(attribute.Int64("referral.bonus", result.Referral.Amount))
		s.logger.Info("referral bonus applied",
			"invitee", result.Referral.Invitee,
			"inviter", result.Referral.Inviter,
			"bonus", result.Referral.Amount,
		)
	}
	return result, nil
}

// PlayerStats returns the player's record
func (s *Service) PlayerStats(ctx context.Context, address model.Address) (*model.Player, error) {
	address = address.Normalize()
	if err := address.Validate(); err != nil {
		return nil, err
	}
	return s.storage.GetPlayer(ctx, address)
}

// PlayerScore returns the player's best score
func (s *Service) PlayerScore(ctx context.Context, address model.Address) (model.Standing, error) {
	player, err := s.PlayerStats(ctx, address)
	if err != nil {
		return model.Standing{}, err
	}
	return model.Standing{Address: player.Address, Score: player.Score}, nil
}

// CheckUser reports whether the address has no player record yet
func (s *Service) CheckUser(ctx context.Context, address model.Address) (bool, error) {
	_, err := s.PlayerStats(ctx, address)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, model.ErrPlayerNotFound):
		return true, nil
	default:
		return false, err
	}
}
