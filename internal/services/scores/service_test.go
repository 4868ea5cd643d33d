package scores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/roomrank/internal/dependencies/mocks"
	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/storage/memory"
	"github.com/mcoot/roomrank/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func num(v float64) *float64 { return &v }

func (s *ServiceSuite) submit(addr string, score, balance float64) *model.ScoreResult {
	res, err := s.service.SubmitScore(s.ctx, Submission{
		Address:      model.Address(addr),
		Score:        num(score),
		TokenBalance: num(balance),
	})
	s.Require().NoError(err)
	return res
}

func (s *ServiceSuite) TestFirstSubmissionCreatesPlayer() {
	res := s.submit("alice", 120, 3.5)
	s.Equal(int64(120), res.BestScore)
	s.Equal(int64(1), res.GamesPlayed)
	s.Nil(res.Referral)

	p, err := s.service.PlayerStats(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(3.5, p.TokenBalance)
	s.True(s.clock.Now().Equal(p.UpdatedAt))
}

func (s *ServiceSuite) TestBestScoreNeverDecreases() {
	s.submit("alice", 120, 1)
	s.clock.Advance(time.Minute)
	res := s.submit("alice", 80, 2)
	s.Equal(int64(120), res.BestScore)
	s.Equal(int64(2), res.GamesPlayed)

	p, err := s.service.PlayerStats(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(2.0, p.TokenBalance)
	s.True(s.clock.Now().Equal(p.UpdatedAt))
}

func (s *ServiceSuite) TestZeroScoreIsValid() {
	res := s.submit("alice", 0, 0)
	s.Equal(int64(0), res.BestScore)
	s.Equal(int64(1), res.GamesPlayed)
}

func (s *ServiceSuite) TestInvalidSubmissionLeavesNoRow() {
	tests := []struct {
		name string
		sub  Submission
		want error
	}{
		{"negative score", Submission{Address: "alice", Score: num(-5), TokenBalance: num(1)}, model.ErrInvalidScore},
		{"missing score", Submission{Address: "alice", TokenBalance: num(1)}, model.ErrMissingScore},
		{"fractional score", Submission{Address: "alice", Score: num(2.5), TokenBalance: num(1)}, model.ErrInvalidScore},
		{"missing balance", Submission{Address: "alice", Score: num(1)}, model.ErrMissingTokenBalance},
		{"negative balance", Submission{Address: "alice", Score: num(1), TokenBalance: num(-1)}, model.ErrInvalidTokenBalance},
		{"blank address", Submission{Address: " ", Score: num(1), TokenBalance: num(1)}, model.ErrInvalidAddress},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.SubmitScore(s.ctx, tt.sub)
			s.ErrorIs(err, tt.want)
			s.ErrorIs(err, model.ErrValidation)

			_, err = s.storage.GetPlayer(s.ctx, "alice")
			s.ErrorIs(err, model.ErrPlayerNotFound)
		})
	}
}

func (s *ServiceSuite) TestSubmissionAppliesReferralBonus() {
	s.submit("alice", 10, 0)
	s.Require().NoError(s.storage.CreateInvitation(s.ctx, &model.Invitation{
		Inviter: "alice", Invitee: "bob", CreatedAt: s.clock.Now(),
	}))

	res := s.submit("bob", 101, 0)
	s.Require().NotNil(res.Referral)
	s.Equal(int64(50), res.Referral.Amount)
	s.Equal(int64(151), res.BestScore)

	alice, err := s.service.PlayerScore(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(int64(60), alice.Score)

	// one-shot
	res = s.submit("bob", 200, 0)
	s.Nil(res.Referral)
	s.Equal(int64(200), res.BestScore)
}

func (s *ServiceSuite) TestPlayerLookupsNotFound() {
	_, err := s.service.PlayerStats(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.service.PlayerScore(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestCheckUser() {
	isNew, err := s.service.CheckUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(isNew)

	s.submit("alice", 1, 0)
	isNew, err = s.service.CheckUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(isNew)

	_, err = s.service.CheckUser(s.ctx, "")
	s.ErrorIs(err, model.ErrInvalidAddress)
}
