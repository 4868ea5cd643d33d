// Package storagetest holds the behaviour every storage backend must share.
// Backend packages run it from their own tests with a constructor for a fresh,
// empty store.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/storage"
)

// Suite is the storage conformance suite
type Suite struct {
	suite.Suite

	// NewStorage returns an empty store; it is called before every test
	NewStorage func(t *testing.T) storage.Storage

	store storage.Storage
	ctx   context.Context
	now   time.Time
	rooms int
}

func (s *Suite) SetupTest() {
	s.store = s.NewStorage(s.T())
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.rooms = 0
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func (s *Suite) submit(addr string, score int64, balance float64, bonus int64) *model.ScoreResult {
	res, err := s.store.SubmitScore(s.ctx, model.ScoreUpdate{
		Address:       model.Address(addr),
		Score:         score,
		TokenBalance:  balance,
		ReferralBonus: bonus,
		At:            s.now,
	})
	s.Require().NoError(err)
	return res
}

func (s *Suite) newRoom(capacity int) model.NewRoom {
	s.rooms++
	return model.NewRoom{
		Name:      fmt.Sprintf("room-test-%d", s.rooms),
		Capacity:  capacity,
		CreatedAt: s.now,
	}
}

func (s *Suite) assign(addr string, capacity int) *model.Assignment {
	a, err := s.store.AssignRoom(s.ctx, model.Address(addr), s.newRoom(capacity))
	s.Require().NoError(err)
	return a
}

func (s *Suite) invite(inviter, invitee string) {
	err := s.store.CreateInvitation(s.ctx, &model.Invitation{
		Inviter:   model.Address(inviter),
		Invitee:   model.Address(invitee),
		CreatedAt: s.now,
	})
	s.Require().NoError(err)
}

// Score tests

func (s *Suite) TestSubmitScoreCreatesPlayer() {
	res := s.submit("alice", 120, 3.5, 0)
	s.Equal(int64(120), res.BestScore)
	s.Equal(int64(1), res.GamesPlayed)
	s.Nil(res.Referral)

	p, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.Address("alice"), p.Address)
	s.Equal(int64(120), p.Score)
	s.InDelta(3.5, p.TokenBalance, 1e-9)
	s.Equal(int64(1), p.GamesPlayed)
	s.False(p.BonusReceived)
	s.True(s.now.Equal(p.UpdatedAt))
}

func (s *Suite) TestSubmitScoreKeepsBestAndOverwritesBalance() {
	s.submit("alice", 100, 10, 0)
	s.submit("alice", 40, 2, 0)
	res := s.submit("alice", 0, 7, 0)
	s.Equal(int64(100), res.BestScore)
	s.Equal(int64(3), res.GamesPlayed)

	p, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(int64(100), p.Score)
	s.InDelta(7.0, p.TokenBalance, 1e-9)

	res = s.submit("alice", 150, 1, 0)
	s.Equal(int64(150), res.BestScore)
}

func (s *Suite) TestBestScoreNeverDecreasesUnderConcurrency() {
	scores := []int64{5, 90, 30, 70, 10, 60, 20, 80, 40, 50}
	var wg sync.WaitGroup
	for _, sc := range scores {
		wg.Add(1)
		go func(score int64) {
			defer wg.Done()
			_, err := s.store.SubmitScore(s.ctx, model.ScoreUpdate{Address: "racer", Score: score, At: s.now})
			s.NoError(err)
		}(sc)
	}
	wg.Wait()

	p, err := s.store.GetPlayer(s.ctx, "racer")
	s.Require().NoError(err)
	s.Equal(int64(90), p.Score)
	s.Equal(int64(len(scores)), p.GamesPlayed)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.store.GetPlayer(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Room tests

func (s *Suite) TestAssignRoomCreatesFirstRoom() {
	a := s.assign("alice", 48)
	s.Equal(model.RoomID(1), a.RoomID)
	s.True(a.Created)
	s.False(a.Existing)

	room, err := s.store.GetRoom(s.ctx, a.RoomID)
	s.Require().NoError(err)
	s.Equal("room-test-1", room.Name)
	s.Equal(48, room.Capacity)
	s.Equal(1, room.Occupants)
	s.Equal(model.RoomStatusOpen, room.Status)
}

func (s *Suite) TestAssignRoomIsIdempotent() {
	first := s.assign("alice", 48)
	second := s.assign("alice", 48)
	s.Equal(first.RoomID, second.RoomID)
	s.True(second.Existing)
	s.False(second.Created)

	room, err := s.store.GetRoom(s.ctx, first.RoomID)
	s.Require().NoError(err)
	s.Equal(1, room.Occupants)

	id, err := s.store.GetPlayerRoom(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(first.RoomID, id)
}

func (s *Suite) TestAssignRoomFillsInOrder() {
	s.Equal(model.RoomID(1), s.assign("a", 2).RoomID)
	s.Equal(model.RoomID(1), s.assign("b", 2).RoomID)

	full, err := s.store.GetRoom(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusFull, full.Status)

	// R1 is 2/2, so a new room opens
	c := s.assign("c", 2)
	s.Equal(model.RoomID(2), c.RoomID)
	s.True(c.Created)

	// R1 full, R2 1/2: next goes to R2
	d := s.assign("d", 2)
	s.Equal(model.RoomID(2), d.RoomID)
	s.False(d.Created)

	s.Equal(model.RoomID(3), s.assign("e", 2).RoomID)

	rooms, err := s.store.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 3)
	for i, r := range rooms {
		s.Equal(model.RoomID(i+1), r.ID)
	}
	s.Equal(model.RoomStatusFull, rooms[1].Status)
	s.Equal(1, rooms[2].Occupants)
}

func (s *Suite) TestConcurrentAssignmentsRespectCapacity() {
	const players = 25
	const capacity = 4

	var mu sync.Mutex
	names := 0
	nextRoom := func() model.NewRoom {
		mu.Lock()
		defer mu.Unlock()
		names++
		return model.NewRoom{Name: fmt.Sprintf("room-race-%d", names), Capacity: capacity, CreatedAt: s.now}
	}

	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.store.AssignRoom(s.ctx, model.Address(fmt.Sprintf("p%02d", i)), nextRoom())
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	rooms, err := s.store.ListRooms(s.ctx)
	s.Require().NoError(err)
	total := 0
	for _, r := range rooms {
		s.LessOrEqual(r.Occupants, capacity, "room %d over capacity", r.ID)
		total += r.Occupants
	}
	s.Equal(players, total)
	// first fit never leaves a gap before the last room
	s.Len(rooms, (players+capacity-1)/capacity)
}

func (s *Suite) TestConcurrentAssignmentsForSamePlayer() {
	var wg sync.WaitGroup
	ids := make([]model.RoomID, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := s.store.AssignRoom(s.ctx, "same", model.NewRoom{
				Name:      fmt.Sprintf("room-same-%d", i),
				Capacity:  48,
				CreatedAt: s.now,
			})
			s.NoError(err)
			if a != nil {
				ids[i] = a.RoomID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		s.Equal(ids[0], id)
	}
	room, err := s.store.GetRoom(s.ctx, ids[0])
	s.Require().NoError(err)
	s.Equal(1, room.Occupants)
}

func (s *Suite) TestRoomLookupsNotFound() {
	_, err := s.store.GetRoom(s.ctx, 99)
	s.ErrorIs(err, model.ErrRoomNotFound)

	_, err = s.store.GetPlayerRoom(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrNotInRoom)

	rooms, err := s.store.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

// Invitation tests

func (s *Suite) TestCreateInvitationRejectsDuplicateInvitee() {
	s.invite("alice", "bob")
	err := s.store.CreateInvitation(s.ctx, &model.Invitation{Inviter: "carol", Invitee: "bob", CreatedAt: s.now})
	s.ErrorIs(err, model.ErrDuplicateInvitation)

	inv, err := s.store.GetInvitation(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(model.Address("alice"), inv.Inviter)
	s.False(inv.BonusApplied)
}

func (s *Suite) TestCountInvitations() {
	s.invite("alice", "bob")
	s.invite("alice", "carol")
	s.invite("dave", "erin")

	count, err := s.store.CountInvitations(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(2, count)

	count, err = s.store.CountInvitations(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *Suite) TestSubmitScoreAppliesReferralOnce() {
	s.submit("alice", 10, 0, 0)
	s.invite("alice", "bob")

	res := s.submit("bob", 101, 0, 50)
	s.Require().NotNil(res.Referral)
	s.Equal(int64(50), res.Referral.Amount)
	s.Equal(model.Address("alice"), res.Referral.Inviter)
	s.Equal(int64(151), res.BestScore)

	alice, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(int64(60), alice.Score)

	bob, err := s.store.GetPlayer(s.ctx, "bob")
	s.Require().NoError(err)
	s.True(bob.BonusReceived)

	inv, err := s.store.GetInvitation(s.ctx, "bob")
	s.Require().NoError(err)
	s.True(inv.BonusApplied)

	res = s.submit("bob", 200, 0, 100)
	s.Nil(res.Referral)
	s.Equal(int64(200), res.BestScore)

	alice, err = s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(int64(60), alice.Score)
}

func (s *Suite) TestReferralCreatesMissingInviter() {
	s.invite("ghost", "bob")
	s.submit("bob", 40, 0, 20)

	ghost, err := s.store.GetPlayer(s.ctx, "ghost")
	s.Require().NoError(err)
	s.Equal(int64(20), ghost.Score)
	s.Equal(int64(0), ghost.GamesPlayed)
}

func (s *Suite) TestConcurrentSubmissionsApplyReferralOnce() {
	s.invite("alice", "bob")

	const n = 12
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.SubmitScore(s.ctx, model.ScoreUpdate{
				Address:       "bob",
				Score:         100,
				ReferralBonus: 50,
				At:            s.now,
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	alice, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(int64(50), alice.Score)

	bob, err := s.store.GetPlayer(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(int64(150), bob.Score)
	s.Equal(int64(n), bob.GamesPlayed)
}

func (s *Suite) TestApplyReferralBonusExplicit() {
	_, err := s.store.ApplyReferralBonus(s.ctx, model.BonusRequest{Invitee: "bob", Bonus: 10, At: s.now})
	s.ErrorIs(err, model.ErrNoValidInvitation)

	s.invite("alice", "bob")
	award, err := s.store.ApplyReferralBonus(s.ctx, model.BonusRequest{Invitee: "bob", Bonus: 10, At: s.now})
	s.Require().NoError(err)
	s.Require().NotNil(award)
	s.Equal(int64(10), award.Amount)

	bob, err := s.store.GetPlayer(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(int64(10), bob.Score)
	s.Equal(int64(0), bob.GamesPlayed)
	s.True(bob.BonusReceived)

	award, err = s.store.ApplyReferralBonus(s.ctx, model.BonusRequest{Invitee: "bob", Bonus: 10, At: s.now})
	s.Require().NoError(err)
	s.Nil(award)

	// the implicit path sees the flag as well
	res := s.submit("bob", 5, 0, 2)
	s.Nil(res.Referral)
}

func (s *Suite) TestConcurrentExplicitBonusAppliesOnce() {
	s.invite("alice", "bob")

	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	awarded := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			award, err := s.store.ApplyReferralBonus(s.ctx, model.BonusRequest{Invitee: "bob", Bonus: 7, At: s.now})
			s.NoError(err)
			if award != nil {
				mu.Lock()
				awarded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, awarded)
	alice, err := s.store.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(int64(7), alice.Score)
}

// Ranking tests

func (s *Suite) TestTopPlayersOrdersByScoreThenAddress() {
	s.submit("carol", 50, 0, 0)
	s.submit("alice", 80, 0, 0)
	s.submit("bob", 50, 0, 0)
	s.submit("dave", 10, 0, 0)

	top, err := s.store.TopPlayers(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal([]model.Standing{
		{Address: "alice", Score: 80},
		{Address: "bob", Score: 50},
		{Address: "carol", Score: 50},
	}, top)
}

func (s *Suite) TestTopPlayersBreaksTiesAtLimitBoundary() {
	for _, addr := range []string{"e", "d", "c", "b", "a"} {
		s.submit(addr, 10, 0, 0)
	}
	s.submit("z", 99, 0, 0)

	top, err := s.store.TopPlayers(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal([]model.Standing{
		{Address: "z", Score: 99},
		{Address: "a", Score: 10},
		{Address: "b", Score: 10},
	}, top)
}

func (s *Suite) TestTopPlayersInRoom() {
	s.assign("alice", 2)
	s.assign("bob", 2)
	// carol and dave land in room 2, dave never scores
	s.assign("carol", 2)
	s.assign("dave", 2)

	s.submit("alice", 10, 0, 0)
	s.submit("bob", 30, 0, 0)
	s.submit("carol", 99, 0, 0)
	s.submit("outsider", 500, 0, 0)

	top, err := s.store.TopPlayersInRoom(s.ctx, 1, 11)
	s.Require().NoError(err)
	s.Equal([]model.Standing{
		{Address: "bob", Score: 30},
		{Address: "alice", Score: 10},
	}, top)

	top, err = s.store.TopPlayersInRoom(s.ctx, 2, 11)
	s.Require().NoError(err)
	s.Equal([]model.Standing{{Address: "carol", Score: 99}}, top)

	top, err = s.store.TopPlayersInRoom(s.ctx, 42, 11)
	s.Require().NoError(err)
	s.Empty(top)
}
