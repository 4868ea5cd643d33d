package rooms

import (
	"context"
	"fmt"
	"sync"
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
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.clock, s.random, 2, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestAssignRoomCreatesNamedRoom() {
	s.random.QueueString("ab12")

	a, err := s.service.AssignRoom(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.RoomID(1), a.RoomID)
	s.True(a.Created)

	room, err := s.service.GetRoom(s.ctx, a.RoomID)
	s.Require().NoError(err)
	s.Equal("room-20240305140709-ab12", room.Name)
	s.Equal(2, room.Capacity)
	s.Equal(1, room.Occupants)
	s.Equal(model.RoomStatusOpen, room.Status)
	s.True(s.clock.Now().Equal(room.CreatedAt))
}

func (s *ServiceSuite) TestAssignRoomTrimsAddress() {
	first, err := s.service.AssignRoom(s.ctx, " alice ")
	s.Require().NoError(err)

	id, err := s.service.GetRoomID(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(first.RoomID, id)
}

func (s *ServiceSuite) TestAssignRoomRejectsBlankAddress() {
	_, err := s.service.AssignRoom(s.ctx, "   ")
	s.ErrorIs(err, model.ErrInvalidAddress)

	rooms, err := s.service.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *ServiceSuite) TestAssignRoomIsIdempotent() {
	first, err := s.service.AssignRoom(s.ctx, "alice")
	s.Require().NoError(err)

	again, err := s.service.AssignRoom(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(first.RoomID, again.RoomID)
	s.True(again.Existing)

	room, err := s.service.GetRoom(s.ctx, first.RoomID)
	s.Require().NoError(err)
	s.Equal(1, room.Occupants)
}

func (s *ServiceSuite) TestAssignRoomFillsLowestOpenRoomFirst() {
	for _, addr := range []model.Address{"a", "b", "c"} {
		_, err := s.service.AssignRoom(s.ctx, addr)
		s.Require().NoError(err)
	}
	// rooms: R1 2/2 full, R2 1/2
	a, err := s.service.AssignRoom(s.ctx, "d")
	s.Require().NoError(err)
	s.Equal(model.RoomID(2), a.RoomID)
	s.False(a.Created)

	r1, err := s.service.GetRoom(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusFull, r1.Status)

	r2, err := s.service.GetRoom(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusFull, r2.Status)

	e, err := s.service.AssignRoom(s.ctx, "e")
	s.Require().NoError(err)
	s.Equal(model.RoomID(3), e.RoomID)
	s.True(e.Created)
}

func (s *ServiceSuite) TestConcurrentAssignmentsNeverExceedCapacity() {
	const players = 9
	var wg sync.WaitGroup
	errs := make(chan error, players)
	for i := range players {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.service.AssignRoom(s.ctx, model.Address(fmt.Sprintf("p%d", i))); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	rooms, err := s.service.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Len(rooms, 5)
	total := 0
	for _, r := range rooms {
		s.LessOrEqual(r.Occupants, r.Capacity)
		total += r.Occupants
	}
	s.Equal(players, total)
}

func (s *ServiceSuite) TestGetRoomIDNotAssigned() {
	_, err := s.service.GetRoomID(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrNotInRoom)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *ServiceSuite) TestGetRoomValidatesID() {
	_, err := s.service.GetRoom(s.ctx, 0)
	s.ErrorIs(err, model.ErrInvalidRoomID)

	_, err = s.service.GetRoom(s.ctx, 42)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ServiceSuite) TestCapacityDefaults() {
	svc := New(s.storage, s.clock, s.random, 0, testutil.NopLogger())
	s.Equal(model.DefaultRoomCapacity, svc.Capacity())
}
