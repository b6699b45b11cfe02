package reservation_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ms-cinema/internal/models"
	"ms-cinema/internal/reservation"
)

// Mock implementations
type MockScreeningLookup struct {
	mock.Mock
}

func (m *MockScreeningLookup) GetScreening(ctx context.Context, id int64) (*models.Screening, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Screening), args.Error(1)
}

func (m *MockScreeningLookup) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Movie), args.Error(1)
}

type MockSeatInventory struct {
	mock.Mock
}

func (m *MockSeatInventory) SeatsBelongToRoom(ctx context.Context, seatIDs []int64, roomID int64) (int, error) {
	args := m.Called(ctx, seatIDs, roomID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatInventory) SeatsByIDs(ctx context.Context, seatIDs []int64) ([]models.Seat, error) {
	args := m.Called(ctx, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Seat), args.Error(1)
}

type MockTicketStore struct {
	mock.Mock
}

func (m *MockTicketStore) TakenSeats(ctx context.Context, screeningID int64) ([]int64, error) {
	args := m.Called(ctx, screeningID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockTicketStore) CreateTicketWithSeats(ctx context.Context, ticket models.Ticket, seatIDs []int64) ([]int64, error) {
	args := m.Called(ctx, ticket, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func testScreening() *models.Screening {
	return &models.Screening{
		ID:              10,
		MovieID:         3,
		RoomID:          1,
		StartTime:       time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC),
		DurationMinutes: 120,
	}
}

func newTestService(screenings *MockScreeningLookup, seats *MockSeatInventory, tickets *MockTicketStore) *reservation.Service {
	svc := reservation.NewService(screenings, seats, tickets, 25.00)
	svc.Now = func() time.Time { return time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC) }
	return svc
}

func TestReserveSeats_Success(t *testing.T) {
	screenings := new(MockScreeningLookup)
	seats := new(MockSeatInventory)
	tickets := new(MockTicketStore)
	svc := newTestService(screenings, seats, tickets)

	screening := testScreening()
	screenings.On("GetScreening", mock.Anything, int64(10)).Return(screening, nil)
	screenings.On("GetMovie", mock.Anything, int64(3)).Return(&models.Movie{ID: 3, Title: "Interstellar"}, nil)
	seats.On("SeatsBelongToRoom", mock.Anything, []int64{1, 2, 3}, int64(1)).Return(3, nil)
	seats.On("SeatsByIDs", mock.Anything, []int64{1, 2, 3}).Return([]models.Seat{
		{ID: 1, SeatNumber: 1}, {ID: 2, SeatNumber: 2}, {ID: 3, SeatNumber: 3},
	}, nil)
	tickets.On("TakenSeats", mock.Anything, int64(10)).Return([]int64{}, nil)
	tickets.On("CreateTicketWithSeats", mock.Anything, mock.Anything, []int64{1, 2, 3}).Return([]int64{}, nil)

	view, err := svc.ReserveSeats(context.Background(), models.ReservationRequest{
		ScreeningID: 10,
		SeatIDs:     []int64{1, 2, 3},
		Name:        "Jan",
		Surname:     "Kowalski",
		Email:       "jan@example.com",
	})

	assert.NoError(t, err)
	assert.NotNil(t, view)
	assert.Equal(t, models.StatusPending, view.Status)
	assert.Equal(t, "Interstellar", view.MovieTitle)
	assert.Equal(t, []int{1, 2, 3}, view.SeatNumbers)
	assert.Equal(t, 75.00, view.Price)
	assert.Equal(t, "Jan Kowalski", view.TicketOwner)
	assert.NotEmpty(t, view.TicketID)

	tickets.AssertExpectations(t)
}

func TestReserveSeats_EmptySelection(t *testing.T) {
	svc := newTestService(new(MockScreeningLookup), new(MockSeatInventory), new(MockTicketStore))

	view, err := svc.ReserveSeats(context.Background(), models.ReservationRequest{ScreeningID: 10})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, reservation.ErrInvalidSeatSelection)
}

func TestReserveSeats_ScreeningNotFound(t *testing.T) {
	screenings := new(MockScreeningLookup)
	svc := newTestService(screenings, new(MockSeatInventory), new(MockTicketStore))

	screenings.On("GetScreening", mock.Anything, int64(99)).Return(nil, sql.ErrNoRows)

	view, err := svc.ReserveSeats(context.Background(), models.ReservationRequest{
		ScreeningID: 99,
		SeatIDs:     []int64{1},
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, reservation.ErrScreeningNotFound)
}

func TestReserveSeats_SeatFromAnotherRoom(t *testing.T) {
	screenings := new(MockScreeningLookup)
	seats := new(MockSeatInventory)
	svc := newTestService(screenings, seats, new(MockTicketStore))

	screenings.On("GetScreening", mock.Anything, int64(10)).Return(testScreening(), nil)
	// Only 1 of 2 requested seats exists in the screening's room
	seats.On("SeatsBelongToRoom", mock.Anything, []int64{1, 500}, int64(1)).Return(1, nil)

	view, err := svc.ReserveSeats(context.Background(), models.ReservationRequest{
		ScreeningID: 10,
		SeatIDs:     []int64{1, 500},
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, reservation.ErrInvalidSeatSelection)
}

func TestReserveSeats_SeatsAlreadyTaken(t *testing.T) {
	screenings := new(MockScreeningLookup)
	seats := new(MockSeatInventory)
	tickets := new(MockTicketStore)
	svc := newTestService(screenings, seats, tickets)

	screenings.On("GetScreening", mock.Anything, int64(10)).Return(testScreening(), nil)
	seats.On("SeatsBelongToRoom", mock.Anything, []int64{1, 2}, int64(1)).Return(2, nil)
	tickets.On("TakenSeats", mock.Anything, int64(10)).Return([]int64{2, 7}, nil)

	view, err := svc.ReserveSeats(context.Background(), models.ReservationRequest{
		ScreeningID: 10,
		SeatIDs:     []int64{1, 2},
	})

	assert.Nil(t, view)
	var taken *reservation.SeatsTakenError
	assert.ErrorAs(t, err, &taken)
	assert.Equal(t, []int64{2}, taken.SeatIDs)
	tickets.AssertNotCalled(t, "CreateTicketWithSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestReserveSeats_ConcurrentReservationLosesRace(t *testing.T) {
	screenings := new(MockScreeningLookup)
	seats := new(MockSeatInventory)
	tickets := new(MockTicketStore)
	svc := newTestService(screenings, seats, tickets)

	screenings.On("GetScreening", mock.Anything, int64(10)).Return(testScreening(), nil)
	seats.On("SeatsBelongToRoom", mock.Anything, []int64{4, 5}, int64(1)).Return(2, nil)
	// Pre-check sees the seats free, but another reservation commits first
	tickets.On("TakenSeats", mock.Anything, int64(10)).Return([]int64{}, nil)
	tickets.On("CreateTicketWithSeats", mock.Anything, mock.Anything, []int64{4, 5}).Return([]int64{5}, nil)

	view, err := svc.ReserveSeats(context.Background(), models.ReservationRequest{
		ScreeningID: 10,
		SeatIDs:     []int64{4, 5},
	})

	assert.Nil(t, view)
	var taken *reservation.SeatsTakenError
	assert.ErrorAs(t, err, &taken)
	assert.Equal(t, []int64{5}, taken.SeatIDs)
}

func TestReserveSeats_StoreFailureCreatesNothing(t *testing.T) {
	screenings := new(MockScreeningLookup)
	seats := new(MockSeatInventory)
	tickets := new(MockTicketStore)
	svc := newTestService(screenings, seats, tickets)

	screenings.On("GetScreening", mock.Anything, int64(10)).Return(testScreening(), nil)
	seats.On("SeatsBelongToRoom", mock.Anything, []int64{1}, int64(1)).Return(1, nil)
	tickets.On("TakenSeats", mock.Anything, int64(10)).Return([]int64{}, nil)
	tickets.On("CreateTicketWithSeats", mock.Anything, mock.Anything, []int64{1}).
		Return(nil, errors.New("connection reset"))

	view, err := svc.ReserveSeats(context.Background(), models.ReservationRequest{
		ScreeningID: 10,
		SeatIDs:     []int64{1},
	})

	assert.Nil(t, view)
	assert.Error(t, err)
	screenings.AssertNotCalled(t, "GetMovie", mock.Anything, mock.Anything)
}

func TestReserveSeats_PriceScalesWithSeatCount(t *testing.T) {
	screenings := new(MockScreeningLookup)
	seats := new(MockSeatInventory)
	tickets := new(MockTicketStore)
	svc := newTestService(screenings, seats, tickets)

	screenings.On("GetScreening", mock.Anything, int64(10)).Return(testScreening(), nil)
	screenings.On("GetMovie", mock.Anything, int64(3)).Return(&models.Movie{ID: 3, Title: "Interstellar"}, nil)
	seats.On("SeatsBelongToRoom", mock.Anything, []int64{1}, int64(1)).Return(1, nil)
	seats.On("SeatsByIDs", mock.Anything, []int64{1}).Return([]models.Seat{{ID: 1, SeatNumber: 1}}, nil)
	tickets.On("TakenSeats", mock.Anything, int64(10)).Return([]int64{}, nil)

	var created models.Ticket
	tickets.On("CreateTicketWithSeats", mock.Anything, mock.Anything, []int64{1}).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(models.Ticket)
		}).
		Return([]int64{}, nil)

	view, err := svc.ReserveSeats(context.Background(), models.ReservationRequest{
		ScreeningID: 10,
		SeatIDs:     []int64{1},
	})

	assert.NoError(t, err)
	assert.Equal(t, 25.00, view.Price)
	assert.Equal(t, 25.00, created.Price)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, svc.Now(), created.IssuedAt)
}
