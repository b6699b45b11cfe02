package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
)

type ScreeningLookup interface {
	GetScreening(ctx context.Context, id int64) (*models.Screening, error)
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)
}

type SeatInventory interface {
	SeatsBelongToRoom(ctx context.Context, seatIDs []int64, roomID int64) (int, error)
	SeatsByIDs(ctx context.Context, seatIDs []int64) ([]models.Seat, error)
}

type TicketStore interface {
	TakenSeats(ctx context.Context, screeningID int64) ([]int64, error)
	CreateTicketWithSeats(ctx context.Context, ticket models.Ticket, seatIDs []int64) ([]int64, error)
}

type EventPublisher interface {
	PublishTicketReserved(view models.TicketView) error
}

// SeatMapInvalidator drops a cached seat map after its occupancy changed.
type SeatMapInvalidator interface {
	Invalidate(ctx context.Context, screeningID int64) error
}

type QRGenerator interface {
	GenerateEncryptedQR(ticketNumber string) ([]byte, error)
}

// Service is the reservation engine. It validates a seat request against the
// inventory and the occupancy index, then creates the ticket and its seat
// links in one transaction. The pre-checks produce friendly errors; the
// unique index on (screening_id, seat_id) is what actually serializes
// concurrent reservations.
type Service struct {
	Screenings ScreeningLookup
	Seats      SeatInventory
	Tickets    TicketStore
	Kafka      EventPublisher
	Cache      SeatMapInvalidator
	QR         QRGenerator
	Logger     *logger.Logger
	SeatPrice  float64
	Now        func() time.Time
}

func NewService(screenings ScreeningLookup, seats SeatInventory, tickets TicketStore, seatPrice float64) *Service {
	return &Service{
		Screenings: screenings,
		Seats:      seats,
		Tickets:    tickets,
		SeatPrice:  seatPrice,
		Now:        time.Now,
	}
}

// ReserveSeats reserves the given seats for a screening and returns the fully
// populated ticket in PENDING status. On any failure no ticket or seat link
// is left behind.
func (s *Service) ReserveSeats(ctx context.Context, req models.ReservationRequest) (*models.TicketView, error) {
	if len(req.SeatIDs) == 0 {
		return nil, ErrInvalidSeatSelection
	}

	screening, err := s.Screenings.GetScreening(ctx, req.ScreeningID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("screening %d: %w", req.ScreeningID, ErrScreeningNotFound)
		}
		return nil, fmt.Errorf("lookup screening %d: %w", req.ScreeningID, err)
	}

	matching, err := s.Seats.SeatsBelongToRoom(ctx, req.SeatIDs, screening.RoomID)
	if err != nil {
		return nil, fmt.Errorf("validate seats: %w", err)
	}
	if matching != len(req.SeatIDs) {
		return nil, ErrInvalidSeatSelection
	}

	taken, err := s.Tickets.TakenSeats(ctx, screening.ID)
	if err != nil {
		return nil, fmt.Errorf("read occupancy for screening %d: %w", screening.ID, err)
	}
	if conflicts := intersect(req.SeatIDs, taken); len(conflicts) > 0 {
		return nil, &SeatsTakenError{SeatIDs: conflicts}
	}

	ticket := models.Ticket{
		TicketNumber: uuid.NewString(),
		ScreeningID:  screening.ID,
		OwnerName:    req.Name,
		OwnerSurname: req.Surname,
		OwnerEmail:   req.Email,
		Price:        roundToCents(s.SeatPrice * float64(len(req.SeatIDs))),
		Status:       models.StatusPending,
		IssuedAt:     s.now(),
	}
	if s.QR != nil {
		qrBytes, err := s.QR.GenerateEncryptedQR(ticket.TicketNumber)
		if err != nil {
			return nil, fmt.Errorf("generate QR for ticket %s: %w", ticket.TicketNumber, err)
		}
		ticket.QRCode = qrBytes
	}

	conflicts, err := s.Tickets.CreateTicketWithSeats(ctx, ticket, req.SeatIDs)
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, &SeatsTakenError{SeatIDs: conflicts}
	}

	view, err := s.buildView(ctx, ticket, screening, req.SeatIDs)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, screening.ID); err != nil && s.Logger != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("failed to invalidate seat map for screening %d: %v", screening.ID, err))
		}
	}
	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketReserved(*view); err != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish reservation event for ticket %s: %v", ticket.TicketNumber, err))
		}
	}
	if s.Logger != nil {
		s.Logger.LogReservation("RESERVE", ticket.TicketNumber,
			fmt.Sprintf("%d seat(s) for screening %d", len(req.SeatIDs), screening.ID))
	}

	return view, nil
}

func (s *Service) buildView(ctx context.Context, ticket models.Ticket, screening *models.Screening, seatIDs []int64) (*models.TicketView, error) {
	movie, err := s.Screenings.GetMovie(ctx, screening.MovieID)
	if err != nil {
		return nil, fmt.Errorf("lookup movie %d: %w", screening.MovieID, err)
	}
	seats, err := s.Seats.SeatsByIDs(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("load seats: %w", err)
	}

	seatNumbers := make([]int, len(seats))
	for i, seat := range seats {
		seatNumbers[i] = seat.SeatNumber
	}

	return &models.TicketView{
		TicketID:           ticket.TicketNumber,
		MovieTitle:         movie.Title,
		ScreeningStartTime: screening.StartTime,
		SeatNumbers:        seatNumbers,
		Status:             ticket.Status,
		TicketOwner:        ticket.OwnerName + " " + ticket.OwnerSurname,
		Email:              ticket.OwnerEmail,
		Price:              ticket.Price,
	}, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// roundToCents rounds half-up to 2 decimals.
func roundToCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func intersect(requested, taken []int64) []int64 {
	takenSet := make(map[int64]struct{}, len(taken))
	for _, id := range taken {
		takenSet[id] = struct{}{}
	}
	var conflicts []int64
	for _, id := range requested {
		if _, ok := takenSet[id]; ok {
			conflicts = append(conflicts, id)
		}
	}
	return conflicts
}
