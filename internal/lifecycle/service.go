package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
)

type TicketStore interface {
	GetTicket(ctx context.Context, ticketNumber string) (*models.Ticket, error)
	UpdateTicketStatus(ctx context.Context, ticketNumber string, from, to models.TicketStatus) (bool, error)
	GetTicketSeatNumbers(ctx context.Context, ticketNumber string) ([]int, error)
	PromotePendingTickets(ctx context.Context, from, to time.Time) (int, error)
	StartedScreenings(ctx context.Context, now time.Time) ([]models.Screening, error)
	ExpireTicketsForScreenings(ctx context.Context, screeningIDs []int64) (int, error)
}

type ScreeningLookup interface {
	GetScreening(ctx context.Context, id int64) (*models.Screening, error)
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)
}

type EventPublisher interface {
	PublishTicketStatusChanged(ticketNumber string, status models.TicketStatus) error
}

// Service is the ticket lifecycle state machine.
//
// Transitions are evaluated lazily whenever a ticket is read (CheckTicket,
// ScanTicket) and eagerly in bulk by RunStatusSweep. All comparisons within
// one evaluation use a single "now" from the injected clock.
type Service struct {
	Tickets    TicketStore
	Screenings ScreeningLookup
	Kafka      EventPublisher
	Logger     *logger.Logger
	// ActivationWindow is how long before the screening start a PENDING
	// ticket becomes VALID.
	ActivationWindow time.Duration
	Now              func() time.Time
}

func NewService(tickets TicketStore, screenings ScreeningLookup, activationWindow time.Duration) *Service {
	return &Service{
		Tickets:          tickets,
		Screenings:       screenings,
		ActivationWindow: activationWindow,
		Now:              time.Now,
	}
}

// evaluateStatus computes the status the ticket should hold at instant now.
// Terminal states never move; a ticket whose screening has ended expires
// regardless of whether it was ever activated.
func (s *Service) evaluateStatus(status models.TicketStatus, screening *models.Screening, now time.Time) models.TicketStatus {
	if status.Terminal() {
		return status
	}
	if !now.Before(screening.EndTime()) {
		return models.StatusExpired
	}
	if status == models.StatusPending && !now.Before(screening.StartTime.Add(-s.ActivationWindow)) {
		return models.StatusValid
	}
	return status
}

// CheckTicket returns the current view of a ticket, applying any lazy status
// transition that is due and persisting it. Repeated calls with an unchanged
// clock are idempotent; a call that straddles a transition boundary is not.
func (s *Service) CheckTicket(ctx context.Context, ticketNumber string) (*models.TicketView, error) {
	ticket, screening, err := s.loadTicket(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}

	if err := s.applyLazyTransition(ctx, ticket, screening); err != nil {
		return nil, err
	}

	return s.buildView(ctx, ticket, screening)
}

// ScanTicket consumes a ticket at the entrance. The same lazy evaluation as
// CheckTicket runs first; only a ticket that ends up VALID may be scanned,
// and scanning moves it to the terminal USED state.
func (s *Service) ScanTicket(ctx context.Context, ticketNumber string) (*models.TicketView, error) {
	ticket, screening, err := s.loadTicket(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}

	if err := s.applyLazyTransition(ctx, ticket, screening); err != nil {
		return nil, err
	}
	if ticket.Status != models.StatusValid {
		return nil, &InvalidStateError{Status: ticket.Status}
	}

	moved, err := s.Tickets.UpdateTicketStatus(ctx, ticket.TicketNumber, models.StatusValid, models.StatusUsed)
	if err != nil {
		return nil, fmt.Errorf("mark ticket %s used: %w", ticket.TicketNumber, err)
	}
	if !moved {
		// Someone else scanned it between our read and write.
		current, err := s.Tickets.GetTicket(ctx, ticket.TicketNumber)
		if err != nil {
			return nil, fmt.Errorf("reload ticket %s: %w", ticket.TicketNumber, err)
		}
		return nil, &InvalidStateError{Status: current.Status}
	}
	ticket.Status = models.StatusUsed
	s.notifyStatusChange(ticket.TicketNumber, models.StatusUsed)
	if s.Logger != nil {
		s.Logger.LogTicket("SCAN", ticket.TicketNumber, "ticket used")
	}

	return s.buildView(ctx, ticket, screening)
}

// RunStatusSweep performs one batch pass: promote PENDING tickets whose
// screening starts within the activation window, then expire every PENDING or
// VALID ticket whose screening has finished. Returns the total number of
// tickets touched.
func (s *Service) RunStatusSweep(ctx context.Context) (int, error) {
	now := s.now()

	promoted, err := s.Tickets.PromotePendingTickets(ctx, now, now.Add(s.ActivationWindow))
	if err != nil {
		return 0, fmt.Errorf("promote pending tickets: %w", err)
	}

	started, err := s.Tickets.StartedScreenings(ctx, now)
	if err != nil {
		return promoted, fmt.Errorf("find started screenings: %w", err)
	}

	var finishedIDs []int64
	for _, screening := range started {
		if !screening.EndTime().After(now) {
			finishedIDs = append(finishedIDs, screening.ID)
		}
	}

	expired, err := s.Tickets.ExpireTicketsForScreenings(ctx, finishedIDs)
	if err != nil {
		return promoted, fmt.Errorf("expire tickets: %w", err)
	}

	if s.Logger != nil {
		s.Logger.LogSweep(fmt.Sprintf("promoted %d ticket(s) to VALID, expired %d ticket(s)", promoted, expired))
	}
	return promoted + expired, nil
}

func (s *Service) loadTicket(ctx context.Context, ticketNumber string) (*models.Ticket, *models.Screening, error) {
	ticket, err := s.Tickets.GetTicket(ctx, ticketNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("ticket %s: %w", ticketNumber, ErrTicketNotFound)
		}
		return nil, nil, fmt.Errorf("load ticket %s: %w", ticketNumber, err)
	}
	screening, err := s.Screenings.GetScreening(ctx, ticket.ScreeningID)
	if err != nil {
		return nil, nil, fmt.Errorf("load screening %d for ticket %s: %w", ticket.ScreeningID, ticketNumber, err)
	}
	return ticket, screening, nil
}

// applyLazyTransition moves the ticket to its due status and persists the
// change. Status only ever advances; if a concurrent writer got there first
// the guarded update is a no-op and the fresher status is re-read.
func (s *Service) applyLazyTransition(ctx context.Context, ticket *models.Ticket, screening *models.Screening) error {
	next := s.evaluateStatus(ticket.Status, screening, s.now())
	if next == ticket.Status {
		return nil
	}

	moved, err := s.Tickets.UpdateTicketStatus(ctx, ticket.TicketNumber, ticket.Status, next)
	if err != nil {
		return fmt.Errorf("update ticket %s status %s -> %s: %w", ticket.TicketNumber, ticket.Status, next, err)
	}
	if !moved {
		current, err := s.Tickets.GetTicket(ctx, ticket.TicketNumber)
		if err != nil {
			return fmt.Errorf("reload ticket %s: %w", ticket.TicketNumber, err)
		}
		ticket.Status = current.Status
		return nil
	}

	ticket.Status = next
	s.notifyStatusChange(ticket.TicketNumber, next)
	if s.Logger != nil {
		s.Logger.LogTicket("TRANSITION", ticket.TicketNumber, string(next))
	}
	return nil
}

func (s *Service) buildView(ctx context.Context, ticket *models.Ticket, screening *models.Screening) (*models.TicketView, error) {
	movie, err := s.Screenings.GetMovie(ctx, screening.MovieID)
	if err != nil {
		return nil, fmt.Errorf("load movie %d: %w", screening.MovieID, err)
	}
	seatNumbers, err := s.Tickets.GetTicketSeatNumbers(ctx, ticket.TicketNumber)
	if err != nil {
		return nil, fmt.Errorf("load seats for ticket %s: %w", ticket.TicketNumber, err)
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

func (s *Service) notifyStatusChange(ticketNumber string, status models.TicketStatus) {
	if s.Kafka == nil {
		return
	}
	if err := s.Kafka.PublishTicketStatusChanged(ticketNumber, status); err != nil && s.Logger != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish status change for ticket %s: %v", ticketNumber, err))
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
