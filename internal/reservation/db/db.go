package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"ms-cinema/internal/models"
)

// DB holds the occupancy index and the reservation write path. Seat conflicts
// are ultimately resolved by the unique index on ticket_seats
// (screening_id, seat_id); everything else here is a friendly fast path.
type DB struct {
	Bun *bun.DB
}

// TakenSeats returns the IDs of all seats already linked to any ticket for
// the screening, regardless of ticket status. A pending ticket still holds
// its seats.
func (d *DB) TakenSeats(ctx context.Context, screeningID int64) ([]int64, error) {
	var seatIDs []int64
	err := d.Bun.NewSelect().
		Column("seat_id").
		Table("ticket_seats").
		Where("screening_id = ?", screeningID).
		Scan(ctx, &seatIDs)
	if err != nil {
		return nil, err
	}
	return seatIDs, nil
}

// CreateTicketWithSeats inserts the ticket and one ticket_seats row per seat
// in a single transaction. The requested seats are re-checked against the
// occupancy index inside the transaction; if any are already linked, nothing
// is written and the conflicting seat IDs are returned. A concurrent writer
// that slips past the check is stopped by the unique index and surfaces as an
// error for which IsUniqueViolation reports true. Either the ticket and all
// its seat links are committed, or none of them are.
func (d *DB) CreateTicketWithSeats(ctx context.Context, ticket models.Ticket, seatIDs []int64) ([]int64, error) {
	var conflicts []int64

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var taken []int64
		err := tx.NewSelect().
			Column("seat_id").
			Table("ticket_seats").
			Where("screening_id = ?", ticket.ScreeningID).
			Where("seat_id IN (?)", bun.In(seatIDs)).
			Scan(ctx, &taken)
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			conflicts = taken
			return nil
		}

		if _, err := tx.NewInsert().Model(&ticket).Exec(ctx); err != nil {
			return err
		}

		links := make([]models.TicketSeat, len(seatIDs))
		for i, seatID := range seatIDs {
			links[i] = models.TicketSeat{
				TicketNumber: ticket.TicketNumber,
				ScreeningID:  ticket.ScreeningID,
				SeatID:       seatID,
			}
		}
		_, err = tx.NewInsert().Model(&links).Exec(ctx)
		return err
	})
	if err != nil {
		if !IsUniqueViolation(err) {
			return nil, err
		}
		// Lost a race: a concurrent reservation committed first and the
		// whole transaction rolled back. Report which seats it took.
		taken, qerr := d.takenAmong(ctx, ticket.ScreeningID, seatIDs)
		if qerr != nil || len(taken) == 0 {
			return seatIDs, nil
		}
		return taken, nil
	}
	return conflicts, nil
}

func (d *DB) takenAmong(ctx context.Context, screeningID int64, seatIDs []int64) ([]int64, error) {
	var taken []int64
	err := d.Bun.NewSelect().
		Column("seat_id").
		Table("ticket_seats").
		Where("screening_id = ?", screeningID).
		Where("seat_id IN (?)", bun.In(seatIDs)).
		Scan(ctx, &taken)
	return taken, err
}

// GetTicketSeatIDs returns the seat IDs linked to a ticket.
func (d *DB) GetTicketSeatIDs(ctx context.Context, ticketNumber string) ([]int64, error) {
	var seatIDs []int64
	err := d.Bun.NewSelect().
		Column("seat_id").
		Table("ticket_seats").
		Where("ticket_number = ?", ticketNumber).
		Order("seat_id").
		Scan(ctx, &seatIDs)
	if err != nil {
		return nil, err
	}
	return seatIDs, nil
}

// IsUniqueViolation reports whether err is the store rejecting a duplicate
// (screening_id, seat_id) pair: postgres class 23505 in production, the
// sqlite message in tests.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
