package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-cinema/internal/models"
)

// DB is the ticket store used by the lifecycle state machine: single-ticket
// reads and guarded status writes, plus the set-based updates the sweep runs.
type DB struct {
	Bun *bun.DB
}

func (d *DB) GetTicket(ctx context.Context, ticketNumber string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("ticket_number = ?", ticketNumber).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicketStatus moves a ticket from one status to another. The WHERE
// predicate on the current status makes the write a no-op when a concurrent
// writer already moved the ticket; the caller learns that from the false
// return and must re-read.
func (d *DB) UpdateTicketStatus(ctx context.Context, ticketNumber string, from, to models.TicketStatus) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", to).
		Where("ticket_number = ?", ticketNumber).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetTicketSeatNumbers returns the human-readable seat numbers linked to a
// ticket, ordered.
func (d *DB) GetTicketSeatNumbers(ctx context.Context, ticketNumber string) ([]int, error) {
	var seatNumbers []int
	err := d.Bun.NewSelect().
		ColumnExpr("s.seat_number").
		Table("ticket_seats").
		Join("JOIN seats s ON s.id = ticket_seats.seat_id").
		Where("ticket_seats.ticket_number = ?", ticketNumber).
		Order("s.seat_number").
		Scan(ctx, &seatNumbers)
	if err != nil {
		return nil, err
	}
	return seatNumbers, nil
}

// PromotePendingTickets bulk-moves PENDING tickets into VALID for screenings
// starting inside [from, to]. One set-based update, not a row scan; re-running
// it is a no-op because promoted rows no longer match the status predicate.
func (d *DB) PromotePendingTickets(ctx context.Context, from, to time.Time) (int, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", models.StatusValid).
		Where("status = ?", models.StatusPending).
		Where("screening_id IN (SELECT id FROM screenings WHERE start_time >= ? AND start_time <= ?)", from, to).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// StartedScreenings returns screenings whose start time is at or before now.
// Start time is cheap to filter on; the caller does the duration arithmetic
// to narrow this down to screenings that have actually finished.
func (d *DB) StartedScreenings(ctx context.Context, now time.Time) ([]models.Screening, error) {
	var screenings []models.Screening
	err := d.Bun.NewSelect().
		Model(&screenings).
		Where("start_time <= ?", now).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return screenings, nil
}

// ExpireTicketsForScreenings bulk-expires every PENDING or VALID ticket that
// belongs to one of the given screenings.
func (d *DB) ExpireTicketsForScreenings(ctx context.Context, screeningIDs []int64) (int, error) {
	if len(screeningIDs) == 0 {
		return 0, nil
	}
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", models.StatusExpired).
		Where("status IN (?)", bun.In([]models.TicketStatus{models.StatusPending, models.StatusValid})).
		Where("screening_id IN (?)", bun.In(screeningIDs)).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
