package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TicketStatus is the lifecycle state of an issued ticket.
//
// PENDING → VALID → USED, and PENDING|VALID → EXPIRED. USED and EXPIRED are
// terminal. A ticket enters VALID once the current time is inside the
// activation window before its screening starts, and becomes EXPIRED once the
// screening has ended.
type TicketStatus string

const (
	StatusPending TicketStatus = "PENDING"
	StatusValid   TicketStatus = "VALID"
	StatusUsed    TicketStatus = "USED"
	StatusExpired TicketStatus = "EXPIRED"
)

// Terminal reports whether no further transition may leave the status.
func (s TicketStatus) Terminal() bool {
	return s == StatusUsed || s == StatusExpired
}

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	TicketNumber string       `bun:"ticket_number,pk" json:"ticket_number"`
	ScreeningID  int64        `bun:"screening_id,notnull" json:"screening_id"`
	OwnerName    string       `bun:"owner_name" json:"owner_name"`
	OwnerSurname string       `bun:"owner_surname" json:"owner_surname"`
	OwnerEmail   string       `bun:"owner_email" json:"owner_email"`
	Price        float64      `bun:"price,notnull" json:"price"`
	Status       TicketStatus `bun:"status,notnull" json:"status"`
	QRCode       []byte       `bun:"qr_code" json:"-"`
	IssuedAt     time.Time    `bun:"issued_at,notnull" json:"issued_at"`
}

// TicketSeat binds one seat to one ticket for one specific screening. The
// unique index on (screening_id, seat_id) is what actually prevents
// double-booking under concurrency.
type TicketSeat struct {
	bun.BaseModel `bun:"table:ticket_seats"`

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	TicketNumber string `bun:"ticket_number,notnull" json:"ticket_number"`
	ScreeningID  int64  `bun:"screening_id,notnull" json:"screening_id"`
	SeatID       int64  `bun:"seat_id,notnull" json:"seat_id"`
}
