package lifecycle

import (
	"errors"
	"fmt"

	"ms-cinema/internal/models"
)

// ErrTicketNotFound is returned when no ticket exists for the given number.
var ErrTicketNotFound = errors.New("ticket not found")

// InvalidStateError is returned when a requested transition is not permitted
// from the ticket's current status, e.g. scanning a PENDING or already-USED
// ticket. Status carries the state the ticket was actually in.
type InvalidStateError struct {
	Status models.TicketStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot scan ticket in status: %s", e.Status)
}
