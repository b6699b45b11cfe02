package reservation

import (
	"errors"
	"fmt"
)

// ErrScreeningNotFound is returned when the requested screening does not
// exist. Handlers translate it into a 404.
var ErrScreeningNotFound = errors.New("screening not found")

// ErrInvalidSeatSelection is returned when at least one requested seat does
// not exist or belongs to a different room than the screening's. The two
// cases are deliberately not distinguished.
var ErrInvalidSeatSelection = errors.New("one or more seats not found or not in the screening room")

// SeatsTakenError is returned when some of the requested seats are already
// linked to another ticket for the same screening. SeatIDs names the
// conflicting seats so the caller can pick different ones.
type SeatsTakenError struct {
	SeatIDs []int64
}

func (e *SeatsTakenError) Error() string {
	return fmt.Sprintf("seats already taken: %v", e.SeatIDs)
}
