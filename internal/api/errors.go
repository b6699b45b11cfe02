package api

import (
	"errors"
	"net/http"
	"strconv"

	"ms-cinema/internal/lifecycle"
	"ms-cinema/internal/reservation"
)

// reservationStatus maps reservation errors onto HTTP status codes. Conflicts
// with already-taken seats return 409 so clients can re-render the seat map.
func reservationStatus(err error) int {
	var seatsTaken *reservation.SeatsTakenError
	switch {
	case errors.Is(err, reservation.ErrScreeningNotFound):
		return http.StatusNotFound
	case errors.Is(err, reservation.ErrInvalidSeatSelection):
		return http.StatusBadRequest
	case errors.As(err, &seatsTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func lifecycleStatus(err error) int {
	var invalidState *lifecycle.InvalidStateError
	switch {
	case errors.Is(err, lifecycle.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
