package models

import "time"

// ReservationRequest is the payload accepted by the reservation endpoint.
type ReservationRequest struct {
	ScreeningID int64   `json:"screening_id"`
	SeatIDs     []int64 `json:"seat_ids"`
	Name        string  `json:"name"`
	Surname     string  `json:"surname"`
	Email       string  `json:"email"`
}

// TicketView is the fully populated ticket returned by the reservation and
// lifecycle operations.
type TicketView struct {
	TicketID           string       `json:"ticket_id"`
	MovieTitle         string       `json:"movie_title"`
	ScreeningStartTime time.Time    `json:"screening_start_time"`
	SeatNumbers        []int        `json:"seat_numbers"`
	Status             TicketStatus `json:"status"`
	TicketOwner        string       `json:"ticket_owner"`
	Email              string       `json:"email"`
	Price              float64      `json:"price"`
}

type MovieSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type RoomView struct {
	RoomNumber  string `json:"room_number"`
	RowCount    int    `json:"row_count"`
	ColumnCount int    `json:"column_count"`
}

type SeatView struct {
	ID           int64 `json:"id"`
	RowNumber    int   `json:"row_number"`
	ColumnNumber int   `json:"column_number"`
	SeatNumber   int   `json:"seat_number"`
	Available    bool  `json:"available"`
}

// ScreeningDetails is a screening with its room grid and per-seat
// availability, used by the seat-selection view.
type ScreeningDetails struct {
	ID              int64        `json:"id"`
	Movie           MovieSummary `json:"movie"`
	Room            RoomView     `json:"room"`
	StartTime       time.Time    `json:"start_time"`
	DurationMinutes int64        `json:"duration_minutes"`
	Seats           []SeatView   `json:"seats"`
}

type ScreeningSummary struct {
	ID              int64     `json:"id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int64     `json:"duration_minutes"`
}

// MovieWithScreenings groups a movie with its screenings for one repertoire day.
type MovieWithScreenings struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Screenings  []ScreeningSummary `json:"screenings"`
}
