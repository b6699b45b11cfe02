package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Screening is a scheduled showing of a movie in a room. Overlap between
// screenings sharing a room is assumed to be prevented upstream by the
// scheduling layer.
type Screening struct {
	bun.BaseModel `bun:"table:screenings"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	MovieID         int64     `bun:"movie_id,notnull" json:"movie_id"`
	RoomID          int64     `bun:"room_id,notnull" json:"room_id"`
	StartTime       time.Time `bun:"start_time,notnull" json:"start_time"`
	DurationMinutes int64     `bun:"duration_minutes,notnull" json:"duration_minutes"`
}

func (s *Screening) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// EndTime is start plus duration; a ticket for this screening expires once
// the current time reaches it.
func (s *Screening) EndTime() time.Time {
	return s.StartTime.Add(s.Duration())
}
