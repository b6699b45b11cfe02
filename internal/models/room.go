package models

import (
	"github.com/uptrace/bun"
)

// Room is a projection room with a fixed seat grid. The grid is created once
// at provisioning time; seats never move between rooms.
type Room struct {
	bun.BaseModel `bun:"table:rooms"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	RoomNumber  string `bun:"room_number,notnull,unique" json:"room_number"`
	RowCount    int    `bun:"row_count,notnull" json:"row_count"`
	ColumnCount int    `bun:"column_count,notnull" json:"column_count"`
}

type Seat struct {
	bun.BaseModel `bun:"table:seats"`

	ID           int64   `bun:"id,pk,autoincrement" json:"id"`
	RoomID       int64   `bun:"room_id,notnull" json:"room_id"`
	RowNumber    int     `bun:"row_number,notnull" json:"row_number"`
	ColumnNumber int     `bun:"column_number,notnull" json:"column_number"`
	SeatNumber   int     `bun:"seat_number,notnull" json:"seat_number"`
	Price        float64 `bun:"price,notnull" json:"price"`
}
