package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-cinema/internal/models"
)

// DB is the read-only store over the provisioned catalog: movies, rooms with
// their fixed seat grids, and scheduled screenings.
type DB struct {
	Bun *bun.DB
}

func (d *DB) GetScreening(ctx context.Context, id int64) (*models.Screening, error) {
	var screening models.Screening
	err := d.Bun.NewSelect().
		Model(&screening).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &screening, nil
}

func (d *DB) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	var movie models.Movie
	err := d.Bun.NewSelect().
		Model(&movie).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (d *DB) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := d.Bun.NewSelect().
		Model(&room).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// SeatsInRoom returns the room's grid ordered by seat number.
func (d *DB) SeatsInRoom(ctx context.Context, roomID int64) ([]models.Seat, error) {
	var seats []models.Seat
	err := d.Bun.NewSelect().
		Model(&seats).
		Where("room_id = ?", roomID).
		Order("seat_number").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return seats, nil
}

// SeatsBelongToRoom counts how many of seatIDs both exist and belong to the
// room. A result smaller than len(seatIDs) means at least one seat is missing
// or sits in a different room; the two cases are not distinguished.
func (d *DB) SeatsBelongToRoom(ctx context.Context, seatIDs []int64, roomID int64) (int, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	count, err := d.Bun.NewSelect().
		Model((*models.Seat)(nil)).
		Where("id IN (?)", bun.In(seatIDs)).
		Where("room_id = ?", roomID).
		Count(ctx)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SeatsByIDs loads the given seats ordered by seat number.
func (d *DB) SeatsByIDs(ctx context.Context, seatIDs []int64) ([]models.Seat, error) {
	if len(seatIDs) == 0 {
		return []models.Seat{}, nil
	}
	var seats []models.Seat
	err := d.Bun.NewSelect().
		Model(&seats).
		Where("id IN (?)", bun.In(seatIDs)).
		Order("seat_number").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return seats, nil
}

// ScreeningsBetween returns screenings starting inside [from, to) ordered by
// start time, used to assemble the repertoire for one day.
func (d *DB) ScreeningsBetween(ctx context.Context, from, to time.Time) ([]models.Screening, error) {
	var screenings []models.Screening
	err := d.Bun.NewSelect().
		Model(&screenings).
		Where("start_time >= ?", from).
		Where("start_time < ?", to).
		Order("start_time").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return screenings, nil
}

// MoviesByIDs loads movies for a set of IDs.
func (d *DB) MoviesByIDs(ctx context.Context, movieIDs []int64) ([]models.Movie, error) {
	if len(movieIDs) == 0 {
		return []models.Movie{}, nil
	}
	var movies []models.Movie
	err := d.Bun.NewSelect().
		Model(&movies).
		Where("id IN (?)", bun.In(movieIDs)).
		Order("title").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return movies, nil
}
