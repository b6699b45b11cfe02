package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-cinema/internal/inventory/db"
	"ms-cinema/internal/models"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()

	for _, model := range []interface{}{
		(*models.Movie)(nil),
		(*models.Room)(nil),
		(*models.Seat)(nil),
		(*models.Screening)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).Exec(ctx); err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func seedCatalog(t *testing.T, bunDB *bun.DB) {
	ctx := context.Background()

	movie := models.Movie{ID: 3, Title: "Interstellar", Description: "Space."}
	_, err := bunDB.NewInsert().Model(&movie).Exec(ctx)
	assert.NoError(t, err)

	room := models.Room{ID: 1, RoomNumber: "1", RowCount: 2, ColumnCount: 2}
	_, err = bunDB.NewInsert().Model(&room).Exec(ctx)
	assert.NoError(t, err)

	seats := []models.Seat{
		{ID: 1, RoomID: 1, RowNumber: 1, ColumnNumber: 1, SeatNumber: 1, Price: 25.00},
		{ID: 2, RoomID: 1, RowNumber: 1, ColumnNumber: 2, SeatNumber: 2, Price: 25.00},
		{ID: 3, RoomID: 1, RowNumber: 2, ColumnNumber: 1, SeatNumber: 3, Price: 25.00},
		{ID: 4, RoomID: 2, RowNumber: 1, ColumnNumber: 1, SeatNumber: 1, Price: 25.00},
	}
	_, err = bunDB.NewInsert().Model(&seats).Exec(ctx)
	assert.NoError(t, err)

	screening := models.Screening{
		ID: 10, MovieID: 3, RoomID: 1,
		StartTime:       time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC),
		DurationMinutes: 120,
	}
	_, err = bunDB.NewInsert().Model(&screening).Exec(ctx)
	assert.NoError(t, err)
}

func TestGetScreening(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()
	seedCatalog(t, bunDB)
	ctx := context.Background()

	screening, err := store.GetScreening(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), screening.MovieID)
	assert.Equal(t, int64(1), screening.RoomID)

	_, err = store.GetScreening(ctx, 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSeatsBelongToRoom(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()
	seedCatalog(t, bunDB)
	ctx := context.Background()

	count, err := store.SeatsBelongToRoom(ctx, []int64{1, 2, 3}, 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)

	// Seat 4 belongs to room 2
	count, err = store.SeatsBelongToRoom(ctx, []int64{1, 4}, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	// Unknown seat IDs do not count
	count, err = store.SeatsBelongToRoom(ctx, []int64{1, 999}, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.SeatsBelongToRoom(ctx, nil, 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSeatsInRoom_OrderedBySeatNumber(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()
	seedCatalog(t, bunDB)

	seats, err := store.SeatsInRoom(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, seats, 3)
	assert.Equal(t, 1, seats[0].SeatNumber)
	assert.Equal(t, 2, seats[1].SeatNumber)
	assert.Equal(t, 3, seats[2].SeatNumber)
}

func TestScreeningsBetween(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()
	seedCatalog(t, bunDB)
	ctx := context.Background()

	dayStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	screenings, err := store.ScreeningsBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	assert.NoError(t, err)
	assert.Len(t, screenings, 1)

	screenings, err = store.ScreeningsBetween(ctx, dayStart.AddDate(0, 0, 1), dayStart.AddDate(0, 0, 2))
	assert.NoError(t, err)
	assert.Empty(t, screenings)
}

func TestMoviesByIDs(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()
	seedCatalog(t, bunDB)

	movies, err := store.MoviesByIDs(context.Background(), []int64{3})
	assert.NoError(t, err)
	assert.Len(t, movies, 1)
	assert.Equal(t, "Interstellar", movies[0].Title)

	movies, err = store.MoviesByIDs(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, movies)
}
