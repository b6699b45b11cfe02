package repertoire

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
)

var ErrScreeningNotFound = errors.New("screening not found")

// Catalog is the slice of the read-only store the repertoire needs.
type Catalog interface {
	GetScreening(ctx context.Context, id int64) (*models.Screening, error)
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	SeatsInRoom(ctx context.Context, roomID int64) ([]models.Seat, error)
	ScreeningsBetween(ctx context.Context, from, to time.Time) ([]models.Screening, error)
	MoviesByIDs(ctx context.Context, movieIDs []int64) ([]models.Movie, error)
}

// OccupancyIndex reports which seats already carry a ticket for a screening.
type OccupancyIndex interface {
	TakenSeats(ctx context.Context, screeningID int64) ([]int64, error)
}

// Cache holds rendered screening details between occupancy changes.
type Cache interface {
	Get(ctx context.Context, screeningID int64) (*models.ScreeningDetails, error)
	Set(ctx context.Context, screeningID int64, details *models.ScreeningDetails) error
}

// Service assembles the customer-facing repertoire: per-day movie listings and
// the seat-selection view for a single screening.
type Service struct {
	Catalog   Catalog
	Occupancy OccupancyIndex
	Cache     Cache
	Logger    *logger.Logger
}

func NewService(catalog Catalog, occupancy OccupancyIndex) *Service {
	return &Service{Catalog: catalog, Occupancy: occupancy}
}

// MoviesForDate lists movies screened on the given calendar day, each with its
// screenings ordered by start time.
func (s *Service) MoviesForDate(ctx context.Context, date time.Time) ([]models.MovieWithScreenings, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	to := from.AddDate(0, 0, 1)

	screenings, err := s.Catalog.ScreeningsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load screenings: %w", err)
	}
	if len(screenings) == 0 {
		return []models.MovieWithScreenings{}, nil
	}

	byMovie := make(map[int64][]models.ScreeningSummary)
	movieIDs := make([]int64, 0, len(screenings))
	for _, screening := range screenings {
		if _, seen := byMovie[screening.MovieID]; !seen {
			movieIDs = append(movieIDs, screening.MovieID)
		}
		byMovie[screening.MovieID] = append(byMovie[screening.MovieID], models.ScreeningSummary{
			ID:              screening.ID,
			StartTime:       screening.StartTime,
			DurationMinutes: screening.DurationMinutes,
		})
	}

	movies, err := s.Catalog.MoviesByIDs(ctx, movieIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load movies: %w", err)
	}

	result := make([]models.MovieWithScreenings, 0, len(movies))
	for _, movie := range movies {
		result = append(result, models.MovieWithScreenings{
			ID:          movie.ID,
			Title:       movie.Title,
			Description: movie.Description,
			Screenings:  byMovie[movie.ID],
		})
	}
	return result, nil
}

// ScreeningDetails returns a screening with its room grid and per-seat
// availability. Results are served from the cache when present.
func (s *Service) ScreeningDetails(ctx context.Context, screeningID int64) (*models.ScreeningDetails, error) {
	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, screeningID)
		if err != nil && s.Logger != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("failed to read seat map for screening %d: %v", screeningID, err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	screening, err := s.Catalog.GetScreening(ctx, screeningID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScreeningNotFound
		}
		return nil, fmt.Errorf("failed to load screening %d: %w", screeningID, err)
	}

	movie, err := s.Catalog.GetMovie(ctx, screening.MovieID)
	if err != nil {
		return nil, fmt.Errorf("failed to load movie %d: %w", screening.MovieID, err)
	}
	room, err := s.Catalog.GetRoom(ctx, screening.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room %d: %w", screening.RoomID, err)
	}
	seats, err := s.Catalog.SeatsInRoom(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats for room %d: %w", room.ID, err)
	}

	taken, err := s.Occupancy.TakenSeats(ctx, screeningID)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupancy for screening %d: %w", screeningID, err)
	}
	takenSet := make(map[int64]struct{}, len(taken))
	for _, id := range taken {
		takenSet[id] = struct{}{}
	}

	seatViews := make([]models.SeatView, 0, len(seats))
	for _, seat := range seats {
		_, isTaken := takenSet[seat.ID]
		seatViews = append(seatViews, models.SeatView{
			ID:           seat.ID,
			RowNumber:    seat.RowNumber,
			ColumnNumber: seat.ColumnNumber,
			SeatNumber:   seat.SeatNumber,
			Available:    !isTaken,
		})
	}

	details := &models.ScreeningDetails{
		ID: screening.ID,
		Movie: models.MovieSummary{
			ID:    movie.ID,
			Title: movie.Title,
		},
		Room: models.RoomView{
			RoomNumber:  room.RoomNumber,
			RowCount:    room.RowCount,
			ColumnCount: room.ColumnCount,
		},
		StartTime:       screening.StartTime,
		DurationMinutes: screening.DurationMinutes,
		Seats:           seatViews,
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, screeningID, details); err != nil && s.Logger != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("failed to cache seat map for screening %d: %v", screeningID, err))
		}
	}
	return details, nil
}
