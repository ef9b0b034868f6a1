package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/netcinema/booking/internal/domain"
)

type PostgresScreeningRepository struct {
	db *pgxpool.Pool
}

func NewPostgresScreeningRepository(db *pgxpool.Pool) *PostgresScreeningRepository {
	return &PostgresScreeningRepository{
		db: db,
	}
}

func (p *PostgresScreeningRepository) GetById(ctx context.Context, id string) (*domain.Screening, error) {
	query := `
		SELECT id, movie_title, room_id, start_time, duration_minutes, base_price
		FROM screenings
		WHERE id = $1
	`

	var screening domain.Screening
	var durationMinutes int

	err := p.db.QueryRow(ctx, query, id).Scan(
		&screening.ID,
		&screening.MovieTitle,
		&screening.RoomID,
		&screening.StartTime,
		&durationMinutes,
		&screening.BasePrice,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	screening.Duration = time.Duration(durationMinutes) * time.Minute

	layout, err := p.roomLayout(ctx, screening.RoomID)
	if err != nil {
		return nil, err
	}

	screening.Layout = layout

	return &screening, nil
}

func (p *PostgresScreeningRepository) roomLayout(ctx context.Context, roomID string) ([]domain.Seat, error) {
	query := `
		SELECT seat_row, seat_number
		FROM room_seats
		WHERE room_id = $1
		ORDER BY seat_row, seat_number
	`

	rows, err := p.db.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	layout := make([]domain.Seat, 0)

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(&seat.Row, &seat.Number)
		if err != nil {
			return nil, err
		}

		layout = append(layout, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return layout, nil
}
