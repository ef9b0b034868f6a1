package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/netcinema/booking/internal/domain"
)

type PostgresReservationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReservationRepository(db *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

func (p *PostgresReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO reservations
				(id, code, screening_id, requester, contact_name, contact_email,
				 status, total, payment_method, created_at, expires_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`

		_, err := tx.Exec(
			ctx,
			query,
			reservation.ID,
			reservation.Code,
			reservation.ScreeningID,
			reservation.Requester,
			reservation.Contact.Name,
			reservation.Contact.Email,
			reservation.Status,
			reservation.Total,
			reservation.PaymentMethod,
			reservation.CreatedAt,
			reservation.ExpiresAt,
			reservation.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return fmt.Errorf("reservation code collision: %w", err)
			}

			return err
		}

		rows := make([][]any, 0, len(reservation.Seats))
		for _, seat := range reservation.Seats {
			rows = append(rows, []any{
				reservation.ID,
				reservation.ScreeningID,
				seat.Row,
				seat.Number,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"reservation_seats"},
			[]string{"reservation_id", "screening_id", "seat_row", "seat_number"},
			pgx.CopyFromRows(rows),
		)

		return err
	})
}

func (p *PostgresReservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		UPDATE reservations
		SET status = $1, payment_method = $2, updated_at = $3
		WHERE id = $4
	`

	tag, err := p.db.Exec(
		ctx,
		query,
		reservation.Status,
		reservation.PaymentMethod,
		reservation.UpdatedAt,
		reservation.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresReservationRepository) GetById(ctx context.Context, id string) (*domain.Reservation, error) {
	return p.getOne(ctx, `WHERE id = $1`, id)
}

func (p *PostgresReservationRepository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	return p.getOne(ctx, `WHERE code = $1`, code)
}

func (p *PostgresReservationRepository) getOne(ctx context.Context, where string, arg any) (*domain.Reservation, error) {
	query := `
		SELECT id, code, screening_id, requester, contact_name, contact_email,
			   status, total, payment_method, created_at, expires_at, updated_at
		FROM reservations ` + where

	var reservation domain.Reservation

	err := p.db.QueryRow(ctx, query, arg).Scan(
		&reservation.ID,
		&reservation.Code,
		&reservation.ScreeningID,
		&reservation.Requester,
		&reservation.Contact.Name,
		&reservation.Contact.Email,
		&reservation.Status,
		&reservation.Total,
		&reservation.PaymentMethod,
		&reservation.CreatedAt,
		&reservation.ExpiresAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	seats, err := p.seatsByReservationIds(ctx, []string{reservation.ID})
	if err != nil {
		return nil, err
	}

	reservation.Seats = seats[reservation.ID]

	return &reservation, nil
}

func (p *PostgresReservationRepository) FindByScreening(
	ctx context.Context,
	screeningID string) ([]*domain.Reservation, error) {

	return p.findMany(ctx, `WHERE screening_id = $1 ORDER BY created_at`, screeningID)
}

func (p *PostgresReservationRepository) FindPendingByScreening(
	ctx context.Context,
	screeningID string) ([]*domain.Reservation, error) {

	return p.findMany(
		ctx,
		`WHERE screening_id = $1 AND status = 'PENDING' ORDER BY created_at`,
		screeningID,
	)
}

func (p *PostgresReservationRepository) FindByRequester(
	ctx context.Context,
	requester string) ([]*domain.Reservation, error) {

	return p.findMany(ctx, `WHERE requester = $1 ORDER BY created_at DESC`, requester)
}

func (p *PostgresReservationRepository) findMany(
	ctx context.Context,
	where string,
	arg any) ([]*domain.Reservation, error) {

	query := `
		SELECT id, code, screening_id, requester, contact_name, contact_email,
			   status, total, payment_method, created_at, expires_at, updated_at
		FROM reservations ` + where

	rows, err := p.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]*domain.Reservation, 0)
	ids := make([]string, 0)

	for rows.Next() {
		var reservation domain.Reservation

		err = rows.Scan(
			&reservation.ID,
			&reservation.Code,
			&reservation.ScreeningID,
			&reservation.Requester,
			&reservation.Contact.Name,
			&reservation.Contact.Email,
			&reservation.Status,
			&reservation.Total,
			&reservation.PaymentMethod,
			&reservation.CreatedAt,
			&reservation.ExpiresAt,
			&reservation.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		reservations = append(reservations, &reservation)
		ids = append(ids, reservation.ID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(reservations) == 0 {
		return reservations, nil
	}

	seats, err := p.seatsByReservationIds(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, reservation := range reservations {
		reservation.Seats = seats[reservation.ID]
	}

	return reservations, nil
}

func (p *PostgresReservationRepository) FindDueBefore(
	ctx context.Context,
	deadline time.Time) ([]string, error) {

	query := `
		SELECT id
		FROM reservations
		WHERE status = 'PENDING' AND expires_at <= $1
		ORDER BY expires_at
	`

	rows, err := p.db.Query(ctx, query, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)

	for rows.Next() {
		var id string

		if err = rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (p *PostgresReservationRepository) seatsByReservationIds(
	ctx context.Context,
	ids []string) (map[string][]domain.Seat, error) {

	query := `
		SELECT reservation_id, seat_row, seat_number
		FROM reservation_seats
		WHERE reservation_id = ANY($1)
		ORDER BY seat_row, seat_number
	`

	rows, err := p.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make(map[string][]domain.Seat, len(ids))

	for rows.Next() {
		var reservationID string
		var seat domain.Seat

		err = rows.Scan(&reservationID, &seat.Row, &seat.Number)
		if err != nil {
			return nil, err
		}

		seats[reservationID] = append(seats[reservationID], seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}
